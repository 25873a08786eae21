package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"onechart-be/internal/dto"
	"onechart-be/internal/pkg/serverutils"
	"onechart-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-secret"

type stubSessionService struct {
	service.ISessionService
	show    *dto.SessionResponse
	showErr error
	updated *dto.UpdateSessionRequest
}

func (s *stubSessionService) Show(ctx context.Context, userId, id uuid.UUID) (*dto.SessionResponse, error) {
	return s.show, s.showErr
}

func (s *stubSessionService) Update(ctx context.Context, userId, id uuid.UUID, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error) {
	s.updated = req
	return &dto.SessionResponse{Id: id}, nil
}

type stubProcessingService struct {
	service.IProcessingService
	gotReq   *dto.ProcessSessionRequest
	gotAudio dto.AudioPayload
}

func (s *stubProcessingService) Process(ctx context.Context, userId uuid.UUID, req *dto.ProcessSessionRequest, audio dto.AudioPayload) (*dto.SessionResponse, error) {
	s.gotReq = req
	s.gotAudio = audio
	return &dto.SessionResponse{Id: uuid.New(), Status: "processing"}, nil
}

func (s *stubProcessingService) Cancel(ctx context.Context, userId, sessionId uuid.UUID) error {
	return service.ErrSessionNotProcessing
}

func newTestApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(ErrorStatus))
	register(app)
	return app
}

func bearer(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": uuid.NewString()})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestProcessAcceptsMultipartAudio(t *testing.T) {
	processing := &stubProcessingService{}
	app := newTestApp(NewSessionController(&stubSessionService{}, processing, testSecret, 1<<20).RegisterRoutes)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("patient_name", "Jane Roe"))
	require.NoError(t, writer.WriteField("patient_gender", "Female"))
	require.NoError(t, writer.WriteField("template_id", "t1"))
	part, err := writer.CreateFormFile("audio", "visit.webm")
	require.NoError(t, err)
	_, _ = part.Write([]byte("fake-audio"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/session/v1", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", bearer(t))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	require.NotNil(t, processing.gotReq)
	assert.Equal(t, "Jane Roe", processing.gotReq.PatientName)
	assert.Equal(t, "t1", processing.gotReq.TemplateId)
	assert.Equal(t, []byte("fake-audio"), processing.gotAudio.Data)
}

func TestProcessWithoutAudioIsBadRequest(t *testing.T) {
	app := newTestApp(NewSessionController(&stubSessionService{}, &stubProcessingService{}, testSecret, 1<<20).RegisterRoutes)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("patient_name", "Jane Roe"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/session/v1", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", bearer(t))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestShowMapsDomainErrors(t *testing.T) {
	sessions := &stubSessionService{showErr: service.ErrSessionNotFound}
	app := newTestApp(NewSessionController(sessions, &stubProcessingService{}, testSecret, 0).RegisterRoutes)

	req := httptest.NewRequest(http.MethodGet, "/session/v1/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", bearer(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	out := decode(t, resp)
	assert.Equal(t, false, out["success"])

	req = httptest.NewRequest(http.MethodGet, "/session/v1/not-a-uuid", nil)
	req.Header.Set("Authorization", bearer(t))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/session/v1/"+uuid.NewString()+"/cancel", nil)
	req.Header.Set("Authorization", bearer(t))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestUpdateValidatesStatus(t *testing.T) {
	sessions := &stubSessionService{}
	app := newTestApp(NewSessionController(sessions, &stubProcessingService{}, testSecret, 0).RegisterRoutes)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodPut, "/session/v1/"+id, bytes.NewBufferString(`{"status":"archived"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, sessions.updated)

	req = httptest.NewRequest(http.MethodPut, "/session/v1/"+id, bytes.NewBufferString(`{"status":"processing"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, sessions.updated)

	req = httptest.NewRequest(http.MethodPut, "/session/v1/"+id, bytes.NewBufferString(`{"patient_gender":"Male","regenerate":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, sessions.updated)
	assert.Equal(t, "Male", *sessions.updated.PatientGender)
	assert.True(t, sessions.updated.Regenerate)
}

func TestRoutesRequireToken(t *testing.T) {
	app := newTestApp(NewSessionController(&stubSessionService{}, &stubProcessingService{}, testSecret, 0).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/session/v1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

type stubResumeService struct {
	service.IResumeService
	chunks   [][]byte
	captures int
}

func (s *stubResumeService) StartCapture(ctx context.Context, userId, sessionId uuid.UUID, req *dto.StartRecordingRequest) error {
	s.captures++
	return nil
}

func (s *stubResumeService) AppendChunk(ctx context.Context, userId, sessionId uuid.UUID, chunk []byte) error {
	s.chunks = append(s.chunks, chunk)
	return nil
}

func (s *stubResumeService) StopCapture(ctx context.Context, userId, sessionId uuid.UUID, req *dto.ResumeRequest) (*dto.SessionResponse, error) {
	return nil, service.ErrResumeFailed
}

func TestRecordingChunkAndFailedStop(t *testing.T) {
	resume := &stubResumeService{}
	app := newTestApp(NewRecordingController(resume, nil, testSecret, 0).RegisterRoutes)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodPut, "/recording/v1/"+id+"/chunk", bytes.NewBufferString("pcm-bytes"))
	req.Header.Set("Authorization", bearer(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, resume.chunks, 1)
	assert.Equal(t, []byte("pcm-bytes"), resume.chunks[0])

	req = httptest.NewRequest(http.MethodPost, "/recording/v1/"+id+"/stop", nil)
	req.Header.Set("Authorization", bearer(t))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestRecordingStreamFailedHandshakeOpensNoCapture(t *testing.T) {
	resume := &stubResumeService{}
	app := newTestApp(NewRecordingController(resume, nil, testSecret, 0).RegisterRoutes)

	req := httptest.NewRequest(http.MethodGet, "/recording/v1/"+uuid.NewString()+"/ws?mime_type=audio/webm", nil)
	req.Header.Set("Authorization", bearer(t))
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusSwitchingProtocols, resp.StatusCode)
	assert.Zero(t, resume.captures)
}
