package controller

import (
	"context"
	"encoding/json"

	"onechart-be/internal/dto"
	"onechart-be/internal/pkg/logger"
	"onechart-be/internal/pkg/serverutils"
	"onechart-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Text commands accepted on the recording socket; binary frames are audio.
const (
	recordingCommandStop   = "stop"
	recordingCommandCancel = "cancel"
)

type IRecordingController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Chunk(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Stop(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
}

type recordingController struct {
	service        service.IResumeService
	logger         logger.ILogger
	jwtSecret      string
	maxUploadBytes int64
}

func NewRecordingController(service service.IResumeService, log logger.ILogger, jwtSecret string, maxUploadBytes int64) IRecordingController {
	return &recordingController{
		service:        service,
		logger:         log,
		jwtSecret:      jwtSecret,
		maxUploadBytes: maxUploadBytes,
	}
}

func (c *recordingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/recording/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post(":id/start", c.Start)
	h.Put(":id/chunk", c.Chunk)
	h.Post(":id/stop", c.Stop)
	h.Post(":id/upload", c.Upload)
	h.Delete(":id", c.Cancel)
	h.Get(":id/ws", c.Stream)
}

func (c *recordingController) Start(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.StartRecordingRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.StartCapture(ctx.UserContext(), userId, id, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Recording started", dto.RecordingStatusResponse{SessionId: id, Active: true}))
}

// Chunk appends the raw request body to the open capture.
func (c *recordingController) Chunk(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	chunk := append([]byte(nil), ctx.Body()...)
	if err := c.service.AppendChunk(ctx.UserContext(), userId, id, chunk); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Chunk received", dto.RecordingStatusResponse{SessionId: id, Active: true}))
}

func (c *recordingController) Cancel(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.CancelCapture(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Recording canceled", dto.RecordingStatusResponse{SessionId: id}))
}

func (c *recordingController) Stop(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.ResumeRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	res, err := c.service.StopCapture(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session resumed", res))
}

// Upload resumes the session with a whole recorded file sent as the multipart "audio" field.
func (c *recordingController) Upload(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.ResumeRequest
	if raw := ctx.FormValue("document_id"); raw != "" {
		documentId, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid document_id")
		}
		req.DocumentId = &documentId
	}

	header, err := ctx.FormFile("audio")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "audio file is required")
	}
	data, mimeType, err := readAudio(header, c.maxUploadBytes)
	if err != nil {
		return err
	}

	res, err := c.service.Resume(ctx.UserContext(), userId, id, &req, dto.AudioPayload{MimeType: mimeType, Data: data})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session resumed", res))
}

type streamFrame struct {
	Type    string               `json:"type"`
	Message string               `json:"message,omitempty"`
	Session *dto.SessionResponse `json:"session,omitempty"`
}

// Stream opens a capture for the lifetime of the socket. A socket that closes without "stop" cancels it.
func (c *recordingController) Stream(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}
	mimeType := ctx.Query("mime_type")

	return websocket.New(func(conn *websocket.Conn) {
		c.stream(conn, userId, id, mimeType)
	})(ctx)
}

// stream owns the capture from the moment the socket is live, so a failed upgrade never leaves one open.
func (c *recordingController) stream(conn *websocket.Conn, userId, sessionId uuid.UUID, mimeType string) {
	ctx := context.Background()
	details := map[string]interface{}{"session_id": sessionId.String()}

	reply := func(frame streamFrame) {
		payload, _ := json.Marshal(frame)
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.logger.Warn("RecordingController", "Failed to write stream frame", map[string]interface{}{"error": err.Error()})
		}
	}

	if err := c.service.StartCapture(ctx, userId, sessionId, &dto.StartRecordingRequest{MimeType: mimeType}); err != nil {
		reply(streamFrame{Type: "error", Message: err.Error()})
		return
	}
	c.logger.Info("RecordingController", "Recording stream opened", details)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			_ = c.service.CancelCapture(ctx, userId, sessionId)
			c.logger.Info("RecordingController", "Recording stream dropped, capture discarded", details)
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			if err := c.service.AppendChunk(ctx, userId, sessionId, data); err != nil {
				reply(streamFrame{Type: "error", Message: err.Error()})
				_ = c.service.CancelCapture(ctx, userId, sessionId)
				return
			}
		case websocket.TextMessage:
			switch string(data) {
			case recordingCommandStop:
				res, err := c.service.StopCapture(ctx, userId, sessionId, nil)
				if err != nil {
					reply(streamFrame{Type: "error", Message: err.Error()})
					return
				}
				reply(streamFrame{Type: "resumed", Session: res})
				return
			case recordingCommandCancel:
				_ = c.service.CancelCapture(ctx, userId, sessionId)
				reply(streamFrame{Type: "canceled"})
				return
			default:
				reply(streamFrame{Type: "error", Message: "unknown command"})
			}
		}
	}
}
