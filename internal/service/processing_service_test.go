package service

import (
	"context"
	"testing"
	"time"

	"onechart-be/internal/constant"
	"onechart-be/internal/dto"
	"onechart-be/internal/entity"
	"onechart-be/internal/pkg/logger"
	"onechart-be/internal/repository/memory"
	"onechart-be/pkg/jobs"
	"onechart-be/pkg/scribe"
	"onechart-be/pkg/templates"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	db        *fakeDB
	store     *memory.SessionListStore
	templates *memory.TemplateRepository
	gateway   *fakeGateway
	tracker   *jobs.Tracker
	events    *recordingPublisher
	userId    uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		db:        newFakeDB(),
		store:     memory.NewSessionListStore(time.Hour),
		templates: memory.NewTemplateRepository(templates.Defaults()),
		gateway: &fakeGateway{
			transcript: "Patient reports headaches. BP 150/95.",
			title:      "Headache Follow-up",
			document:   "## Assessment: Hypertension",
			tasks: []scribe.ExtractedTask{
				{Content: "Order basic metabolic panel", Tag: entity.TaskTagLabImaging},
				{Content: "Refill lisinopril", Tag: entity.TaskTagPrescription},
			},
			reply: "Consider a renal panel.",
		},
		tracker: jobs.NewTracker(context.Background()),
		events:  &recordingPublisher{},
		userId:  uuid.New(),
	}
	t.Cleanup(func() { _ = h.tracker.Shutdown(context.Background()) })
	return h
}

func (h *harness) processing() IProcessingService {
	return NewProcessingService(h.db, h.store, h.templates, h.gateway, h.tracker, h.events, logger.NewNopLogger())
}

func (h *harness) process(t *testing.T, req *dto.ProcessSessionRequest) *entity.Session {
	t.Helper()
	res, err := h.processing().Process(context.Background(), h.userId, req, dto.AudioPayload{MimeType: "audio/webm", Data: []byte("audio")})
	require.NoError(t, err)
	_ = h.tracker.Wait(res.Id.String())

	session, ok := h.store.Get(h.userId, res.Id)
	require.True(t, ok)
	return session
}

func TestProcessCompletesSession(t *testing.T) {
	h := newHarness(t)
	h.db.profiles[h.userId] = &entity.Profile{Id: h.userId, PracticeInfo: "Riverside Clinic, Dr. Shaw"}

	session := h.process(t, &dto.ProcessSessionRequest{PatientGender: "Female", TemplateId: "t1", Context: "BP check"})

	assert.Equal(t, entity.SessionStatusCompleted, session.Status)
	assert.Equal(t, "Headache Follow-up", session.PatientName)
	assert.Equal(t, "Headache Follow-up", session.Title)
	assert.Equal(t, h.gateway.transcript, session.Transcript)
	assert.Equal(t, "BP check", session.Context)
	require.Len(t, session.Documents, 1)
	assert.Equal(t, "SOAP Note", session.Documents[0].Title)
	assert.Equal(t, "SOAP Note", session.Documents[0].Type)
	assert.Equal(t, h.gateway.document, session.Documents[0].Content)

	require.Len(t, session.Tasks, 2)
	assert.Equal(t, entity.TaskID(session.Id, 0), session.Tasks[0].Id)
	assert.Equal(t, entity.TaskID(session.Id, 1), session.Tasks[1].Id)
	assert.Equal(t, entity.TaskStatusPending, session.Tasks[0].Status)

	draft := h.gateway.lastDraft()
	assert.Equal(t, "Headache Follow-up (Female)", draft.PatientInfo)
	assert.Equal(t, "Riverside Clinic, Dr. Shaw", draft.PracticeInfo)
	assert.Equal(t, "BP check", draft.Context)

	stored := h.db.session(session.Id)
	require.NotNil(t, stored)
	assert.Equal(t, entity.SessionStatusCompleted, stored.Status)
	assert.Equal(t, h.gateway.transcript, stored.Transcript)
	assert.Len(t, stored.Documents, 1)
	assert.Len(t, stored.Tasks, 2)
	assert.Equal(t, "Headache Follow-up", h.db.patients[session.PatientId].FullName)

	assert.Equal(t, []string{constant.EventSessionCompleted}, h.events.types())
}

func TestProcessReturnsPlaceholderWhileRunning(t *testing.T) {
	h := newHarness(t)
	h.gateway.block = true
	svc := h.processing()

	res, err := svc.Process(context.Background(), h.userId, &dto.ProcessSessionRequest{TemplateId: "missing"}, dto.AudioPayload{Data: []byte("a")})
	require.NoError(t, err)

	assert.Equal(t, string(entity.SessionStatusProcessing), res.Status)
	assert.Equal(t, constant.PlaceholderPatientName, res.PatientName)
	assert.Equal(t, constant.PlaceholderTranscript, res.Transcript)
	assert.Equal(t, entity.UnknownGender, res.PatientGender)
	assert.Equal(t, "t1", res.TemplateId)

	list := h.store.List(h.userId)
	require.NotEmpty(t, list)
	assert.Equal(t, res.Id, list[0].Id)
	assert.True(t, h.tracker.Running(res.Id.String()))

	require.NoError(t, svc.Cancel(context.Background(), h.userId, res.Id))
	_ = h.tracker.Wait(res.Id.String())

	session, ok := h.store.Get(h.userId, res.Id)
	require.True(t, ok)
	assert.Equal(t, entity.SessionStatusDraft, session.Status)
	assert.Equal(t, constant.ProcessingFailedText, session.Transcript)
	assert.Equal(t, entity.SessionStatusDraft, h.db.session(res.Id).Status)
	assert.Equal(t, []string{constant.EventSessionProcessingFailed}, h.events.types())
}

func TestProcessTerminalFailuresLeaveDraft(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *fakeGateway)
	}{
		{"transcription", func(g *fakeGateway) { g.transcribeErr = assert.AnError }},
		{"drafting", func(g *fakeGateway) { g.draftErr = assert.AnError }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h.gateway)

			session := h.process(t, &dto.ProcessSessionRequest{PatientName: "Jane Roe", TemplateId: "t2"})

			assert.Equal(t, entity.SessionStatusDraft, session.Status)
			assert.Equal(t, constant.ProcessingFailedText, session.Transcript)
			assert.Empty(t, session.Documents)

			stored := h.db.session(session.Id)
			assert.Equal(t, entity.SessionStatusDraft, stored.Status)
			assert.Equal(t, constant.ProcessingFailedText, stored.Transcript)
		})
	}
}

func TestProcessTitleFallback(t *testing.T) {
	h := newHarness(t)
	h.gateway.titleErr = assert.AnError

	session := h.process(t, &dto.ProcessSessionRequest{PatientGender: "Male"})

	assert.Equal(t, constant.FallbackSessionTitle, session.PatientName)
	assert.Equal(t, entity.SessionStatusCompleted, session.Status)
	assert.Equal(t, constant.FallbackSessionTitle+" (Male)", h.gateway.lastDraft().PatientInfo)
}

func TestProcessKeepsSuppliedName(t *testing.T) {
	h := newHarness(t)
	h.gateway.title = "should not be used"

	session := h.process(t, &dto.ProcessSessionRequest{PatientName: "  John Doe ", PatientGender: "Male"})

	assert.Equal(t, "John Doe", session.PatientName)
	assert.Equal(t, "John Doe (Male)", h.gateway.lastDraft().PatientInfo)
}

func TestProcessTaskExtractionFailureStillCompletes(t *testing.T) {
	tests := []struct {
		name  string
		tasks []scribe.ExtractedTask
		err   error
	}{
		{"error", nil, assert.AnError},
		{"malformed", nil, scribe.ErrMalformedTasks},
		{"only blank entries", []scribe.ExtractedTask{{Content: "  ", Tag: "Admin"}, {Tag: "Referral"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.gateway.tasks = tt.tasks
			h.gateway.tasksErr = tt.err

			session := h.process(t, &dto.ProcessSessionRequest{PatientGender: "Female", TemplateId: "t1"})

			assert.Equal(t, entity.SessionStatusCompleted, session.Status)
			assert.NotNil(t, session.Tasks)
			assert.Empty(t, session.Tasks)
			require.Len(t, session.Documents, 1)
		})
	}
}

func TestProcessPersistenceFailuresAreSwallowed(t *testing.T) {
	h := newHarness(t)
	svc := h.processing()

	res, err := svc.Process(context.Background(), h.userId, &dto.ProcessSessionRequest{PatientName: "A"}, dto.AudioPayload{Data: []byte("a")})
	require.NoError(t, err)
	h.db.mu.Lock()
	h.db.failUpdates = true
	h.db.mu.Unlock()
	_ = h.tracker.Wait(res.Id.String())

	session, ok := h.store.Get(h.userId, res.Id)
	require.True(t, ok)
	assert.Equal(t, entity.SessionStatusCompleted, session.Status)
	assert.Len(t, session.Documents, 1)
}

func TestProcessPlaceholderFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.db.failCreate = true

	res, err := h.processing().Process(context.Background(), h.userId, &dto.ProcessSessionRequest{}, dto.AudioPayload{Data: []byte("a")})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Empty(t, h.store.List(h.userId))
	assert.Empty(t, h.events.types())
}

func TestProcessRejectsEmptyAudio(t *testing.T) {
	h := newHarness(t)
	_, err := h.processing().Process(context.Background(), h.userId, &dto.ProcessSessionRequest{}, dto.AudioPayload{})
	assert.ErrorIs(t, err, scribe.ErrNoAudio)
}

func TestProcessProfileFailureDraftsWithoutPracticeInfo(t *testing.T) {
	h := newHarness(t)
	h.db.failProfile = true

	session := h.process(t, &dto.ProcessSessionRequest{PatientName: "B"})

	assert.Equal(t, entity.SessionStatusCompleted, session.Status)
	assert.Empty(t, h.gateway.lastDraft().PracticeInfo)
}

func TestCancelWithoutJob(t *testing.T) {
	h := newHarness(t)
	session := h.process(t, &dto.ProcessSessionRequest{PatientName: "C"})

	err := h.processing().Cancel(context.Background(), h.userId, session.Id)
	assert.ErrorIs(t, err, ErrSessionNotProcessing)

	err = h.processing().Cancel(context.Background(), uuid.New(), session.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestProcessStatusNeverStaysProcessing(t *testing.T) {
	h := newHarness(t)
	svc := h.processing()

	ids := make([]uuid.UUID, 0)
	for i := 0; i < 5; i++ {
		if i%2 == 1 {
			h.gateway.draftErr = assert.AnError
		} else {
			h.gateway.draftErr = nil
		}
		res, err := svc.Process(context.Background(), h.userId, &dto.ProcessSessionRequest{PatientName: "P"}, dto.AudioPayload{Data: []byte("a")})
		require.NoError(t, err)
		_ = h.tracker.Wait(res.Id.String())
		ids = append(ids, res.Id)
	}

	for _, id := range ids {
		session, ok := h.store.Get(h.userId, id)
		require.True(t, ok)
		assert.NotEqual(t, entity.SessionStatusProcessing, session.Status)
		assert.True(t, session.Status.Valid())
	}
	assert.Len(t, h.store.List(h.userId), 5)
}

func TestProcessPanicSettlesToDraft(t *testing.T) {
	for _, step := range []string{"draft", "tasks"} {
		t.Run(step, func(t *testing.T) {
			h := newHarness(t)
			h.gateway.panicIn = step

			session := h.process(t, &dto.ProcessSessionRequest{PatientName: "P"})

			assert.Equal(t, entity.SessionStatusDraft, session.Status)
			assert.Equal(t, constant.ProcessingFailedText, session.Transcript)
			stored := h.db.session(session.Id)
			require.NotNil(t, stored)
			assert.Equal(t, entity.SessionStatusDraft, stored.Status)
			assert.Equal(t, constant.ProcessingFailedText, stored.Transcript)
			assert.Equal(t, []string{constant.EventSessionProcessingFailed}, h.events.types())
		})
	}
}

func TestRecoverInterruptedSettlesStrandedSessions(t *testing.T) {
	h := newHarness(t)
	stranded := &entity.Session{Id: uuid.New(), UserId: h.userId, Date: time.Now(), Status: entity.SessionStatusProcessing}
	done := &entity.Session{Id: uuid.New(), UserId: h.userId, Date: time.Now(), Status: entity.SessionStatusCompleted, Transcript: "kept"}
	h.db.put(stranded)
	h.db.put(done)
	h.store.Hydrate(h.userId, []*entity.Session{stranded, done})

	n, err := h.processing().RecoverInterrupted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored := h.db.session(stranded.Id)
	assert.Equal(t, entity.SessionStatusDraft, stored.Status)
	assert.Equal(t, constant.ProcessingFailedText, stored.Transcript)
	view, _ := h.store.Get(h.userId, stranded.Id)
	assert.Equal(t, entity.SessionStatusDraft, view.Status)
	assert.Equal(t, "kept", h.db.session(done.Id).Transcript)
}
