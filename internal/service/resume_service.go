package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"onechart-be/internal/constant"
	"onechart-be/internal/dto"
	"onechart-be/internal/entity"
	"onechart-be/internal/pkg/logger"
	"onechart-be/internal/repository/contract"
	"onechart-be/internal/repository/memory"
	"onechart-be/internal/repository/unitofwork"
	"onechart-be/internal/tracer"
	"onechart-be/pkg/capture"
	"onechart-be/pkg/events"
	"onechart-be/pkg/jobs"
	"onechart-be/pkg/scribe"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type IResumeService interface {
	StartCapture(ctx context.Context, userId, sessionId uuid.UUID, req *dto.StartRecordingRequest) error
	AppendChunk(ctx context.Context, userId, sessionId uuid.UUID, chunk []byte) error
	// CancelCapture drops the recorded audio. Session state is not touched.
	CancelCapture(ctx context.Context, userId, sessionId uuid.UUID) error
	// StopCapture closes the capture and resumes the session with what was recorded.
	StopCapture(ctx context.Context, userId, sessionId uuid.UUID, req *dto.ResumeRequest) (*dto.SessionResponse, error)
	Resume(ctx context.Context, userId, sessionId uuid.UUID, req *dto.ResumeRequest, audio dto.AudioPayload) (*dto.SessionResponse, error)
}

type resumeService struct {
	records   *sessionRecords
	drafter   *documentDrafter
	recorder  *capture.Recorder
	tracker   *jobs.Tracker
	publisher events.Publisher
	logger    logger.ILogger
}

func NewResumeService(
	uowFactory unitofwork.RepositoryFactory,
	store *memory.SessionListStore,
	templates *memory.TemplateRepository,
	gateway scribe.Gateway,
	recorder *capture.Recorder,
	tracker *jobs.Tracker,
	publisher events.Publisher,
	log logger.ILogger,
) IResumeService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &resumeService{
		records: &sessionRecords{uowFactory: uowFactory, store: store},
		drafter: &documentDrafter{
			gateway:    gateway,
			templates:  templates,
			uowFactory: uowFactory,
			logger:     log,
		},
		recorder:  recorder,
		tracker:   tracker,
		publisher: publisher,
		logger:    log,
	}
}

func (s *resumeService) resumable(ctx context.Context, userId, sessionId uuid.UUID) (*entity.Session, error) {
	session, err := s.records.get(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if session.Status != entity.SessionStatusCompleted {
		return nil, ErrSessionNotResumable
	}
	return session, nil
}

func (s *resumeService) StartCapture(ctx context.Context, userId, sessionId uuid.UUID, req *dto.StartRecordingRequest) error {
	if _, err := s.resumable(ctx, userId, sessionId); err != nil {
		return err
	}
	if s.tracker.Running(sessionId.String()) {
		return ErrSessionBusy
	}
	mimeType := ""
	if req != nil {
		mimeType = req.MimeType
	}
	return s.recorder.Start(sessionId.String(), mimeType)
}

func (s *resumeService) AppendChunk(ctx context.Context, userId, sessionId uuid.UUID, chunk []byte) error {
	if _, err := s.records.get(ctx, userId, sessionId); err != nil {
		return err
	}
	return s.recorder.Append(sessionId.String(), chunk)
}

func (s *resumeService) CancelCapture(ctx context.Context, userId, sessionId uuid.UUID) error {
	if _, err := s.records.get(ctx, userId, sessionId); err != nil {
		return err
	}
	return s.recorder.Cancel(sessionId.String())
}

func (s *resumeService) StopCapture(ctx context.Context, userId, sessionId uuid.UUID, req *dto.ResumeRequest) (*dto.SessionResponse, error) {
	if _, err := s.records.get(ctx, userId, sessionId); err != nil {
		return nil, err
	}
	payload, err := s.recorder.Stop(sessionId.String())
	if err != nil {
		return nil, err
	}
	return s.run(ctx, userId, sessionId, req, dto.AudioPayload{MimeType: payload.MimeType, Data: payload.Data})
}

// Resume augments the session with a whole uploaded recording. It is refused while a live capture is open.
func (s *resumeService) Resume(ctx context.Context, userId, sessionId uuid.UUID, req *dto.ResumeRequest, audio dto.AudioPayload) (*dto.SessionResponse, error) {
	if _, err := s.records.get(ctx, userId, sessionId); err != nil {
		return nil, err
	}
	if s.recorder.Active(sessionId.String()) {
		return nil, capture.ErrCaptureActive
	}
	return s.run(ctx, userId, sessionId, req, audio)
}

func (s *resumeService) run(ctx context.Context, userId, sessionId uuid.UUID, req *dto.ResumeRequest, audio dto.AudioPayload) (*dto.SessionResponse, error) {
	if len(audio.Data) == 0 {
		return nil, scribe.ErrNoAudio
	}
	if s.tracker.Running(sessionId.String()) {
		return nil, ErrSessionBusy
	}
	if _, err := s.resumable(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	var documentId *uuid.UUID
	if req != nil {
		documentId = req.DocumentId
	}

	var result *entity.Session
	err := s.tracker.Run(ctx, sessionId.String(), func(jobCtx context.Context) error {
		// Re-read under the key so edits that finished meanwhile are the starting point.
		session, err := s.resumable(jobCtx, userId, sessionId)
		if err != nil {
			return err
		}
		if documentId != nil {
			if _, ok := session.FindDocument(*documentId); !ok {
				return ErrDocumentNotFound
			}
		}
		result, err = s.resume(jobCtx, session, documentId, audio)
		return err
	})
	if err != nil {
		if errors.Is(err, jobs.ErrJobRunning) {
			return nil, ErrSessionBusy
		}
		return nil, err
	}
	return dto.NewSessionResponse(result), nil
}

func (s *resumeService) resume(ctx context.Context, original *entity.Session, documentId *uuid.UUID, audio dto.AudioPayload) (*entity.Session, error) {
	ctx, span := tracer.Start(ctx, "session.resume")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", original.Id.String()))

	details := map[string]interface{}{
		"session_id": original.Id.String(),
		"user_id":    original.UserId.String(),
	}

	s.setStatus(ctx, original, entity.SessionStatusProcessing)

	result, err := s.augment(ctx, original, documentId, audio)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resume failed")
		// Only the status is restored; transcript and documents were never touched.
		s.setStatus(context.WithoutCancel(ctx), original, entity.SessionStatusCompleted)

		details["error"] = err.Error()
		s.logger.Error("ResumeService", "Resume failed, session restored", details)
		s.publish(context.WithoutCancel(ctx), constant.EventSessionResumeFailed, details)
		return nil, fmt.Errorf("%w: %v", ErrResumeFailed, err)
	}

	s.persist(context.WithoutCancel(ctx), result, documentId)
	s.records.store.ReplaceByID(result)

	s.logger.Info("ResumeService", "Session resumed", details)
	s.publish(context.WithoutCancel(ctx), constant.EventSessionResumed, details)
	return result, nil
}

// augment computes the resumed session without touching the view or the store.
func (s *resumeService) augment(ctx context.Context, original *entity.Session, documentId *uuid.UUID, audio dto.AudioPayload) (*entity.Session, error) {
	segment, err := s.drafter.gateway.Transcribe(ctx, audio.Data, audio.MimeType)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	result := original.Clone()
	result.Transcript = original.Transcript + constant.ResumeDelimiter + segment

	template := s.drafter.resolveTemplate(original.UserId, original.TemplateId)
	content, err := s.drafter.draft(ctx, result, result.Transcript, template.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("draft document: %w", err)
	}

	extracted, err := s.drafter.gateway.ExtractTasks(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("extract tasks: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := 0
	if documentId != nil {
		index, _ = result.FindDocument(*documentId)
	}
	if len(result.Documents) == 0 {
		result.Documents = append(result.Documents, entity.Document{
			Id:        uuid.New(),
			Title:     template.Name,
			Type:      template.Name,
			CreatedAt: time.Now(),
		})
		index = 0
	}
	result.Documents[index].Content = content
	result.Tasks = tasksFrom(result.Id, extracted)
	result.Status = entity.SessionStatusCompleted
	return result, nil
}

func (s *resumeService) setStatus(ctx context.Context, session *entity.Session, status entity.SessionStatus) {
	s.records.store.Update(session.UserId, session.Id, func(entry *entity.Session) {
		if next, err := entry.Status.TransitionTo(status); err == nil {
			entry.Status = next
		}
	})

	uow := s.records.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().UpdateFields(ctx, session.Id, contract.SessionFields{Status: &status}); err != nil {
		s.logger.Error("ResumeService", "Failed to persist status", map[string]interface{}{
			"session_id": session.Id.String(),
			"status":     string(status),
			"error":      err.Error(),
		})
	}
}

func (s *resumeService) persist(ctx context.Context, result *entity.Session, documentId *uuid.UUID) {
	uow := s.records.uowFactory.NewUnitOfWork(ctx)
	log := func(step string, err error) {
		if err != nil {
			s.logger.Error("ResumeService", "Failed to persist "+step, map[string]interface{}{
				"session_id": result.Id.String(),
				"error":      err.Error(),
			})
		}
	}

	index := 0
	if documentId != nil {
		index, _ = result.FindDocument(*documentId)
	}

	log("transcript", uow.SessionTranscriptRepository().Upsert(ctx, result.Id, result.Transcript))
	log("document", uow.SessionNoteRepository().UpsertMany(ctx, result.Id, result.Documents[index:index+1]))
	log("tasks", uow.SessionTaskRepository().ReplaceAll(ctx, result.Id, result.Tasks))

	status := result.Status
	log("status", uow.SessionRepository().UpdateFields(ctx, result.Id, contract.SessionFields{Status: &status}))
}

func (s *resumeService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("ResumeService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
