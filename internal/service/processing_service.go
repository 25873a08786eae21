package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"onechart-be/internal/constant"
	"onechart-be/internal/dto"
	"onechart-be/internal/entity"
	"onechart-be/internal/pkg/logger"
	"onechart-be/internal/repository/contract"
	"onechart-be/internal/repository/memory"
	"onechart-be/internal/repository/specification"
	"onechart-be/internal/repository/unitofwork"
	"onechart-be/internal/tracer"
	"onechart-be/pkg/events"
	"onechart-be/pkg/jobs"
	"onechart-be/pkg/scribe"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type IProcessingService interface {
	// Process creates the session synchronously and finishes it in a background job.
	Process(ctx context.Context, userId uuid.UUID, req *dto.ProcessSessionRequest, audio dto.AudioPayload) (*dto.SessionResponse, error)
	// Cancel aborts the session's processing job; the session ends up as a failed draft.
	Cancel(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	// RecoverInterrupted settles sessions left in processing by a previous process, as failed drafts.
	RecoverInterrupted(ctx context.Context) (int, error)
}

type processingService struct {
	records   *sessionRecords
	drafter   *documentDrafter
	tracker   *jobs.Tracker
	publisher events.Publisher
	logger    logger.ILogger
}

func NewProcessingService(
	uowFactory unitofwork.RepositoryFactory,
	store *memory.SessionListStore,
	templates *memory.TemplateRepository,
	gateway scribe.Gateway,
	tracker *jobs.Tracker,
	publisher events.Publisher,
	log logger.ILogger,
) IProcessingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &processingService{
		records: &sessionRecords{uowFactory: uowFactory, store: store},
		drafter: &documentDrafter{
			gateway:    gateway,
			templates:  templates,
			uowFactory: uowFactory,
			logger:     log,
		},
		tracker:   tracker,
		publisher: publisher,
		logger:    log,
	}
}

type pipelineInput struct {
	session     *entity.Session
	template    entity.Template
	patientName string
	audio       dto.AudioPayload
}

func (s *processingService) Process(ctx context.Context, userId uuid.UUID, req *dto.ProcessSessionRequest, audio dto.AudioPayload) (*dto.SessionResponse, error) {
	if len(audio.Data) == 0 {
		return nil, scribe.ErrNoAudio
	}
	// The view has to hold the full list before the placeholder goes on top of it.
	if err := s.records.hydrate(ctx, userId); err != nil {
		return nil, err
	}

	template := s.drafter.resolveTemplate(userId, req.TemplateId)
	patientName := strings.TrimSpace(req.PatientName)
	gender := strings.TrimSpace(req.PatientGender)
	if gender == "" {
		gender = entity.UnknownGender
	}
	displayName := patientName
	if displayName == "" {
		displayName = constant.PlaceholderPatientName
	}

	now := time.Now()
	patient := &entity.Patient{
		Id:        uuid.New(),
		UserId:    userId,
		FullName:  displayName,
		Gender:    gender,
		CreatedAt: now,
	}
	session := &entity.Session{
		Id:            uuid.New(),
		PatientId:     patient.Id,
		UserId:        userId,
		PatientName:   displayName,
		PatientGender: gender,
		Title:         displayName,
		Date:          now,
		TemplateId:    template.Id,
		TemplateName:  template.Name,
		Transcript:    constant.PlaceholderTranscript,
		Context:       req.Context,
		Status:        entity.SessionStatusProcessing,
		Documents:     []entity.Document{},
		Tasks:         []entity.Task{},
		Addendums:     []entity.Addendum{},
	}

	if err := s.createPlaceholder(ctx, patient, session); err != nil {
		return nil, err
	}
	s.records.store.InsertPlaceholder(session.Clone())

	input := pipelineInput{
		session:     session.Clone(),
		template:    template,
		patientName: patientName,
		audio:       audio,
	}
	_, err := s.tracker.Start(session.Id.String(), func(jobCtx context.Context) error {
		return s.run(jobCtx, input)
	}, func(jobCtx context.Context, err error) {
		s.settle(context.WithoutCancel(jobCtx), input.session, err)
	})
	if err != nil {
		// Fresh ids never collide; if they ever do the entry must not stay in processing.
		s.settle(context.WithoutCancel(ctx), input.session, err)
		return nil, err
	}

	s.logger.Info("ProcessingService", "Session processing started", map[string]interface{}{
		"session_id": session.Id.String(),
		"template":   template.Name,
	})
	return dto.NewSessionResponse(session), nil
}

func (s *processingService) createPlaceholder(ctx context.Context, patient *entity.Patient, session *entity.Session) error {
	uow := s.records.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.PatientRepository().Create(ctx, patient); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return uow.Commit()
}

func (s *processingService) run(ctx context.Context, in pipelineInput) error {
	ctx, span := tracer.Start(ctx, "session.process")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", in.session.Id.String()))

	transcript, err := s.drafter.gateway.Transcribe(ctx, in.audio.Data, in.audio.MimeType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transcription failed")
		return fmt.Errorf("transcribe: %w", err)
	}

	result := in.session.Clone()
	result.Transcript = transcript

	name := in.patientName
	if name == "" {
		name = s.inferTitle(ctx, result.Id, transcript)
	}
	result.PatientName = name
	result.Title = name

	content, err := s.drafter.draft(ctx, result, transcript, in.template.SystemPrompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "drafting failed")
		return fmt.Errorf("draft document: %w", err)
	}

	tasks := s.extractTasks(ctx, result.Id, content)

	// A cancel that lands after drafting still aborts; nothing has been written yet.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := result.Complete(); err != nil {
		return err
	}
	result.Documents = []entity.Document{{
		Id:        uuid.New(),
		Title:     in.template.Name,
		Type:      in.template.Name,
		Content:   content,
		CreatedAt: time.Now(),
	}}
	result.Tasks = tasks

	s.persist(context.WithoutCancel(ctx), result)
	s.records.store.ReplaceByID(result)
	return nil
}

func (s *processingService) inferTitle(ctx context.Context, sessionId uuid.UUID, transcript string) string {
	title, err := s.drafter.gateway.InferTitle(ctx, transcript)
	if err != nil || strings.TrimSpace(title) == "" {
		details := map[string]interface{}{"session_id": sessionId.String()}
		if err != nil {
			details["error"] = err.Error()
		}
		s.logger.Warn("ProcessingService", "Title inference failed, using fallback", details)
		return constant.FallbackSessionTitle
	}
	return strings.TrimSpace(title)
}

func (s *processingService) extractTasks(ctx context.Context, sessionId uuid.UUID, document string) []entity.Task {
	extracted, err := s.drafter.gateway.ExtractTasks(ctx, document)
	if err != nil {
		s.logger.Warn("ProcessingService", "Task extraction failed, continuing without tasks", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		return []entity.Task{}
	}
	return tasksFrom(sessionId, extracted)
}

// persist writes the pipeline result step by step. Each failure is logged and the rest still runs.
func (s *processingService) persist(ctx context.Context, result *entity.Session) {
	uow := s.records.uowFactory.NewUnitOfWork(ctx)
	sessionId := result.Id
	status := result.Status

	steps := []struct {
		name string
		fn   func() error
	}{
		{"session", func() error {
			return uow.SessionRepository().UpdateFields(ctx, sessionId, contract.SessionFields{
				Title:         &result.Title,
				Status:        &status,
				PatientName:   &result.PatientName,
				PatientGender: &result.PatientGender,
			})
		}},
		{"patient", func() error {
			if result.PatientId == uuid.Nil {
				return nil
			}
			return uow.PatientRepository().UpdateDetails(ctx, result.PatientId, &result.PatientName, &result.PatientGender)
		}},
		{"transcript", func() error {
			return uow.SessionTranscriptRepository().Upsert(ctx, sessionId, result.Transcript)
		}},
		{"context", func() error {
			return uow.SessionContextRepository().Upsert(ctx, sessionId, result.Context)
		}},
		{"document", func() error {
			return uow.SessionNoteRepository().UpsertMany(ctx, sessionId, result.Documents)
		}},
		{"tasks", func() error {
			return uow.SessionTaskRepository().ReplaceAll(ctx, sessionId, result.Tasks)
		}},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			s.logger.Error("ProcessingService", "Failed to persist "+step.name, map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
	}
}

// settle runs once per job. A failed job leaves the session as a draft carrying the failure text.
func (s *processingService) settle(ctx context.Context, session *entity.Session, jobErr error) {
	details := map[string]interface{}{
		"session_id": session.Id.String(),
		"user_id":    session.UserId.String(),
	}

	if jobErr == nil {
		s.logger.Info("ProcessingService", "Session processing completed", details)
		s.publish(ctx, constant.EventSessionCompleted, details)
		return
	}

	details["error"] = jobErr.Error()
	details["canceled"] = errors.Is(jobErr, context.Canceled)
	s.logger.Error("ProcessingService", "Session processing failed", details)

	s.markFailed(ctx, session.UserId, session.Id)
	s.publish(ctx, constant.EventSessionProcessingFailed, details)
}

// markFailed moves the view entry and the stored row to draft with the failure transcript.
func (s *processingService) markFailed(ctx context.Context, userId, sessionId uuid.UUID) {
	s.records.store.Update(userId, sessionId, func(entry *entity.Session) {
		if err := entry.MarkFailed(constant.ProcessingFailedText); err != nil {
			s.logger.Warn("ProcessingService", "View entry not in processing", map[string]interface{}{
				"session_id": sessionId.String(),
				"status":     string(entry.Status),
			})
		}
	})

	uow := s.records.uowFactory.NewUnitOfWork(ctx)
	draft := entity.SessionStatusDraft
	if err := uow.SessionRepository().UpdateFields(ctx, sessionId, contract.SessionFields{Status: &draft}); err != nil {
		s.logger.Error("ProcessingService", "Failed to persist draft status", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
	if err := uow.SessionTranscriptRepository().Upsert(ctx, sessionId, constant.ProcessingFailedText); err != nil {
		s.logger.Error("ProcessingService", "Failed to persist failure transcript", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
}

func (s *processingService) RecoverInterrupted(ctx context.Context) (int, error) {
	uow := s.records.uowFactory.NewUnitOfWork(ctx)
	stranded, err := uow.SessionRepository().FindAll(ctx, specification.ByStatus{Status: entity.SessionStatusProcessing})
	if err != nil {
		return 0, fmt.Errorf("find interrupted sessions: %w", err)
	}

	recovered := 0
	for _, session := range stranded {
		err := s.tracker.Run(ctx, session.Id.String(), func(ctx context.Context) error {
			s.markFailed(ctx, session.UserId, session.Id)
			return nil
		})
		if err != nil {
			continue
		}
		recovered++
	}
	if recovered > 0 {
		s.logger.Warn("ProcessingService", "Interrupted sessions settled as drafts", map[string]interface{}{"count": recovered})
	}
	return recovered, nil
}

func (s *processingService) Cancel(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	session, err := s.records.get(ctx, userId, sessionId)
	if err != nil {
		return err
	}
	if session.Status != entity.SessionStatusProcessing {
		return ErrSessionNotProcessing
	}
	if err := s.tracker.Cancel(sessionId.String()); err != nil {
		if errors.Is(err, jobs.ErrNoJob) {
			return ErrSessionNotProcessing
		}
		return err
	}
	s.logger.Info("ProcessingService", "Session processing canceled", map[string]interface{}{
		"session_id": sessionId.String(),
	})
	return nil
}

func (s *processingService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("ProcessingService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
