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
	"onechart-be/internal/repository/unitofwork"
	"onechart-be/pkg/jobs"
	"onechart-be/pkg/scribe"

	"github.com/google/uuid"
)

type ISessionService interface {
	List(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error)

	RegenerateDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID, documentId uuid.UUID) (*dto.SessionResponse, error)
	CreateDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.CreateDocumentRequest) (*dto.SessionResponse, error)
	AddDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.AddDocumentRequest) (*dto.SessionResponse, error)
	SaveDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID, documentId uuid.UUID, req *dto.SaveDocumentRequest) (*dto.SessionResponse, error)
	DeleteDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID, documentId uuid.UUID) (*dto.SessionResponse, error)

	Chat(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type sessionService struct {
	records *sessionRecords
	drafter *documentDrafter
	tracker *jobs.Tracker
	logger  logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	store *memory.SessionListStore,
	templates *memory.TemplateRepository,
	gateway scribe.Gateway,
	tracker *jobs.Tracker,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		records: &sessionRecords{uowFactory: uowFactory, store: store},
		drafter: &documentDrafter{
			gateway:    gateway,
			templates:  templates,
			uowFactory: uowFactory,
			logger:     log,
		},
		tracker: tracker,
		logger:  log,
	}
}

func (c *sessionService) List(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error) {
	sessions, err := c.records.list(ctx, userId)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponses(sessions), nil
}

func (c *sessionService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error) {
	session, err := c.records.get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(session), nil
}

// Delete aborts any job still running for the session before removing it.
func (c *sessionService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if _, err := c.records.get(ctx, userId, id); err != nil {
		return err
	}

	if err := c.tracker.Cancel(id.String()); err == nil {
		_ = c.tracker.Wait(id.String())
	}

	return c.records.exclusive(ctx, c.tracker, userId, id, func(ctx context.Context, session *entity.Session) error {
		uow := c.records.uowFactory.NewUnitOfWork(ctx)
		if err := uow.SessionRepository().Delete(ctx, id); err != nil {
			return err
		}
		c.records.store.RemoveByID(userId, id)
		return nil
	})
}

func (c *sessionService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error) {
	var result *entity.Session
	err := c.records.exclusive(ctx, c.tracker, userId, id, func(ctx context.Context, session *entity.Session) error {
		var err error
		result, err = c.update(ctx, session, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(result), nil
}

func (c *sessionService) update(ctx context.Context, session *entity.Session, req *dto.UpdateSessionRequest) (*entity.Session, error) {
	id := session.Id
	fields := contract.SessionFields{}
	var patientName, patientGender *string

	if req.PatientName != nil {
		name := strings.TrimSpace(*req.PatientName)
		if name != session.PatientName {
			patientName = &name
			fields.PatientName = &name
		}
	}
	if req.PatientGender != nil {
		gender := strings.TrimSpace(*req.PatientGender)
		if gender == "" {
			gender = entity.UnknownGender
		}
		if gender != session.PatientGender {
			patientGender = &gender
			fields.PatientGender = &gender
		}
	}
	if req.Status != nil {
		next, err := session.Status.ManualTransitionTo(entity.SessionStatus(*req.Status))
		if err != nil {
			return nil, err
		}
		if next != session.Status {
			fields.Status = &next
		}
	}

	uow := c.records.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if fields != (contract.SessionFields{}) {
		if err := uow.SessionRepository().UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	if (patientName != nil || patientGender != nil) && session.PatientId != uuid.Nil {
		if err := uow.PatientRepository().UpdateDetails(ctx, session.PatientId, patientName, patientGender); err != nil {
			return nil, err
		}
	}
	if req.Transcript != nil {
		if err := uow.SessionTranscriptRepository().Upsert(ctx, id, *req.Transcript); err != nil {
			return nil, err
		}
	}
	if req.Context != nil {
		if err := uow.SessionContextRepository().Upsert(ctx, id, *req.Context); err != nil {
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.records.mutate(session, func(entry *entity.Session) {
		if patientName != nil {
			entry.PatientName = *patientName
		}
		if patientGender != nil {
			entry.PatientGender = *patientGender
		}
		if fields.Status != nil {
			entry.Status = *fields.Status
		}
		if req.Transcript != nil {
			entry.Transcript = *req.Transcript
		}
		if req.Context != nil {
			entry.Context = *req.Context
		}
	})

	if req.Regenerate && patientGender != nil && len(session.Documents) > 0 {
		documentId := session.Documents[0].Id
		if req.DocumentId != nil {
			documentId = *req.DocumentId
		}
		return c.regenerate(ctx, session, documentId)
	}
	return session, nil
}

// RegenerateDocument redrafts one document from the stored transcript, context and template.
// Transcript, context, tasks and status stay as they are.
func (c *sessionService) RegenerateDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID, documentId uuid.UUID) (*dto.SessionResponse, error) {
	var result *entity.Session
	err := c.records.exclusive(ctx, c.tracker, userId, id, func(ctx context.Context, session *entity.Session) error {
		var err error
		result, err = c.regenerate(ctx, session, documentId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(result), nil
}

func (c *sessionService) regenerate(ctx context.Context, session *entity.Session, documentId uuid.UUID) (*entity.Session, error) {
	index, ok := session.FindDocument(documentId)
	if !ok {
		return nil, ErrDocumentNotFound
	}

	template := c.drafter.resolveTemplate(session.UserId, session.TemplateId)
	content, err := c.drafter.draft(ctx, session, session.Transcript, template.SystemPrompt)
	if err != nil {
		c.logger.Error("SessionService", "Document regeneration failed", map[string]interface{}{
			"session_id":  session.Id.String(),
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrRegenerationFailed, err)
	}

	document := session.Documents[index]
	document.Content = content
	return c.saveDocument(ctx, session, document)
}

func (c *sessionService) CreateDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.CreateDocumentRequest) (*dto.SessionResponse, error) {
	var result *entity.Session
	err := c.records.exclusive(ctx, c.tracker, userId, id, func(ctx context.Context, session *entity.Session) error {
		docType := strings.TrimSpace(req.Type)
		content, err := c.drafter.draft(ctx, session, session.Transcript, fmt.Sprintf(constant.CreateDocumentInstruction, docType))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRegenerationFailed, err)
		}

		result, err = c.saveDocument(ctx, session, entity.Document{
			Id:        uuid.New(),
			Title:     docType,
			Type:      docType,
			Content:   content,
			CreatedAt: time.Now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(result), nil
}

func (c *sessionService) AddDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.AddDocumentRequest) (*dto.SessionResponse, error) {
	document := entity.Document{
		Id:        uuid.New(),
		Title:     strings.TrimSpace(req.Title),
		Type:      strings.TrimSpace(req.Type),
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if document.Title == "" {
		document.Title = constant.ChatDocumentTitle
	}
	if document.Type == "" {
		document.Type = constant.ChatDocumentType
	}

	var result *entity.Session
	err := c.records.exclusive(ctx, c.tracker, userId, id, func(ctx context.Context, session *entity.Session) error {
		var err error
		result, err = c.saveDocument(ctx, session, document)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(result), nil
}

func (c *sessionService) SaveDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID, documentId uuid.UUID, req *dto.SaveDocumentRequest) (*dto.SessionResponse, error) {
	var result *entity.Session
	err := c.records.exclusive(ctx, c.tracker, userId, id, func(ctx context.Context, session *entity.Session) error {
		index, ok := session.FindDocument(documentId)
		if !ok {
			return ErrDocumentNotFound
		}
		document := session.Documents[index]
		document.Content = req.Content

		var err error
		result, err = c.saveDocument(ctx, session, document)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(result), nil
}

func (c *sessionService) DeleteDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID, documentId uuid.UUID) (*dto.SessionResponse, error) {
	var result *entity.Session
	err := c.records.exclusive(ctx, c.tracker, userId, id, func(ctx context.Context, session *entity.Session) error {
		if _, ok := session.FindDocument(documentId); !ok {
			return ErrDocumentNotFound
		}

		uow := c.records.uowFactory.NewUnitOfWork(ctx)
		if err := uow.SessionNoteRepository().Delete(ctx, id, documentId); err != nil {
			return err
		}
		c.records.mutate(session, func(entry *entity.Session) {
			if i, ok := entry.FindDocument(documentId); ok {
				entry.Documents = append(entry.Documents[:i], entry.Documents[i+1:]...)
			}
		})
		result = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(result), nil
}

// saveDocument writes one document and puts it into the view entry, appending when it is new.
func (c *sessionService) saveDocument(ctx context.Context, session *entity.Session, document entity.Document) (*entity.Session, error) {
	uow := c.records.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionNoteRepository().UpsertMany(ctx, session.Id, []entity.Document{document}); err != nil {
		return nil, err
	}
	c.records.mutate(session, func(entry *entity.Session) {
		if i, ok := entry.FindDocument(document.Id); ok {
			entry.Documents[i] = document
			return
		}
		entry.Documents = append(entry.Documents, document)
	})
	return session, nil
}

// Chat never fails on the assistant side; an unreachable model yields a fixed reply.
func (c *sessionService) Chat(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	session, err := c.records.get(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	var note string
	if req.DocumentId != nil {
		index, ok := session.FindDocument(*req.DocumentId)
		if !ok {
			return nil, ErrDocumentNotFound
		}
		note = session.Documents[index].Content
	} else if primary, ok := session.PrimaryDocument(); ok {
		note = primary.Content
	}

	history := make([]scribe.ChatTurn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, scribe.ChatTurn{Role: turn.Role, Content: turn.Content})
	}

	reply, err := c.drafter.gateway.Chat(ctx, history, note, session.Transcript)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Warn("SessionService", "Assistant unavailable", map[string]interface{}{
			"session_id": id.String(),
			"error":      err.Error(),
		})
		reply = constant.OpalUnavailableReply
	}
	return &dto.ChatResponse{Reply: reply}, nil
}
