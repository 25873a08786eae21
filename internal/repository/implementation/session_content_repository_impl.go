package implementation

import (
	"context"

	"onechart-be/internal/entity"
	"onechart-be/internal/mapper"
	"onechart-be/internal/model"
	"onechart-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionNoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionNoteRepository(db *gorm.DB) contract.SessionNoteRepository {
	return &SessionNoteRepositoryImpl{db: db, mapper: mapper.NewSessionMapper()}
}

func (r *SessionNoteRepositoryImpl) UpsertMany(ctx context.Context, sessionId uuid.UUID, documents []entity.Document) error {
	if len(documents) == 0 {
		return nil
	}
	rows := make([]*model.SessionNote, 0, len(documents))
	for _, d := range documents {
		rows = append(rows, r.mapper.DocumentToModel(sessionId, d))
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "note_type", "content", "updated_at"}),
	}).Create(&rows).Error
}

func (r *SessionNoteRepositoryImpl) Delete(ctx context.Context, sessionId uuid.UUID, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionId, documentId).
		Delete(&model.SessionNote{}).Error
}

type SessionTranscriptRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionTranscriptRepository(db *gorm.DB) contract.SessionTranscriptRepository {
	return &SessionTranscriptRepositoryImpl{db: db}
}

func (r *SessionTranscriptRepositoryImpl) Upsert(ctx context.Context, sessionId uuid.UUID, transcript string) error {
	row := &model.SessionTranscript{Id: uuid.New(), SessionId: sessionId, Transcript: transcript}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"transcript", "updated_at"}),
	}).Create(row).Error
}

type SessionContextRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionContextRepository(db *gorm.DB) contract.SessionContextRepository {
	return &SessionContextRepositoryImpl{db: db}
}

func (r *SessionContextRepositoryImpl) Upsert(ctx context.Context, sessionId uuid.UUID, context string) error {
	row := &model.SessionContext{Id: uuid.New(), SessionId: sessionId, Context: context}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"context", "updated_at"}),
	}).Create(row).Error
}

type SessionTaskRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionTaskRepository(db *gorm.DB) contract.SessionTaskRepository {
	return &SessionTaskRepositoryImpl{db: db, mapper: mapper.NewSessionMapper()}
}

// ReplaceAll deletes and re-inserts inside one transaction so readers never see a half-replaced set.
func (r *SessionTaskRepositoryImpl) ReplaceAll(ctx context.Context, sessionId uuid.UUID, tasks []entity.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionId).Delete(&model.SessionTask{}).Error; err != nil {
			return err
		}
		rows := r.mapper.TasksToModels(sessionId, tasks)
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
