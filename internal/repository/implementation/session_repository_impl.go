package implementation

import (
	"context"

	"onechart-be/internal/entity"
	"onechart-be/internal/mapper"
	"onechart-be/internal/model"
	"onechart-be/internal/repository/contract"
	"onechart-be/internal/repository/scope"
	"onechart-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Omit("Patient", "Notes", "Transcripts", "Contexts", "Tasks").Create(m).Error; err != nil {
		return err
	}
	session.Id = m.Id
	session.Date = m.CreatedAt
	return nil
}

func (r *SessionRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields contract.SessionFields) error {
	updates := map[string]interface{}{}
	if fields.Title != nil {
		updates["title"] = *fields.Title
	}
	if fields.Status != nil {
		updates["status"] = string(*fields.Status)
	}
	if fields.PatientName != nil {
		updates["patient_name"] = *fields.PatientName
	}
	if fields.PatientGender != nil {
		updates["patient_gender"] = *fields.PatientGender
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Session{}).Where("id = ?", id).Updates(updates).Error
}

func (r *SessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select("Notes", "Transcripts", "Contexts", "Tasks").
		Delete(&model.Session{Id: id}).Error
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var models []*model.Session
	query := specification.ApplyAll(r.db.WithContext(ctx).Scopes(scope.WithSessionRelations), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
