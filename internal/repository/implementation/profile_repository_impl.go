package implementation

import (
	"context"
	"errors"

	"onechart-be/internal/entity"
	"onechart-be/internal/mapper"
	"onechart-be/internal/model"
	"onechart-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProfileMapper
}

func NewProfileRepository(db *gorm.DB) contract.ProfileRepository {
	return &ProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewProfileMapper(),
	}
}

func (r *ProfileRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var m model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProfileRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Profile, error) {
	var models []*model.Profile
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	profiles := make([]*entity.Profile, len(models))
	for i, m := range models {
		profiles[i] = r.mapper.ToEntity(m)
	}
	return profiles, nil
}

func (r *ProfileRepositoryImpl) Upsert(ctx context.Context, profile *entity.Profile) error {
	m := r.mapper.ToModel(profile)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "email", "practice", "speciality", "phone_number",
			"practice_name", "practice_info", "auto_delete_days", "updated_at",
		}),
	}).Create(m).Error; err != nil {
		return err
	}
	*profile = *r.mapper.ToEntity(m)
	return nil
}
