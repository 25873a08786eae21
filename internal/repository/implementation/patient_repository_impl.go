package implementation

import (
	"context"

	"onechart-be/internal/entity"
	"onechart-be/internal/mapper"
	"onechart-be/internal/model"
	"onechart-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewPatientRepository(db *gorm.DB) contract.PatientRepository {
	return &PatientRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *PatientRepositoryImpl) Create(ctx context.Context, patient *entity.Patient) error {
	m := r.mapper.PatientToModel(patient)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*patient = *r.mapper.PatientToEntity(m)
	return nil
}

func (r *PatientRepositoryImpl) UpdateDetails(ctx context.Context, id uuid.UUID, fullName, gender *string) error {
	updates := map[string]interface{}{}
	if fullName != nil {
		updates["full_name"] = *fullName
	}
	if gender != nil {
		updates["gender"] = *gender
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Patient{}).Where("id = ?", id).Updates(updates).Error
}
