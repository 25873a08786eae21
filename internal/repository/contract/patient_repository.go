package contract

import (
	"context"

	"onechart-be/internal/entity"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *entity.Patient) error
	UpdateDetails(ctx context.Context, id uuid.UUID, fullName, gender *string) error
}
