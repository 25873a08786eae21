package contract

import (
	"context"

	"onechart-be/internal/entity"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	FindById(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	FindAll(ctx context.Context) ([]*entity.Profile, error)
	Upsert(ctx context.Context, profile *entity.Profile) error
}
