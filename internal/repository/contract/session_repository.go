package contract

import (
	"context"

	"onechart-be/internal/entity"
	"onechart-be/internal/repository/specification"

	"github.com/google/uuid"
)

// SessionFields is a partial update of the sessions row. Nil fields are left untouched.
type SessionFields struct {
	Title         *string
	Status        *entity.SessionStatus
	PatientName   *string
	PatientGender *string
}

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields SessionFields) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindAll returns sessions with notes, transcript, context, tasks and patient loaded.
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
}
