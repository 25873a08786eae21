package unitofwork

import (
	"context"

	"onechart-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	PatientRepository() contract.PatientRepository
	SessionNoteRepository() contract.SessionNoteRepository
	SessionTranscriptRepository() contract.SessionTranscriptRepository
	SessionContextRepository() contract.SessionContextRepository
	SessionTaskRepository() contract.SessionTaskRepository
	ProfileRepository() contract.ProfileRepository
}
