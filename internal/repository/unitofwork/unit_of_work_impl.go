package unitofwork

import (
	"context"
	"fmt"

	"onechart-be/internal/repository/contract"
	"onechart-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) SessionRepository() contract.SessionRepository {
	return implementation.NewSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PatientRepository() contract.PatientRepository {
	return implementation.NewPatientRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SessionNoteRepository() contract.SessionNoteRepository {
	return implementation.NewSessionNoteRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SessionTranscriptRepository() contract.SessionTranscriptRepository {
	return implementation.NewSessionTranscriptRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SessionContextRepository() contract.SessionContextRepository {
	return implementation.NewSessionContextRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SessionTaskRepository() contract.SessionTaskRepository {
	return implementation.NewSessionTaskRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProfileRepository() contract.ProfileRepository {
	return implementation.NewProfileRepository(u.getDB())
}
