package service

import (
	"context"
	"errors"
	"fmt"

	"onechart-be/internal/entity"
	"onechart-be/internal/repository/memory"
	"onechart-be/internal/repository/specification"
	"onechart-be/internal/repository/unitofwork"
	"onechart-be/pkg/jobs"

	"github.com/google/uuid"
)

// sessionRecords reads sessions through the per-user view, loading it from the store on first use.
type sessionRecords struct {
	uowFactory unitofwork.RepositoryFactory
	store      *memory.SessionListStore
}

func (r *sessionRecords) hydrate(ctx context.Context, userId uuid.UUID) error {
	if r.store.Hydrated(userId) {
		return nil
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.NewestFirst{},
	)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	r.store.Hydrate(userId, sessions)
	return nil
}

func (r *sessionRecords) list(ctx context.Context, userId uuid.UUID) ([]*entity.Session, error) {
	if err := r.hydrate(ctx, userId); err != nil {
		return nil, err
	}
	return r.store.List(userId), nil
}

// get returns a private copy of the session.
func (r *sessionRecords) get(ctx context.Context, userId, sessionId uuid.UUID) (*entity.Session, error) {
	if err := r.hydrate(ctx, userId); err != nil {
		return nil, err
	}
	session, ok := r.store.Get(userId, sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// exclusive runs fn on a fresh copy of the session while holding the session's job key.
// Pipelines, resumes and other edits hold the same key, so none of them interleave with fn.
func (r *sessionRecords) exclusive(
	ctx context.Context,
	tracker *jobs.Tracker,
	userId, sessionId uuid.UUID,
	fn func(ctx context.Context, session *entity.Session) error,
) error {
	if _, err := r.get(ctx, userId, sessionId); err != nil {
		return err
	}
	err := tracker.Run(ctx, sessionId.String(), func(jobCtx context.Context) error {
		session, err := r.get(jobCtx, userId, sessionId)
		if err != nil {
			return err
		}
		return fn(jobCtx, session)
	})
	if errors.Is(err, jobs.ErrJobRunning) {
		return ErrSessionBusy
	}
	return err
}

// mutate applies fn to the caller's copy and to the view entry, leaving other fields of the entry alone.
func (r *sessionRecords) mutate(session *entity.Session, fn func(entry *entity.Session)) {
	fn(session)
	r.store.Update(session.UserId, session.Id, fn)
}
