package service

import (
	"context"
	"errors"
	"time"

	"onechart-be/internal/constant"
	"onechart-be/internal/pkg/logger"
	"onechart-be/internal/repository/memory"
	"onechart-be/internal/repository/specification"
	"onechart-be/internal/repository/unitofwork"
	"onechart-be/pkg/events"
	"onechart-be/pkg/jobs"
)

type IRetentionService interface {
	// Sweep deletes every session older than its owner's auto-delete window and reports how many went.
	Sweep(ctx context.Context) (int, error)
	Run(ctx context.Context, interval time.Duration)
}

type retentionService struct {
	uowFactory unitofwork.RepositoryFactory
	store      *memory.SessionListStore
	tracker    *jobs.Tracker
	publisher  events.Publisher
	logger     logger.ILogger
	now        func() time.Time
}

func NewRetentionService(
	uowFactory unitofwork.RepositoryFactory,
	store *memory.SessionListStore,
	tracker *jobs.Tracker,
	publisher events.Publisher,
	log logger.ILogger,
) IRetentionService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &retentionService{
		uowFactory: uowFactory,
		store:      store,
		tracker:    tracker,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
	}
}

func (s *retentionService) Sweep(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	profiles, err := uow.ProfileRepository().FindAll(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, profile := range profiles {
		if profile.AutoDeleteDays <= 0 {
			continue
		}
		cutoff := s.now().AddDate(0, 0, -profile.AutoDeleteDays)
		expired, err := uow.SessionRepository().FindAll(ctx,
			specification.UserOwnedBy{UserID: profile.Id},
			specification.CreatedBefore{Cutoff: cutoff},
		)
		if err != nil {
			s.logger.Error("RetentionService", "Failed to list expired sessions", map[string]interface{}{
				"user_id": profile.Id.String(),
				"error":   err.Error(),
			})
			continue
		}

		purged := 0
		for _, session := range expired {
			// Sessions with a job in flight are left for the next sweep.
			err := s.tracker.Run(ctx, session.Id.String(), func(ctx context.Context) error {
				if err := uow.SessionRepository().Delete(ctx, session.Id); err != nil {
					return err
				}
				s.store.RemoveByID(profile.Id, session.Id)
				return nil
			})
			if errors.Is(err, jobs.ErrJobRunning) {
				continue
			}
			if err != nil {
				s.logger.Error("RetentionService", "Failed to delete expired session", map[string]interface{}{
					"session_id": session.Id.String(),
					"error":      err.Error(),
				})
				continue
			}
			purged++
		}

		if purged > 0 {
			total += purged
			data := map[string]interface{}{
				"user_id": profile.Id.String(),
				"count":   purged,
				"cutoff":  cutoff.Format(time.RFC3339),
			}
			if err := s.publisher.Publish(ctx, events.New(constant.EventSessionsPurged, data)); err != nil {
				s.logger.Warn("RetentionService", "Failed to publish purge event", map[string]interface{}{"error": err.Error()})
			}
		}
	}
	return total, nil
}

func (s *retentionService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				s.logger.Error("RetentionService", "Retention sweep failed", map[string]interface{}{"error": err.Error()})
				continue
			}
			if n > 0 {
				s.logger.Info("RetentionService", "Retention sweep finished", map[string]interface{}{"deleted": n})
			}
		}
	}
}
