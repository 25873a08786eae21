package service

import (
	"context"
	"time"

	"onechart-be/internal/dto"
	"onechart-be/internal/entity"
	"onechart-be/internal/pkg/logger"
	"onechart-be/internal/repository/memory"
	"onechart-be/internal/repository/unitofwork"
	"onechart-be/pkg/jobs"

	"github.com/google/uuid"
)

type ITaskService interface {
	// List returns tasks across every session of the user, newest session first.
	List(ctx context.Context, userId uuid.UUID, filter dto.TaskFilter) ([]*dto.TaskListItem, error)
	Toggle(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, taskId string) (*dto.TaskResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, taskId string) error
}

type taskService struct {
	records *sessionRecords
	tracker *jobs.Tracker
	logger  logger.ILogger
}

func NewTaskService(uowFactory unitofwork.RepositoryFactory, store *memory.SessionListStore, tracker *jobs.Tracker, log logger.ILogger) ITaskService {
	return &taskService{
		records: &sessionRecords{uowFactory: uowFactory, store: store},
		tracker: tracker,
		logger:  log,
	}
}

func (c *taskService) List(ctx context.Context, userId uuid.UUID, filter dto.TaskFilter) ([]*dto.TaskListItem, error) {
	sessions, err := c.records.list(ctx, userId)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.TaskListItem, 0)
	for _, session := range sessions {
		for _, task := range session.Tasks {
			switch filter {
			case dto.TaskFilterPending:
				if task.Status == entity.TaskStatusCompleted {
					continue
				}
			case dto.TaskFilterCompleted:
				if task.Status != entity.TaskStatusCompleted {
					continue
				}
			}
			result = append(result, &dto.TaskListItem{
				TaskResponse: dto.NewTaskResponse(task),
				PatientName:  session.PatientName,
				SessionDate:  session.Date.Format(time.RFC3339),
			})
		}
	}
	return result, nil
}

func (c *taskService) Toggle(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, taskId string) (*dto.TaskResponse, error) {
	var res dto.TaskResponse
	err := c.records.exclusive(ctx, c.tracker, userId, sessionId, func(ctx context.Context, session *entity.Session) error {
		index, ok := session.FindTask(taskId)
		if !ok {
			return ErrTaskNotFound
		}

		tasks := append([]entity.Task(nil), session.Tasks...)
		if tasks[index].Status == entity.TaskStatusCompleted {
			tasks[index].Status = entity.TaskStatusPending
		} else {
			tasks[index].Status = entity.TaskStatusCompleted
		}

		if err := c.save(ctx, session, tasks); err != nil {
			return err
		}
		res = dto.NewTaskResponse(tasks[index])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *taskService) Delete(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, taskId string) error {
	return c.records.exclusive(ctx, c.tracker, userId, sessionId, func(ctx context.Context, session *entity.Session) error {
		index, ok := session.FindTask(taskId)
		if !ok {
			return ErrTaskNotFound
		}
		tasks := append([]entity.Task(nil), session.Tasks[:index]...)
		tasks = append(tasks, session.Tasks[index+1:]...)
		return c.save(ctx, session, tasks)
	})
}

// save replaces the session's task list in the store and in the view entry.
func (c *taskService) save(ctx context.Context, session *entity.Session, tasks []entity.Task) error {
	uow := c.records.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionTaskRepository().ReplaceAll(ctx, session.Id, tasks); err != nil {
		return err
	}
	c.records.mutate(session, func(entry *entity.Session) {
		entry.Tasks = append([]entity.Task(nil), tasks...)
	})
	return nil
}
