package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	apperrors "github.com/pushgate/pushgate/internal/errors"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/data"
	"github.com/pushgate/pushgate/internal/domain/model"
)

// TaskServiceOptions groups dependencies for TaskService.
type TaskServiceOptions struct {
	Tasks     core.TaskRepository   // Required: task repository
	Layouts   core.LayoutRepository // Required: layout repository
	Scheduler *SchedulerService     // Required: regenerates per-zone schedules
	Logger    *slog.Logger          // Optional: structured logger
}

// TaskService manages campaign tasks and the public notification queries
// service workers issue against them.
type TaskService struct {
	tasks     core.TaskRepository
	layouts   core.LayoutRepository
	scheduler *SchedulerService
	logger    *slog.Logger
}

// NewTaskService constructs a new TaskService.
func NewTaskService(opts TaskServiceOptions) (*TaskService, error) {
	if opts.Tasks == nil {
		return nil, errors.New("TaskRepository is required")
	}
	if opts.Layouts == nil {
		return nil, errors.New("LayoutRepository is required")
	}
	if opts.Scheduler == nil {
		return nil, errors.New("SchedulerService is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "task_service")
	}

	return &TaskService{
		tasks:     opts.Tasks,
		layouts:   opts.Layouts,
		scheduler: opts.Scheduler,
		logger:    logger,
	}, nil
}

// Create stores a new task and expands it into its per-zone schedule.
func (s *TaskService) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	if err := s.scheduler.Reschedule(ctx, created); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "created task",
			"task_id", created.ID, "run_at", created.RunAt)
	}
	return created, nil
}

// Reschedule moves an unstarted task to a new send time and regenerates its
// per-zone schedule. Moving a started task is a validation error.
func (s *TaskService) Reschedule(ctx context.Context, taskID int64, runAt time.Time) (*model.Task, error) {
	if err := s.tasks.UpdateRunAt(ctx, taskID, runAt); err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("reload task %d: %w", taskID, err)
	}
	if err := s.scheduler.Reschedule(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetByID returns a task by id.
func (s *TaskService) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrTaskNotFound) {
			return nil, apperrors.NotFound("task")
		}
		return nil, err
	}
	return task, nil
}

// ShowNotification resolves the click-through target for a delivered
// notification and counts the click. Only active, started tasks resolve so
// stale or forged ids cannot probe unpublished campaigns.
func (s *TaskService) ShowNotification(ctx context.Context, taskID int64, extra url.Values) (string, error) {
	task, err := s.tasks.GetPublicByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, data.ErrTaskNotFound) {
			return "", apperrors.NotFound("task")
		}
		return "", err
	}
	if err := s.tasks.IncrementCounter(ctx, taskID, model.TaskCounterClicks); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to count click", "task_id", taskID, "error", err)
	}
	// Tag the click with its source so the target site can attribute traffic
	// even when the campaign URL carries no UTM parameters of its own.
	merged := url.Values{"from": {"push"}}
	for k, vs := range extra {
		merged[k] = vs
	}
	target, err := task.RelativeURL(merged)
	if err != nil {
		return "", fmt.Errorf("resolve target for task %d: %w", taskID, err)
	}
	return target, nil
}

// LastNotification returns the most recent task already sent to the given
// zone, for service workers that received a push event but no payload.
// The view counter is bumped as a side effect since the caller will display
// the notification.
func (s *TaskService) LastNotification(ctx context.Context, timezone string, defaultIcon string) (*model.Payload, error) {
	layout, err := s.layouts.LastPublicByZone(ctx, timezone)
	if err != nil {
		if errors.Is(err, data.ErrLayoutNotFound) {
			return nil, apperrors.NotFound("notification")
		}
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, layout.TaskID)
	if err != nil {
		return nil, fmt.Errorf("load task %d: %w", layout.TaskID, err)
	}
	if err := s.tasks.IncrementCounter(ctx, task.ID, model.TaskCounterViews); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to count view", "task_id", task.ID, "error", err)
	}
	payload := task.BuildPayload(defaultIcon)
	return &payload, nil
}

// PlusOne increments one of the task's delivery counters. The counter name
// comes from the wire, so it is validated before touching the database.
func (s *TaskService) PlusOne(ctx context.Context, counter string, taskID int64) error {
	c, ok := model.ParseTaskCounter(counter)
	if !ok {
		return apperrors.ValidationField("counter", fmt.Sprintf("unknown counter %q", counter))
	}
	if _, err := s.tasks.GetPublicByID(ctx, taskID); err != nil {
		if errors.Is(err, data.ErrTaskNotFound) {
			return apperrors.NotFound("task")
		}
		return err
	}
	return s.tasks.IncrementCounter(ctx, taskID, c)
}
