// Package service implements the business logic of the push delivery engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/data"
	"github.com/pushgate/pushgate/internal/domain/model"
	"github.com/pushgate/pushgate/internal/domain/tz"
)

// SchedulerServiceOptions groups dependencies for SchedulerService.
type SchedulerServiceOptions struct {
	Layouts         core.LayoutRepository // Required: layout repository
	DefaultTimezone string                // Required: operator's zone, send hours are expressed in it
	Logger          *slog.Logger          // Optional: structured logger
}

// SchedulerService expands a task into one timezone sub-task per supported
// IANA zone, all sharing the task's send hour in their own local time.
type SchedulerService struct {
	layouts      core.LayoutRepository
	defaultZone  string
	logger       *slog.Logger
	timeProvider data.TimeProvider
}

// NewSchedulerService constructs a new SchedulerService.
func NewSchedulerService(opts SchedulerServiceOptions) (*SchedulerService, error) {
	if opts.Layouts == nil {
		return nil, errors.New("LayoutRepository is required")
	}
	if !tz.IsValid(opts.DefaultTimezone) {
		return nil, fmt.Errorf("unsupported default timezone %q", opts.DefaultTimezone)
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "scheduler_service")
	}

	return &SchedulerService{
		layouts:      opts.Layouts,
		defaultZone:  opts.DefaultTimezone,
		logger:       logger,
		timeProvider: &data.RealTimeProvider{},
	}, nil
}

// Reschedule regenerates the task's full sub-task set after a RunAt change.
// Started tasks are left untouched: their schedule is frozen the moment the
// first zone begins sending.
func (s *SchedulerService) Reschedule(ctx context.Context, task *model.Task) error {
	if task == nil {
		return errors.New("task is required")
	}
	if task.IsStarted() {
		return nil
	}

	unchanged, err := s.isUnchanged(ctx, task)
	if err != nil {
		return err
	}
	if unchanged {
		return nil
	}

	layouts, err := s.BuildLayouts(task)
	if err != nil {
		return err
	}
	if err := s.layouts.ReplaceForTask(ctx, task.ID, layouts); err != nil {
		return fmt.Errorf("replace layouts for task %d: %w", task.ID, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "regenerated timezone layouts",
			"task_id", task.ID, "zones", len(layouts), "run_at", task.RunAt)
	}
	return nil
}

// isUnchanged reports whether regeneration can be skipped: the row count
// matches the zone universe and the default zone's sub-task already carries
// the task's RunAt. Checking one zone keeps unrelated task edits from paying
// an O(zones) rewrite. This is a performance guard only, never load-bearing
// for correctness.
func (s *SchedulerService) isUnchanged(ctx context.Context, task *model.Task) (bool, error) {
	count, err := s.layouts.CountByTask(ctx, task.ID)
	if err != nil {
		return false, fmt.Errorf("count layouts for task %d: %w", task.ID, err)
	}
	if count != tz.Count() {
		return false, nil
	}

	probe, err := s.layouts.GetByTaskAndZone(ctx, task.ID, s.defaultZone)
	if err != nil {
		if errors.Is(err, data.ErrLayoutNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("probe default-zone layout for task %d: %w", task.ID, err)
	}
	return probe.RunAt.Equal(task.RunAt), nil
}

// BuildLayouts computes the per-zone schedule without persisting it: the
// task's RunAt converted into each zone's local time, with only the hour
// overwritten by the hour RunAt has in the operator's default zone. Minute,
// second and the zone's own local date are preserved.
func (s *SchedulerService) BuildLayouts(task *model.Task) ([]model.TimezoneLayout, error) {
	defaultLoc, err := tz.Location(s.defaultZone)
	if err != nil {
		return nil, fmt.Errorf("load default timezone: %w", err)
	}
	hour := task.RunAt.In(defaultLoc).Hour()

	zones := tz.All()
	layouts := make([]model.TimezoneLayout, 0, len(zones))
	for _, zone := range zones {
		loc, err := tz.Location(zone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s: %w", zone, err)
		}
		local := task.RunAt.In(loc)
		runAt := time.Date(local.Year(), local.Month(), local.Day(),
			hour, local.Minute(), local.Second(), local.Nanosecond(), loc)
		layouts = append(layouts, model.TimezoneLayout{
			TaskID:   task.ID,
			Timezone: zone,
			RunAt:    runAt.UTC(),
		})
	}
	return layouts, nil
}
