package core

import (
	"context"
	"time"

	"github.com/pushgate/pushgate/internal/domain/model"
)

// This file contains repository and provider interface definitions (ports in
// hexagonal architecture). Service implementations depend on these
// interfaces, not on concrete implementations.

// SubscriptionRepository defines the interface for subscription data operations.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) (*model.Subscription, error)
	GetByID(ctx context.Context, id int64) (*model.Subscription, error)
	GetByEndpoint(ctx context.Context, endpoint string) (*model.Subscription, error)
	// Update persists the mutable fields of an existing subscription
	// (key material, timezone, user agent, activity state, error counter,
	// endpoint). Endpoint uniqueness violations surface as conflict errors.
	Update(ctx context.Context, sub *model.Subscription) error
	// PageByTimezone returns up to limit subscriptions in the given zone with
	// id greater than afterID, ordered by id ascending. Activity is
	// deliberately not filtered here; see the dispatcher.
	PageByTimezone(ctx context.Context, params PageByTimezoneParams) ([]*model.Subscription, error)
	CountActive(ctx context.Context) (int64, error)
	// DeleteInactiveSince removes subscriptions deactivated before the cutoff.
	DeleteInactiveSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// PageByTimezoneParams groups parameters for PageByTimezone to keep param count ≤3.
type PageByTimezoneParams struct {
	Timezone string
	AfterID  int64
	Limit    int
}

// TaskRepository defines the interface for push task data operations.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) (*model.Task, error)
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	// GetPublicByID returns the task only if it is active and started.
	GetPublicByID(ctx context.Context, id int64) (*model.Task, error)
	UpdateRunAt(ctx context.Context, id int64, runAt time.Time) error
	// IncrementCounter bumps one of the views/clicks/closings counters with a
	// single UPDATE, without loading the row.
	IncrementCounter(ctx context.Context, id int64, counter model.TaskCounter) error
}

// LayoutRepository defines the interface for timezone sub-task data operations.
type LayoutRepository interface {
	// ReplaceForTask deletes all layouts of the task and bulk-inserts the
	// given set in one transaction.
	ReplaceForTask(ctx context.Context, taskID int64, layouts []model.TimezoneLayout) error
	ListByTask(ctx context.Context, taskID int64) ([]*model.TimezoneLayout, error)
	GetByTaskAndZone(ctx context.Context, taskID int64, timezone string) (*model.TimezoneLayout, error)
	CountByTask(ctx context.Context, taskID int64) (int, error)
	// ListDue returns undone, unstarted layouts of active tasks whose run_at
	// has passed, ordered earliest-due first.
	ListDue(ctx context.Context, now time.Time) ([]*model.TimezoneLayout, error)
	// MarkStarted stamps the layout and, when the parent task has not started
	// yet, the task too, in one transaction.
	MarkStarted(ctx context.Context, id int64, at time.Time) error
	// MarkDone stamps the layout and, when it was the task's last undone
	// layout, the task too, in one transaction.
	MarkDone(ctx context.Context, id int64, at time.Time) error
	// LastPublicByZone returns the most recent started layout of an active
	// task in the given zone.
	LastPublicByZone(ctx context.Context, timezone string) (*model.TimezoneLayout, error)
	// DeleteForTasksDoneBefore removes layouts of tasks completed before the
	// cutoff; their timing statistics are stale past a short horizon.
	DeleteForTasksDoneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SendParams carries everything a provider client needs for one delivery.
type SendParams struct {
	Subscription *model.Subscription
	// Payload is the serialized notification, nil for a payload-less ping.
	Payload []byte
	TTL     int
}

// ProviderResponse is the raw outcome of one provider call, handed back to
// the coordinator for scoring.
type ProviderResponse struct {
	StatusCode int
	Body       []byte
}

// PushClient sends a notification to a single subscription over one of the
// two delivery tracks.
type PushClient interface {
	Send(ctx context.Context, params SendParams) (*ProviderResponse, error)
}

// CycleLock is the run-exclusivity guard around a delivery cycle.
type CycleLock interface {
	// Acquire takes the system-wide lock or fails when a live owner holds it.
	Acquire(ctx context.Context) error
	// Release frees the lock. Safe to call on an unacquired lock.
	Release(ctx context.Context) error
}
