package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pushgate/pushgate/internal/domain/model"
)

var endpointSeq atomic.Int64

// SubscriptionBuilder provides a fluent interface for building Subscription objects for testing.
type SubscriptionBuilder struct {
	sub *model.Subscription
}

// NewSubscription creates a new SubscriptionBuilder with sensible defaults:
// an active standard Web Push subscription with a unique endpoint.
func NewSubscription() *SubscriptionBuilder {
	n := endpointSeq.Add(1)
	now := time.Now().UTC()
	return &SubscriptionBuilder{
		sub: &model.Subscription{
			Endpoint:    fmt.Sprintf("https://push.example.org/send/sub-%d", n),
			Key:         "BPk256dh-test-key",
			AuthSecret:  "auth-test-secret",
			IsActive:    true,
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0",
			Timezone:    "UTC",
			CreatedAt:   now,
			ActivatedAt: &now,
		},
	}
}

// WithEndpoint sets the endpoint.
func (b *SubscriptionBuilder) WithEndpoint(endpoint string) *SubscriptionBuilder {
	b.sub.Endpoint = endpoint
	return b
}

// WithLegacyEndpoint switches the subscription to the legacy multicast track.
func (b *SubscriptionBuilder) WithLegacyEndpoint(registrationID string) *SubscriptionBuilder {
	b.sub.Endpoint = model.FCMEndpointPrefix + "/" + registrationID
	return b
}

// WithoutKeys drops the encryption key material, forcing payload-less delivery.
func (b *SubscriptionBuilder) WithoutKeys() *SubscriptionBuilder {
	b.sub.Key = ""
	b.sub.AuthSecret = ""
	return b
}

// WithTimezone sets the zone.
func (b *SubscriptionBuilder) WithTimezone(timezone string) *SubscriptionBuilder {
	b.sub.Timezone = timezone
	return b
}

// WithErrors sets the error-point balance.
func (b *SubscriptionBuilder) WithErrors(errors int) *SubscriptionBuilder {
	b.sub.Errors = errors
	return b
}

// Inactive marks the subscription deactivated at the given time.
func (b *SubscriptionBuilder) Inactive(at time.Time) *SubscriptionBuilder {
	b.sub.IsActive = false
	t := at
	b.sub.DeactivatedAt = &t
	return b
}

// Build returns the built subscription.
func (b *SubscriptionBuilder) Build() *model.Subscription {
	sub := *b.sub
	return &sub
}

// TaskBuilder provides a fluent interface for building Task objects for testing.
type TaskBuilder struct {
	task *model.Task
}

// NewTask creates a new TaskBuilder with sensible defaults: an active task
// due in one hour.
func NewTask() *TaskBuilder {
	now := time.Now().UTC()
	return &TaskBuilder{
		task: &model.Task{
			Title:     "Test notification",
			Message:   "Something happened",
			URL:       "https://example.com/news/1",
			IsActive:  true,
			CreatedAt: now,
			RunAt:     now.Add(time.Hour),
		},
	}
}

// WithRunAt sets the send time.
func (b *TaskBuilder) WithRunAt(runAt time.Time) *TaskBuilder {
	b.task.RunAt = runAt
	return b
}

// WithURL sets the click-through target.
func (b *TaskBuilder) WithURL(url string) *TaskBuilder {
	b.task.URL = url
	return b
}

// WithImage sets the large image URL.
func (b *TaskBuilder) WithImage(imageURL string) *TaskBuilder {
	b.task.ImageURL = imageURL
	return b
}

// Inactive marks the task disabled.
func (b *TaskBuilder) Inactive() *TaskBuilder {
	b.task.IsActive = false
	return b
}

// Started stamps StartedAt.
func (b *TaskBuilder) Started(at time.Time) *TaskBuilder {
	t := at
	b.task.StartedAt = &t
	return b
}

// Build returns the built task.
func (b *TaskBuilder) Build() *model.Task {
	task := *b.task
	return &task
}
