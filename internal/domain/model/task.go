//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTaskTitleLen   = 61
	maxTaskMessageLen = 122
	maxTaskURLLen     = 512
)

// NotificationTag groups notifications in the browser so a newer digest
// replaces an older one instead of stacking.
const NotificationTag = "notification-digest"

// TaskCounter names one of the task statistics counters bumped by the
// lightweight plus-one endpoints.
type TaskCounter string

const (
	TaskCounterViews    TaskCounter = "views"
	TaskCounterClicks   TaskCounter = "clicks"
	TaskCounterClosings TaskCounter = "closings"
)

// Valid reports whether the counter name is supported. Counter names end up
// interpolated into UPDATE statements, so anything else must be rejected.
func (c TaskCounter) Valid() bool {
	switch c {
	case TaskCounterViews, TaskCounterClicks, TaskCounterClosings:
		return true
	default:
		return false
	}
}

// ParseTaskCounter normalizes a counter name and reports whether it is supported.
func ParseTaskCounter(value string) (TaskCounter, bool) {
	c := TaskCounter(strings.ToLower(strings.TrimSpace(value)))
	if c.Valid() {
		return c, true
	}
	return "", false
}

// Task is one push campaign: a title/message/url triple sent to every active
// subscription, one timezone at a time so the notification arrives at the
// same local wall-clock hour everywhere.
type Task struct {
	ID        int64      `json:"id"                   db:"id"`
	Title     string     `json:"title"                db:"title"`
	Message   string     `json:"message"              db:"message"`
	URL       string     `json:"url"                  db:"url"`
	IsActive  bool       `json:"is_active"            db:"is_active"`
	ImageURL  string     `json:"image_url,omitempty"  db:"image_url"`
	Views     int64      `json:"views"                db:"views"`
	Clicks    int64      `json:"clicks"               db:"clicks"`
	Closings  int64      `json:"closings"             db:"closings"`
	CreatedAt time.Time  `json:"created_at"           db:"created_at"`
	RunAt     time.Time  `json:"run_at"               db:"run_at"`
	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	DoneAt    *time.Time `json:"done_at,omitempty"    db:"done_at"`
}

// Payload is the notification document handed to the push provider and,
// eventually, the service worker.
type Payload struct {
	Title           string `json:"title"`
	Message         string `json:"message"`
	Icon            string `json:"icon"`
	Tag             string `json:"tag"`
	URL             string `json:"url"`
	ViewsStatURL    string `json:"views_stat_url"`
	ClosingsStatURL string `json:"closings_stat_url"`
	Image           string `json:"image,omitempty"`
}

// IsStarted reports whether delivery of this task has begun. RunAt is only
// editable while this is false.
func (t *Task) IsStarted() bool {
	return t.StartedAt != nil
}

// IsDone reports whether every timezone sub-task has finished.
func (t *Task) IsDone() bool {
	return t.DoneAt != nil
}

// BuildPayload assembles the provider payload. defaultIcon is used when the
// task carries no image of its own.
func (t *Task) BuildPayload(defaultIcon string) Payload {
	p := Payload{
		Title:           t.Title,
		Message:         t.Message,
		Icon:            defaultIcon,
		Tag:             NotificationTag,
		URL:             fmt.Sprintf("/push/show_notification/%d/", t.ID),
		ViewsStatURL:    fmt.Sprintf("/push/notification_plus_one/views/%d/", t.ID),
		ClosingsStatURL: fmt.Sprintf("/push/notification_plus_one/closings/%d/", t.ID),
	}
	if t.ImageURL != "" {
		p.Image = t.ImageURL
	}
	return p
}

// RelativeURL returns the task URL stripped of scheme and host, with extra
// query parameters merged in. Existing parameters win over the additions so
// an explicit ?from= survives.
func (t *Task) RelativeURL(extra url.Values) (string, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return "", fmt.Errorf("parse task url: %w", err)
	}
	q := u.Query()
	for k, vs := range extra {
		if q.Has(k) {
			continue
		}
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.Scheme = ""
	u.Host = ""
	u.User = nil
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Validate checks invariants before persistence.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(t.Title) > maxTaskTitleLen {
		return fmt.Errorf("title exceeds %d characters", maxTaskTitleLen)
	}
	if strings.TrimSpace(t.Message) == "" {
		return errors.New("message is required")
	}
	if utf8.RuneCountInString(t.Message) > maxTaskMessageLen {
		return fmt.Errorf("message exceeds %d characters", maxTaskMessageLen)
	}
	if len(t.URL) > maxTaskURLLen {
		return fmt.Errorf("url exceeds %d bytes", maxTaskURLLen)
	}
	u, err := url.Parse(t.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("url must be absolute")
	}
	return nil
}
