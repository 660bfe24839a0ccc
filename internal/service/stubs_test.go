package service

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/pushgate/pushgate/internal/errors"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/data"
	"github.com/pushgate/pushgate/internal/domain/model"
)

// In-memory repository stubs mimicking the SQL layer's semantics closely
// enough for service tests: copies in, copies out, endpoint uniqueness,
// keyset paging.

type stubSubscriptionRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Subscription

	updateErr error // injected once on the next Update call
	updates   int
}

func newStubSubscriptionRepo() *stubSubscriptionRepo {
	return &stubSubscriptionRepo{rows: make(map[int64]model.Subscription)}
}

var _ core.SubscriptionRepository = (*stubSubscriptionRepo)(nil)

func (r *stubSubscriptionRepo) add(sub *model.Subscription) *model.Subscription {
	created, err := r.Create(context.Background(), sub)
	if err != nil {
		panic(err)
	}
	return created
}

func (r *stubSubscriptionRepo) Create(_ context.Context, sub *model.Subscription) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rows {
		if existing.Endpoint == sub.Endpoint {
			return nil, apperrors.Conflict("endpoint already exists")
		}
	}
	r.nextID++
	row := *sub
	row.ID = r.nextID
	r.rows[row.ID] = row
	out := row
	return &out, nil
}

func (r *stubSubscriptionRepo) GetByID(_ context.Context, id int64) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, data.ErrSubscriptionNotFound
	}
	out := row
	return &out, nil
}

func (r *stubSubscriptionRepo) GetByEndpoint(_ context.Context, endpoint string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.Endpoint == endpoint {
			out := row
			return &out, nil
		}
	}
	return nil, data.ErrSubscriptionNotFound
}

func (r *stubSubscriptionRepo) Update(_ context.Context, sub *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updates++
	if r.updateErr != nil {
		err := r.updateErr
		r.updateErr = nil
		return err
	}
	if _, ok := r.rows[sub.ID]; !ok {
		return data.ErrSubscriptionNotFound
	}
	for id, existing := range r.rows {
		if id != sub.ID && existing.Endpoint == sub.Endpoint {
			return apperrors.Conflict("endpoint already exists")
		}
	}
	r.rows[sub.ID] = *sub
	return nil
}

func (r *stubSubscriptionRepo) PageByTimezone(_ context.Context, params core.PageByTimezoneParams) ([]*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []int64
	for id, row := range r.rows {
		if row.Timezone == params.Timezone && id > params.AfterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if params.Limit > 0 && len(ids) > params.Limit {
		ids = ids[:params.Limit]
	}

	out := make([]*model.Subscription, 0, len(ids))
	for _, id := range ids {
		row := r.rows[id]
		out = append(out, &row)
	}
	return out, nil
}

func (r *stubSubscriptionRepo) CountActive(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, row := range r.rows {
		if row.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *stubSubscriptionRepo) DeleteInactiveSince(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, row := range r.rows {
		if !row.IsActive && row.DeactivatedAt != nil && row.DeactivatedAt.Before(cutoff) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

type stubTaskRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Task

	counterBumps map[model.TaskCounter]int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{
		rows:         make(map[int64]model.Task),
		counterBumps: make(map[model.TaskCounter]int),
	}
}

var _ core.TaskRepository = (*stubTaskRepo)(nil)

func (r *stubTaskRepo) add(task *model.Task) *model.Task {
	created, err := r.Create(context.Background(), task)
	if err != nil {
		panic(err)
	}
	return created
}

func (r *stubTaskRepo) Create(_ context.Context, task *model.Task) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	row := *task
	row.ID = r.nextID
	r.rows[row.ID] = row
	out := row
	return &out, nil
}

func (r *stubTaskRepo) GetByID(_ context.Context, id int64) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, data.ErrTaskNotFound
	}
	out := row
	return &out, nil
}

func (r *stubTaskRepo) GetPublicByID(_ context.Context, id int64) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || !row.IsActive || row.StartedAt == nil {
		return nil, data.ErrTaskNotFound
	}
	out := row
	return &out, nil
}

func (r *stubTaskRepo) UpdateRunAt(_ context.Context, id int64, runAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return data.ErrTaskNotFound
	}
	if row.StartedAt != nil {
		return apperrors.Validation("task already started")
	}
	row.RunAt = runAt
	r.rows[id] = row
	return nil
}

func (r *stubTaskRepo) IncrementCounter(_ context.Context, id int64, counter model.TaskCounter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return data.ErrTaskNotFound
	}
	switch counter {
	case model.TaskCounterViews:
		row.Views++
	case model.TaskCounterClicks:
		row.Clicks++
	case model.TaskCounterClosings:
		row.Closings++
	}
	r.rows[id] = row
	r.counterBumps[counter]++
	return nil
}

type stubLayoutRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.TimezoneLayout

	tasks *stubTaskRepo // for the task stamping MarkStarted/MarkDone do in SQL
}

func newStubLayoutRepo(tasks *stubTaskRepo) *stubLayoutRepo {
	return &stubLayoutRepo{rows: make(map[int64]model.TimezoneLayout), tasks: tasks}
}

var _ core.LayoutRepository = (*stubLayoutRepo)(nil)

func (r *stubLayoutRepo) add(layout model.TimezoneLayout) model.TimezoneLayout {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	layout.ID = r.nextID
	r.rows[layout.ID] = layout
	return layout
}

func (r *stubLayoutRepo) ReplaceForTask(_ context.Context, taskID int64, layouts []model.TimezoneLayout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, row := range r.rows {
		if row.TaskID == taskID {
			delete(r.rows, id)
		}
	}
	for _, layout := range layouts {
		r.nextID++
		layout.ID = r.nextID
		layout.TaskID = taskID
		r.rows[layout.ID] = layout
	}
	return nil
}

func (r *stubLayoutRepo) ListByTask(_ context.Context, taskID int64) ([]*model.TimezoneLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.TimezoneLayout
	for _, row := range r.rows {
		if row.TaskID == taskID {
			layout := row
			out = append(out, &layout)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubLayoutRepo) GetByTaskAndZone(_ context.Context, taskID int64, timezone string) (*model.TimezoneLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.TaskID == taskID && row.Timezone == timezone {
			out := row
			return &out, nil
		}
	}
	return nil, data.ErrLayoutNotFound
}

func (r *stubLayoutRepo) CountByTask(_ context.Context, taskID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, row := range r.rows {
		if row.TaskID == taskID {
			n++
		}
	}
	return n, nil
}

func (r *stubLayoutRepo) ListDue(ctx context.Context, now time.Time) ([]*model.TimezoneLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.TimezoneLayout
	for _, row := range r.rows {
		if row.StartedAt != nil || row.DoneAt != nil || row.RunAt.After(now) {
			continue
		}
		task, ok := r.tasks.rows[row.TaskID]
		if !ok || !task.IsActive {
			continue
		}
		layout := row
		out = append(out, &layout)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunAt.Before(out[j].RunAt) })
	return out, nil
}

func (r *stubLayoutRepo) MarkStarted(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return data.ErrLayoutNotFound
	}
	t := at
	row.StartedAt = &t
	r.rows[id] = row

	task := r.tasks.rows[row.TaskID]
	if task.StartedAt == nil {
		task.StartedAt = &t
		r.tasks.rows[row.TaskID] = task
	}
	return nil
}

func (r *stubLayoutRepo) MarkDone(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return data.ErrLayoutNotFound
	}
	t := at
	row.DoneAt = &t
	r.rows[id] = row

	for _, sibling := range r.rows {
		if sibling.TaskID == row.TaskID && sibling.DoneAt == nil {
			return nil
		}
	}
	task := r.tasks.rows[row.TaskID]
	task.DoneAt = &t
	r.tasks.rows[row.TaskID] = task
	return nil
}

func (r *stubLayoutRepo) LastPublicByZone(_ context.Context, timezone string) (*model.TimezoneLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *model.TimezoneLayout
	for _, row := range r.rows {
		if row.Timezone != timezone || row.StartedAt == nil {
			continue
		}
		task, ok := r.tasks.rows[row.TaskID]
		if !ok || !task.IsActive {
			continue
		}
		layout := row
		if best == nil || layout.RunAt.After(best.RunAt) {
			best = &layout
		}
	}
	if best == nil {
		return nil, data.ErrLayoutNotFound
	}
	return best, nil
}

func (r *stubLayoutRepo) DeleteForTasksDoneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, row := range r.rows {
		task, ok := r.tasks.rows[row.TaskID]
		if ok && task.DoneAt != nil && task.DoneAt.Before(cutoff) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

// stubPushClient records sends and answers from a script keyed by endpoint.
type stubPushClient struct {
	mu       sync.Mutex
	sent     []core.SendParams
	response func(params core.SendParams) (*core.ProviderResponse, error)
}

var _ core.PushClient = (*stubPushClient)(nil)

func (c *stubPushClient) Send(_ context.Context, params core.SendParams) (*core.ProviderResponse, error) {
	c.mu.Lock()
	c.sent = append(c.sent, params)
	c.mu.Unlock()

	if c.response != nil {
		return c.response(params)
	}
	return &core.ProviderResponse{StatusCode: 201}, nil
}

func (c *stubPushClient) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}
