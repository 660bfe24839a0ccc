package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/domain/model"
)

type dispatcherFixture struct {
	subs     *stubSubscriptionRepo
	tasks    *stubTaskRepo
	layouts  *stubLayoutRepo
	legacy   *stubPushClient
	standard *stubPushClient
	svc      *DispatcherService
}

func newDispatcherFixture(t *testing.T, cfg DispatcherConfig) *dispatcherFixture {
	t.Helper()

	f := &dispatcherFixture{
		subs:     newStubSubscriptionRepo(),
		tasks:    newStubTaskRepo(),
		legacy:   &stubPushClient{},
		standard: &stubPushClient{},
	}
	f.layouts = newStubLayoutRepo(f.tasks)

	scoring, err := NewScoringService(ScoringServiceOptions{
		Subscriptions: f.subs,
		Threshold:     30,
	})
	require.NoError(t, err)

	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = time.Second
	}
	svc, err := NewDispatcherService(DispatcherServiceOptions{
		Layouts:       f.layouts,
		Tasks:         f.tasks,
		Subscriptions: f.subs,
		Scoring:       scoring,
		Clients:       PushClients{Legacy: f.legacy, Standard: f.standard},
		Config:        cfg,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *dispatcherFixture) addDueLayout(t *testing.T, timezone string) (*model.Task, model.TimezoneLayout) {
	t.Helper()
	task := f.tasks.add(&model.Task{
		Title: "Digest", Message: "News", URL: "https://example.com/n",
		IsActive: true,
		RunAt:    time.Now().Add(-time.Minute).UTC(),
	})
	layout := f.layouts.add(model.TimezoneLayout{
		TaskID:   task.ID,
		Timezone: timezone,
		RunAt:    task.RunAt,
	})
	return task, layout
}

func TestDispatcherService_RunCycle_DeliversAndStamps(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 3, PageSize: 100})
	task, layout := f.addDueLayout(t, "Europe/Moscow")

	for i := 0; i < 5; i++ {
		f.subs.add(&model.Subscription{
			Endpoint: fmt.Sprintf("https://push.example.org/%d", i),
			Key:      "k", AuthSecret: "a",
			Timezone: "Europe/Moscow", IsActive: true,
		})
	}
	// A different zone must not receive anything this cycle.
	f.subs.add(&model.Subscription{
		Endpoint: "https://push.example.org/other-zone",
		Timezone: "Asia/Tokyo", IsActive: true,
	})

	require.NoError(t, f.svc.RunCycle(context.Background()))

	assert.Equal(t, 5, f.standard.sentCount())
	assert.Zero(t, f.legacy.sentCount())

	stored, err := f.layouts.GetByTaskAndZone(context.Background(), task.ID, layout.Timezone)
	require.NoError(t, err)
	assert.NotNil(t, stored.StartedAt)
	assert.NotNil(t, stored.DoneAt)

	storedTask, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.NotNil(t, storedTask.StartedAt)
	assert.NotNil(t, storedTask.DoneAt, "single-zone task finishes with its only layout")
}

func TestDispatcherService_RunCycle_PayloadShape(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 1, PageSize: 100, TTLSeconds: 86399, DefaultIconURL: "/icon.png"})
	task, _ := f.addDueLayout(t, "UTC")

	f.subs.add(&model.Subscription{
		Endpoint: "https://push.example.org/1",
		Key:      "k", AuthSecret: "a",
		Timezone: "UTC", IsActive: true,
	})

	require.NoError(t, f.svc.RunCycle(context.Background()))

	require.Equal(t, 1, f.standard.sentCount())
	sent := f.standard.sent[0]
	assert.Equal(t, 86399, sent.TTL)

	var payload model.Payload
	require.NoError(t, json.Unmarshal(sent.Payload, &payload))
	assert.Equal(t, "Digest", payload.Title)
	assert.Equal(t, "/icon.png", payload.Icon)
	assert.Equal(t, fmt.Sprintf("/push/show_notification/%d/", task.ID), payload.URL)
}

func TestDispatcherService_RunCycle_KeylessGetsNoPayload(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 1, PageSize: 100})
	f.addDueLayout(t, "UTC")

	f.subs.add(&model.Subscription{
		Endpoint: "https://push.example.org/keyless",
		Timezone: "UTC", IsActive: true,
	})

	require.NoError(t, f.svc.RunCycle(context.Background()))

	require.Equal(t, 1, f.standard.sentCount())
	assert.Nil(t, f.standard.sent[0].Payload)
}

func TestDispatcherService_RunCycle_RoutesByProvider(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 2, PageSize: 100})
	f.addDueLayout(t, "UTC")

	f.legacy.response = func(core.SendParams) (*core.ProviderResponse, error) {
		return &core.ProviderResponse{StatusCode: 200, Body: []byte(`{"results":[{"message_id":"0:1"}]}`)}, nil
	}

	f.subs.add(&model.Subscription{
		Endpoint: model.FCMEndpointPrefix + "/reg-1",
		Timezone: "UTC", IsActive: true,
	})
	f.subs.add(&model.Subscription{
		Endpoint: "https://updates.push.services.mozilla.com/wpush/v2/x",
		Key:      "k", AuthSecret: "a",
		Timezone: "UTC", IsActive: true,
	})

	require.NoError(t, f.svc.RunCycle(context.Background()))

	assert.Equal(t, 1, f.legacy.sentCount())
	assert.Equal(t, 1, f.standard.sentCount())
}

func TestDispatcherService_RunCycle_SkipsInactive(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 2, PageSize: 100})
	f.addDueLayout(t, "UTC")

	dead := time.Now().UTC()
	f.subs.add(&model.Subscription{
		Endpoint: "https://push.example.org/dead",
		Timezone: "UTC", IsActive: false, DeactivatedAt: &dead,
	})

	require.NoError(t, f.svc.RunCycle(context.Background()))
	assert.Zero(t, f.standard.sentCount())
}

func TestDispatcherService_RunCycle_GoneDeactivatesAtThreshold(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 1, PageSize: 100})
	f.addDueLayout(t, "UTC")

	f.standard.response = func(core.SendParams) (*core.ProviderResponse, error) {
		return &core.ProviderResponse{StatusCode: 410}, nil
	}
	sub := f.subs.add(&model.Subscription{
		Endpoint: "https://push.example.org/gone",
		Key:      "k", AuthSecret: "a",
		Timezone: "UTC", IsActive: true, Errors: 16,
	})

	require.NoError(t, f.svc.RunCycle(context.Background()))

	stored, err := f.subs.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.NotNil(t, stored.DeactivatedAt)
}

func TestDispatcherService_RunCycle_BadEndpointDeactivatesImmediately(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 1, PageSize: 100})
	f.addDueLayout(t, "UTC")

	f.standard.response = func(params core.SendParams) (*core.ProviderResponse, error) {
		return nil, fmt.Errorf("%w: garbage", core.ErrBadEndpoint)
	}
	sub := f.subs.add(&model.Subscription{
		Endpoint: "https://push.example.org/broken",
		Timezone: "UTC", IsActive: true,
	})

	require.NoError(t, f.svc.RunCycle(context.Background()))

	stored, err := f.subs.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Zero(t, stored.Errors, "immediate deactivation bypasses point accounting")
}

func TestDispatcherService_RunCycle_TransportErrorLeavesSubscriptionAlone(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 1, PageSize: 100})
	f.addDueLayout(t, "UTC")

	f.standard.response = func(core.SendParams) (*core.ProviderResponse, error) {
		return nil, fmt.Errorf("connection refused")
	}
	sub := f.subs.add(&model.Subscription{
		Endpoint: "https://push.example.org/unreachable",
		Key:      "k", AuthSecret: "a",
		Timezone: "UTC", IsActive: true, Errors: 4,
	})

	require.NoError(t, f.svc.RunCycle(context.Background()))

	stored, err := f.subs.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Equal(t, 4, stored.Errors, "transport failures say nothing about subscription health")
}

func TestDispatcherService_RunCycle_PagesThroughLargeAudience(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 4, PageSize: 10})
	f.addDueLayout(t, "UTC")

	for i := 0; i < 37; i++ {
		f.subs.add(&model.Subscription{
			Endpoint: fmt.Sprintf("https://push.example.org/%d", i),
			Key:      "k", AuthSecret: "a",
			Timezone: "UTC", IsActive: true,
		})
	}

	require.NoError(t, f.svc.RunCycle(context.Background()))
	assert.Equal(t, 37, f.standard.sentCount(), "every subscription across all pages is sent exactly once")
}

func TestDispatcherService_RunCycle_NothingDue(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 2, PageSize: 100})

	// Future layout only.
	task := f.tasks.add(&model.Task{
		Title: "t", Message: "m", IsActive: true,
		RunAt: time.Now().Add(time.Hour).UTC(),
	})
	f.layouts.add(model.TimezoneLayout{TaskID: task.ID, Timezone: "UTC", RunAt: task.RunAt})

	require.NoError(t, f.svc.RunCycle(context.Background()))
	assert.Zero(t, f.standard.sentCount())

	stored, err := f.layouts.GetByTaskAndZone(context.Background(), task.ID, "UTC")
	require.NoError(t, err)
	assert.Nil(t, stored.StartedAt)
}

func TestDispatcherService_RunCycle_InactiveTaskIgnored(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 2, PageSize: 100})

	task := f.tasks.add(&model.Task{
		Title: "t", Message: "m", IsActive: false,
		RunAt: time.Now().Add(-time.Minute).UTC(),
	})
	f.layouts.add(model.TimezoneLayout{TaskID: task.ID, Timezone: "UTC", RunAt: task.RunAt})

	f.subs.add(&model.Subscription{
		Endpoint: "https://push.example.org/1", Timezone: "UTC", IsActive: true,
	})

	require.NoError(t, f.svc.RunCycle(context.Background()))
	assert.Zero(t, f.standard.sentCount())
}

func TestDispatcherService_RunCycle_MultiZoneTaskDoneOnlyWhenAllZonesDone(t *testing.T) {
	f := newDispatcherFixture(t, DispatcherConfig{Workers: 1, PageSize: 100})

	task := f.tasks.add(&model.Task{
		Title: "t", Message: "m", IsActive: true,
		RunAt: time.Now().Add(-time.Minute).UTC(),
	})
	due := f.layouts.add(model.TimezoneLayout{TaskID: task.ID, Timezone: "UTC", RunAt: task.RunAt})
	f.layouts.add(model.TimezoneLayout{TaskID: task.ID, Timezone: "Pacific/Auckland", RunAt: time.Now().Add(5 * time.Hour).UTC()})

	require.NoError(t, f.svc.RunCycle(context.Background()))

	stored, err := f.layouts.GetByTaskAndZone(context.Background(), task.ID, due.Timezone)
	require.NoError(t, err)
	assert.NotNil(t, stored.DoneAt)

	storedTask, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.NotNil(t, storedTask.StartedAt)
	assert.Nil(t, storedTask.DoneAt, "task finishes only with its last zone")
}
