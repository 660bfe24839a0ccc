package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushgate/pushgate/internal/domain/model"
	"github.com/pushgate/pushgate/internal/testutil"
)

func createTestTask(t *testing.T, db *sql.DB, runAt time.Time) *model.Task {
	t.Helper()
	task, err := NewTaskRepo(db).Create(context.Background(),
		testutil.NewTask().WithRunAt(runAt).Build())
	require.NoError(t, err)
	return task
}

func TestLayoutRepo_ReplaceForTask(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewLayoutRepo(db)
		task := createTestTask(t, db, time.Now().Add(time.Hour).UTC())

		first := []model.TimezoneLayout{
			{Timezone: "UTC", RunAt: task.RunAt},
			{Timezone: "Europe/Moscow", RunAt: task.RunAt.Add(-3 * time.Hour)},
		}
		require.NoError(t, repo.ReplaceForTask(ctx, task.ID, first))

		count, err := repo.CountByTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		// A second replacement fully supersedes the first set.
		second := []model.TimezoneLayout{
			{Timezone: "Asia/Tokyo", RunAt: task.RunAt.Add(9 * time.Hour)},
		}
		require.NoError(t, repo.ReplaceForTask(ctx, task.ID, second))

		set, err := repo.ListByTask(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, set, 1)
		assert.Equal(t, "Asia/Tokyo", set[0].Timezone)

		layout, err := repo.GetByTaskAndZone(ctx, task.ID, "Asia/Tokyo")
		require.NoError(t, err)
		assert.True(t, layout.RunAt.Equal(second[0].RunAt))

		_, err = repo.GetByTaskAndZone(ctx, task.ID, "UTC")
		assert.ErrorIs(t, err, ErrLayoutNotFound)
	})
}

func TestLayoutRepo_ListDue(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewLayoutRepo(db)
		now := time.Now().UTC()

		due := createTestTask(t, db, now.Add(-time.Minute))
		require.NoError(t, repo.ReplaceForTask(ctx, due.ID, []model.TimezoneLayout{
			{Timezone: "Europe/Moscow", RunAt: now.Add(-2 * time.Minute)},
			{Timezone: "UTC", RunAt: now.Add(-time.Minute)},
			{Timezone: "Asia/Tokyo", RunAt: now.Add(time.Hour)},
		}))

		future := createTestTask(t, db, now.Add(time.Hour))
		require.NoError(t, repo.ReplaceForTask(ctx, future.ID, []model.TimezoneLayout{
			{Timezone: "UTC", RunAt: now.Add(time.Hour)},
		}))

		list, err := repo.ListDue(ctx, now)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Europe/Moscow", list[0].Timezone, "earliest due first")
		assert.Equal(t, "UTC", list[1].Timezone)

		// A started layout leaves the due set.
		require.NoError(t, repo.MarkStarted(ctx, list[0].ID, now))
		list, err = repo.ListDue(ctx, now)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "UTC", list[0].Timezone)
	})
}

func TestLayoutRepo_MarkStartedAndDone_StampsTask(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		layouts := NewLayoutRepo(db)
		tasks := NewTaskRepo(db)
		now := time.Now().UTC()

		task := createTestTask(t, db, now.Add(-time.Minute))
		require.NoError(t, layouts.ReplaceForTask(ctx, task.ID, []model.TimezoneLayout{
			{Timezone: "UTC", RunAt: now.Add(-time.Minute)},
			{Timezone: "Europe/Moscow", RunAt: now.Add(-time.Minute)},
		}))
		set, err := layouts.ListByTask(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, set, 2)

		// First layout start stamps the task.
		require.NoError(t, layouts.MarkStarted(ctx, set[0].ID, now))
		got, err := tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		require.NotNil(t, got.StartedAt)

		// Task is done only after its last layout is.
		require.NoError(t, layouts.MarkDone(ctx, set[0].ID, now))
		got, err = tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Nil(t, got.DoneAt)

		require.NoError(t, layouts.MarkStarted(ctx, set[1].ID, now))
		require.NoError(t, layouts.MarkDone(ctx, set[1].ID, now))
		got, err = tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.NotNil(t, got.DoneAt)

		assert.ErrorIs(t, layouts.MarkStarted(ctx, set[0].ID, now), ErrLayoutNotFound,
			"already-started layouts cannot be restarted")
		assert.ErrorIs(t, layouts.MarkDone(ctx, 999999, now), ErrLayoutNotFound)
	})
}

func TestLayoutRepo_LastPublicByZone(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		layouts := NewLayoutRepo(db)
		now := time.Now().UTC()

		older := createTestTask(t, db, now.Add(-2*time.Hour))
		newer := createTestTask(t, db, now.Add(-time.Hour))
		for _, task := range []*model.Task{older, newer} {
			require.NoError(t, layouts.ReplaceForTask(ctx, task.ID, []model.TimezoneLayout{
				{Timezone: "Europe/Moscow", RunAt: task.RunAt},
			}))
			set, err := layouts.ListByTask(ctx, task.ID)
			require.NoError(t, err)
			require.NoError(t, layouts.MarkStarted(ctx, set[0].ID, task.RunAt))
		}

		last, err := layouts.LastPublicByZone(ctx, "Europe/Moscow")
		require.NoError(t, err)
		assert.Equal(t, newer.ID, last.TaskID, "most recent send wins")

		_, err = layouts.LastPublicByZone(ctx, "Asia/Tokyo")
		assert.ErrorIs(t, err, ErrLayoutNotFound)
	})
}

func TestLayoutRepo_DeleteForTasksDoneBefore(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		layouts := NewLayoutRepo(db)
		now := time.Now().UTC()

		finishTask := func(doneAt time.Time) *model.Task {
			task := createTestTask(t, db, doneAt.Add(-time.Minute))
			require.NoError(t, layouts.ReplaceForTask(ctx, task.ID, []model.TimezoneLayout{
				{Timezone: "UTC", RunAt: task.RunAt},
			}))
			set, err := layouts.ListByTask(ctx, task.ID)
			require.NoError(t, err)
			require.NoError(t, layouts.MarkStarted(ctx, set[0].ID, task.RunAt))
			require.NoError(t, layouts.MarkDone(ctx, set[0].ID, doneAt))
			return task
		}

		stale := finishTask(now.Add(-100 * 24 * time.Hour))
		fresh := finishTask(now.Add(-24 * time.Hour))

		deleted, err := layouts.DeleteForTasksDoneBefore(ctx, now.Add(-90*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		count, err := layouts.CountByTask(ctx, stale.ID)
		require.NoError(t, err)
		assert.Zero(t, count)

		count, err = layouts.CountByTask(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
