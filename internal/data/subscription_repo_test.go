package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pushgate/pushgate/internal/errors"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/testutil"
)

func TestSubscriptionRepo_CreateGetUpdate(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewSubscriptionRepo(db)

		sub := testutil.NewSubscription().WithTimezone("Europe/Moscow").Build()
		created, err := repo.Create(ctx, sub)
		require.NoError(t, err)
		require.Positive(t, created.ID)
		assert.Equal(t, sub.Endpoint, created.Endpoint)
		assert.True(t, created.IsActive)
		assert.Equal(t, "Europe/Moscow", created.Timezone)

		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Endpoint, byID.Endpoint)

		byEndpoint, err := repo.GetByEndpoint(ctx, created.Endpoint)
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEndpoint.ID)

		byEndpoint.Errors = 12
		byEndpoint.Timezone = "Asia/Tokyo"
		require.NoError(t, repo.Update(ctx, byEndpoint))

		reloaded, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 12, reloaded.Errors)
		assert.Equal(t, "Asia/Tokyo", reloaded.Timezone)
	})
}

func TestSubscriptionRepo_NotFound(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewSubscriptionRepo(db)

		_, err := repo.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, ErrSubscriptionNotFound)

		_, err = repo.GetByEndpoint(ctx, "https://push.example.org/send/nope")
		assert.ErrorIs(t, err, ErrSubscriptionNotFound)

		ghost := testutil.NewSubscription().Build()
		ghost.ID = 999999
		assert.ErrorIs(t, repo.Update(ctx, ghost), ErrSubscriptionNotFound)
	})
}

func TestSubscriptionRepo_DuplicateEndpoint(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewSubscriptionRepo(db)

		sub := testutil.NewSubscription().Build()
		_, err := repo.Create(ctx, sub)
		require.NoError(t, err)

		_, err = repo.Create(ctx, sub)
		assert.True(t, apperrors.IsConflict(err), "endpoint is unique: %v", err)
	})
}

func TestSubscriptionRepo_PageByTimezone(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewSubscriptionRepo(db)

		var ids []int64
		for range 5 {
			created, err := repo.Create(ctx, testutil.NewSubscription().WithTimezone("Europe/Moscow").Build())
			require.NoError(t, err)
			ids = append(ids, created.ID)
		}
		_, err := repo.Create(ctx, testutil.NewSubscription().WithTimezone("UTC").Build())
		require.NoError(t, err)

		page1, err := repo.PageByTimezone(ctx, core.PageByTimezoneParams{
			Timezone: "Europe/Moscow", Limit: 3,
		})
		require.NoError(t, err)
		require.Len(t, page1, 3)
		assert.Equal(t, ids[:3], []int64{page1[0].ID, page1[1].ID, page1[2].ID}, "id ascending")

		page2, err := repo.PageByTimezone(ctx, core.PageByTimezoneParams{
			Timezone: "Europe/Moscow", AfterID: page1[2].ID, Limit: 3,
		})
		require.NoError(t, err)
		require.Len(t, page2, 2)
		assert.Equal(t, ids[3:], []int64{page2[0].ID, page2[1].ID})
	})
}

func TestSubscriptionRepo_CountActiveAndRetention(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewSubscriptionRepo(db)

		_, err := repo.Create(ctx, testutil.NewSubscription().Build())
		require.NoError(t, err)
		_, err = repo.Create(ctx, testutil.NewSubscription().
			Inactive(time.Now().Add(-400*24*time.Hour).UTC()).Build())
		require.NoError(t, err)
		_, err = repo.Create(ctx, testutil.NewSubscription().
			Inactive(time.Now().Add(-24*time.Hour).UTC()).Build())
		require.NoError(t, err)

		count, err := repo.CountActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		deleted, err := repo.DeleteInactiveSince(ctx, time.Now().Add(-365*24*time.Hour).UTC())
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted, "only long-dead subscriptions go")

		count, err = repo.CountActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
