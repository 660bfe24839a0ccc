// Package data implements the persistence layer on PostgreSQL via pgx.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/pushgate/pushgate/internal/errors"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/data/pgxutil"
	"github.com/pushgate/pushgate/internal/domain/model"
)

// ErrSubscriptionNotFound is returned when a subscription is not found.
var ErrSubscriptionNotFound = errors.New("subscription not found")

const subscriptionColumns = `id, endpoint, key, auth_secret, is_active, errors,
	user_agent, timezone, created_at, activated_at, deactivated_at`

// SubscriptionRepo provides database operations for push subscriptions.
type SubscriptionRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSubscriptionRepo creates a new SubscriptionRepo with real time provider.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo {
	return &SubscriptionRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewSubscriptionRepoWithTimeProvider creates a SubscriptionRepo with a custom
// time provider (useful for tests).
func NewSubscriptionRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *SubscriptionRepo {
	return &SubscriptionRepo{DB: db, timeProvider: tp}
}

var _ core.SubscriptionRepository = (*SubscriptionRepo)(nil)

// Create inserts a new subscription.
func (r *SubscriptionRepo) Create(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	if sub == nil {
		return nil, errors.New("subscription is required")
	}
	if err := sub.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid subscription")
	}

	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.timeProvider.Now().UTC()
	}

	var out model.Subscription
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO subscriptions (
				endpoint, key, auth_secret, is_active, errors, user_agent,
				timezone, created_at, activated_at, deactivated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING `+subscriptionColumns,
			sub.Endpoint, sub.Key, sub.AuthSecret, sub.IsActive, sub.Errors,
			sub.UserAgent, sub.Timezone, createdAt, sub.ActivatedAt, sub.DeactivatedAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Subscription])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a subscription by id.
func (r *SubscriptionRepo) GetByID(ctx context.Context, id int64) (*model.Subscription, error) {
	return r.getByQuery(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
}

// GetByEndpoint retrieves a subscription by its unique endpoint.
func (r *SubscriptionRepo) GetByEndpoint(ctx context.Context, endpoint string) (*model.Subscription, error) {
	return r.getByQuery(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE endpoint = $1`, endpoint)
}

func (r *SubscriptionRepo) getByQuery(ctx context.Context, query string, arg any) (*model.Subscription, error) {
	var out model.Subscription
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Subscription])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Update persists the mutable fields of an existing subscription.
func (r *SubscriptionRepo) Update(ctx context.Context, sub *model.Subscription) error {
	if sub == nil || sub.ID == 0 {
		return errors.New("persisted subscription is required")
	}
	if err := sub.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid subscription")
	}

	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE subscriptions SET
				endpoint = $2, key = $3, auth_secret = $4, is_active = $5,
				errors = $6, user_agent = $7, timezone = $8,
				activated_at = $9, deactivated_at = $10
			WHERE id = $1`,
			sub.ID, sub.Endpoint, sub.Key, sub.AuthSecret, sub.IsActive,
			sub.Errors, sub.UserAgent, sub.Timezone, sub.ActivatedAt, sub.DeactivatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrSubscriptionNotFound
		}
		return nil
	}); err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return err
		}
		return apperrors.MapDBError(err)
	}
	return nil
}

// PageByTimezone returns one keyset page of subscriptions in a zone, ordered
// by id ascending. Inactive rows are included on purpose: filtering them in
// SQL would shift page boundaries while the dispatcher deactivates rows
// mid-scan.
func (r *SubscriptionRepo) PageByTimezone(ctx context.Context, params core.PageByTimezoneParams) ([]*model.Subscription, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 1000
	}

	var rowsOut []model.Subscription
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+subscriptionColumns+`
			FROM subscriptions
			WHERE timezone = $1 AND id > $2
			ORDER BY id
			LIMIT $3`,
			params.Timezone, params.AfterID, limit,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Subscription])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	out := make([]*model.Subscription, len(rowsOut))
	for i := range rowsOut {
		out[i] = &rowsOut[i]
	}
	return out, nil
}

// CountActive returns the number of active subscriptions.
func (r *SubscriptionRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE is_active`,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active subscriptions: %w", apperrors.MapDBError(err))
	}
	return count, nil
}

// DeleteInactiveSince removes subscriptions deactivated before the cutoff and
// returns the number of rows deleted.
func (r *SubscriptionRepo) DeleteInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM subscriptions
		WHERE NOT is_active AND deactivated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete inactive subscriptions: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
