package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pushgate/pushgate/internal/core"
	apperrors "github.com/pushgate/pushgate/internal/errors"

	"github.com/pushgate/pushgate/internal/data/pgxutil"
	"github.com/pushgate/pushgate/internal/domain/model"
)

// ErrLayoutNotFound is returned when a timezone sub-task is not found.
var ErrLayoutNotFound = errors.New("timezone layout not found")

const layoutColumns = `id, task_id, timezone, run_at, started_at, done_at`

// LayoutRepo provides database operations for timezone sub-tasks.
type LayoutRepo struct {
	DB *sql.DB
}

// NewLayoutRepo creates a new LayoutRepo.
func NewLayoutRepo(db *sql.DB) *LayoutRepo {
	return &LayoutRepo{DB: db}
}

var _ core.LayoutRepository = (*LayoutRepo)(nil)

// ReplaceForTask atomically swaps the task's full layout set: delete-all then
// bulk-insert inside one transaction, so a partial regeneration is never
// observable.
func (r *LayoutRepo) ReplaceForTask(ctx context.Context, taskID int64, layouts []model.TimezoneLayout) error {
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM timezone_layouts WHERE task_id = $1`, taskID); err != nil {
			return fmt.Errorf("delete old layouts: %w", err)
		}

		rows := make([][]any, 0, len(layouts))
		for _, l := range layouts {
			rows = append(rows, []any{taskID, l.Timezone, l.RunAt})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"timezone_layouts"},
			[]string{"task_id", "timezone", "run_at"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("bulk insert layouts: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// ListByTask returns all layouts of a task.
func (r *LayoutRepo) ListByTask(ctx context.Context, taskID int64) ([]*model.TimezoneLayout, error) {
	return r.list(ctx, `
		SELECT `+layoutColumns+` FROM timezone_layouts
		WHERE task_id = $1 ORDER BY timezone`, taskID)
}

// GetByTaskAndZone returns the single layout of a task for one zone.
func (r *LayoutRepo) GetByTaskAndZone(ctx context.Context, taskID int64, timezone string) (*model.TimezoneLayout, error) {
	var out model.TimezoneLayout
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+layoutColumns+` FROM timezone_layouts
			WHERE task_id = $1 AND timezone = $2`, taskID, timezone)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TimezoneLayout])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLayoutNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// CountByTask returns the number of layouts a task currently owns.
func (r *LayoutRepo) CountByTask(ctx context.Context, taskID int64) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM timezone_layouts WHERE task_id = $1`, taskID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count layouts: %w", apperrors.MapDBError(err))
	}
	return count, nil
}

// ListDue returns the sub-tasks ready for delivery: parent task active,
// run_at in the past, not started, not done. Earliest due first.
func (r *LayoutRepo) ListDue(ctx context.Context, now time.Time) ([]*model.TimezoneLayout, error) {
	return r.list(ctx, `
		SELECT l.id, l.task_id, l.timezone, l.run_at, l.started_at, l.done_at
		FROM timezone_layouts l
		JOIN tasks t ON t.id = l.task_id
		WHERE t.is_active
		  AND l.run_at <= $1
		  AND l.done_at IS NULL
		  AND l.started_at IS NULL
		ORDER BY l.run_at`, now)
}

// MarkStarted stamps the layout's started_at and, if the parent task has not
// started yet, the task's too, in one transaction. This is the moment the
// task counts as in flight.
func (r *LayoutRepo) MarkStarted(ctx context.Context, id int64, at time.Time) error {
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		var taskID int64
		if err := tx.QueryRow(ctx, `
			UPDATE timezone_layouts SET started_at = $2
			WHERE id = $1 AND started_at IS NULL
			RETURNING task_id`, id, at,
		).Scan(&taskID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrLayoutNotFound
			}
			return fmt.Errorf("stamp layout started_at: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET started_at = $2
			WHERE id = $1 AND started_at IS NULL`, taskID, at); err != nil {
			return fmt.Errorf("stamp task started_at: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLayoutNotFound) {
			return err
		}
		return apperrors.MapDBError(err)
	}
	return nil
}

// MarkDone stamps the layout's done_at and, when no undone sibling remains,
// the parent task's done_at, in one transaction.
func (r *LayoutRepo) MarkDone(ctx context.Context, id int64, at time.Time) error {
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		var taskID int64
		if err := tx.QueryRow(ctx, `
			UPDATE timezone_layouts SET done_at = $2
			WHERE id = $1 AND done_at IS NULL
			RETURNING task_id`, id, at,
		).Scan(&taskID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrLayoutNotFound
			}
			return fmt.Errorf("stamp layout done_at: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET done_at = $2
			WHERE id = $1
			  AND NOT EXISTS (
				SELECT 1 FROM timezone_layouts
				WHERE task_id = $1 AND done_at IS NULL
			  )`, taskID, at); err != nil {
			return fmt.Errorf("stamp task done_at: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLayoutNotFound) {
			return err
		}
		return apperrors.MapDBError(err)
	}
	return nil
}

// LastPublicByZone returns the most recent started layout of an active task
// for the given zone. Legacy subscriptions without key material poll this to
// fetch the notification they were pinged about.
func (r *LayoutRepo) LastPublicByZone(ctx context.Context, timezone string) (*model.TimezoneLayout, error) {
	var out model.TimezoneLayout
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT l.id, l.task_id, l.timezone, l.run_at, l.started_at, l.done_at
			FROM timezone_layouts l
			JOIN tasks t ON t.id = l.task_id
			WHERE t.is_active AND l.started_at IS NOT NULL AND l.timezone = $1
			ORDER BY l.run_at DESC
			LIMIT 1`, timezone)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TimezoneLayout])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLayoutNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// DeleteForTasksDoneBefore removes layouts belonging to tasks completed
// before the cutoff and returns the number of rows deleted.
func (r *LayoutRepo) DeleteForTasksDoneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM timezone_layouts
		WHERE task_id IN (
			SELECT id FROM tasks WHERE done_at < $1
		)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale layouts: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *LayoutRepo) list(ctx context.Context, query string, args ...any) ([]*model.TimezoneLayout, error) {
	var rowsOut []model.TimezoneLayout
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.TimezoneLayout])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	out := make([]*model.TimezoneLayout, len(rowsOut))
	for i := range rowsOut {
		out[i] = &rowsOut[i]
	}
	return out, nil
}
