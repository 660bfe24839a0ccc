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

	"github.com/pushgate/pushgate/internal/domain/model"
	"github.com/pushgate/pushgate/internal/data/pgxutil"
)

// ErrTaskNotFound is returned when a task is not found.
var ErrTaskNotFound = errors.New("task not found")

const taskColumns = `id, title, message, url, is_active, image_url, views,
	clicks, closings, created_at, run_at, started_at, done_at`

// TaskRepo provides database operations for push tasks.
type TaskRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewTaskRepo creates a new TaskRepo with real time provider.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

var _ core.TaskRepository = (*TaskRepo)(nil)

// Create inserts a new task.
func (r *TaskRepo) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	if task == nil {
		return nil, errors.New("task is required")
	}
	if err := task.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid task")
	}

	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.timeProvider.Now().UTC()
	}
	runAt := task.RunAt
	if runAt.IsZero() {
		runAt = createdAt
	}

	var out model.Task
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO tasks (
				title, message, url, is_active, image_url, created_at, run_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+taskColumns,
			task.Title, task.Message, task.URL, task.IsActive, task.ImageURL,
			createdAt, runAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Task])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a task by id.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	return r.getByQuery(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
}

// GetPublicByID retrieves a task only if it is active and already started,
// the subset visible to subscribers.
func (r *TaskRepo) GetPublicByID(ctx context.Context, id int64) (*model.Task, error) {
	return r.getByQuery(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE id = $1 AND is_active AND started_at IS NOT NULL`, id)
}

func (r *TaskRepo) getByQuery(ctx context.Context, query string, arg any) (*model.Task, error) {
	var out model.Task
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Task])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// UpdateRunAt changes the send time of a task that has not started yet.
// Started tasks are immutable in this respect and report a validation error.
func (r *TaskRepo) UpdateRunAt(ctx context.Context, id int64, runAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks SET run_at = $2
		WHERE id = $1 AND started_at IS NULL`, id, runAt)
	if err != nil {
		return fmt.Errorf("update task run_at: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.Validation("task is missing or already started")
	}
	return nil
}

// IncrementCounter bumps one statistics counter with a single UPDATE. The
// counter name is validated against the known set before interpolation.
func (r *TaskRepo) IncrementCounter(ctx context.Context, id int64, counter model.TaskCounter) error {
	if !counter.Valid() {
		return apperrors.ValidationField("counter", "unknown task counter")
	}
	query := fmt.Sprintf(`UPDATE tasks SET %s = %s + 1 WHERE id = $1`, counter, counter)
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment task %s: %w", counter, apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}
