package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dieKrake/life-leveler-sub000/internal/models"
)

const todoColumns = `id, user_id, title, start_time, end_time, xp_value, is_completed, completed_at, xp_awarded, archived_at, created_at, updated_at`

func scanTodo(row pgx.Row) (*models.Todo, error) {
	var t models.Todo
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.StartTime, &t.EndTime, &t.XPValue,
		&t.IsCompleted, &t.CompletedAt, &t.XPAwarded, &t.ArchivedAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) CreateTodo(ctx context.Context, userID, title string, startTime, endTime *time.Time, xpValue int) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO todos (user_id, title, start_time, end_time, xp_value)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`, userID, title, startTime, endTime, xpValue).Scan(&id)
	return id, err
}

func (r *Repo) GetTodo(ctx context.Context, q Querier, id, userID string) (*models.Todo, error) {
	return scanTodo(q.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id=$1 AND user_id=$2`, id, userID))
}

func (r *Repo) ListTodos(ctx context.Context, userID string) ([]models.Todo, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+todoColumns+` FROM todos
		WHERE user_id=$1 AND archived_at IS NULL ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var todos []models.Todo
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.StartTime, &t.EndTime, &t.XPValue,
			&t.IsCompleted, &t.CompletedAt, &t.XPAwarded, &t.ArchivedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// MarkTodoCompleted flips an incomplete, unarchived todo to completed and
// returns its base xp_value. Returns ErrNotFound when no such row exists;
// the caller distinguishes already-completed from missing via GetTodo.
func (r *Repo) MarkTodoCompleted(ctx context.Context, q Querier, id, userID string, now time.Time) (int, error) {
	var xpValue int
	err := q.QueryRow(ctx, `UPDATE todos SET is_completed=true, completed_at=$3, updated_at=now()
		WHERE id=$1 AND user_id=$2 AND is_completed=false AND archived_at IS NULL
		RETURNING xp_value`, id, userID, now).Scan(&xpValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return xpValue, err
}

func (r *Repo) SetTodoXPAwarded(ctx context.Context, q Querier, id string, awarded int) error {
	_, err := q.Exec(ctx, `UPDATE todos SET xp_awarded=$2 WHERE id=$1`, id, awarded)
	return err
}

// MarkTodoIncomplete reverses a completion and returns the XP that was
// awarded so the caller can revoke exactly that amount.
func (r *Repo) MarkTodoIncomplete(ctx context.Context, q Querier, id, userID string) (int, error) {
	// RETURNING sees post-update values, so the awarded XP is captured in a CTE first.
	var awarded int
	err := q.QueryRow(ctx, `WITH prev AS (
			SELECT id, xp_awarded FROM todos
			WHERE id=$1 AND user_id=$2 AND is_completed=true AND archived_at IS NULL
			FOR UPDATE
		)
		UPDATE todos t SET is_completed=false, completed_at=NULL, xp_awarded=0, updated_at=now()
		FROM prev WHERE t.id=prev.id
		RETURNING prev.xp_awarded`, id, userID).Scan(&awarded)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return awarded, err
}

// ArchiveTodo is one-way; archiving an archived todo is a no-op error.
func (r *Repo) ArchiveTodo(ctx context.Context, id, userID string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE todos SET archived_at=now(), updated_at=now()
		WHERE id=$1 AND user_id=$2 AND archived_at IS NULL`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) CountCompletedTodos(ctx context.Context, q Querier, userID string) (int, error) {
	var count int
	err := q.QueryRow(ctx, `SELECT count(*) FROM todos WHERE user_id=$1 AND is_completed=true`, userID).Scan(&count)
	return count, err
}

func (r *Repo) CountCompletedTodosByValue(ctx context.Context, q Querier, userID string, xpValue int) (int, error) {
	var count int
	err := q.QueryRow(ctx, `SELECT count(*) FROM todos WHERE user_id=$1 AND is_completed=true AND xp_value=$2`, userID, xpValue).Scan(&count)
	return count, err
}
