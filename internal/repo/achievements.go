package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dieKrake/life-leveler-sub000/internal/models"
)

func (r *Repo) GetAchievement(ctx context.Context, q Querier, id string) (*models.Achievement, error) {
	var a models.Achievement
	err := q.QueryRow(ctx, `SELECT id, name, description, condition, condition_value, reward_gems, is_active, icon
		FROM achievements WHERE id=$1 AND is_active=true`, id).
		Scan(&a.ID, &a.Name, &a.Description, &a.Condition, &a.ConditionValue, &a.RewardGems, &a.IsActive, &a.Icon)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) ListAchievements(ctx context.Context, q Querier) ([]models.Achievement, error) {
	rows, err := q.Query(ctx, `SELECT id, name, description, condition, condition_value, reward_gems, is_active, icon
		FROM achievements WHERE is_active=true ORDER BY condition, condition_value`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Achievement
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Condition, &a.ConditionValue, &a.RewardGems, &a.IsActive, &a.Icon); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListUnlocked returns unlock timestamps keyed by achievement id.
func (r *Repo) ListUnlocked(ctx context.Context, q Querier, userID string) (map[string]time.Time, error) {
	rows, err := q.Query(ctx, `SELECT achievement_id, unlocked_at FROM user_achievements WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	unlocked := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		unlocked[id] = at
	}
	return unlocked, rows.Err()
}

// InsertUnlock records a one-time unlock. Returns false when a record already
// exists, guarding concurrent unlocks via the primary key.
func (r *Repo) InsertUnlock(ctx context.Context, q Querier, userID, achievementID string) (bool, error) {
	cmd, err := q.Exec(ctx, `INSERT INTO user_achievements (user_id, achievement_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, achievementID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *Repo) DeleteUnlocks(ctx context.Context, q Querier, userID string) (int, error) {
	cmd, err := q.Exec(ctx, `DELETE FROM user_achievements WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}
