package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dieKrake/life-leveler-sub000/internal/models"
)

const playerColumns = `user_id, xp, level, gems, current_streak, last_streak_day, prestige, updated_at`

func scanPlayer(row pgx.Row) (*models.PlayerStats, error) {
	var p models.PlayerStats
	err := row.Scan(&p.UserID, &p.XP, &p.Level, &p.Gems, &p.CurrentStreak, &p.LastStreakDay, &p.Prestige, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) CreatePlayer(ctx context.Context, q Querier, userID string) error {
	_, err := q.Exec(ctx, `INSERT INTO player_stats (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

func (r *Repo) GetPlayer(ctx context.Context, q Querier, userID string) (*models.PlayerStats, error) {
	return scanPlayer(q.QueryRow(ctx, `SELECT `+playerColumns+` FROM player_stats WHERE user_id=$1`, userID))
}

// GetPlayerForUpdate locks the player row for the duration of the enclosing
// transaction, serializing concurrent progression writes for the same user.
func (r *Repo) GetPlayerForUpdate(ctx context.Context, q Querier, userID string) (*models.PlayerStats, error) {
	return scanPlayer(q.QueryRow(ctx, `SELECT `+playerColumns+` FROM player_stats WHERE user_id=$1 FOR UPDATE`, userID))
}

func (r *Repo) UpdatePlayer(ctx context.Context, q Querier, p *models.PlayerStats) error {
	var lastDay *time.Time
	if p.LastStreakDay != nil {
		d := p.LastStreakDay.UTC()
		lastDay = &d
	}
	cmd, err := q.Exec(ctx, `UPDATE player_stats
		SET xp=$1, level=$2, gems=$3, current_streak=$4, last_streak_day=$5, prestige=$6, updated_at=now()
		WHERE user_id=$7`,
		p.XP, p.Level, p.Gems, p.CurrentStreak, lastDay, p.Prestige, p.UserID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
