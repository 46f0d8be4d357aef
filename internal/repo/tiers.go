package repo

import (
	"context"

	"github.com/dieKrake/life-leveler-sub000/internal/progression"
)

func (r *Repo) ListStreakTiers(ctx context.Context, q Querier) (progression.Tiers, error) {
	rows, err := q.Query(ctx, `SELECT min_streak_days, multiplier FROM streak_tiers ORDER BY min_streak_days`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tiers progression.Tiers
	for rows.Next() {
		var t progression.Tier
		if err := rows.Scan(&t.MinStreakDays, &t.Multiplier); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// An empty table never disables the multiplier floor.
	if len(tiers) == 0 {
		tiers = progression.DefaultTiers()
	}
	return tiers, nil
}

// ReplaceStreakTiers swaps the whole tier table. Callers validate the new
// set before invoking.
func (r *Repo) ReplaceStreakTiers(ctx context.Context, tiers progression.Tiers) error {
	return r.WithTx(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM streak_tiers`); err != nil {
			return err
		}
		for _, t := range tiers {
			if _, err := q.Exec(ctx, `INSERT INTO streak_tiers (min_streak_days, multiplier) VALUES ($1, $2)`,
				t.MinStreakDays, t.Multiplier); err != nil {
				return err
			}
		}
		return nil
	})
}
