package engine

import (
	"context"

	"github.com/dieKrake/life-leveler-sub000/internal/repo"
)

type PrestigeResult struct {
	NewPrestige       int `json:"new_prestige"`
	GemsEarned        int `json:"gems_earned"`
	AchievementsReset int `json:"achievements_reset"`
}

// Prestige trades level, XP and unlocked achievements for a permanent gem
// bonus and a prestige increment. Gems, streak and todos are untouched.
func (e *Engine) Prestige(ctx context.Context, userID string) (*PrestigeResult, error) {
	var result *PrestigeResult
	err := e.repo.WithTx(ctx, func(q repo.Querier) error {
		player, err := e.lockPlayer(ctx, q, userID)
		if err != nil {
			return err
		}
		if player.Level < e.MaxLevel {
			return ErrNotEligible
		}

		player.Prestige++
		player.Level = 1
		player.XP = 0
		grantGems(player, e.PrestigeBonusGems)

		reset, err := e.repo.DeleteUnlocks(ctx, q, userID)
		if err != nil {
			return err
		}
		if err := e.repo.UpdatePlayer(ctx, q, player); err != nil {
			return err
		}
		result = &PrestigeResult{
			NewPrestige:       player.Prestige,
			GemsEarned:        e.PrestigeBonusGems,
			AchievementsReset: reset,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
