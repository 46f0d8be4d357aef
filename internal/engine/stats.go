package engine

import (
	"context"
	"errors"

	"github.com/dieKrake/life-leveler-sub000/internal/models"
	"github.com/dieKrake/life-leveler-sub000/internal/progression"
	"github.com/dieKrake/life-leveler-sub000/internal/repo"
)

// PlayerOverview is the player stats surface.
type PlayerOverview struct {
	XP                int     `json:"xp"`
	Level             int     `json:"level"`
	XPForCurrentLevel int     `json:"xp_for_current_level"`
	XPForNextLevel    int     `json:"xp_for_next_level"`
	CurrentStreak     int     `json:"current_streak"`
	StreakMultiplier  float64 `json:"streak_multiplier"`
	Gems              int     `json:"gems"`
	Prestige          int     `json:"prestige"`
}

func (e *Engine) Stats(ctx context.Context, userID string) (*PlayerOverview, error) {
	player, err := e.getOrCreatePlayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	tiers, err := e.repo.ListStreakTiers(ctx, e.repo.Pool)
	if err != nil {
		return nil, err
	}
	return &PlayerOverview{
		XP:                player.XP,
		Level:             player.Level,
		XPForCurrentLevel: progression.CumulativeXP(player.Level),
		XPForNextLevel:    progression.CumulativeXP(player.Level + 1),
		CurrentStreak:     player.CurrentStreak,
		StreakMultiplier:  tiers.MultiplierFor(player.CurrentStreak),
		Gems:              player.Gems,
		Prestige:          player.Prestige,
	}, nil
}

// StreakTiers returns the current multiplier table.
func (e *Engine) StreakTiers(ctx context.Context) (progression.Tiers, error) {
	return e.repo.ListStreakTiers(ctx, e.repo.Pool)
}

// UpdateStreakTiers replaces the multiplier table after validation; the zero
// tier is mandatory.
func (e *Engine) UpdateStreakTiers(ctx context.Context, tiers progression.Tiers) error {
	if err := tiers.Validate(); err != nil {
		return err
	}
	return e.repo.ReplaceStreakTiers(ctx, tiers)
}

func (e *Engine) getOrCreatePlayer(ctx context.Context, userID string) (*models.PlayerStats, error) {
	player, err := e.repo.GetPlayer(ctx, e.repo.Pool, userID)
	if errors.Is(err, repo.ErrNotFound) {
		if err := e.repo.CreatePlayer(ctx, e.repo.Pool, userID); err != nil {
			return nil, err
		}
		return e.repo.GetPlayer(ctx, e.repo.Pool, userID)
	}
	return player, err
}

// lockPlayer creates the stats row if missing and locks it for the enclosing
// transaction. Locking player_stats first in every mutating operation keeps
// lock ordering consistent.
func (e *Engine) lockPlayer(ctx context.Context, q repo.Querier, userID string) (*models.PlayerStats, error) {
	player, err := e.repo.GetPlayerForUpdate(ctx, q, userID)
	if errors.Is(err, repo.ErrNotFound) {
		if err := e.repo.CreatePlayer(ctx, q, userID); err != nil {
			return nil, err
		}
		return e.repo.GetPlayerForUpdate(ctx, q, userID)
	}
	return player, err
}
