package engine

import (
	"context"
	"errors"
	"time"

	"github.com/dieKrake/life-leveler-sub000/internal/repo"
)

// ChallengeView is one challenge instance as served to clients.
type ChallengeView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Progress    int     `json:"progress"`
	Target      int     `json:"target"`
	XPReward    int     `json:"xp_reward"`
	GemReward   int     `json:"gem_reward"`
	Completed   bool    `json:"completed"`
	Claimed     bool    `json:"claimed"`
	TimeLeft    float64 `json:"time_left"`
}

type ChallengeBoard struct {
	Daily  []ChallengeView `json:"daily"`
	Weekly []ChallengeView `json:"weekly"`
}

// ListChallenges rolls the board forward (discarding expired instances,
// creating current-period ones) and returns the active daily and weekly
// challenges.
func (e *Engine) ListChallenges(ctx context.Context, userID string) (*ChallengeBoard, error) {
	now := e.now().UTC()
	board := &ChallengeBoard{Daily: []ChallengeView{}, Weekly: []ChallengeView{}}
	err := e.repo.WithTx(ctx, func(q repo.Querier) error {
		// Serializes concurrent roll-forwards: without the player lock two
		// requests could both pass the no-unexpired-instance check and insert
		// duplicate instances.
		if _, err := e.lockPlayer(ctx, q, userID); err != nil {
			return err
		}
		if _, err := e.repo.DeleteExpiredChallenges(ctx, q, userID, now); err != nil {
			return err
		}
		if err := e.repo.InitializeChallenges(ctx, q, userID, now); err != nil {
			return err
		}
		active, err := e.repo.ListActiveChallenges(ctx, q, userID, now)
		if err != nil {
			return err
		}
		for _, a := range active {
			view := ChallengeView{
				ID:          a.ID,
				Title:       a.Title,
				Description: a.Description,
				Icon:        a.Icon,
				Progress:    a.Progress,
				Target:      a.Target,
				XPReward:    a.XPReward,
				GemReward:   a.GemReward,
				Completed:   a.Completed,
				Claimed:     a.Claimed,
				TimeLeft:    a.PeriodEnd.Sub(now).Round(time.Second).Seconds(),
			}
			if a.Type == "weekly" {
				board.Weekly = append(board.Weekly, view)
			} else {
				board.Daily = append(board.Daily, view)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}

type ClaimResult struct {
	XPEarned   int         `json:"xp_earned"`
	GemsEarned int         `json:"gems_earned"`
	Level      LevelChange `json:"level"`
}

// ClaimChallenge grants the rewards of a completed instance exactly once.
// The compare-and-set on claimed means a concurrent second claim observes
// ErrAlreadyClaimed instead of a double grant.
func (e *Engine) ClaimChallenge(ctx context.Context, userID, userChallengeID string) (*ClaimResult, error) {
	now := e.now().UTC()
	var result *ClaimResult
	err := e.repo.WithTx(ctx, func(q repo.Querier) error {
		player, err := e.lockPlayer(ctx, q, userID)
		if err != nil {
			return err
		}

		xpReward, gemReward, err := e.repo.ClaimChallenge(ctx, q, userChallengeID, userID, now)
		if errors.Is(err, repo.ErrNotFound) {
			return e.classifyClaimFailure(ctx, q, userChallengeID, userID, now)
		}
		if err != nil {
			return err
		}

		change := grantXP(player, xpReward)
		grantGems(player, gemReward)
		if err := e.repo.UpdatePlayer(ctx, q, player); err != nil {
			return err
		}
		result = &ClaimResult{XPEarned: xpReward, GemsEarned: gemReward, Level: change}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) classifyClaimFailure(ctx context.Context, q repo.Querier, userChallengeID, userID string, now time.Time) error {
	uc, err := e.repo.GetUserChallenge(ctx, q, userChallengeID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	switch {
	case uc.Claimed:
		return ErrAlreadyClaimed
	case !uc.Completed:
		return ErrNotCompleted
	case !uc.PeriodEnd.After(now):
		return ErrChallengeExpired
	default:
		return ErrNotFound
	}
}
