package engine

import (
	"context"
	"errors"
	"math"

	"github.com/dieKrake/life-leveler-sub000/internal/repo"
)

// CompleteResult reports the effects of a completion toggle. Applied is false
// for idempotent no-ops (completing an already-completed todo).
type CompleteResult struct {
	Applied           bool        `json:"applied"`
	XPAwarded         int         `json:"xp_awarded"`
	Multiplier        float64     `json:"multiplier"`
	Streak            int         `json:"streak"`
	Level             LevelChange `json:"level"`
	ChallengesUpdated bool        `json:"challenges_updated"`
	ChallengesDone    []string    `json:"challenges_done,omitempty"`
}

// CompleteTodo applies a completion: flips the todo, bumps the streak, grants
// streak-scaled XP and feeds every matching challenge counter, atomically.
func (e *Engine) CompleteTodo(ctx context.Context, userID, todoID string) (*CompleteResult, error) {
	now := e.now().UTC()
	var result *CompleteResult
	err := e.repo.WithTx(ctx, func(q repo.Querier) error {
		player, err := e.lockPlayer(ctx, q, userID)
		if err != nil {
			return err
		}

		xpValue, err := e.repo.MarkTodoCompleted(ctx, q, todoID, userID, now)
		if errors.Is(err, repo.ErrNotFound) {
			todo, gerr := e.repo.GetTodo(ctx, q, todoID, userID)
			if gerr != nil {
				if errors.Is(gerr, repo.ErrNotFound) {
					return ErrNotFound
				}
				return gerr
			}
			if todo.ArchivedAt != nil {
				return ErrTodoArchived
			}
			// Already completed: retry-safe no-op.
			result = &CompleteResult{
				Applied:    false,
				Streak:     player.CurrentStreak,
				Multiplier: 1.0,
				Level:      LevelChange{OldLevel: player.Level, NewLevel: player.Level},
			}
			return nil
		}
		if err != nil {
			return err
		}

		tiers, err := e.repo.ListStreakTiers(ctx, q)
		if err != nil {
			return err
		}

		// The post-bump streak decides the multiplier for this grant.
		bumpStreak(player, now)
		multiplier := tiers.MultiplierFor(player.CurrentStreak)
		effectiveXP := int(math.Round(float64(xpValue) * multiplier))
		change := grantXP(player, effectiveXP)

		if err := e.repo.UpdatePlayer(ctx, q, player); err != nil {
			return err
		}
		if err := e.repo.SetTodoXPAwarded(ctx, q, todoID, effectiveXP); err != nil {
			return err
		}

		// Roll the challenge board forward before counting so the event lands
		// on current-period instances only.
		if _, err := e.repo.DeleteExpiredChallenges(ctx, q, userID, now); err != nil {
			return err
		}
		if err := e.repo.InitializeChallenges(ctx, q, userID, now); err != nil {
			return err
		}
		completions, err := e.repo.IncrementChallengeProgress(ctx, q, userID, countersFor(xpValue, now), now)
		if err != nil {
			return err
		}

		result = &CompleteResult{
			Applied:           true,
			XPAwarded:         effectiveXP,
			Multiplier:        multiplier,
			Streak:            player.CurrentStreak,
			Level:             change,
			ChallengesUpdated: true,
		}
		for _, c := range completions {
			result.ChallengesDone = append(result.ChallengesDone, c.Title)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UncompleteResult reports an undo. The revoked amount is the exact XP the
// original completion granted.
type UncompleteResult struct {
	Applied   bool        `json:"applied"`
	XPRevoked int         `json:"xp_revoked"`
	Level     LevelChange `json:"level"`
}

// UncompleteTodo reverses a completion. XP is revoked exactly; the streak is
// intentionally not reverted (later completions may have advanced it, and a
// deterministic rollback does not exist), and challenge progress stays
// monotonic.
func (e *Engine) UncompleteTodo(ctx context.Context, userID, todoID string) (*UncompleteResult, error) {
	var result *UncompleteResult
	err := e.repo.WithTx(ctx, func(q repo.Querier) error {
		player, err := e.lockPlayer(ctx, q, userID)
		if err != nil {
			return err
		}

		awarded, err := e.repo.MarkTodoIncomplete(ctx, q, todoID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			todo, gerr := e.repo.GetTodo(ctx, q, todoID, userID)
			if gerr != nil {
				if errors.Is(gerr, repo.ErrNotFound) {
					return ErrNotFound
				}
				return gerr
			}
			if todo.ArchivedAt != nil {
				return ErrTodoArchived
			}
			// Already incomplete: retry-safe no-op.
			result = &UncompleteResult{
				Applied: false,
				Level:   LevelChange{OldLevel: player.Level, NewLevel: player.Level},
			}
			return nil
		}
		if err != nil {
			return err
		}

		change := revokeXP(player, awarded)
		if err := e.repo.UpdatePlayer(ctx, q, player); err != nil {
			return err
		}
		result = &UncompleteResult{Applied: true, XPRevoked: awarded, Level: change}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
