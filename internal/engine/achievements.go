package engine

import (
	"context"
	"errors"
	"time"

	"github.com/dieKrake/life-leveler-sub000/internal/models"
	"github.com/dieKrake/life-leveler-sub000/internal/repo"
)

// Achievement condition kinds. Eligibility is recomputed from live state on
// every evaluation; nothing is cached.
const (
	ConditionTodosCompleted     = "todos_completed"
	ConditionHardTodosCompleted = "hard_todos_completed"
	ConditionStreakDays         = "streak_days"
	ConditionLevelReached       = "level_reached"
	ConditionGemsEarned         = "gems_earned"
)

// AchievementStatus is one achievement with the user's live progress.
type AchievementStatus struct {
	AchievementID      string     `json:"achievement_id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Icon               string     `json:"icon"`
	CurrentProgress    int        `json:"current_progress"`
	ConditionValue     int        `json:"condition_value"`
	ProgressPercentage int        `json:"progress_percentage"`
	RewardGems         int        `json:"reward_gems"`
	IsUnlocked         bool       `json:"is_unlocked"`
	UnlockedAt         *time.Time `json:"unlocked_at,omitempty"`
}

// ListAchievements evaluates every active achievement against the user's
// current state.
func (e *Engine) ListAchievements(ctx context.Context, userID string) ([]AchievementStatus, error) {
	q := e.repo.Pool

	player, err := e.getOrCreatePlayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	achievements, err := e.repo.ListAchievements(ctx, q)
	if err != nil {
		return nil, err
	}
	unlocked, err := e.repo.ListUnlocked(ctx, q, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]AchievementStatus, 0, len(achievements))
	for _, a := range achievements {
		progress, err := e.conditionProgress(ctx, q, userID, player, a.Condition)
		if err != nil {
			return nil, err
		}
		status := AchievementStatus{
			AchievementID:      a.ID,
			Name:               a.Name,
			Description:        a.Description,
			Icon:               a.Icon,
			CurrentProgress:    progress,
			ConditionValue:     a.ConditionValue,
			ProgressPercentage: progressPercentage(progress, a.ConditionValue),
			RewardGems:         a.RewardGems,
		}
		if at, ok := unlocked[a.ID]; ok {
			status.IsUnlocked = true
			t := at
			status.UnlockedAt = &t
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

type UnlockResult struct {
	AchievementID string `json:"achievement_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	RewardGems    int    `json:"reward_gems"`
}

// UnlockAchievement is the user-initiated one-time claim of an earned
// achievement. Eligibility is checked inside the transaction; the unlock
// record's primary key makes concurrent unlocks single-grant.
func (e *Engine) UnlockAchievement(ctx context.Context, userID, achievementID string) (*UnlockResult, error) {
	var result *UnlockResult
	err := e.repo.WithTx(ctx, func(q repo.Querier) error {
		player, err := e.lockPlayer(ctx, q, userID)
		if err != nil {
			return err
		}

		achievement, err := e.repo.GetAchievement(ctx, q, achievementID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		progress, err := e.conditionProgress(ctx, q, userID, player, achievement.Condition)
		if err != nil {
			return err
		}

		inserted, err := e.repo.InsertUnlock(ctx, q, userID, achievementID)
		if err != nil {
			return err
		}
		if !inserted {
			return ErrAlreadyUnlocked
		}
		if progress < achievement.ConditionValue {
			// Roll back the insert by failing the transaction.
			return ErrNotEligible
		}

		grantGems(player, achievement.RewardGems)
		if err := e.repo.UpdatePlayer(ctx, q, player); err != nil {
			return err
		}
		result = &UnlockResult{
			AchievementID: achievement.ID,
			Name:          achievement.Name,
			Description:   achievement.Description,
			RewardGems:    achievement.RewardGems,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) conditionProgress(ctx context.Context, q repo.Querier, userID string, player *models.PlayerStats, condition string) (int, error) {
	switch condition {
	case ConditionTodosCompleted:
		return e.repo.CountCompletedTodos(ctx, q, userID)
	case ConditionHardTodosCompleted:
		return e.repo.CountCompletedTodosByValue(ctx, q, userID, XPValueHard)
	case ConditionStreakDays:
		return player.CurrentStreak, nil
	case ConditionLevelReached:
		return player.Level, nil
	case ConditionGemsEarned:
		// Gems only accumulate, so the balance is the lifetime total.
		return player.Gems, nil
	default:
		return 0, nil
	}
}

func progressPercentage(progress, target int) int {
	if target <= 0 {
		return 100
	}
	pct := progress * 100 / target
	if pct > 100 {
		return 100
	}
	return pct
}
