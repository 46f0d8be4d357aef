package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerStats is the per-user progression row. It is mutated exclusively by
// the engine; xp, gems and prestige never go below zero, and level always
// matches the curve for the stored xp.
type PlayerStats struct {
	UserID        string     `json:"user_id"`
	XP            int        `json:"xp"`
	Level         int        `json:"level"`
	Gems          int        `json:"gems"`
	CurrentStreak int        `json:"current_streak"`
	LastStreakDay *time.Time `json:"last_streak_day"`
	Prestige      int        `json:"prestige"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Todo struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	XPValue     int        `json:"xp_value"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	// XPAwarded records the exact effective XP granted at completion time so
	// that uncompleting revokes precisely what was granted.
	XPAwarded  int        `json:"xp_awarded"`
	ArchivedAt *time.Time `json:"archived_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Challenge is an admin-managed template. Counter names the completion
// counter the challenge tracks (see engine counter constants).
type Challenge struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Counter     string `json:"counter"`
	Target      int    `json:"target"`
	XPReward    int    `json:"xp_reward"`
	GemReward   int    `json:"gem_reward"`
	IsActive    bool   `json:"is_active"`
	Icon        string `json:"icon"`
}

// UserChallenge is a time-boxed per-user instance of a template.
type UserChallenge struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ChallengeID string    `json:"challenge_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Progress    int       `json:"progress"`
	Completed   bool      `json:"completed"`
	Claimed     bool      `json:"claimed"`
	CreatedAt   time.Time `json:"created_at"`
}

type Achievement struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Condition      string `json:"condition"`
	ConditionValue int    `json:"condition_value"`
	RewardGems     int    `json:"reward_gems"`
	IsActive       bool   `json:"is_active"`
	Icon           string `json:"icon"`
}

type UserAchievement struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
