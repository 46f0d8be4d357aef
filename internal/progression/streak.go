package progression

import (
	"errors"
	"time"
)

// Tier grants a multiplicative XP bonus once a streak reaches MinStreakDays.
type Tier struct {
	MinStreakDays int     `json:"min_streak_days"`
	Multiplier    float64 `json:"multiplier"`
}

// Tiers is a streak multiplier table, sorted ascending by MinStreakDays.
// A valid table always contains a zero tier as the default floor.
type Tiers []Tier

func DefaultTiers() Tiers {
	return Tiers{
		{MinStreakDays: 0, Multiplier: 1.0},
		{MinStreakDays: 7, Multiplier: 1.2},
		{MinStreakDays: 14, Multiplier: 1.5},
		{MinStreakDays: 30, Multiplier: 2.0},
	}
}

var (
	ErrNoZeroTier     = errors.New("tier table must contain a min_streak_days=0 tier")
	ErrTiersNotSorted = errors.New("tiers must be strictly increasing in both fields")
)

func (t Tiers) Validate() error {
	if len(t) == 0 || t[0].MinStreakDays != 0 {
		return ErrNoZeroTier
	}
	for i := 1; i < len(t); i++ {
		if t[i].MinStreakDays <= t[i-1].MinStreakDays || t[i].Multiplier <= t[i-1].Multiplier {
			return ErrTiersNotSorted
		}
	}
	return nil
}

// MultiplierFor returns the multiplier of the highest tier whose
// MinStreakDays does not exceed streakDays.
func (t Tiers) MultiplierFor(streakDays int) float64 {
	mult := 1.0
	for _, tier := range t {
		if tier.MinStreakDays > streakDays {
			break
		}
		mult = tier.Multiplier
	}
	return mult
}

// NextStreak computes the streak after a completion at now, given the current
// streak and the last counted day. The returned bool reports whether the
// completion counted toward the streak: a second completion on an already
// counted day leaves it unchanged.
func NextStreak(current int, lastDay *time.Time, now time.Time) (int, bool) {
	if lastDay == nil || current <= 0 {
		return 1, true
	}
	last := dateOf(*lastDay)
	today := dateOf(now)
	switch days := int(today.Sub(last).Hours() / 24); {
	case days <= 0:
		return current, false
	case days == 1:
		return current + 1, true
	default:
		return 1, true
	}
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
