package engine

import (
	"time"

	"github.com/dieKrake/life-leveler-sub000/internal/repo"
)

// Completion counters challenge templates can track. Every matching template
// receives progress independently; the counters are orthogonal.
const (
	CounterTodosCompleted  = "todos_completed"
	CounterEasyCompleted   = "easy_completed"
	CounterMediumCompleted = "medium_completed"
	CounterHardCompleted   = "hard_completed"
	CounterEarlyBird       = "early_bird"
	CounterNightOwl        = "night_owl"
)

// Difficulty tiers map directly onto todo xp_value.
const (
	XPValueEasy   = 10
	XPValueMedium = 20
	XPValueHard   = 30
)

const (
	earlyBirdHour = 9
	nightOwlHour  = 21
)

// Engine implements the progression and reward rules. Every mutating
// operation runs as a single transaction with the player row locked first,
// so concurrent requests for the same user serialize deterministically.
type Engine struct {
	repo *repo.Repo

	// MaxLevel gates prestige eligibility.
	MaxLevel int
	// PrestigeBonusGems is granted on every prestige.
	PrestigeBonusGems int

	now func() time.Time
}

func New(r *repo.Repo) *Engine {
	return &Engine{
		repo:              r,
		MaxLevel:          10,
		PrestigeBonusGems: 50,
		now:               time.Now,
	}
}

func ValidXPValue(v int) bool {
	return v == XPValueEasy || v == XPValueMedium || v == XPValueHard
}

// countersFor lists the challenge counters a completion at the given time
// touches: the total count, the difficulty counter, and any time-of-day
// predicate.
func countersFor(xpValue int, completedAt time.Time) []string {
	counters := []string{CounterTodosCompleted}
	switch xpValue {
	case XPValueEasy:
		counters = append(counters, CounterEasyCompleted)
	case XPValueMedium:
		counters = append(counters, CounterMediumCompleted)
	case XPValueHard:
		counters = append(counters, CounterHardCompleted)
	}
	hour := completedAt.UTC().Hour()
	if hour < earlyBirdHour {
		counters = append(counters, CounterEarlyBird)
	}
	if hour >= nightOwlHour {
		counters = append(counters, CounterNightOwl)
	}
	return counters
}
