package engine

import (
	"time"

	"github.com/dieKrake/life-leveler-sub000/internal/models"
	"github.com/dieKrake/life-leveler-sub000/internal/progression"
)

// LevelChange reports the level transition of an XP mutation.
type LevelChange struct {
	OldLevel   int  `json:"old_level"`
	NewLevel   int  `json:"new_level"`
	DidLevelUp bool `json:"did_level_up"`
}

// grantXP adds amount and recomputes the level. The amount is expected to be
// pre-scaled by the streak multiplier; the stats themselves are
// multiplier-agnostic.
func grantXP(p *models.PlayerStats, amount int) LevelChange {
	old := p.Level
	p.XP += amount
	p.Level = progression.LevelForXP(p.XP)
	return LevelChange{OldLevel: old, NewLevel: p.Level, DidLevelUp: p.Level > old}
}

// revokeXP subtracts amount, clamped at zero, and recomputes the level
// downward accordingly.
func revokeXP(p *models.PlayerStats, amount int) LevelChange {
	old := p.Level
	p.XP -= amount
	if p.XP < 0 {
		p.XP = 0
	}
	p.Level = progression.LevelForXP(p.XP)
	return LevelChange{OldLevel: old, NewLevel: p.Level, DidLevelUp: false}
}

func grantGems(p *models.PlayerStats, amount int) {
	p.Gems += amount
}

func revokeGems(p *models.PlayerStats, amount int) {
	p.Gems -= amount
	if p.Gems < 0 {
		p.Gems = 0
	}
}

// bumpStreak advances the consecutive-day streak for a completion at now.
// Same-day completions leave the streak untouched.
func bumpStreak(p *models.PlayerStats, now time.Time) bool {
	next, counted := progression.NextStreak(p.CurrentStreak, p.LastStreakDay, now)
	p.CurrentStreak = next
	if counted {
		day := now.UTC()
		p.LastStreakDay = &day
	}
	return counted
}
