package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dieKrake/life-leveler-sub000/internal/models"
	"github.com/dieKrake/life-leveler-sub000/internal/progression"
)

func TestGrantXPLevelUp(t *testing.T) {
	p := &models.PlayerStats{Level: 1}

	change := grantXP(p, 10)
	assert.Equal(t, 10, p.XP)
	assert.Equal(t, 1, p.Level)
	assert.False(t, change.DidLevelUp)

	change = grantXP(p, 90)
	assert.Equal(t, 100, p.XP)
	assert.Equal(t, 2, p.Level)
	assert.True(t, change.DidLevelUp)
	assert.Equal(t, 1, change.OldLevel)
	assert.Equal(t, 2, change.NewLevel)
}

func TestGrantXPMultiLevelJump(t *testing.T) {
	p := &models.PlayerStats{Level: 1}
	change := grantXP(p, 500)
	assert.Equal(t, 4, p.Level)
	assert.True(t, change.DidLevelUp)
}

func TestRevokeXPClampsAtZero(t *testing.T) {
	p := &models.PlayerStats{XP: 30, Level: 1}
	change := revokeXP(p, 100)
	assert.Equal(t, 0, p.XP)
	assert.Equal(t, 1, p.Level)
	assert.False(t, change.DidLevelUp)
}

func TestRevokeXPRecomputesLevelDown(t *testing.T) {
	p := &models.PlayerStats{XP: 120, Level: 2}
	change := revokeXP(p, 50)
	assert.Equal(t, 70, p.XP)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 2, change.OldLevel)
	assert.Equal(t, 1, change.NewLevel)
}

func TestGrantRevokeRoundTrip(t *testing.T) {
	p := &models.PlayerStats{XP: 230, Level: 2}
	grantXP(p, 45)
	revokeXP(p, 45)
	assert.Equal(t, 230, p.XP)
	assert.Equal(t, 2, p.Level)
}

func TestRevokeGemsFloorsAtZero(t *testing.T) {
	p := &models.PlayerStats{Gems: 10}
	revokeGems(p, 25)
	assert.Equal(t, 0, p.Gems)
}

func TestBumpStreakTierBoundary(t *testing.T) {
	// A completion on day 7 is scaled by the streak-7 tier, not the pre-bump one.
	now := time.Date(2024, 5, 7, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	p := &models.PlayerStats{CurrentStreak: 6, LastStreakDay: &yesterday}

	counted := bumpStreak(p, now)
	assert.True(t, counted)
	assert.Equal(t, 7, p.CurrentStreak)
	assert.Equal(t, 1.2, progression.DefaultTiers().MultiplierFor(p.CurrentStreak))
}

func TestBumpStreakSameDayUnchanged(t *testing.T) {
	now := time.Date(2024, 5, 7, 18, 0, 0, 0, time.UTC)
	earlier := now.Add(-6 * time.Hour)
	p := &models.PlayerStats{CurrentStreak: 3, LastStreakDay: &earlier}

	counted := bumpStreak(p, now)
	assert.False(t, counted)
	assert.Equal(t, 3, p.CurrentStreak)
}

func TestCountersFor(t *testing.T) {
	noon := time.Date(2024, 5, 7, 12, 0, 0, 0, time.UTC)
	assert.ElementsMatch(t,
		[]string{CounterTodosCompleted, CounterEasyCompleted},
		countersFor(XPValueEasy, noon))

	morning := time.Date(2024, 5, 7, 7, 30, 0, 0, time.UTC)
	assert.ElementsMatch(t,
		[]string{CounterTodosCompleted, CounterHardCompleted, CounterEarlyBird},
		countersFor(XPValueHard, morning))

	late := time.Date(2024, 5, 7, 22, 0, 0, 0, time.UTC)
	assert.ElementsMatch(t,
		[]string{CounterTodosCompleted, CounterMediumCompleted, CounterNightOwl},
		countersFor(XPValueMedium, late))
}

func TestValidXPValue(t *testing.T) {
	assert.True(t, ValidXPValue(10))
	assert.True(t, ValidXPValue(20))
	assert.True(t, ValidXPValue(30))
	assert.False(t, ValidXPValue(0))
	assert.False(t, ValidXPValue(15))
	assert.False(t, ValidXPValue(-10))
}
