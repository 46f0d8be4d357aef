package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMultiplierFor(t *testing.T) {
	tiers := DefaultTiers()
	cases := []struct {
		days int
		mult float64
	}{
		{0, 1.0},
		{6, 1.0},
		{7, 1.2},
		{13, 1.2},
		{14, 1.5},
		{29, 1.5},
		{30, 2.0},
		{365, 2.0},
	}
	for _, c := range cases {
		assert.Equal(t, c.mult, tiers.MultiplierFor(c.days), "days=%d", c.days)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultTiers().Validate())

	assert.ErrorIs(t, Tiers{}.Validate(), ErrNoZeroTier)
	assert.ErrorIs(t, Tiers{{MinStreakDays: 5, Multiplier: 1.1}}.Validate(), ErrNoZeroTier)

	notIncreasingDays := Tiers{
		{MinStreakDays: 0, Multiplier: 1.0},
		{MinStreakDays: 0, Multiplier: 1.2},
	}
	assert.ErrorIs(t, notIncreasingDays.Validate(), ErrTiersNotSorted)

	notIncreasingMult := Tiers{
		{MinStreakDays: 0, Multiplier: 1.0},
		{MinStreakDays: 7, Multiplier: 1.0},
	}
	assert.ErrorIs(t, notIncreasingMult.Validate(), ErrTiersNotSorted)
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	earlierToday := now.Add(-4 * time.Hour)
	threeDaysAgo := now.AddDate(0, 0, -3)

	streak, counted := NextStreak(0, nil, now)
	assert.Equal(t, 1, streak)
	assert.True(t, counted)

	streak, counted = NextStreak(4, &yesterday, now)
	assert.Equal(t, 5, streak)
	assert.True(t, counted)

	streak, counted = NextStreak(4, &earlierToday, now)
	assert.Equal(t, 4, streak)
	assert.False(t, counted)

	streak, counted = NextStreak(4, &threeDaysAgo, now)
	assert.Equal(t, 1, streak)
	assert.True(t, counted)
}

func TestNextStreakAcrossMidnight(t *testing.T) {
	// 23:50 one day and 00:10 the next are consecutive calendar days.
	last := time.Date(2024, 3, 10, 23, 50, 0, 0, time.UTC)
	now := time.Date(2024, 3, 11, 0, 10, 0, 0, time.UTC)
	streak, counted := NextStreak(2, &last, now)
	assert.Equal(t, 3, streak)
	assert.True(t, counted)
}
