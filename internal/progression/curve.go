package progression

import "math"

const (
	// BaseThresholdXP is the XP needed to advance from level 1 to level 2.
	BaseThresholdXP = 100.0

	// ThresholdGrowth is the per-level growth factor of the curve.
	ThresholdGrowth = 1.5
)

// XPThreshold returns the XP required to advance from level to level+1.
// Defined for level >= 1; lower inputs are treated as level 1.
func XPThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(BaseThresholdXP * math.Pow(ThresholdGrowth, float64(level-1))))
}

// CumulativeXP returns the total XP needed to reach the given level from zero,
// i.e. the running sum of thresholds for levels 1..level-1. Level 1 costs nothing.
func CumulativeXP(level int) int {
	total := 0
	for l := 1; l < level; l++ {
		total += XPThreshold(l)
	}
	return total
}

// LevelForXP returns the largest level whose cumulative threshold the XP
// satisfies. Total and monotonic for all non-negative XP; negative XP maps
// to level 1.
func LevelForXP(xp int) int {
	level := 1
	for xp >= CumulativeXP(level+1) {
		level++
	}
	return level
}

// XPIntoLevel returns how much XP the player has accumulated past the
// cumulative threshold of the given level.
func XPIntoLevel(xp, level int) int {
	into := xp - CumulativeXP(level)
	if into < 0 {
		return 0
	}
	return into
}
