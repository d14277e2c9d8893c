package progress

// Achievement thresholds in consecutive met days.
const (
	AchievementWeek      = 7
	AchievementFortnight = 14
	AchievementMonth     = 30
)

// achievementThresholds lists all streak achievements in ascending order.
var achievementThresholds = []int{AchievementWeek, AchievementFortnight, AchievementMonth}

// Achievement is one streak milestone. Unlocking is a pure predicate over the
// best streak, which makes it monotonic for free: the best streak never
// decreases, so an unlocked achievement can never re-lock.
type Achievement struct {
	ThresholdDays int  `json:"threshold_days"`
	Unlocked      bool `json:"unlocked"`
}

// Achievements returns the unlock state of every achievement for the given
// best streak.
func Achievements(bestStreak int) []Achievement {
	out := make([]Achievement, 0, len(achievementThresholds))
	for _, th := range achievementThresholds {
		out = append(out, Achievement{ThresholdDays: th, Unlocked: bestStreak >= th})
	}
	return out
}

// NewlyUnlocked returns the thresholds crossed when the best streak moves
// from prevBest to newBest. Used to emit unlock events exactly once.
func NewlyUnlocked(prevBest, newBest int) []int {
	var crossed []int
	for _, th := range achievementThresholds {
		if prevBest < th && newBest >= th {
			crossed = append(crossed, th)
		}
	}
	return crossed
}
