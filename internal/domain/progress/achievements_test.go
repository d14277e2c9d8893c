package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAchievements(t *testing.T) {
	locked := Achievements(6)
	require.Len(t, locked, 3)
	for _, a := range locked {
		assert.False(t, a.Unlocked, "threshold %d", a.ThresholdDays)
	}

	week := Achievements(7)
	assert.True(t, week[0].Unlocked)
	assert.False(t, week[1].Unlocked)
	assert.False(t, week[2].Unlocked)

	all := Achievements(45)
	for _, a := range all {
		assert.True(t, a.Unlocked, "threshold %d", a.ThresholdDays)
	}
}

func TestNewlyUnlocked(t *testing.T) {
	assert.Equal(t, []int{7}, NewlyUnlocked(6, 7))
	assert.Equal(t, []int{14}, NewlyUnlocked(13, 14))
	assert.Equal(t, []int{7, 14, 30}, NewlyUnlocked(0, 30))
	assert.Empty(t, NewlyUnlocked(7, 8))
	assert.Empty(t, NewlyUnlocked(30, 31))

	// Crossing backward never unlocks anything.
	assert.Empty(t, NewlyUnlocked(14, 7))
}
