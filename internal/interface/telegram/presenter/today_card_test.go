package presenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hydro-bot/hydro-hub/internal/application/command"
	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/progress"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("⬜", 10), ProgressBar(0))
	assert.Equal(t, strings.Repeat("🟦", 5)+strings.Repeat("⬜", 5), ProgressBar(0.5))
	assert.Equal(t, strings.Repeat("🟦", 10), ProgressBar(1.0))
	// Over-goal and garbage ratios stay inside the ten cells.
	assert.Equal(t, strings.Repeat("🟦", 10), ProgressBar(1.7))
	assert.Equal(t, strings.Repeat("⬜", 10), ProgressBar(-0.3))
}

func TestDrinkEmoji(t *testing.T) {
	assert.Equal(t, "💧", DrinkEmoji(intake.DrinkWater))
	assert.Equal(t, "🍵", DrinkEmoji(intake.DrinkTea))
	assert.Equal(t, "☕", DrinkEmoji(intake.DrinkCoffee))
	assert.Equal(t, "🥤", DrinkEmoji(intake.DrinkType("soda")))
}

func TestRenderLogged(t *testing.T) {
	p := NewTodayCardPresenter()

	res := &command.SubmitIntakeResult{
		Entry: intake.Event{
			Drink:       intake.DrinkTea,
			RawMl:       250,
			EffectiveMl: 200,
		},
		Today: intake.DailyRecord{
			TotalMl: 1200,
			GoalMl:  2000,
		},
		Streak: progress.StreakState{CurrentStreak: 3, BestStreak: 5},
	}

	card := p.RenderLogged(res)
	assert.Contains(t, card, "+250 ml tea")
	assert.Contains(t, card, "counts as 200 ml")
	assert.Contains(t, card, "1200 / 2000 ml")
	assert.Contains(t, card, "Streak: <b>3</b>")
	assert.NotContains(t, card, "Daily goal reached")
}

func TestRenderLogged_Celebrations(t *testing.T) {
	p := NewTodayCardPresenter()

	res := &command.SubmitIntakeResult{
		Entry: intake.Event{
			Drink:       intake.DrinkWater,
			RawMl:       500,
			EffectiveMl: 500,
		},
		Today: intake.DailyRecord{
			TotalMl: 2100,
			GoalMl:  2000,
		},
		Streak:               progress.StreakState{CurrentStreak: 7, BestStreak: 7},
		GoalCompletedToday:   true,
		WeekCompleted:        true,
		UnlockedAchievements: []int{7},
	}

	card := p.RenderLogged(res)
	// Water at full weight renders no effective-volume aside.
	assert.NotContains(t, card, "counts as")
	assert.Contains(t, card, "Daily goal reached")
	assert.Contains(t, card, "Perfect week")
	assert.Contains(t, card, "7-day streak")
}

func TestRenderLogged_NoGoal(t *testing.T) {
	p := NewTodayCardPresenter()

	res := &command.SubmitIntakeResult{
		Entry: intake.Event{
			Drink:       intake.DrinkWater,
			RawMl:       300,
			EffectiveMl: 300,
		},
		Today: intake.DailyRecord{TotalMl: 300},
	}

	card := p.RenderLogged(res)
	assert.Contains(t, card, "/setweight")
	assert.NotContains(t, card, "/ 0 ml")
}

func TestRenderUndone(t *testing.T) {
	p := NewTodayCardPresenter()

	card := p.RenderUndone(&command.UndoIntakeResult{
		Success: true,
		Today:   intake.DailyRecord{TotalMl: 400, GoalMl: 2000},
	})
	assert.Contains(t, card, "Entry removed")
	assert.Contains(t, card, "400 / 2000 ml")
}
