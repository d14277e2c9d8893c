package presenter

import (
	"fmt"
	"strings"

	"github.com/hydro-bot/hydro-hub/internal/application/command"
	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
)

// ══════════════════════════════════════════════════════════════════════════════
// TODAY CARD PRESENTER
// Renders the day's progress after a drink is logged or undone.
// ══════════════════════════════════════════════════════════════════════════════

// TodayCardPresenter renders today's record as a Telegram HTML card.
type TodayCardPresenter struct{}

// NewTodayCardPresenter creates a today card presenter.
func NewTodayCardPresenter() *TodayCardPresenter {
	return &TodayCardPresenter{}
}

// drinkEmoji maps drink types to their display emoji.
var drinkEmoji = map[intake.DrinkType]string{
	intake.DrinkWater:  "💧",
	intake.DrinkTea:    "🍵",
	intake.DrinkCoffee: "☕",
}

// DrinkEmoji returns the emoji for a drink type.
func DrinkEmoji(d intake.DrinkType) string {
	if e, ok := drinkEmoji[d]; ok {
		return e
	}
	return "🥤"
}

// ProgressBar renders a ten-cell bar for the given ratio.
func ProgressBar(ratio float64) string {
	filled := int(ratio * 10)
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("🟦", filled) + strings.Repeat("⬜", 10-filled)
}

// RenderLogged renders the confirmation card for a freshly logged drink.
func (p *TodayCardPresenter) RenderLogged(res *command.SubmitIntakeResult) string {
	var b strings.Builder

	e := res.Entry
	fmt.Fprintf(&b, "%s <b>+%d ml %s</b>", DrinkEmoji(e.Drink), e.RawMl.Int(), e.Drink)
	if e.EffectiveMl != e.RawMl {
		fmt.Fprintf(&b, " <i>(counts as %d ml)</i>", e.EffectiveMl.Int())
	}
	b.WriteString("\n\n")

	p.writeDay(&b, res.Today)

	if res.GoalCompletedToday {
		b.WriteString("\n🎉 <b>Daily goal reached!</b>")
	}
	if res.WeekCompleted {
		b.WriteString("\n🏆 <b>Perfect week!</b> Every goal this week is done.")
	}
	for _, threshold := range res.UnlockedAchievements {
		fmt.Fprintf(&b, "\n🏅 <b>Achievement unlocked:</b> %d-day streak!", threshold)
	}

	if res.Streak.CurrentStreak > 0 {
		fmt.Fprintf(&b, "\n🔥 Streak: <b>%d</b>", res.Streak.CurrentStreak)
	}

	return b.String()
}

// RenderUndone renders the card after a successful undo.
func (p *TodayCardPresenter) RenderUndone(res *command.UndoIntakeResult) string {
	var b strings.Builder
	b.WriteString("↩️ <b>Entry removed.</b>\n\n")
	p.writeDay(&b, res.Today)
	return b.String()
}

// RenderUndoExpired renders the card when the undo window already lapsed.
func (p *TodayCardPresenter) RenderUndoExpired() string {
	return "⌛ Too late to undo this entry. Use the Mini App to review your log."
}

// writeDay writes the shared total/goal/bar block.
func (p *TodayCardPresenter) writeDay(b *strings.Builder, day intake.DailyRecord) {
	if day.GoalMl > 0 {
		fmt.Fprintf(b, "Today: <b>%d / %d ml</b>\n", day.TotalMl.Int(), day.GoalMl.Int())
		fmt.Fprintf(b, "%s %d%%\n", ProgressBar(day.Ratio()), int(day.Ratio()*100))
	} else {
		fmt.Fprintf(b, "Today: <b>%d ml</b>\n", day.TotalMl.Int())
		b.WriteString("<i>Set your weight with /setweight to get a daily goal.</i>\n")
	}
}
