package presenter

import (
	"fmt"
	"strings"

	"github.com/hydro-bot/hydro-hub/internal/application/query"
	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT PRESENTER
// Renders the stats view and the monthly heat-map calendar.
// ══════════════════════════════════════════════════════════════════════════════

// ReportPresenter renders engagement reports as Telegram HTML.
type ReportPresenter struct{}

// NewReportPresenter creates a report presenter.
func NewReportPresenter() *ReportPresenter {
	return &ReportPresenter{}
}

// RenderStats renders the full stats view from the state query response.
func (p *ReportPresenter) RenderStats(state *query.StateDTO) string {
	var b strings.Builder

	b.WriteString("📊 <b>Your hydration</b>\n\n")

	if state.Today.GoalMl > 0 {
		fmt.Fprintf(&b, "Today: <b>%d / %d ml</b>\n", state.Today.TotalMl, state.Today.GoalMl)
		fmt.Fprintf(&b, "%s %d%%\n\n", ProgressBar(state.Today.Ratio), int(state.Today.Ratio*100))
	} else {
		fmt.Fprintf(&b, "Today: <b>%d ml</b> (no goal set)\n\n", state.Today.TotalMl)
	}

	fmt.Fprintf(&b, "🔥 Streak: <b>%d</b> (best: %d)\n", state.Streak, state.BestStreak)
	b.WriteString(p.achievementsLine(state.Achievements))
	b.WriteString("\n")

	if s := state.Stats; s != nil {
		b.WriteString("<b>Last 7 days</b>\n")
		fmt.Fprintf(&b, "• Average: %d ml, median: %d ml\n", s.Avg7, s.Median7)
		fmt.Fprintf(&b, "• Goal met on %d of %d days\n", s.Above, s.Above+s.Below)
		if s.BestDayMl > 0 {
			fmt.Fprintf(&b, "• Best day: %s (%d ml)\n", s.BestDay.Format("Mon Jan 2"), s.BestDayMl)
		}
		if s.WeekGoalMl > 0 {
			fmt.Fprintf(&b, "\nThis week: <b>%d / %d ml</b> (%d%%)\n", s.WeekTotalMl, s.WeekGoalMl, s.WeekPct)
		}
	}

	if len(state.Today.Entries) > 0 {
		b.WriteString("\n<b>Today's log</b>\n")
		for _, e := range state.Today.Entries {
			fmt.Fprintf(&b, "%s %d ml → %d ml\n", DrinkEmoji(intake.DrinkType(e.Drink)), e.RawMl, e.EffectiveMl)
		}
	}

	return b.String()
}

// achievementsLine renders the badge row: unlocked thresholds solid, the rest
// dimmed.
func (p *ReportPresenter) achievementsLine(badges []query.AchievementDTO) string {
	if len(badges) == 0 {
		return ""
	}
	parts := make([]string, 0, len(badges))
	for _, a := range badges {
		if a.Unlocked {
			parts = append(parts, fmt.Sprintf("🏅 %dd", a.ThresholdDays))
		} else {
			parts = append(parts, fmt.Sprintf("🔒 %dd", a.ThresholdDays))
		}
	}
	return strings.Join(parts, "  ") + "\n"
}

// ──────────────────────────────────────────────────────────────────────────────
// CALENDAR HEAT-MAP
// ──────────────────────────────────────────────────────────────────────────────

var monthNames = [...]string{
	"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// heatCell maps a day's goal ratio to a heat-map square.
func heatCell(day query.CalendarDayDTO) string {
	if !day.InMonth {
		return "▪️"
	}
	switch {
	case day.TotalMl == 0:
		return "⬜"
	case day.GoalMl == 0:
		return "🟨"
	case day.Ratio >= 1.0:
		return "🟦"
	case day.Ratio >= 0.5:
		return "🟩"
	default:
		return "🟧"
	}
}

// RenderCalendar renders the monthly heat-map: one emoji cell per grid day,
// one row per week, Monday first.
func (p *ReportPresenter) RenderCalendar(cal *query.CalendarDTO) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📅 <b>%s %d</b>\n\n", monthNames[cal.Month], cal.Year)
	b.WriteString("Mo Tu We Th Fr Sa Su\n")

	for i, day := range cal.Days {
		b.WriteString(heatCell(day))
		if (i+1)%7 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}

	b.WriteString("\n🟦 goal met  🟩 ≥50%  🟧 &lt;50%  🟨 no goal  ⬜ empty")
	return b.String()
}
