package progress

import (
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// maxHeatRatio caps a day's heat-map ratio; anything above double the goal
// renders at full intensity anyway.
const maxHeatRatio = 2.0

// CalendarDay is one cell in the month grid.
type CalendarDay struct {
	Date time.Time `json:"date"`

	// InMonth marks real month days; false for the leading/trailing filler
	// cells that complete the first and last weeks. Filler carries no ratio.
	InMonth bool `json:"in_month"`

	TotalMl shared.Milliliters `json:"total_ml"`
	GoalMl  shared.Milliliters `json:"goal_ml"`

	// Ratio is total/goal capped to [0, 2]; zero when the goal is unknown.
	// The presentation layer buckets it into none/partial/met intensity.
	Ratio float64 `json:"ratio"`
}

// CalendarMonth is the Monday-first heat-map grid for one month. The grid
// covers whole weeks, so len(Days) is always a multiple of 7 and every
// in-month day appears exactly once.
type CalendarMonth struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// BuildCalendarMonth builds the heat-map grid for a month. Pure read: absent
// days simply report a zero total against whatever goal was in effect, and
// the ledger is never touched.
func BuildCalendarMonth(series DaySeries, year, month int) CalendarMonth {
	first, last := timeutil.MonthGridBounds(year, month)

	cm := CalendarMonth{
		Year:  year,
		Month: month,
		Days:  make([]CalendarDay, 0, timeutil.DaysBetween(first, last)+1),
	}

	timeutil.EachDay(first, last, func(day time.Time) {
		cell := CalendarDay{
			Date:    day,
			InMonth: int(day.Month()) == month && day.Year() == year,
		}
		if cell.InMonth {
			cell.TotalMl = series.TotalOn(day)
			cell.GoalMl = series.GoalOn(day)
			cell.Ratio = heatRatio(cell.TotalMl, cell.GoalMl)
		}
		cm.Days = append(cm.Days, cell)
	})

	return cm
}

// heatRatio computes total/goal capped to [0, maxHeatRatio].
func heatRatio(total, goal shared.Milliliters) float64 {
	if goal <= 0 {
		return 0
	}
	ratio := float64(total) / float64(goal)
	if ratio > maxHeatRatio {
		return maxHeatRatio
	}
	return ratio
}
