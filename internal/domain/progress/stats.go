package progress

import (
	"sort"
	"time"

	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// statsWindowDays is the trailing window the rolling statistics cover.
const statsWindowDays = 7

// Stats are the rolling statistics over the trailing 7 local days ending
// today. Days without ledger activity contribute a zero total.
type Stats struct {
	// Avg7 is the mean of the window's totals, rounded half-up.
	Avg7 int `json:"avg7"`

	// Median7 is the median of the window's totals (7 values, so exact).
	Median7 int `json:"median7"`

	// Above and Below count window days with a known goal that were met or
	// missed. Days without a known goal are excluded from both.
	Above int `json:"above"`
	Below int `json:"below"`

	// MovingAvg7 is a 7-point trailing series: element i is the mean of the
	// 7 days ending at window day i (oldest first). A trend signal, not a
	// snapshot.
	MovingAvg7 []int `json:"moving_avg7"`

	// BestDay is the window day with the maximum total (earliest wins ties).
	BestDay     time.Time `json:"best_day"`
	BestDayMl   int       `json:"best_day_ml"`

	// BestDayEver is the highest-total day across the whole ledger.
	BestDayEver   time.Time `json:"best_day_ever"`
	BestDayEverMl int       `json:"best_day_ever_ml"`

	// Current ISO week aggregates. The week goal sums each day's own goal so
	// a mid-week goal change is reflected. WeekPct is not clamped above 100;
	// values past 100 drive the "perfect week" celebration.
	WeekTotalMl int `json:"week_total_ml"`
	WeekGoalMl  int `json:"week_goal_ml"`
	WeekPct     int `json:"week_pct"`
}

// ComputeStats derives the rolling statistics as of today.
func ComputeStats(series DaySeries, today time.Time) *Stats {
	today = timeutil.Truncate(today)
	stats := &Stats{}

	totals := windowTotals(series, today, statsWindowDays)
	stats.Avg7 = meanRoundHalfUp(totals)
	stats.Median7 = median(totals)

	// Met/missed counts, skipping unknown-goal days.
	for i := 0; i < statsWindowDays; i++ {
		day := timeutil.AddDays(today, i-statsWindowDays+1)
		if !series.GoalKnown(day) {
			continue
		}
		if series.Met(day) {
			stats.Above++
		} else {
			stats.Below++
		}
	}

	// Trailing moving-average series, one point per window day.
	stats.MovingAvg7 = make([]int, 0, statsWindowDays)
	for i := 0; i < statsWindowDays; i++ {
		end := timeutil.AddDays(today, i-statsWindowDays+1)
		stats.MovingAvg7 = append(stats.MovingAvg7, meanRoundHalfUp(windowTotals(series, end, statsWindowDays)))
	}

	stats.BestDay, stats.BestDayMl = bestDayIn(series, timeutil.AddDays(today, -statsWindowDays+1), today)
	if first, ok := series.horizon(); ok {
		stats.BestDayEver, stats.BestDayEverMl = bestDayIn(series, first, today)
	}

	stats.WeekTotalMl, stats.WeekGoalMl, stats.WeekPct = weekWindow(series, today)

	return stats
}

// windowTotals collects the totals for the n days ending at end, oldest first.
func windowTotals(series DaySeries, end time.Time, n int) []int {
	totals := make([]int, 0, n)
	for i := 0; i < n; i++ {
		day := timeutil.AddDays(end, i-n+1)
		totals = append(totals, series.TotalOn(day).Int())
	}
	return totals
}

// meanRoundHalfUp returns the arithmetic mean rounded half-up.
// Fixed rounding policy for all averaged statistics.
func meanRoundHalfUp(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return (sum + len(values)/2) / len(values)
}

// median returns the middle value of the set.
func median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return meanRoundHalfUp([]int{sorted[mid-1], sorted[mid]})
}

// bestDayIn returns the day with the maximum total in [from, to].
// The earliest day wins ties.
func bestDayIn(series DaySeries, from, to time.Time) (time.Time, int) {
	best, bestMl := timeutil.Truncate(from), -1
	timeutil.EachDay(from, to, func(day time.Time) {
		if ml := series.TotalOn(day).Int(); ml > bestMl {
			best, bestMl = day, ml
		}
	})
	if bestMl < 0 {
		bestMl = 0
	}
	return best, bestMl
}

// weekWindow aggregates the current ISO week (Monday through Sunday).
// Each day contributes its own goal, so a mid-week goal change shifts the
// week goal without rewriting past days.
func weekWindow(series DaySeries, today time.Time) (total, goal, pct int) {
	timeutil.EachDay(timeutil.StartOfWeek(today), timeutil.EndOfWeek(today), func(day time.Time) {
		total += series.TotalOn(day).Int()
		goal += series.GoalOn(day).Int()
	})
	if goal > 0 {
		pct = (100*total + goal/2) / goal
	}
	return total, goal, pct
}
