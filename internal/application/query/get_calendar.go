package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/hydro-bot/hydro-hub/internal/domain/progress"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CALENDAR QUERY
// Builds the monthly heat-map grid: whole weeks, Monday first, one heat ratio
// per in-month day.
// ══════════════════════════════════════════════════════════════════════════════

// GetCalendarQuery requests one month's heat-map for a user.
type GetCalendarQuery struct {
	// UserID is the Telegram user identifier.
	UserID int64

	// Year of the requested month.
	Year int

	// Month of the requested year, 1 through 12.
	Month int
}

// Validate validates the query.
func (q GetCalendarQuery) Validate() error {
	if !shared.UserID(q.UserID).IsValid() {
		return errors.New("get_calendar: user_id is required")
	}
	if q.Year < 2000 || q.Year > 2200 {
		return fmt.Errorf("get_calendar: year %d out of range", q.Year)
	}
	if q.Month < 1 || q.Month > 12 {
		return fmt.Errorf("get_calendar: month %d out of range", q.Month)
	}
	return nil
}

// CalendarDayDTO is one grid cell. Filler cells from adjacent months carry
// in_month=false and no totals.
type CalendarDayDTO struct {
	Date    string  `json:"date"`
	InMonth bool    `json:"in_month"`
	TotalMl int     `json:"total_ml"`
	GoalMl  int     `json:"goal_ml"`
	Ratio   float64 `json:"ratio"`
}

// CalendarDTO is the full response of the calendar query. Days always form
// whole weeks: len(Days) is a multiple of seven.
type CalendarDTO struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Days  []CalendarDayDTO `json:"days"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetCalendarHandler handles the GetCalendarQuery.
type GetCalendarHandler struct {
	loader *Loader
}

// NewGetCalendarHandler creates a new GetCalendarHandler.
func NewGetCalendarHandler(loader *Loader) *GetCalendarHandler {
	return &GetCalendarHandler{loader: loader}
}

// Handle executes the calendar query.
func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (*CalendarDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_calendar: validation failed: %w", err)
	}

	userID := shared.UserID(q.UserID)
	first, last := timeutil.MonthGridBounds(q.Year, q.Month)

	series, err := h.loader.SeriesRange(ctx, userID, first, last)
	if err != nil {
		return nil, fmt.Errorf("get_calendar: %w", err)
	}

	month := progress.BuildCalendarMonth(series, q.Year, q.Month)

	dto := &CalendarDTO{
		Year:  month.Year,
		Month: month.Month,
		Days:  make([]CalendarDayDTO, 0, len(month.Days)),
	}
	for _, d := range month.Days {
		dto.Days = append(dto.Days, CalendarDayDTO{
			Date:    timeutil.DayKey(d.Date),
			InMonth: d.InMonth,
			TotalMl: d.TotalMl.Int(),
			GoalMl:  d.GoalMl.Int(),
			Ratio:   d.Ratio,
		})
	}
	return dto, nil
}
