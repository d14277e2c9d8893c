package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/application/query"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/presenter"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// CalendarRequest contains the data for a /calendar command or a month-switch
// callback.
type CalendarRequest struct {
	TelegramID int64
	ChatID     int64

	// Year and Month select the month; zero values mean the current month in
	// the user's timezone.
	Year  int
	Month int

	// Args may carry "YYYY-MM" from the command form.
	Args string

	TZOffsetMinutes int
}

// CalendarHandler handles /calendar: the monthly heat-map.
type CalendarHandler struct {
	calendarQuery *query.GetCalendarHandler
	reports       *presenter.ReportPresenter
	keyboards     *presenter.Keyboards
}

// NewCalendarHandler creates a calendar handler.
func NewCalendarHandler(
	calendarQuery *query.GetCalendarHandler,
	reports *presenter.ReportPresenter,
	keyboards *presenter.Keyboards,
) *CalendarHandler {
	return &CalendarHandler{calendarQuery: calendarQuery, reports: reports, keyboards: keyboards}
}

// Handle processes /calendar and "cal:" callbacks.
func (h *CalendarHandler) Handle(ctx context.Context, req CalendarRequest) (*Response, error) {
	year, month := req.Year, req.Month

	if year == 0 || month == 0 {
		if arg := strings.Fields(req.Args); len(arg) > 0 {
			if _, err := fmt.Sscanf(arg[0], "%d-%d", &year, &month); err != nil {
				return HTML("Usage: /calendar or /calendar 2026-08", nil), nil
			}
		}
	}
	if year == 0 || month == 0 {
		tz, err := shared.NewTZOffset(req.TZOffsetMinutes)
		if err != nil {
			return nil, err
		}
		today := timeutil.LocalDay(time.Now(), tz.Int())
		year, month = today.Year(), int(today.Month())
	}

	cal, err := h.calendarQuery.Handle(ctx, query.GetCalendarQuery{
		UserID: req.TelegramID,
		Year:   year,
		Month:  month,
	})
	if err != nil {
		return nil, err
	}

	return HTML(h.reports.RenderCalendar(cal), h.keyboards.CalendarNav(year, month)), nil
}
