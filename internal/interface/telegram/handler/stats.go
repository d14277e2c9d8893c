package handler

import (
	"context"

	"github.com/hydro-bot/hydro-hub/internal/application/query"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/presenter"
)

// StatsRequest contains the data for a /stats command.
type StatsRequest struct {
	TelegramID      int64
	ChatID          int64
	TZOffsetMinutes int
}

// StatsHandler handles /stats: streak, badges, and the rolling 7-day window.
type StatsHandler struct {
	stateQuery *query.GetStateHandler
	reports    *presenter.ReportPresenter
	keyboards  *presenter.Keyboards
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(
	stateQuery *query.GetStateHandler,
	reports *presenter.ReportPresenter,
	keyboards *presenter.Keyboards,
) *StatsHandler {
	return &StatsHandler{stateQuery: stateQuery, reports: reports, keyboards: keyboards}
}

// Handle processes /stats.
func (h *StatsHandler) Handle(ctx context.Context, req StatsRequest) (*Response, error) {
	state, err := h.stateQuery.Handle(ctx, query.GetStateQuery{
		UserID:          req.TelegramID,
		TZOffsetMinutes: req.TZOffsetMinutes,
	})
	if err != nil {
		return nil, err
	}

	return HTML(h.reports.RenderStats(state), h.keyboards.StatsFooter()), nil
}
