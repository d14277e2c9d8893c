package handler

import (
	"context"
	"strconv"

	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/presenter"
)

// HelpRequest contains the data for a /help command.
type HelpRequest struct {
	TelegramID int64
	ChatID     int64
}

// HelpHandler handles /help.
type HelpHandler struct {
	keyboards *presenter.Keyboards
}

// NewHelpHandler creates a help handler.
func NewHelpHandler(keyboards *presenter.Keyboards) *HelpHandler {
	return &HelpHandler{keyboards: keyboards}
}

// Handle processes /help.
func (h *HelpHandler) Handle(ctx context.Context, req HelpRequest) (*Response, error) {
	text := "🌊 <b>Hydro Hub</b>\n\n" +
		"Log drinks:\n" +
		"• /water [ml] — plain water counts in full\n" +
		"• /tea [ml] — counts at 80%\n" +
		"• /coffee [ml] — counts at 60%\n\n" +
		"Profile:\n" +
		"• /setweight 70 — goal becomes weight × factor\n" +
		"• /setfactor 33 — ml per kg (30–35)\n" +
		"• /goal 2500 — set the goal directly\n\n" +
		"Progress:\n" +
		"• /stats — streak, badges, last 7 days\n" +
		"• /calendar — monthly heat-map\n\n" +
		"Mistyped? Every logged drink can be undone within a few seconds " +
		"via the ↩️ button."

	return HTML(text, h.keyboards.MainMenu()), nil
}

// itoa is a tiny alias kept so message builders read cleanly.
func itoa(n int) string {
	return strconv.Itoa(n)
}
