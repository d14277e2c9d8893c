// Package presenter renders hydration state into Telegram HTML and inline
// keyboards. Presenters are pure formatting: they take DTOs from the
// application layer and return text, never touching storage.
package presenter

import (
	"fmt"
	"strconv"
)

// ══════════════════════════════════════════════════════════════════════════════
// KEYBOARD TYPES
// Transport-agnostic keyboard description, converted to Bot API markup by the
// router.
// ══════════════════════════════════════════════════════════════════════════════

// InlineButton is one button of an inline keyboard.
type InlineButton struct {
	Text         string
	CallbackData string
	URL          string

	// WebAppURL opens the Mini App when set.
	WebAppURL string
}

// InlineKeyboard is a grid of inline buttons.
type InlineKeyboard struct {
	Rows [][]InlineButton
}

// ══════════════════════════════════════════════════════════════════════════════
// KEYBOARD BUILDER
// ══════════════════════════════════════════════════════════════════════════════

// Keyboards builds the bot's inline keyboards.
type Keyboards struct {
	// WebAppURL is the Mini App URL; the Mini App button is omitted when empty.
	WebAppURL string
}

// NewKeyboards creates a keyboard builder.
func NewKeyboards(webAppURL string) *Keyboards {
	return &Keyboards{WebAppURL: webAppURL}
}

// QuickAddVolumes are the one-tap volumes offered on the main keyboard.
var QuickAddVolumes = []int{200, 250, 300, 500}

// MainMenu is the keyboard attached to /start and /help: quick-add water
// buttons, drink switches, and navigation.
func (k *Keyboards) MainMenu() *InlineKeyboard {
	kb := &InlineKeyboard{}

	var quick []InlineButton
	for _, ml := range QuickAddVolumes {
		quick = append(quick, InlineButton{
			Text:         fmt.Sprintf("💧 %d ml", ml),
			CallbackData: "add:water:" + strconv.Itoa(ml),
		})
	}
	kb.Rows = append(kb.Rows, quick)

	kb.Rows = append(kb.Rows, []InlineButton{
		{Text: "🍵 Tea 250", CallbackData: "add:tea:250"},
		{Text: "☕ Coffee 200", CallbackData: "add:coffee:200"},
	})

	kb.Rows = append(kb.Rows, []InlineButton{
		{Text: "📊 Stats", CallbackData: "cmd:stats"},
		{Text: "📅 Calendar", CallbackData: "cmd:calendar"},
	})

	if k.WebAppURL != "" {
		kb.Rows = append(kb.Rows, []InlineButton{
			{Text: "🌊 Open Hydro App", WebAppURL: k.WebAppURL},
		})
	}

	return kb
}

// AfterLog is the keyboard attached to a logged-drink confirmation: the undo
// button bound to the committed entry, plus quick-add for the next glass.
func (k *Keyboards) AfterLog(entryID int64) *InlineKeyboard {
	return &InlineKeyboard{
		Rows: [][]InlineButton{
			{{Text: "↩️ Undo", CallbackData: "undo:" + strconv.FormatInt(entryID, 10)}},
			{
				{Text: "💧 +250", CallbackData: "add:water:250"},
				{Text: "🍵 +250", CallbackData: "add:tea:250"},
				{Text: "☕ +200", CallbackData: "add:coffee:200"},
			},
		},
	}
}

// CalendarNav is the month-switch row under a calendar view.
func (k *Keyboards) CalendarNav(year, month int) *InlineKeyboard {
	prevYear, prevMonth := year, month-1
	if prevMonth < 1 {
		prevYear, prevMonth = year-1, 12
	}
	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextYear, nextMonth = year+1, 1
	}

	return &InlineKeyboard{
		Rows: [][]InlineButton{
			{
				{Text: "◀️", CallbackData: fmt.Sprintf("cal:%d:%d", prevYear, prevMonth)},
				{Text: fmt.Sprintf("%04d-%02d", year, month), CallbackData: fmt.Sprintf("cal:%d:%d", year, month)},
				{Text: "▶️", CallbackData: fmt.Sprintf("cal:%d:%d", nextYear, nextMonth)},
			},
			{{Text: "📊 Stats", CallbackData: "cmd:stats"}},
		},
	}
}

// StatsFooter is the navigation row under the stats view.
func (k *Keyboards) StatsFooter() *InlineKeyboard {
	return &InlineKeyboard{
		Rows: [][]InlineButton{
			{
				{Text: "📅 Calendar", CallbackData: "cmd:calendar"},
				{Text: "🔄 Refresh", CallbackData: "cmd:stats"},
			},
		},
	}
}
