// Package handler contains the Telegram command handlers. Each handler takes
// a typed request, calls into the application layer, and returns the rendered
// response; sending is the router's job.
package handler

import (
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/presenter"
)

// Response is what every handler returns: text to send plus an optional
// inline keyboard.
type Response struct {
	// Text is the message body.
	Text string

	// ParseMode is the Telegram parse mode, usually "HTML".
	ParseMode string

	// Keyboard is the optional inline keyboard.
	Keyboard *presenter.InlineKeyboard
}

// HTML builds an HTML response.
func HTML(text string, keyboard *presenter.InlineKeyboard) *Response {
	return &Response{Text: text, ParseMode: "HTML", Keyboard: keyboard}
}
