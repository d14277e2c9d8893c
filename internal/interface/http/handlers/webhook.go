package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hydro-bot/hydro-hub/internal/infrastructure/external/telegram"
)

// WebhookHandler processes a raw Telegram webhook request body.
type WebhookHandler interface {
	HandleUpdate(ctx context.Context, body io.Reader) error
}

// UpdateProcessor consumes decoded Telegram updates. The bot implements it.
type UpdateProcessor interface {
	HandleUpdate(ctx context.Context, update *telegram.Update) error
}

// BotWebhookHandler decodes webhook bodies and hands updates to the bot.
type BotWebhookHandler struct {
	processor UpdateProcessor
}

// NewBotWebhookHandler creates a webhook handler backed by the given bot.
func NewBotWebhookHandler(processor UpdateProcessor) *BotWebhookHandler {
	return &BotWebhookHandler{processor: processor}
}

// HandleUpdate decodes one update and dispatches it. Telegram sends exactly
// one update per webhook request.
func (h *BotWebhookHandler) HandleUpdate(ctx context.Context, body io.Reader) error {
	var update telegram.Update
	if err := json.NewDecoder(body).Decode(&update); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}

	return h.processor.HandleUpdate(ctx, &update)
}
