package telegram

import (
	"context"

	"github.com/hydro-bot/hydro-hub/internal/infrastructure/external/telegram"
)

// Notifier adapts the Telegram client to the event handlers' message sender.
// Celebration messages go to the user's private chat, whose ID equals the
// Telegram user ID.
type Notifier struct {
	client *telegram.Client
}

// NewNotifier creates a notifier backed by the given client.
func NewNotifier(client *telegram.Client) *Notifier {
	return &Notifier{client: client}
}

// SendMessage sends a plain text message to the chat.
func (n *Notifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := n.client.SendText(ctx, chatID, text)
	return err
}
