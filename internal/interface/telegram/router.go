// Package telegram implements the Telegram bot interface of Hydro Hub: update
// routing, command and callback handling, and the bot lifecycle.
package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/hydro-bot/hydro-hub/internal/infrastructure/external/telegram"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/handler"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables debug logging for routing decisions.
	Debug bool
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT TYPES
// ══════════════════════════════════════════════════════════════════════════════

// CommandContext carries one command invocation through the router.
type CommandContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat the command was sent in.
	ChatID int64

	// MessageID is the message containing the command.
	MessageID int64

	// Args is the text after the command.
	Args string

	// TZOffsetMinutes is the timezone offset applied to this user's days.
	TZOffsetMinutes int

	// Message is the original Telegram message.
	Message *telegram.Message

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// CallbackContext carries one callback query through the router.
type CallbackContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat holding the message with the keyboard.
	ChatID int64

	// MessageID is the message with the inline keyboard.
	MessageID int64

	// QueryID is the callback query ID, for answering.
	QueryID string

	// Data is the callback data string.
	Data string

	// TZOffsetMinutes is the timezone offset applied to this user's days.
	TZOffsetMinutes int

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// CommandHandlerFunc handles one command and returns the rendered response.
type CommandHandlerFunc func(ctx context.Context, cmdCtx CommandContext) (*handler.Response, error)

// CallbackHandlerFunc handles one callback query. The response replaces the
// message carrying the keyboard.
type CallbackHandlerFunc func(ctx context.Context, cbCtx CallbackContext) (*handler.Response, error)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// ══════════════════════════════════════════════════════════════════════════════

// Router routes Telegram updates to command and callback handlers.
type Router struct {
	config RouterConfig
	logger *slog.Logger

	mu               sync.RWMutex
	commandHandlers  map[string]CommandHandlerFunc
	callbackHandlers map[string]CallbackHandlerFunc // by prefix, "undo:"
}

// NewRouter creates a router.
func NewRouter(config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Router{
		config:           config,
		logger:           config.Logger,
		commandHandlers:  make(map[string]CommandHandlerFunc),
		callbackHandlers: make(map[string]CallbackHandlerFunc),
	}
}

// RegisterCommand registers a handler for a command, without the leading "/".
func (r *Router) RegisterCommand(command string, fn CommandHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commandHandlers[command] = fn

	if r.config.Debug {
		r.logger.Debug("registered command handler", "command", command)
	}
}

// RegisterCallbackPrefix registers a handler for callbacks matching a prefix,
// including the trailing delimiter ("undo:").
func (r *Router) RegisterCallbackPrefix(prefix string, fn CallbackHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbackHandlers[prefix] = fn

	if r.config.Debug {
		r.logger.Debug("registered callback prefix handler", "prefix", prefix)
	}
}

// HandleCommand routes a command and sends the handler's response.
func (r *Router) HandleCommand(ctx context.Context, command string, cmdCtx CommandContext) error {
	r.mu.RLock()
	fn, ok := r.commandHandlers[command]
	r.mu.RUnlock()

	if !ok {
		return r.handleUnknownCommand(ctx, cmdCtx)
	}

	resp, err := fn(ctx, cmdCtx)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}

	return r.sendResponse(ctx, cmdCtx.Client, cmdCtx.ChatID, resp)
}

// HandleCallback routes a callback query. The response edits the originating
// message in place so the chat does not fill up with cards.
func (r *Router) HandleCallback(ctx context.Context, data string, cbCtx CallbackContext) error {
	r.mu.RLock()
	var matchedPrefix string
	var matched CallbackHandlerFunc
	for prefix, fn := range r.callbackHandlers {
		if strings.HasPrefix(data, prefix) && len(prefix) > len(matchedPrefix) {
			matchedPrefix = prefix
			matched = fn
		}
	}
	r.mu.RUnlock()

	if matched == nil {
		r.logger.Warn("unknown callback", "data", data)
		return nil
	}

	resp, err := matched(ctx, cbCtx)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}

	return r.editResponse(ctx, cbCtx.Client, cbCtx.ChatID, cbCtx.MessageID, resp)
}

// handleUnknownCommand lists the available commands.
func (r *Router) handleUnknownCommand(ctx context.Context, cmdCtx CommandContext) error {
	text := "❓ <b>Unknown command</b>\n\n" +
		"Try:\n" +
		"• /water, /tea, /coffee — log a drink\n" +
		"• /stats — your streak and last 7 days\n" +
		"• /calendar — monthly heat-map\n" +
		"• /setweight, /setfactor, /goal — your daily goal\n" +
		"• /help — all commands"

	_, err := cmdCtx.Client.SendHTML(ctx, cmdCtx.ChatID, text)
	return err
}

// ──────────────────────────────────────────────────────────────────────────────
// RESPONSE HELPERS
// ──────────────────────────────────────────────────────────────────────────────

func (r *Router) sendResponse(ctx context.Context, client *telegram.Client, chatID int64, resp *handler.Response) error {
	_, err := client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        resp.Text,
		ParseMode:   resp.ParseMode,
		ReplyMarkup: convertKeyboard(resp.Keyboard),
	})
	return err
}

func (r *Router) editResponse(ctx context.Context, client *telegram.Client, chatID, messageID int64, resp *handler.Response) error {
	_, err := client.EditMessageText(ctx, chatID, messageID, resp.Text, resp.ParseMode, convertKeyboard(resp.Keyboard))
	return err
}

// convertKeyboard converts the presenter keyboard into Bot API markup.
func convertKeyboard(kb *presenter.InlineKeyboard) *telegram.InlineKeyboardMarkup {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}

	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: make([][]telegram.InlineKeyboardButton, len(kb.Rows)),
	}
	for i, row := range kb.Rows {
		markup.InlineKeyboard[i] = make([]telegram.InlineKeyboardButton, len(row))
		for j, btn := range row {
			out := telegram.InlineKeyboardButton{
				Text:         btn.Text,
				CallbackData: btn.CallbackData,
				URL:          btn.URL,
			}
			if btn.WebAppURL != "" {
				out.WebApp = &telegram.WebAppInfo{URL: btn.WebAppURL}
			}
			markup.InlineKeyboard[i][j] = out
		}
	}
	return markup
}

// ──────────────────────────────────────────────────────────────────────────────
// ROUTE INFO
// ──────────────────────────────────────────────────────────────────────────────

// RegisteredCommands returns the registered command names.
func (r *Router) RegisteredCommands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]string, 0, len(r.commandHandlers))
	for cmd := range r.commandHandlers {
		commands = append(commands, cmd)
	}
	return commands
}
