package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY MIDDLEWARE
// Catches panics in handlers so one bad update never takes the bot down. Users
// get a plain apology; the stack trace goes to the logs.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// EnableStackTrace enables capturing stack traces.
	EnableStackTrace bool

	// OnPanic is called when a panic is recovered.
	OnPanic func(ctx context.Context, info *PanicInfo)

	// UserErrorMessage is the message sent to users when a panic occurs.
	UserErrorMessage string
}

// DefaultRecoveryConfig returns sensible defaults.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		EnableStackTrace: true,
		UserErrorMessage: "😔 Something went wrong. Please try again in a moment.",
	}
}

// PanicInfo contains information about a recovered panic.
type PanicInfo struct {
	// PanicValue is the raw panic value.
	PanicValue interface{}

	// StackTrace is the formatted stack trace, if enabled.
	StackTrace string

	// TelegramID is the user whose update was being processed.
	TelegramID int64

	// Operation names the command or callback that panicked.
	Operation string

	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

// String formats the panic for logging.
func (p *PanicInfo) String() string {
	s := fmt.Sprintf("panic in %s (user %d): %v", p.Operation, p.TelegramID, p.PanicValue)
	if p.StackTrace != "" {
		s += "\n" + p.StackTrace
	}
	return s
}

// RecoveryMiddleware recovers from panics in handlers.
type RecoveryMiddleware struct {
	config RecoveryConfig
}

// NewRecoveryMiddleware creates a recovery middleware.
func NewRecoveryMiddleware(config RecoveryConfig) *RecoveryMiddleware {
	return &RecoveryMiddleware{config: config}
}

// RecoveryResult is the outcome of running a handler under recovery.
type RecoveryResult struct {
	// Recovered indicates a panic was caught.
	Recovered bool

	// PanicInfo contains panic details when Recovered is true.
	PanicInfo *PanicInfo

	// UserMessage is the message to show to the user.
	UserMessage string

	// Err is the handler's error when no panic occurred.
	Err error
}

// RecoverWithHandler runs fn, converting a panic into a RecoveryResult.
func (m *RecoveryMiddleware) RecoverWithHandler(
	ctx context.Context,
	telegramID int64,
	operation string,
	fn func() error,
) (result *RecoveryResult) {
	result = &RecoveryResult{}

	defer func() {
		if r := recover(); r != nil {
			info := &PanicInfo{
				PanicValue: r,
				TelegramID: telegramID,
				Operation:  operation,
				Timestamp:  time.Now(),
			}
			if m.config.EnableStackTrace {
				info.StackTrace = string(debug.Stack())
			}

			result.Recovered = true
			result.PanicInfo = info
			result.UserMessage = m.config.UserErrorMessage

			if m.config.OnPanic != nil {
				m.config.OnPanic(ctx, info)
			}
		}
	}()

	result.Err = fn()
	return result
}
