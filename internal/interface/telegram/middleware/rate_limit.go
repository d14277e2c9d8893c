// Package middleware contains Telegram bot middlewares for request processing.
package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER MIDDLEWARE
// Per-user token bucket. Logging a drink is a one-tap action, so the limiter
// must tolerate bursts from honest users while still stopping button mashing.
// ══════════════════════════════════════════════════════════════════════════════

// RateLimitConfig holds configuration for the rate limiter.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained per-user rate.
	RequestsPerMinute int

	// BurstSize is the bucket capacity.
	BurstSize int

	// CleanupInterval is how often idle buckets are dropped.
	CleanupInterval time.Duration

	// BanDuration is the temporary ban applied after repeated violations.
	BanDuration time.Duration

	// BanThreshold is the number of violations before a temporary ban.
	BanThreshold int

	// OnRateLimited builds the message shown to a limited user.
	OnRateLimited func(telegramID int64, retryAfter time.Duration) string
}

// DefaultRateLimitConfig returns sensible defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
		BurstSize:         10,
		CleanupInterval:   5 * time.Minute,
		BanDuration:       10 * time.Minute,
		BanThreshold:      3,
		OnRateLimited: func(telegramID int64, retryAfter time.Duration) string {
			return fmt.Sprintf("⏳ Too many taps! Wait %d seconds and try again.",
				int(retryAfter.Seconds())+1)
		},
	}
}

// RateLimiter implements per-user rate limiting with token buckets.
type RateLimiter struct {
	config  RateLimitConfig
	buckets sync.Map // map[int64]*tokenBucket
	bans    sync.Map // map[int64]*banEntry
}

type tokenBucket struct {
	mu           sync.Mutex
	tokens       float64
	lastRefill   time.Time
	refillRate   float64 // tokens per second
	maxTokens    float64
	violations   int
	lastViolated time.Time
}

type banEntry struct {
	expiresAt time.Time
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{config: config}
	go rl.cleanupLoop()
	return rl
}

// RateLimitResult is the outcome of a rate limit check.
type RateLimitResult struct {
	// Allowed indicates if the request may proceed.
	Allowed bool

	// RetryAfter is how long the user should wait before retrying.
	RetryAfter time.Duration

	// ResponseMessage is the message to send if limited.
	ResponseMessage string
}

// Check checks whether a request from the given user is allowed.
func (rl *RateLimiter) Check(ctx context.Context, telegramID int64) *RateLimitResult {
	if ban := rl.getBan(telegramID); ban != nil {
		wait := time.Until(ban.expiresAt)
		return &RateLimitResult{
			Allowed:         false,
			RetryAfter:      wait,
			ResponseMessage: rl.config.OnRateLimited(telegramID, wait),
		}
	}

	bucket := rl.getBucket(telegramID)
	allowed, retryAfter := bucket.consume()
	if allowed {
		return &RateLimitResult{Allowed: true}
	}

	bucket.recordViolation()
	if bucket.violations >= rl.config.BanThreshold {
		rl.bans.Store(telegramID, &banEntry{expiresAt: time.Now().Add(rl.config.BanDuration)})
	}

	return &RateLimitResult{
		Allowed:         false,
		RetryAfter:      retryAfter,
		ResponseMessage: rl.config.OnRateLimited(telegramID, retryAfter),
	}
}

// Reset clears the rate limit state for a user.
func (rl *RateLimiter) Reset(telegramID int64) {
	rl.buckets.Delete(telegramID)
	rl.bans.Delete(telegramID)
}

func (rl *RateLimiter) getBucket(telegramID int64) *tokenBucket {
	if val, ok := rl.buckets.Load(telegramID); ok {
		return val.(*tokenBucket)
	}

	bucket := &tokenBucket{
		tokens:     float64(rl.config.BurstSize),
		lastRefill: time.Now(),
		refillRate: float64(rl.config.RequestsPerMinute) / 60.0,
		maxTokens:  float64(rl.config.BurstSize),
	}
	actual, _ := rl.buckets.LoadOrStore(telegramID, bucket)
	return actual.(*tokenBucket)
}

func (b *tokenBucket) consume() (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens--
		return true, 0
	}

	deficit := 1.0 - b.tokens
	return false, time.Duration(deficit/b.refillRate) * time.Second
}

func (b *tokenBucket) recordViolation() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Stale violations do not accumulate toward a ban.
	if time.Since(b.lastViolated) > 5*time.Minute {
		b.violations = 0
	}
	b.violations++
	b.lastViolated = time.Now()
}

func (rl *RateLimiter) getBan(telegramID int64) *banEntry {
	val, ok := rl.bans.Load(telegramID)
	if !ok {
		return nil
	}
	ban := val.(*banEntry)
	if time.Now().After(ban.expiresAt) {
		rl.bans.Delete(telegramID)
		return nil
	}
	return ban
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		rl.cleanup()
	}
}

func (rl *RateLimiter) cleanup() {
	now := time.Now()
	idle := 10 * time.Minute

	rl.buckets.Range(func(key, value interface{}) bool {
		bucket := value.(*tokenBucket)
		bucket.mu.Lock()
		inactive := now.Sub(bucket.lastRefill) > idle
		bucket.mu.Unlock()
		if inactive {
			rl.buckets.Delete(key)
		}
		return true
	})

	rl.bans.Range(func(key, value interface{}) bool {
		if now.After(value.(*banEntry).expiresAt) {
			rl.bans.Delete(key)
		}
		return true
	})
}
