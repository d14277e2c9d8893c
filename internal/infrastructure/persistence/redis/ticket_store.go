package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// TicketStore implements intake.TicketStore on Redis. One key per user
// (undo:<user_id>) holds the JSON-encoded ticket; the key's TTL mirrors the
// ticket window, so Redis expires stale tickets on its own. Expiry is still
// checked against the ticket's own deadline: the TTL is a cleanup mechanism,
// not the source of truth.
type TicketStore struct {
	client *redis.Client
}

// NewTicketStore creates a Redis-backed ticket store.
func NewTicketStore(cache *Cache) *TicketStore {
	return &TicketStore{client: cache.Client()}
}

type ticketRecord struct {
	UserID    int64     `json:"user_id"`
	EntryID   int64     `json:"entry_id"`
	LocalDate string    `json:"local_date"`
	ExpiresAt time.Time `json:"expires_at"`
}

func ticketKey(userID shared.UserID) string {
	return fmt.Sprintf("%s%d", PrefixUndo, int64(userID))
}

// Arm implements intake.TicketStore.
func (s *TicketStore) Arm(ctx context.Context, ticket intake.UndoTicket) error {
	rec := ticketRecord{
		UserID:    int64(ticket.UserID),
		EntryID:   int64(ticket.EntryID),
		LocalDate: ticket.LocalDate.Format("2006-01-02"),
		ExpiresAt: ticket.ExpiresAt,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal ticket: %w", err)
	}

	ttl := time.Until(ticket.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, ticketKey(ticket.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to arm ticket: %w", err)
	}
	return nil
}

// Take implements intake.TicketStore.
func (s *TicketStore) Take(ctx context.Context, userID shared.UserID, entryID shared.EntryID, now time.Time) (intake.UndoTicket, bool, error) {
	ticket, ok, err := s.load(ctx, userID)
	if err != nil || !ok {
		return intake.UndoTicket{}, false, err
	}
	if !ticket.Matches(entryID, now) {
		if ticket.Expired(now) {
			_ = s.client.Del(ctx, ticketKey(userID)).Err()
		}
		return intake.UndoTicket{}, false, nil
	}
	if err := s.client.Del(ctx, ticketKey(userID)).Err(); err != nil {
		return intake.UndoTicket{}, false, fmt.Errorf("redis: failed to clear ticket: %w", err)
	}
	return ticket, true, nil
}

// Peek implements intake.TicketStore.
func (s *TicketStore) Peek(ctx context.Context, userID shared.UserID, now time.Time) (intake.UndoTicket, bool, error) {
	ticket, ok, err := s.load(ctx, userID)
	if err != nil || !ok {
		return intake.UndoTicket{}, false, err
	}
	if ticket.Expired(now) {
		return intake.UndoTicket{}, false, nil
	}
	return ticket, true, nil
}

// Clear implements intake.TicketStore.
func (s *TicketStore) Clear(ctx context.Context, userID shared.UserID) error {
	if err := s.client.Del(ctx, ticketKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis: failed to clear ticket: %w", err)
	}
	return nil
}

func (s *TicketStore) load(ctx context.Context, userID shared.UserID) (intake.UndoTicket, bool, error) {
	data, err := s.client.Get(ctx, ticketKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return intake.UndoTicket{}, false, nil
		}
		return intake.UndoTicket{}, false, fmt.Errorf("redis: failed to load ticket: %w", err)
	}

	var rec ticketRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return intake.UndoTicket{}, false, fmt.Errorf("redis: failed to unmarshal ticket: %w", err)
	}
	localDate, err := time.Parse("2006-01-02", rec.LocalDate)
	if err != nil {
		return intake.UndoTicket{}, false, fmt.Errorf("redis: bad ticket date %q: %w", rec.LocalDate, err)
	}

	return intake.UndoTicket{
		UserID:    shared.UserID(rec.UserID),
		EntryID:   shared.EntryID(rec.EntryID),
		LocalDate: localDate,
		ExpiresAt: rec.ExpiresAt,
	}, true, nil
}
