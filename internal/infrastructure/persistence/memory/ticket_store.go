package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// TicketStore holds at most one live undo ticket per user. Expiry is lazy:
// a stale ticket stays in the map until the next Arm, Take, or Peek touches
// it; no timer runs.
type TicketStore struct {
	mu      sync.Mutex
	tickets map[shared.UserID]intake.UndoTicket
}

// NewTicketStore creates an empty ticket store.
func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: make(map[shared.UserID]intake.UndoTicket)}
}

// Arm implements intake.TicketStore.
func (s *TicketStore) Arm(_ context.Context, ticket intake.UndoTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets[ticket.UserID] = ticket
	return nil
}

// Take implements intake.TicketStore.
func (s *TicketStore) Take(_ context.Context, userID shared.UserID, entryID shared.EntryID, now time.Time) (intake.UndoTicket, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[userID]
	if !ok {
		return intake.UndoTicket{}, false, nil
	}
	if ticket.Expired(now) {
		delete(s.tickets, userID)
		return intake.UndoTicket{}, false, nil
	}
	if !ticket.Matches(entryID, now) {
		return intake.UndoTicket{}, false, nil
	}
	delete(s.tickets, userID)
	return ticket, true, nil
}

// Peek implements intake.TicketStore.
func (s *TicketStore) Peek(_ context.Context, userID shared.UserID, now time.Time) (intake.UndoTicket, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[userID]
	if !ok || ticket.Expired(now) {
		return intake.UndoTicket{}, false, nil
	}
	return ticket, true, nil
}

// Clear implements intake.TicketStore.
func (s *TicketStore) Clear(_ context.Context, userID shared.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tickets, userID)
	return nil
}
