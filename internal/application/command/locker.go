// Package command contains write operations (CQRS - Commands).
package command

import (
	"sync"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// UserLocker serializes mutations per user. Operations of different users
// never contend; two mutations for the same user run one at a time, which
// keeps the undo ticket and the ledger append order consistent.
type UserLocker struct {
	mu    sync.Mutex
	locks map[shared.UserID]*sync.Mutex
}

// NewUserLocker creates an empty locker.
func NewUserLocker() *UserLocker {
	return &UserLocker{locks: make(map[shared.UserID]*sync.Mutex)}
}

// Lock acquires the user's mutex and returns the matching unlock.
func (l *UserLocker) Lock(userID shared.UserID) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
