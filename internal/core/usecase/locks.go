package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// userLocks hands out one mutex per user id. The ledger engine holds the
// debited party's mutex from the balance read until the insert commits, which
// closes the check-then-act window on concurrent withdrawals. Unrelated users
// never contend.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *userLocks) forUser(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.locks[id]; !exists {
		l.locks[id] = &sync.Mutex{}
	}
	return l.locks[id]
}
