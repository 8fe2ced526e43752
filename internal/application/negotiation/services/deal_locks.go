package services

import (
	"sync"

	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// DealLockTable serializes pipeline work per deal. The lock is acquired
// on Phase-1 entry and released after Phase-2 commit; entries are
// refcounted so the table does not grow with dead deals.
type DealLockTable struct {
	mu    sync.Mutex
	locks map[string]*dealLock
}

type dealLock struct {
	mu   sync.Mutex
	refs int
}

// NewDealLockTable creates an empty lock table
func NewDealLockTable() *DealLockTable {
	return &DealLockTable{locks: make(map[string]*dealLock)}
}

// Lock blocks until the per-deal lock is held
func (t *DealLockTable) Lock(dealID shared.ID) {
	key := dealID.String()

	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &dealLock{}
		t.locks[key] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the per-deal lock, dropping the table entry when no
// other holder or waiter remains
func (t *DealLockTable) Unlock(dealID shared.ID) {
	key := dealID.String()

	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		t.mu.Unlock()
		return
	}
	l.refs--
	if l.refs <= 0 {
		delete(t.locks, key)
	}
	t.mu.Unlock()

	l.mu.Unlock()
}
