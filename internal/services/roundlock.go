package services

import "sync"

// RoundLocks serializes fund-moving operations per round. Invest, claim,
// withdraw, and reward top-up hold the round's lock for their entire call,
// so no two operations interleave on the same round mid-execution. The
// enclosing database transaction still provides all-or-nothing semantics;
// the lock prevents two in-flight operations from both passing a balance
// or supply check against the same snapshot.
type RoundLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewRoundLocks creates an empty lock set shared by the round, claim, and
// treasury services.
func NewRoundLocks() *RoundLocks {
	return &RoundLocks{locks: make(map[uint]*sync.Mutex)}
}

// Lock acquires the lock for the given round id, creating it on first use,
// and returns the matching unlock function. Callers must release on every
// exit path:
//
//	unlock := locks.Lock(roundID)
//	defer unlock()
func (r *RoundLocks) Lock(roundID uint) func() {
	r.mu.Lock()
	l, ok := r.locks[roundID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[roundID] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}
