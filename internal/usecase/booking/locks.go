package booking

import "sync"

// idLocks serializes state changes per appointment id so a payment-driven
// transition and an admin-driven transition can never interleave on the same
// appointment. Locks for different ids are independent.
type idLocks struct {
	mu    sync.Mutex
	locks map[uint]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func newIDLocks() *idLocks {
	return &idLocks{locks: make(map[uint]*entry)}
}

// lock acquires the per-id mutex and returns the release func.
func (l *idLocks) lock(id uint) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &entry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
