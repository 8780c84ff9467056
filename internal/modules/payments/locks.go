package payments

import "sync"

// refLocks serializes status transitions per payment reference. The callback
// redirect and the provider webhook can race for the same payment; the DB row
// lock alone leaves a window between reading Pending and writing Processing,
// so transitions for one reference are also serialized in-process.
type refLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu      sync.Mutex
	waiters int
}

func newRefLocks() *refLocks {
	return &refLocks{locks: make(map[string]*refLock)}
}

// Acquire blocks until the caller holds the lock for ref and returns the
// release function.
func (r *refLocks) Acquire(ref string) func() {
	r.mu.Lock()
	l, ok := r.locks[ref]
	if !ok {
		l = &refLock{}
		r.locks[ref] = l
	}
	l.waiters++
	r.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		r.mu.Lock()
		l.waiters--
		if l.waiters == 0 {
			delete(r.locks, ref)
		}
		r.mu.Unlock()
	}
}
