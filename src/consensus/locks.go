package consensus

import "sync"

// keyLocks serializes engine operations per proposal key. Operations on
// different proposals proceed independently; two operations on the same
// voting message are mutually exclusive. Lock entries are kept for the
// process lifetime; the set of keys is bounded by the number of proposals
// ever seen, which is small.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyLocks) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
