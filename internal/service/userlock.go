package service

import "sync"

// userLocker serializes schedule read-modify-write cycles per user so that
// two concurrent "add program" calls cannot both read the same prior state
// and overwrite each other's merge. Entries are reference counted and
// removed once the last holder releases, so the map stays bounded by the
// number of in-flight requests.
type userLocker struct {
	mu      sync.Mutex
	entries map[string]*userLockEntry
}

type userLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newUserLocker() *userLocker {
	return &userLocker{entries: make(map[string]*userLockEntry)}
}

// Lock acquires the mutex for the given key, creating it on first use.
func (l *userLocker) Lock(key string) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &userLockEntry{}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the mutex for the given key and drops the entry once no
// goroutine is waiting on it.
func (l *userLocker) Unlock(key string) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		l.mu.Unlock()
		panic("userLocker: unlock of unheld key " + key)
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
