package cartstore

import "sync"

// Locks is a keyed mutex granting exclusive access per cart id. Different
// carts never contend with each other.
type Locks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewLocks builds an empty lock table.
func NewLocks() *Locks {
	return &Locks{entries: make(map[string]*lockEntry)}
}

// Acquire blocks until the per-cart lock is held and returns the release
// function. Entries are reference counted so the table does not grow with
// dead cart ids.
func (l *Locks) Acquire(id string) func() {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &lockEntry{}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.entries, id)
			}
			l.mu.Unlock()
		})
	}
}
