package reaction

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v2"
)

// Locker serializes reactions to the same target inside one process.
type Locker interface {
	// Lock blocks until the key is held and returns the matching unlock.
	Lock(key string) (unlock func())
	// Forget drops per-key bookkeeping once a target is gone.
	Forget(key string)
}

// KeyedLocker hands out one mutex per target key. Entries are reference
// counted and dropped once the last holder or waiter unlocks.
type KeyedLocker struct {
	entries *xsync.MapOf[string, *lockEntry]
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLocker creates an empty KeyedLocker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{entries: xsync.NewMapOf[*lockEntry]()}
}

func (l *KeyedLocker) Lock(key string) func() {
	e, _ := l.entries.Compute(key, func(cur *lockEntry, loaded bool) (*lockEntry, bool) {
		if !loaded {
			cur = &lockEntry{}
		}
		cur.refs++
		return cur, false
	})
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.release(key, e)
	}
}

func (l *KeyedLocker) release(key string, e *lockEntry) {
	l.entries.Compute(key, func(cur *lockEntry, loaded bool) (*lockEntry, bool) {
		if !loaded {
			return cur, true
		}
		// forgotten and recreated meanwhile
		if cur != e {
			return cur, false
		}
		cur.refs--
		return cur, cur.refs == 0
	})
}

func (l *KeyedLocker) Forget(key string) {
	l.entries.Delete(key)
}

// Size is the number of keys currently held or waited on.
func (l *KeyedLocker) Size() int {
	return l.entries.Size()
}

// NoopLocker never blocks. Use it where concurrent writers are not a concern.
type NoopLocker struct{}

func (NoopLocker) Lock(string) func() { return func() {} }

func (NoopLocker) Forget(string) {}
