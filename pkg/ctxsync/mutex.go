// Package ctxsync provides synchronization primitives that honor context
// cancellation while waiting.
package ctxsync

import "context"

// NewMutex creates a new instance of Mutex.
func NewMutex() *Mutex {
	return &Mutex{slot: make(chan struct{}, 1)}
}

// A Mutex is a mutual exclusion lock whose acquisition can be abandoned
// through a context. The zero value is not usable; call [NewMutex].
type Mutex struct {
	slot chan struct{}
}

// Lock locks the mutex, waiting indefinitely.
func (m *Mutex) Lock() {
	m.slot <- struct{}{}
}

// LockWithContext locks the mutex, giving up when the context ends. The
// lock is not held when an error is returned.
func (m *Mutex) LockWithContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.slot <- struct{}{}:
		return nil
	}
}

// TryLock tries to lock m and reports whether it succeeded.
func (m *Mutex) TryLock() bool {
	select {
	case m.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock unlocks m. Unlocking an unlocked mutex panics.
func (m *Mutex) Unlock() {
	select {
	case <-m.slot:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}
