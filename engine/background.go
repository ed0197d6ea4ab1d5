package engine

import (
	"sync"
	"time"
)

// Mailbox is a single-slot result cell: written once by a background task,
// drained by the main loop at the start of the next tick. Single writer,
// single reader; the cooldown gate guarantees no second writer exists
// while a value is pending.
type Mailbox[T any] struct {
	mu sync.Mutex
	v  *T
}

// Put stores a result, replacing any undrained one.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.v = &v
	m.mu.Unlock()
}

// Take removes and returns the stored result, or nil.
func (m *Mailbox[T]) Take() *T {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.v
	m.v = nil
	return v
}

// gate enforces cooldown spacing and single-flight launch for one kind of
// background diagnostic. TryAcquire is called from the tick goroutine only,
// so checking and stamping the last-run time is race-free; the background
// task itself never touches the gate.
type gate struct {
	cooldown time.Duration
	lastRun  time.Time
}

func newGate(cooldown time.Duration) *gate {
	return &gate{cooldown: cooldown}
}

// TryAcquire reports whether a new run may start now, stamping the launch
// time on success.
func (g *gate) TryAcquire(now time.Time) bool {
	if !g.lastRun.IsZero() && now.Sub(g.lastRun) < g.cooldown {
		return false
	}
	g.lastRun = now
	return true
}
