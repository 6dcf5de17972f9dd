package engine

import (
	"log/slog"
	"sync"
)

// Listeners is a registry of callbacks notified synchronously with values of
// type T.
//
// Slots are indexed and tombstoned on unsubscribe, so unsubscribing is safe at
// any time, including from inside a callback during Notify: a tombstoned slot
// is skipped even if the notification round already started. Freed slots are
// reused; a generation counter keeps stale unsubscribe handles from touching a
// reused slot.
//
// Thread-safety: all methods are safe for concurrent use.
type Listeners[T any] struct {
	name   string
	logger *slog.Logger

	mu    sync.Mutex
	slots []listenerSlot[T]
	free  []int
	live  int
}

type listenerSlot[T any] struct {
	fn  func(T)
	gen uint64
}

// NewListeners creates an empty registry. name appears in log records for
// recovered listener panics. A nil logger uses slog.Default().
func NewListeners[T any](name string, logger *slog.Logger) *Listeners[T] {
	return &Listeners[T]{name: name, logger: logger}
}

// Subscribe registers fn and returns a handle removing it again.
// The handle is idempotent.
func (l *Listeners[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var idx int
	if n := len(l.free); n > 0 {
		idx = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		idx = len(l.slots)
		l.slots = append(l.slots, listenerSlot[T]{})
	}
	l.slots[idx].gen++
	l.slots[idx].fn = fn
	l.live++

	gen := l.slots[idx].gen
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		s := &l.slots[idx]
		if s.gen != gen || s.fn == nil {
			return
		}
		s.fn = nil
		l.free = append(l.free, idx)
		l.live--
	}
}

// Len returns the number of live listeners.
func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.live
}

// Notify calls every live listener with v in subscription-slot order.
// Listener panics are recovered and logged; Notify returns how many
// listeners panicked.
func (l *Listeners[T]) Notify(v T) int {
	type entry struct {
		idx int
		gen uint64
	}

	l.mu.Lock()
	round := make([]entry, 0, l.live)
	for i, s := range l.slots {
		if s.fn != nil {
			round = append(round, entry{idx: i, gen: s.gen})
		}
	}
	l.mu.Unlock()

	failed := 0
	for _, e := range round {
		l.mu.Lock()
		s := l.slots[e.idx]
		l.mu.Unlock()
		if s.gen != e.gen || s.fn == nil {
			continue
		}
		if !l.call(s.fn, v) {
			failed++
		}
	}
	return failed
}

func (l *Listeners[T]) call(fn func(T), v T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			logger := l.logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("listener panicked",
				"registry", l.name,
				"panic", r,
			)
		}
	}()
	fn(v)
	return true
}
