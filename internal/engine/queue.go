package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Work is a unit of work run under an active ticket.
type Work[T any] func(ctx context.Context, t *Ticket) (T, error)

// Queue serializes actions against one board.
//
// The queue holds at most one active ticket and an ordered sequence of
// pending tickets. Tickets are promoted strictly in acquisition order.
//
// Thread-safety: all methods are safe for concurrent use. Work functions run
// on the caller's goroutine, never on a queue-owned goroutine.
type Queue struct {
	name  string
	clock *Clock

	mu      sync.Mutex
	current *Ticket
	pending []*Ticket

	activations *Listeners[*Ticket]
}

// NewQueue creates an idle queue. name prefixes ticket names in logs.
func NewQueue(name string) *Queue {
	if name == "" {
		name = "unnamed"
	}
	return &Queue{
		name:        name,
		clock:       NewClock(),
		pending:     make([]*Ticket, 0, 8),
		activations: NewListeners[*Ticket](name+"-activations", nil),
	}
}

// OnActivate registers fn to be told about every newly active ticket.
// fn runs synchronously during promotion and must not block.
func (q *Queue) OnActivate(fn func(*Ticket)) (unsubscribe func()) {
	return q.activations.Subscribe(fn)
}

// Acquire mints a ticket and appends it to the queue.
//
// The caller owns the ticket: it may pass it to any number of chained
// operations (which wait for its turn if it is still pending) and must hand
// it back with Release exactly once.
func (q *Queue) Acquire() *Ticket {
	t := newTicket(q.clock.Next(), q)

	q.mu.Lock()
	q.pending = append(q.pending, t)
	promoted := q.promoteNextLocked()
	q.mu.Unlock()

	slog.Debug("ticket queued", "ticket", t.String(), "state", t.State().String())
	q.announce(promoted)
	return t
}

// Release releases t and promotes the next pending ticket.
//
// Releasing a pending ticket withdraws it from the queue. Releasing a ticket
// twice, or a ticket of another queue, is a no-op.
func (q *Queue) Release(t *Ticket) {
	if t == nil || t.queue != q {
		return
	}

	q.mu.Lock()
	if !t.release() {
		q.mu.Unlock()
		return
	}
	if q.current == t {
		q.current = nil
	} else {
		q.removePendingLocked(t)
	}
	promoted := q.promoteNextLocked()
	q.mu.Unlock()

	slog.Debug("ticket released", "ticket", t.String())
	q.announce(promoted)
}

// Current returns the active ticket, or nil when the queue is idle.
func (q *Queue) Current() *Ticket {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

// Len returns the number of pending tickets.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run is Do for work without a result value.
func (q *Queue) Run(ctx context.Context, t *Ticket, work func(ctx context.Context, t *Ticket) error) error {
	_, err := Do(ctx, q, t, func(ctx context.Context, t *Ticket) (struct{}, error) {
		return struct{}{}, work(ctx, t)
	})
	return err
}

// Do runs work on q.
//
//   - t is q's active ticket: work runs immediately (reentrant path).
//   - t is pending in q: Do waits for t's turn, then runs work under t.
//     The owner of t stays responsible for releasing it.
//   - otherwise (nil, released, or another queue's ticket): Do queues a
//     fresh ticket, runs work when it becomes active and releases it
//     afterwards whatever the outcome, panics included.
//
// If ctx ends while waiting, Do returns ctx.Err() without running work; a
// ticket Do minted itself is withdrawn so the queue keeps moving.
func Do[T any](ctx context.Context, q *Queue, t *Ticket, work Work[T]) (T, error) {
	var zero T

	if t != nil && t.queue == q {
		switch t.State() {
		case TicketActive:
			return work(ctx, t)
		case TicketPending:
			if err := q.await(ctx, t); err != nil {
				return zero, err
			}
			return work(ctx, t)
		}
	}

	own := q.Acquire()
	if err := q.await(ctx, own); err != nil {
		q.Release(own)
		return zero, err
	}
	defer q.Release(own)

	return work(ctx, own)
}

// await blocks until t is active.
func (q *Queue) await(ctx context.Context, t *Ticket) error {
	select {
	case <-t.activated:
		return nil
	default:
	}

	select {
	case <-t.activated:
		return nil
	case <-t.released:
		return NewInvalidStateError(fmt.Sprintf("%s was released before it became active", t))
	case <-ctx.Done():
		return ctx.Err()
	}
}

// promoteNextLocked activates the head ticket if the queue is idle.
// Returns the promoted ticket so the caller can announce it after unlocking.
// Caller must hold q.mu.
func (q *Queue) promoteNextLocked() *Ticket {
	if q.current != nil || len(q.pending) == 0 {
		return nil
	}

	head := q.pending[0]
	// Nil out the slot so the backing array does not retain released tickets.
	q.pending[0] = nil
	if len(q.pending) == 1 {
		q.pending = q.pending[:0]
	} else {
		q.pending = q.pending[1:]
	}

	if err := head.activate(); err != nil {
		// Only pending tickets are ever queued; anything else is a bug in
		// Queue itself.
		panic(fmt.Sprintf("queue %s: %v", q.name, err))
	}
	q.current = head
	return head
}

func (q *Queue) removePendingLocked(t *Ticket) {
	for i, p := range q.pending {
		if p == t {
			copy(q.pending[i:], q.pending[i+1:])
			q.pending[len(q.pending)-1] = nil
			q.pending = q.pending[:len(q.pending)-1]
			return
		}
	}
}

func (q *Queue) announce(t *Ticket) {
	if t == nil {
		return
	}
	slog.Debug("ticket activated", "ticket", t.String(), "pending", q.Len())
	q.activations.Notify(t)
}
