package engine

import (
	"fmt"
	"sync"
)

// TicketState is the lifecycle state of a Ticket.
type TicketState int

const (
	// TicketPending means the ticket waits in its queue.
	TicketPending TicketState = iota
	// TicketActive means the ticket holds exclusive rights over its board.
	TicketActive
	// TicketReleased means the ticket is spent. Terminal.
	TicketReleased
)

// String returns the lowercase state name.
func (s TicketState) String() string {
	switch s {
	case TicketPending:
		return "pending"
	case TicketActive:
		return "active"
	case TicketReleased:
		return "released"
	default:
		return fmt.Sprintf("TicketState(%d)", int(s))
	}
}

// Ticket is a one-shot coordination token granting exclusive execution
// rights over one queue.
//
// Tickets are opaque handles: they are minted by Queue.Acquire (or internally
// by Do) and driven only by their queue. The two signals are closed channels
// so any number of waiters, early or late, observe them.
//
// INVARIANTS:
//   - activation happens at most once and only while pending
//   - release happens at most once; later calls are no-ops
type Ticket struct {
	id    uint64
	queue *Queue

	mu    sync.Mutex
	state TicketState

	activated chan struct{}
	released  chan struct{}
}

func newTicket(id uint64, q *Queue) *Ticket {
	return &Ticket{
		id:        id,
		queue:     q,
		state:     TicketPending,
		activated: make(chan struct{}),
		released:  make(chan struct{}),
	}
}

// ID returns the ticket's monotonic id within its queue.
func (t *Ticket) ID() uint64 {
	return t.id
}

// State returns the current lifecycle state.
func (t *Ticket) State() TicketState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Activated is closed once the ticket becomes active.
func (t *Ticket) Activated() <-chan struct{} {
	return t.activated
}

// Released is closed once the ticket is released.
func (t *Ticket) Released() <-chan struct{} {
	return t.released
}

// String returns a name such as "board-ticket#3".
func (t *Ticket) String() string {
	name := "unnamed"
	if t.queue != nil {
		name = t.queue.name
	}
	return fmt.Sprintf("%s-ticket#%d", name, t.id)
}

// activate moves the ticket from pending to active.
func (t *Ticket) activate() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case TicketActive:
		return NewInvalidStateError(fmt.Sprintf("cannot activate %s: already active", t))
	case TicketReleased:
		return NewInvalidStateError(fmt.Sprintf("cannot activate %s: already released", t))
	}

	t.state = TicketActive
	close(t.activated)
	return nil
}

// release moves the ticket to released. It reports false if the ticket was
// already released.
func (t *Ticket) release() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TicketReleased {
		return false
	}
	t.state = TicketReleased
	close(t.released)
	return true
}
