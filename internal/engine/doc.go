// Package engine implements the action-serialization core of forty96.
//
// Every board owns one Queue. All logical operations against the board run as
// actions on that queue, each under a Ticket. A ticket is a one-shot token
// that moves through Pending -> Active -> Released exactly once.
//
// SERIALIZATION MODEL:
//
// Top-level actions are served strictly FIFO. An action that is handed the
// ticket of an action already in flight does not queue again: if the ticket
// is active it runs immediately, if it is still pending it waits for that
// ticket's turn. This is how composite operations (move, spawn, terminal
// check) observe their own writes without another caller interleaving.
//
// Promotion is explicit. The queue promotes its head ticket synchronously
// when a ticket is enqueued into an idle queue and when the active ticket is
// released. There is no background goroutine.
//
// FAILURE MODEL:
//
// A failing or panicking action still releases its ticket before the failure
// reaches the caller, so one broken action never stalls the queue. Listener
// callbacks run synchronously; a panicking listener is recovered and logged.
//
// Errors visible to callers carry a stable Code (see errors.go).
package engine
