// Package event provides a manually-reset, edge-triggered signal —
// the Go equivalent of Python's asyncio.Event, used to model the
// sender's single-slot ack_received/receiver_finished rendezvous
// points from spec §4.2 without inventing ad-hoc channel plumbing at
// every call site.
package event

import "sync"

// Event is a binary semaphore: Set marks it signalled, Clear resets it,
// and Wait returns a channel that's closed exactly while it is signalled.
type Event struct {
	mu sync.Mutex
	ch chan struct{}
}

// New creates an Event in the cleared state, or signalled if initiallySet.
func New(initiallySet bool) *Event {
	e := &Event{ch: make(chan struct{})}
	if initiallySet {
		close(e.ch)
	}
	return e
}

// Set marks the event signalled. Idempotent.
func (e *Event) Set() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.ch:
	default:
		close(e.ch)
	}
}

// Clear resets the event to unsignalled. Idempotent.
func (e *Event) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.ch:
		e.ch = make(chan struct{})
	default:
	}
}

// Wait returns a channel that is closed exactly while the event is
// signalled; `<-e.Wait()` blocks until Set is called.
func (e *Event) Wait() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ch
}
