// Package postoffice provides the asynchronous mailboxes agents use to talk
// to each other, and the per-session network that creates and owns them.
package postoffice

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrMailboxClosed is returned when posting to or receiving from a
	// mailbox whose network has been torn down.
	ErrMailboxClosed = errors.New("postoffice: mailbox closed")

	// ErrNetworkClosed is returned when creating mailboxes on a closed network.
	ErrNetworkClosed = errors.New("postoffice: network closed")

	// ErrDuplicateAgent is returned when an agent id is registered twice.
	ErrDuplicateAgent = errors.New("postoffice: agent already registered")

	// ErrUnknownAgent is returned when resolving an unregistered agent id.
	ErrUnknownAgent = errors.New("postoffice: unknown agent")

	// ErrMailboxType is returned when an agent's mailbox carries a different
	// message type than the one requested.
	ErrMailboxType = errors.New("postoffice: mailbox message type mismatch")
)

// Mailbox is an unbounded FIFO queue feeding a single consuming agent.
// Post is safe from any number of goroutines and never blocks.
// Receive must only be called from the owning agent's loop.
type Mailbox[T any] struct {
	owner string

	mu     sync.Mutex
	queue  []T
	closed bool

	notify    chan struct{} // capacity 1, wakes the consumer
	done      chan struct{}
	closeOnce sync.Once
}

func newMailbox[T any](owner string) *Mailbox[T] {
	return &Mailbox[T]{
		owner:  owner,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Owner returns the id of the agent consuming this mailbox.
func (m *Mailbox[T]) Owner() string {
	return m.owner
}

// Post enqueues msg at the tail of the mailbox.
func (m *Mailbox[T]) Post(msg T) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("post to %s: %w", m.owner, ErrMailboxClosed)
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
		// Consumer already has a pending wake-up
	}
	return nil
}

// Receive returns the oldest message, waiting until one arrives, the mailbox
// is closed or ctx is done.
func (m *Mailbox[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return zero, ErrMailboxClosed
		}
		if len(m.queue) > 0 {
			msg := m.queue[0]
			m.queue[0] = zero
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return msg, nil
		}
		m.mu.Unlock()

		select {
		case <-m.notify:
		case <-m.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Len returns the number of queued messages.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Close detaches the mailbox. Pending messages are discarded and further
// posts fail with ErrMailboxClosed. Safe to call multiple times.
func (m *Mailbox[T]) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.queue = nil
		m.mu.Unlock()
		close(m.done)
	})
}

// Done returns a channel that is closed once the mailbox is closed.
func (m *Mailbox[T]) Done() <-chan struct{} {
	return m.done
}
