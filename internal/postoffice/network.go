package postoffice

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// box is the type-erased view of a mailbox held in the routing table.
type box interface {
	Owner() string
	Close()
}

// Network creates and wires the mailboxes of one game session and owns the
// processing loops of the agents reading them. The routing table is written
// while the session is being built and only read afterwards.
type Network struct {
	mu     sync.RWMutex
	boxes  map[string]box
	closed bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	ctx, cancel := context.WithCancel(context.Background())
	return &Network{
		boxes:  make(map[string]box),
		ctx:    ctx,
		cancel: cancel,
	}
}

// CreateMailbox registers a new mailbox for agentID.
func CreateMailbox[T any](n *Network, agentID string) (*Mailbox[T], error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, ErrNetworkClosed
	}
	if _, exists := n.boxes[agentID]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateAgent, agentID)
	}

	mb := newMailbox[T](agentID)
	n.boxes[agentID] = mb
	return mb, nil
}

// Remove closes and unregisters the mailbox of agentID, if any.
func (n *Network) Remove(agentID string) {
	n.mu.Lock()
	b, ok := n.boxes[agentID]
	delete(n.boxes, agentID)
	n.mu.Unlock()

	if ok {
		b.Close()
	}
}

// Resolve returns the mailbox registered for agentID.
func Resolve[T any](n *Network, agentID string) (*Mailbox[T], error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	b, ok := n.boxes[agentID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, agentID)
	}
	mb, ok := b.(*Mailbox[T])
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMailboxType, agentID)
	}
	return mb, nil
}

// Agents returns the registered agent ids, sorted.
func (n *Network) Agents() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ids := make([]string, 0, len(n.boxes))
	for id := range n.boxes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Go runs an agent's processing loop owned by the network.
// The loop receives a context that is cancelled when the network closes.
// Loops started after Close are not run.
func (n *Network) Go(loop func(ctx context.Context)) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		loop(n.ctx)
	}()
}

// Close cancels the agents' context and closes every mailbox.
// It does not wait for the loops; use Wait for that.
func (n *Network) Close() {
	n.closeOnce.Do(func() {
		n.mu.Lock()
		n.closed = true
		boxes := make([]box, 0, len(n.boxes))
		for _, b := range n.boxes {
			boxes = append(boxes, b)
		}
		n.mu.Unlock()

		n.cancel()
		for _, b := range boxes {
			b.Close()
		}
	})
}

// Wait blocks until every loop started with Go has returned.
// It must not be called from inside one of those loops.
func (n *Network) Wait() {
	n.wg.Wait()
}

// Done returns a channel that is closed when the network is closed.
func (n *Network) Done() <-chan struct{} {
	return n.ctx.Done()
}

// Closed reports whether Close has been called.
func (n *Network) Closed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.closed
}
