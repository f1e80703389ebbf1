package engine

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sneaky-snake/internal/game"
)

// Subscriber receives every committed state of a session.
// It runs on the game agent's goroutine and must not block for long.
type Subscriber func(*game.State)

// Subscribers is an ordered registry of state observers.
type Subscribers struct {
	mu     sync.RWMutex
	fns    []Subscriber
	logger *log.Logger
}

func newSubscribers(logger *log.Logger) *Subscribers {
	return &Subscribers{logger: logger}
}

// Add registers fn after the existing subscribers. Safe from any goroutine.
func (s *Subscribers) Add(fn Subscriber) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
}

// Len returns the number of registered subscribers.
func (s *Subscribers) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fns)
}

// Publish calls every subscriber in registration order. A panicking
// subscriber is logged and skipped; the others still run.
func (s *Subscribers) Publish(state *game.State) {
	s.mu.RLock()
	fns := make([]Subscriber, len(s.fns))
	copy(fns, s.fns)
	s.mu.RUnlock()

	for i, fn := range fns {
		s.deliver(i, fn, state)
	}
}

// deliver calls fn with state. A panic is logged and swallowed.
func (s *Subscribers) deliver(index int, fn Subscriber, state *game.State) {
	if err := notify(fn, state); err != nil {
		s.logger.Error("subscriber failed", "index", index, "tick", state.Tick(), "err", err)
	}
}

func notify(fn Subscriber, state *game.State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine: subscriber panic: %v", r)
		}
	}()
	fn(state)
	return nil
}
