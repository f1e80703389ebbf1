// Package tui provides the Bubble Tea integration for Sneaky Snake.
// It handles the terminal UI loop, key decoding and the SSH server.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/sneaky-snake/internal/game"
)

// SnapshotMsg is delivered to the model whenever the engine commits a state.
type SnapshotMsg struct {
	State *game.State
}

// feedClosedMsg tells the model that no more snapshots will arrive.
type feedClosedMsg struct{}

// Feed bridges engine subscribers, which run on the game agent goroutine,
// to the Bubble Tea event loop.
type Feed struct {
	states   chan *game.State
	done     chan struct{}
	doneOnce sync.Once
}

// NewFeed creates a feed. bufferSize controls how many snapshots can be
// buffered before the oldest is dropped.
func NewFeed(bufferSize int) *Feed {
	if bufferSize < 1 {
		bufferSize = 16 // Default buffer size
	}
	return &Feed{
		states: make(chan *game.State, bufferSize),
		done:   make(chan struct{}),
	}
}

// Send is an engine.Subscriber. It never blocks the game agent:
// if the buffer is full, the oldest snapshot is dropped.
func (f *Feed) Send(s *game.State) {
	select {
	case <-f.done:
		return
	default:
	}

	select {
	case f.states <- s:
	default:
		// Buffer full, drop oldest and retry
		select {
		case <-f.states:
		default:
		}
		select {
		case f.states <- s:
		default:
		}
	}
}

// Wait returns a command that waits for the next snapshot.
func (f *Feed) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-f.states:
			return SnapshotMsg{State: s}
		case <-f.done:
			return feedClosedMsg{}
		}
	}
}

// Close stops delivery. Safe to call multiple times.
func (f *Feed) Close() {
	f.doneOnce.Do(func() {
		close(f.done)
	})
}
