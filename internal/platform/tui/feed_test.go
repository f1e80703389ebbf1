package tui

import (
	"testing"

	"github.com/vovakirdan/sneaky-snake/internal/game"
)

func TestFeedDeliversInOrder(t *testing.T) {
	f := NewFeed(4)
	defer f.Close()

	a := game.NewState(game.DefaultRules(), 1)
	b := game.NewState(game.DefaultRules(), 2)
	f.Send(a)
	f.Send(b)

	for _, expected := range []*game.State{a, b} {
		msg, ok := f.Wait()().(SnapshotMsg)
		if !ok {
			t.Fatalf("Wait() did not return a SnapshotMsg")
		}
		if msg.State != expected {
			t.Errorf("Wait() = seed %d, expected seed %d", msg.State.Seed(), expected.Seed())
		}
	}
}

func TestFeedDropsOldest(t *testing.T) {
	f := NewFeed(2)
	defer f.Close()

	states := make([]*game.State, 3)
	for i := range states {
		states[i] = game.NewState(game.DefaultRules(), int64(i+1))
		f.Send(states[i])
	}

	for _, expected := range states[1:] {
		msg := f.Wait()().(SnapshotMsg)
		if msg.State != expected {
			t.Errorf("Wait() = seed %d, expected seed %d", msg.State.Seed(), expected.Seed())
		}
	}
}

func TestFeedClose(t *testing.T) {
	f := NewFeed(1)
	f.Close()
	f.Close() // Safe to call twice

	if _, ok := f.Wait()().(feedClosedMsg); !ok {
		t.Error("Wait() after Close() should return feedClosedMsg")
	}

	// Send after close must not block
	f.Send(game.NewState(game.DefaultRules(), 1))
}

func TestNewFeedDefaultBuffer(t *testing.T) {
	f := NewFeed(0)
	defer f.Close()

	if cap(f.states) != 16 {
		t.Errorf("buffer = %d, expected 16", cap(f.states))
	}
}
