package game

import (
	"math/rand/v2"

	"github.com/vovakirdan/sneaky-snake/internal/core"
)

// State is an immutable snapshot of a game. Every transition returns a new
// State and never touches the receiver, so observers may keep references.
type State struct {
	rules   Rules
	seed    int64
	tick    uint64
	score   int
	snake   Snake
	terrain Field // everything but the snake
	frame   GameFrame
}

// Rules returns the build parameters of the session.
func (s *State) Rules() Rules { return s.rules }

// Seed returns the seed the field was generated from.
func (s *State) Seed() int64 { return s.seed }

// Tick returns the number of ticks processed since the session began.
func (s *State) Tick() uint64 { return s.tick }

// Score returns the points earned: segments grown beyond the initial length.
func (s *State) Score() int { return s.score }

// Snake returns the snake.
func (s *State) Snake() Snake { return s.snake }

// Frame returns the current game frame.
func (s *State) Frame() GameFrame { return s.frame }

// IsEnd reports whether the game has finished.
func (s *State) IsEnd() bool {
	_, ok := s.frame.(End)
	return ok
}

// Result returns the outcome of a finished game.
func (s *State) Result() (Result, bool) {
	if end, ok := s.frame.(End); ok {
		return end.Result, true
	}
	return nil, false
}

// Field returns the last rendered field, including after the game has ended.
func (s *State) Field() Field {
	return overlay(s.terrain, s.snake)
}

// PerkAvailableAfter returns the points still needed before p can be
// engaged. Zero or negative means it is available now.
func (s *State) PerkAvailableAfter(p Perk) int {
	return s.rules.Perk(p).Threshold - s.score
}

// ExitOpensAfter returns the points still needed before the exit opens.
func (s *State) ExitOpensAfter() int {
	return s.rules.ExitThreshold - s.score
}

// ExitOpen reports whether stepping onto the exit wins the game.
func (s *State) ExitOpen() bool {
	return s.ExitOpensAfter() <= 0
}

// clone returns a shallow copy. Slices inside are replaced, never mutated.
func (s *State) clone() *State {
	next := *s
	return &next
}

// running recomputes the rendered frame.
func (s *State) running() *State {
	s.frame = Frame{Field: overlay(s.terrain, s.snake)}
	return s
}

func (s *State) end(r Result) *State {
	s.frame = End{Result: r}
	return s
}

// rng returns the deterministic generator for the given stream.
func (s *State) rng(stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(s.seed), stream))
}

func (s *State) recomputeScore() {
	s.score = max(0, s.snake.Length()-s.rules.InitialLength)
}

// overlay paints the snake on top of the terrain.
func overlay(terrain Field, sn Snake) Field {
	f := terrain.clone()
	for _, p := range sn.body {
		f.set(p, SnakeCell)
	}
	if sn.HasPerk(PerkAttack) && len(sn.body) > 0 {
		f.set(sn.Head(), Eater)
	}
	return f
}

// freeCells lists empty terrain cells not covered by the snake.
func freeCells(terrain Field, sn Snake) []core.Position {
	var out []core.Position
	for row := range terrain.height {
		for col := range terrain.width {
			p := core.Position{Col: col, Row: row}
			if terrain.At(p) == Empty && sn.indexOf(p) < 0 {
				out = append(out, p)
			}
		}
	}
	return out
}
