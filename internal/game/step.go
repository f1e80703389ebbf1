package game

import (
	"fmt"

	"github.com/vovakirdan/sneaky-snake/internal/core"
)

// Streams for the per-state random generator.
const (
	streamRestart uint64 = 1 << 63
)

// Step advances the game by one tick.
func (s *State) Step() (*State, error) {
	if s.IsEnd() {
		return s, ErrTerminalState
	}

	next := s.clone()
	next.tick++
	next.snake = s.snake.expire(next.tick)

	sn := next.snake
	target := sn.Head().Add(sn.heading.Delta())
	if !s.terrain.InBounds(target) {
		return next.end(Lose{Reason: HitWall}), nil
	}
	attack := sn.HasPerk(PerkAttack)

	// A segment about to vacate the cell is not an obstacle.
	if i := sn.indexOf(target); i >= 0 && i < sn.Length()-1 {
		if !attack {
			return next.end(Lose{Reason: HitSelf}), nil
		}
		next.snake = sn.bite(i)
		next.recomputeScore()
		return next.running(), nil
	}

	switch s.terrain.At(target) {
	case Obstacle:
		if !attack {
			return next.end(Lose{Reason: HitObstacle}), nil
		}
		if AttackConsumesObstacles {
			next.terrain = s.terrain.with(target, Empty)
		}
		next.snake = sn.advance(target, false)

	case Food:
		next.snake = sn.advance(target, true)
		next.terrain = next.replenishFood(s.terrain.with(target, Empty))

	case Exit:
		if s.ExitOpen() {
			// Points are the snake's length as it reaches the exit.
			return next.end(Win{Points: sn.Length()}), nil
		}
		if !LockedExitBlocks {
			next.snake = sn.advance(target, false)
		}

	default:
		next.snake = sn.advance(target, false)
	}

	next.recomputeScore()
	return next.running(), nil
}

// replenishFood puts one food on a random free cell of terrain.
func (s *State) replenishFood(terrain Field) Field {
	free := freeCells(terrain, s.snake)
	if len(free) == 0 {
		return terrain
	}
	p := free[s.rng(s.tick).IntN(len(free))]
	terrain.set(p, Food) // terrain is a fresh copy
	return terrain
}

// Apply applies a player command.
// Restart is honored in any state; everything else is ignored once the game
// has ended. Pause and Quit belong to the agents and are not handled here.
func (s *State) Apply(cmd core.Command) (*State, error) {
	if cmd == core.CmdRestart {
		return s.restart(), nil
	}
	if s.IsEnd() {
		return s, ErrTerminalState
	}

	if dir, ok := cmd.Direction(); ok {
		return s.turn(dir)
	}

	switch cmd {
	case core.CmdAttack:
		return s.engage(PerkAttack)
	case core.CmdSpeedToggle:
		if s.snake.HasPerk(PerkSpeed) {
			next := s.clone()
			next.snake = s.snake.withoutPerk(PerkSpeed)
			return next.running(), nil
		}
		return s.engage(PerkSpeed)
	}
	return s, fmt.Errorf("%w: %s", ErrUnhandledCommand, cmd)
}

func (s *State) turn(dir core.Direction) (*State, error) {
	if dir == s.snake.heading {
		return s, ErrNoChange
	}
	if s.snake.Length() > 1 && dir == s.snake.moved.Opposite() {
		return s, ErrReverseDirection
	}
	next := s.clone()
	next.snake.heading = dir
	return next, nil
}

func (s *State) engage(p Perk) (*State, error) {
	if s.snake.HasPerk(p) {
		return s, fmt.Errorf("%w: %s", ErrPerkActive, p)
	}
	if s.PerkAvailableAfter(p) > 0 {
		return s, fmt.Errorf("%w: %s", ErrPerkLocked, p)
	}
	next := s.clone()
	next.snake = s.snake.withPerk(p, s.tick+s.rules.Perk(p).Duration)
	return next.running(), nil
}

func (s *State) restart() *State {
	seed := int64(s.rng(streamRestart^s.tick).Uint64() >> 1)
	return NewState(s.rules, seed)
}
