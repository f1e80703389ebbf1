// Package game holds the Sneaky Snake data model and its pure transition
// functions. Nothing in here is concurrent: the engine's game agent is the
// only caller that advances a State, one message at a time.
package game

import (
	"errors"
	"fmt"
)

// Obstacle and exit policies.
const (
	// AttackConsumesObstacles makes an obstacle rammed under the Attack perk
	// disappear from the field. When false the obstacle is passable but stays.
	AttackConsumesObstacles = true

	// LockedExitBlocks makes a locked exit stop the snake in front of it for
	// the tick. When false the snake treads over a locked exit harmlessly.
	LockedExitBlocks = true
)

// Transition rejections. They are reported by Step and Apply so the caller
// can log them; none of them is a failure of the game.
var (
	ErrTerminalState    = errors.New("game: ignored in terminal state")
	ErrPerkLocked       = errors.New("game: perk not yet unlocked")
	ErrPerkActive       = errors.New("game: perk already active")
	ErrReverseDirection = errors.New("game: reverse direction rejected")
	ErrNoChange         = errors.New("game: command does not change state")
	ErrUnhandledCommand = errors.New("game: command not handled by the rule engine")
)

// PerkRule configures one perk.
type PerkRule struct {
	Threshold int    // points needed to unlock
	Duration  uint64 // ticks the perk stays active
}

// Rules are the build parameters of a session.
type Rules struct {
	Width         int
	Height        int
	Obstacles     int
	Food          int
	InitialLength int
	ExitThreshold int
	Attack        PerkRule
	Speed         PerkRule
}

// DefaultRules returns the rules of the classic 50x20 field.
func DefaultRules() Rules {
	return Rules{
		Width:         50,
		Height:        20,
		Obstacles:     40,
		Food:          8,
		InitialLength: 3,
		ExitThreshold: 20,
		Attack:        PerkRule{Threshold: 10, Duration: 30},
		Speed:         PerkRule{Threshold: 5, Duration: 50},
	}
}

// Perk returns the rule for p.
func (r Rules) Perk(p Perk) PerkRule {
	if p == PerkAttack {
		return r.Attack
	}
	return r.Speed
}

// startLane is the number of cells kept clear in front of the initial head.
const startLane = 3

// Validate reports rules that cannot produce a playable field.
func (r Rules) Validate() error {
	if r.Height < 3 {
		return fmt.Errorf("game: field height %d too small (min 3)", r.Height)
	}
	if r.InitialLength < 1 {
		return fmt.Errorf("game: initial length %d must be positive", r.InitialLength)
	}
	if minW := r.InitialLength + startLane + 2; r.Width < minW {
		return fmt.Errorf("game: field width %d too small for initial length %d (min %d)", r.Width, r.InitialLength, minW)
	}
	if r.Obstacles < 0 || r.Food < 0 {
		return fmt.Errorf("game: negative obstacle (%d) or food (%d) count", r.Obstacles, r.Food)
	}
	free := r.Width*r.Height - r.InitialLength - startLane - 1 // minus exit
	if r.Obstacles+r.Food > free {
		return fmt.Errorf("game: %d obstacles and %d food do not fit in %d free cells", r.Obstacles, r.Food, free)
	}
	if r.ExitThreshold < 0 || r.Attack.Threshold < 0 || r.Speed.Threshold < 0 {
		return errors.New("game: thresholds must not be negative")
	}
	if r.Attack.Duration == 0 || r.Speed.Duration == 0 {
		return errors.New("game: perk durations must be positive")
	}
	return nil
}
