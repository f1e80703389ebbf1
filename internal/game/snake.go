package game

import (
	"slices"

	"github.com/vovakirdan/sneaky-snake/internal/core"
)

// Perk is a temporary gameplay modifier.
type Perk int

const (
	PerkAttack Perk = iota
	PerkSpeed
)

func (p Perk) String() string {
	switch p {
	case PerkAttack:
		return "attack"
	case PerkSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// ActivePerk is an engaged perk and the tick at which it wears off.
type ActivePerk struct {
	Perk      Perk
	ExpiresAt uint64
}

// Snake is the player's body. Segments run from head to tail.
type Snake struct {
	body    []core.Position
	heading core.Direction // applied on the next tick
	moved   core.Direction // direction of the last committed step
	perks   []ActivePerk
}

// Head returns the head position.
func (s Snake) Head() core.Position { return s.body[0] }

// Tail returns the last segment.
func (s Snake) Tail() core.Position { return s.body[len(s.body)-1] }

// Length returns the number of segments.
func (s Snake) Length() int { return len(s.body) }

// Segments returns a copy of the body, head first.
func (s Snake) Segments() []core.Position { return slices.Clone(s.body) }

// Heading returns the direction the snake will take on the next tick.
func (s Snake) Heading() core.Direction { return s.heading }

// Moved returns the direction of the last step actually taken.
func (s Snake) Moved() core.Direction { return s.moved }

// Perks returns a copy of the active perks.
func (s Snake) Perks() []ActivePerk { return slices.Clone(s.perks) }

// HasPerk reports whether p is engaged.
func (s Snake) HasPerk(p Perk) bool {
	for _, ap := range s.perks {
		if ap.Perk == p {
			return true
		}
	}
	return false
}

// indexOf returns the segment index at p, or -1.
func (s Snake) indexOf(p core.Position) int {
	return slices.Index(s.body, p)
}

// advance moves the head to target, keeping the tail when growing.
func (s Snake) advance(target core.Position, grow bool) Snake {
	keep := len(s.body)
	if !grow {
		keep--
	}
	body := make([]core.Position, 0, keep+1)
	body = append(body, target)
	body = append(body, s.body[:keep]...)
	s.body = body
	s.moved = s.heading
	return s
}

// bite moves the head onto its own segment at index i, dropping that segment
// and everything behind it.
func (s Snake) bite(i int) Snake {
	body := make([]core.Position, 0, i+1)
	body = append(body, s.body[i])
	body = append(body, s.body[:i]...)
	s.body = body
	s.moved = s.heading
	return s
}

func (s Snake) withPerk(p Perk, expiresAt uint64) Snake {
	perks := make([]ActivePerk, 0, len(s.perks)+1)
	perks = append(perks, s.perks...)
	s.perks = append(perks, ActivePerk{Perk: p, ExpiresAt: expiresAt})
	return s
}

func (s Snake) withoutPerk(p Perk) Snake {
	s.perks = slices.DeleteFunc(slices.Clone(s.perks), func(ap ActivePerk) bool {
		return ap.Perk == p
	})
	return s
}

// expire drops perks whose duration has elapsed as of tick.
func (s Snake) expire(tick uint64) Snake {
	if !slices.ContainsFunc(s.perks, func(ap ActivePerk) bool { return ap.ExpiresAt <= tick }) {
		return s
	}
	s.perks = slices.DeleteFunc(slices.Clone(s.perks), func(ap ActivePerk) bool {
		return ap.ExpiresAt <= tick
	})
	return s
}
