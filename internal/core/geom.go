// Package core provides the fundamental value types shared by the game core
// and the platform shell. It has no external dependencies so that game logic
// stays pure and testable.
package core

import "fmt"

// Position is a cell coordinate on the field.
// Columns grow to the right, rows grow upwards: row 0 is the bottom row.
type Position struct {
	Col, Row int
}

// Add returns the position shifted by the given delta.
func (p Position) Add(d Position) Position {
	return Position{Col: p.Col + d.Col, Row: p.Row + d.Row}
}

// Adjacent reports whether q is one orthogonal step away from p.
func (p Position) Adjacent(q Position) bool {
	return Abs(p.Col-q.Col)+Abs(p.Row-q.Row) == 1
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Col, p.Row)
}

// Direction is a heading on the grid.
type Direction int

const (
	DirRight Direction = iota
	DirUp
	DirLeft
	DirDown
)

// Delta returns the one-cell offset for the direction.
func (d Direction) Delta() Position {
	switch d {
	case DirUp:
		return Position{Row: 1}
	case DirDown:
		return Position{Row: -1}
	case DirLeft:
		return Position{Col: -1}
	default:
		return Position{Col: 1}
	}
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
