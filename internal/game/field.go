package game

import "github.com/vovakirdan/sneaky-snake/internal/core"

// CellContent is what occupies a single field cell.
type CellContent uint8

const (
	Empty CellContent = iota
	SnakeCell
	Food
	Obstacle
	Exit
	Eater // the snake head while Attack is engaged
)

func (c CellContent) String() string {
	switch c {
	case Empty:
		return "empty"
	case SnakeCell:
		return "snake"
	case Food:
		return "food"
	case Obstacle:
		return "obstacle"
	case Exit:
		return "exit"
	case Eater:
		return "eater"
	default:
		return "unknown"
	}
}

// Field is a dense Width x Height grid of cell contents.
// A Field is never modified once it has been handed out; changes produce a copy.
type Field struct {
	width  int
	height int
	cells  []CellContent
}

// NewField returns an empty field.
func NewField(width, height int) Field {
	return Field{
		width:  width,
		height: height,
		cells:  make([]CellContent, width*height),
	}
}

// Width returns the number of columns.
func (f Field) Width() int { return f.width }

// Height returns the number of rows.
func (f Field) Height() int { return f.height }

// InBounds reports whether p lies on the field.
func (f Field) InBounds(p core.Position) bool {
	return p.Col >= 0 && p.Col < f.width && p.Row >= 0 && p.Row < f.height
}

// At returns the content at p. Out-of-bounds positions read as Empty.
func (f Field) At(p core.Position) CellContent {
	if !f.InBounds(p) {
		return Empty
	}
	return f.cells[p.Row*f.width+p.Col]
}

// Count returns how many cells hold c.
func (f Field) Count(c CellContent) int {
	n := 0
	for _, cell := range f.cells {
		if cell == c {
			n++
		}
	}
	return n
}

// Find returns every position holding c, row by row from the bottom.
func (f Field) Find(c CellContent) []core.Position {
	var out []core.Position
	for i, cell := range f.cells {
		if cell == c {
			out = append(out, core.Position{Col: i % f.width, Row: i / f.width})
		}
	}
	return out
}

func (f Field) clone() Field {
	cells := make([]CellContent, len(f.cells))
	copy(cells, f.cells)
	return Field{width: f.width, height: f.height, cells: cells}
}

// set writes in place; only for fields not yet shared.
func (f Field) set(p core.Position, c CellContent) {
	if f.InBounds(p) {
		f.cells[p.Row*f.width+p.Col] = c
	}
}

// with returns a copy of f with p set to c.
func (f Field) with(p core.Position, c CellContent) Field {
	out := f.clone()
	out.set(p, c)
	return out
}
