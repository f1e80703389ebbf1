package game

import (
	"fmt"

	"github.com/vovakirdan/sneaky-snake/internal/core"
)

const streamGenerate uint64 = 0x5eed

// NewState generates the initial state of a session. The snake starts near
// the left edge heading right with a clear lane ahead; the exit, obstacles
// and food are scattered over the remaining cells. The same rules and seed
// always produce the same field. Rules are expected to be valid.
func NewState(rules Rules, seed int64) *State {
	s := &State{
		rules:   rules,
		seed:    seed,
		terrain: NewField(rules.Width, rules.Height),
	}

	row := rules.Height / 2
	body := make([]core.Position, rules.InitialLength)
	for i := range body {
		body[i] = core.Position{Col: rules.InitialLength - i, Row: row}
	}
	s.snake = Snake{body: body, heading: core.DirRight, moved: core.DirRight}

	reserved := make(map[core.Position]bool, startLane)
	for i := 1; i <= startLane; i++ {
		reserved[s.snake.Head().Add(core.Position{Col: i})] = true
	}

	var candidates []core.Position
	for _, p := range freeCells(s.terrain, s.snake) {
		if !reserved[p] {
			candidates = append(candidates, p)
		}
	}
	rng := s.rng(streamGenerate)
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	place := func(c CellContent, n int) {
		for ; n > 0 && len(candidates) > 0; n-- {
			s.terrain.set(candidates[0], c)
			candidates = candidates[1:]
		}
	}
	place(Exit, 1)
	place(Obstacle, rules.Obstacles)
	place(Food, rules.Food)

	return s.running()
}

// Layout describes a hand-made field.
type Layout struct {
	Snake     []core.Position // head first
	Heading   core.Direction
	Exit      core.Position
	Obstacles []core.Position
	Food      []core.Position
	Seed      int64
}

// FromLayout builds a running state from an explicit layout.
func FromLayout(rules Rules, l Layout) (*State, error) {
	if len(l.Snake) == 0 {
		return nil, fmt.Errorf("game: layout has no snake")
	}

	s := &State{
		rules:   rules,
		seed:    l.Seed,
		terrain: NewField(rules.Width, rules.Height),
	}

	seen := make(map[core.Position]bool)
	claim := func(p core.Position, what string) error {
		if !s.terrain.InBounds(p) {
			return fmt.Errorf("game: layout %s at %v out of bounds", what, p)
		}
		if seen[p] {
			return fmt.Errorf("game: layout %s at %v overlaps another cell", what, p)
		}
		seen[p] = true
		return nil
	}

	for i, p := range l.Snake {
		if err := claim(p, "snake"); err != nil {
			return nil, err
		}
		if i > 0 && !p.Adjacent(l.Snake[i-1]) {
			return nil, fmt.Errorf("game: layout snake segments %v and %v are not adjacent", l.Snake[i-1], p)
		}
	}
	if err := claim(l.Exit, "exit"); err != nil {
		return nil, err
	}
	s.terrain.set(l.Exit, Exit)
	for _, p := range l.Obstacles {
		if err := claim(p, "obstacle"); err != nil {
			return nil, err
		}
		s.terrain.set(p, Obstacle)
	}
	for _, p := range l.Food {
		if err := claim(p, "food"); err != nil {
			return nil, err
		}
		s.terrain.set(p, Food)
	}

	body := make([]core.Position, len(l.Snake))
	copy(body, l.Snake)
	moved := l.Heading
	if len(body) > 1 {
		// The last step is the one that brought the head next to the neck.
		for _, d := range []core.Direction{core.DirRight, core.DirUp, core.DirLeft, core.DirDown} {
			if body[1].Add(d.Delta()) == body[0] {
				moved = d
			}
		}
	}
	if len(body) > 1 && l.Heading == moved.Opposite() {
		return nil, fmt.Errorf("game: layout heading %s points into the snake's neck", l.Heading)
	}
	s.snake = Snake{body: body, heading: l.Heading, moved: moved}
	s.recomputeScore()

	return s.running(), nil
}
