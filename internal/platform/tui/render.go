package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/sneaky-snake/internal/core"
	"github.com/vovakirdan/sneaky-snake/internal/game"
)

// cellWidth is the number of terminal columns per field cell.
const cellWidth = 2

// cellStyle identifies the look of one cell.
type cellStyle int

const (
	styleEmpty cellStyle = iota
	styleSnake
	styleSnakeAttack
	styleSnakeSpeed
	styleEater
	styleFood
	styleObstacle
	styleExit
)

// cellStyles maps cell looks to lipgloss styles.
var cellStyles = map[cellStyle]lipgloss.Style{
	styleEmpty:       lipgloss.NewStyle().Background(lipgloss.Color("236")), // dark slate gray
	styleSnake:       lipgloss.NewStyle().Background(lipgloss.Color("34")),  // green
	styleSnakeAttack: lipgloss.NewStyle().Background(lipgloss.Color("88")),  // dark red
	styleSnakeSpeed:  lipgloss.NewStyle().Background(lipgloss.Color("73")),  // cadet blue
	styleEater:       lipgloss.NewStyle().Background(lipgloss.Color("196")), // red
	styleFood:        lipgloss.NewStyle().Background(lipgloss.Color("91")),  // purple
	styleObstacle:    lipgloss.NewStyle().Background(lipgloss.Color("208")), // orange
	styleExit:        lipgloss.NewStyle().Background(lipgloss.Color("21")),  // blue
}

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	scoreStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	hudStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	readyStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	winStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	loseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// styleFor picks the look of a cell. The snake body is coloured by its
// strongest active perk.
func styleFor(c game.CellContent, sn game.Snake) cellStyle {
	switch c {
	case game.SnakeCell:
		switch {
		case sn.HasPerk(game.PerkAttack):
			return styleSnakeAttack
		case sn.HasPerk(game.PerkSpeed):
			return styleSnakeSpeed
		}
		return styleSnake
	case game.Eater:
		return styleEater
	case game.Food:
		return styleFood
	case game.Obstacle:
		return styleObstacle
	case game.Exit:
		return styleExit
	default:
		return styleEmpty
	}
}

// styleGrid resolves the look of every cell, top row first. Field row 0 is
// the bottom of the screen.
func styleGrid(f game.Field, sn game.Snake) [][]cellStyle {
	grid := make([][]cellStyle, 0, f.Height())
	for row := f.Height() - 1; row >= 0; row-- {
		line := make([]cellStyle, f.Width())
		for col := range line {
			line[col] = styleFor(f.At(core.Position{Col: col, Row: row}), sn)
		}
		grid = append(grid, line)
	}
	return grid
}

// RenderField draws the field inside a rounded border.
// Groups adjacent cells with the same style to minimize ANSI escape sequences.
func RenderField(f game.Field, sn game.Snake) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(f.Width()*f.Height()*cellWidth*4 + f.Height())

	for i, line := range styleGrid(f, sn) {
		if i > 0 {
			sb.WriteRune('\n')
		}

		col := 0
		for col < len(line) {
			start := line[col]

			// Collect consecutive cells with the same style
			n := 0
			for col < len(line) && line[col] == start {
				n++
				col++
			}
			sb.WriteString(cellStyles[start].Render(strings.Repeat(" ", n*cellWidth)))
		}
	}
	return borderStyle.Render(sb.String())
}

// ScoreLine returns the score caption.
func ScoreLine(s *game.State) string {
	return fmt.Sprintf("%d Points", s.Score())
}

// HUDLines returns the perk and exit captions for s.
func HUDLines(s *game.State) []string {
	lines := make([]string, 0, 3)

	if n := s.PerkAvailableAfter(game.PerkAttack); n > 0 {
		lines = append(lines, fmt.Sprintf("You can attack after %d points", n))
	} else {
		lines = append(lines, "You can attack!")
	}
	if n := s.PerkAvailableAfter(game.PerkSpeed); n > 0 {
		lines = append(lines, fmt.Sprintf("You can speed up after %d points", n))
	} else {
		lines = append(lines, "You can speed up!")
	}
	if n := s.ExitOpensAfter(); n > 0 {
		lines = append(lines, fmt.Sprintf("Exit opens after %d points", n))
	} else {
		lines = append(lines, "Exit is open!")
	}
	return lines
}

// hudStatus is what the HUD shows beyond the game state.
type hudStatus struct {
	paused  bool
	best    int // stored high score, negative hides it
	newBest bool
}

// renderHUD renders the score, perk captions and any end or pause banner.
func renderHUD(s *game.State, st hudStatus) string {
	var b strings.Builder
	b.WriteString(scoreStyle.Render(ScoreLine(s)))
	if st.best >= 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Best: %d", st.best)))
	}

	for _, line := range HUDLines(s) {
		b.WriteString("   ")
		if strings.HasSuffix(line, "!") {
			b.WriteString(readyStyle.Render(line))
		} else {
			b.WriteString(hudStyle.Render(line))
		}
	}

	if res, ok := s.Result(); ok {
		b.WriteString("\n")
		style := loseStyle
		if _, win := res.(game.Win); win {
			style = winStyle
		}
		b.WriteString(style.Render(res.String()))
		if st.newBest {
			b.WriteString(winStyle.Render("  New best!"))
		}
		b.WriteString(dimStyle.Render("  press r to play again"))
	} else if st.paused {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Paused"))
	}
	return b.String()
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}
