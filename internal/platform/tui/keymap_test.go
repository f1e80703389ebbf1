package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/sneaky-snake/internal/core"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestKeyMapCommand(t *testing.T) {
	keys := DefaultKeyMap()

	tests := []struct {
		name     string
		msg      tea.KeyMsg
		expected core.Command
	}{
		{"arrow up", tea.KeyMsg{Type: tea.KeyUp}, core.CmdMoveUp},
		{"k", runeKey('k'), core.CmdMoveUp},
		{"arrow down", tea.KeyMsg{Type: tea.KeyDown}, core.CmdMoveDown},
		{"j", runeKey('j'), core.CmdMoveDown},
		{"arrow left", tea.KeyMsg{Type: tea.KeyLeft}, core.CmdMoveLeft},
		{"h", runeKey('h'), core.CmdMoveLeft},
		{"arrow right", tea.KeyMsg{Type: tea.KeyRight}, core.CmdMoveRight},
		{"l", runeKey('l'), core.CmdMoveRight},
		{"attack", runeKey('a'), core.CmdAttack},
		{"speed", runeKey('s'), core.CmdSpeedToggle},
		{"pause", runeKey('p'), core.CmdPause},
		{"restart", runeKey('r'), core.CmdRestart},
		{"quit", runeKey('q'), core.CmdQuit},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, core.CmdQuit},
		{"help is not a command", runeKey('?'), core.CmdNone},
		{"unbound", runeKey('x'), core.CmdNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keys.Command(tt.msg); got != tt.expected {
				t.Errorf("Command(%q) = %v, expected %v", tt.msg.String(), got, tt.expected)
			}
		})
	}
}

func TestKeyMapHelp(t *testing.T) {
	keys := DefaultKeyMap()

	if len(keys.ShortHelp()) == 0 {
		t.Error("ShortHelp() is empty")
	}
	total := 0
	for _, col := range keys.FullHelp() {
		total += len(col)
	}
	if total < len(keys.ShortHelp()) {
		t.Errorf("FullHelp() has %d bindings, expected at least %d", total, len(keys.ShortHelp()))
	}
}
