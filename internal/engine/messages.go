// Package engine runs a Sneaky Snake session as two agents talking through
// mailboxes: a timer that emits ticks and a game agent that owns the state.
package engine

import (
	"fmt"
	"time"

	"github.com/vovakirdan/sneaky-snake/internal/core"
)

// Mailbox ids inside a session network.
const (
	TimerAgentID = "timer"
	GameAgentID  = "game"
)

// GameMessage is a message handled by the game agent.
type GameMessage interface {
	gameMessage()
}

// Tick advances the game by one step.
type Tick struct{}

func (Tick) gameMessage() {}

func (Tick) String() string { return "tick" }

// CommandMsg carries a player command.
type CommandMsg struct {
	Command core.Command
}

func (CommandMsg) gameMessage() {}

func (m CommandMsg) String() string { return "command:" + m.Command.String() }

// TimerMessage is a message handled by the timer agent.
type TimerMessage interface {
	timerMessage()
}

// TimerStart starts ticking. It is a no-op while already running.
type TimerStart struct{}

// TimerStop stops ticking until the next TimerStart or TimerPause.
type TimerStop struct{}

// TimerPause toggles between running and stopped.
type TimerPause struct{}

// TimerSetPeriod changes the tick period from the next scheduled tick on.
type TimerSetPeriod struct {
	Period time.Duration
}

// TimerQuit stops the timer for good.
type TimerQuit struct{}

// timerFired is posted by the timer to itself when a scheduled tick is due.
type timerFired struct {
	gen uint64
}

func (TimerStart) timerMessage()     {}
func (TimerStop) timerMessage()      {}
func (TimerPause) timerMessage()     {}
func (TimerSetPeriod) timerMessage() {}
func (TimerQuit) timerMessage()      {}
func (timerFired) timerMessage()     {}

func messageName(msg any) string {
	if s, ok := msg.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", msg)
}
