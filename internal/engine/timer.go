package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sneaky-snake/internal/postoffice"
)

// TimerState is the lifecycle state of a TimerAgent.
type TimerState int32

const (
	StateIdle TimerState = iota
	StateRunning
	StateStopped
	StateQuit
)

func (s TimerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// TimerConfig derives the tick period from the speed setting.
type TimerConfig struct {
	BaseInterval    time.Duration // period at speed 0
	SpeedStep       time.Duration // subtracted per speed level
	MinInterval     time.Duration // floor for the period
	SpeedPerkFactor int           // divisor while the Speed perk is engaged
}

// DefaultTimerConfig returns the timing of a normal game.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		BaseInterval:    150 * time.Millisecond,
		SpeedStep:       15 * time.Millisecond,
		MinInterval:     40 * time.Millisecond,
		SpeedPerkFactor: 2,
	}
}

// Period returns the tick period for a speed setting, halved (or divided by
// SpeedPerkFactor) while the Speed perk is engaged.
func (c TimerConfig) Period(speed int, speedPerk bool) time.Duration {
	p := max(c.MinInterval, c.BaseInterval-time.Duration(speed)*c.SpeedStep)
	if speedPerk && c.SpeedPerkFactor > 1 {
		p /= time.Duration(c.SpeedPerkFactor)
	}
	return max(p, time.Millisecond)
}

// TimerAgent posts Tick messages to the game agent at a fixed period while
// running. Scheduling is done with time.AfterFunc posting back into the
// timer's own mailbox, so every state change happens on the agent loop.
type TimerAgent struct {
	inbox  *postoffice.Mailbox[TimerMessage]
	game   *postoffice.Mailbox[GameMessage]
	logger *log.Logger

	state    atomic.Int32
	periodNs atomic.Int64

	// Loop-owned.
	pending *time.Timer
	gen     uint64
}

func newTimerAgent(inbox *postoffice.Mailbox[TimerMessage], game *postoffice.Mailbox[GameMessage], period time.Duration, logger *log.Logger) *TimerAgent {
	t := &TimerAgent{
		inbox:  inbox,
		game:   game,
		logger: logger,
	}
	t.periodNs.Store(int64(period))
	return t
}

// Post enqueues a message for the timer.
func (t *TimerAgent) Post(msg TimerMessage) error {
	return t.inbox.Post(msg)
}

// State returns the current timer state. Safe from any goroutine.
func (t *TimerAgent) State() TimerState {
	return TimerState(t.state.Load())
}

// Period returns the period used for the next scheduled tick.
func (t *TimerAgent) Period() time.Duration {
	return time.Duration(t.periodNs.Load())
}

func (t *TimerAgent) run(ctx context.Context) {
	defer func() {
		t.cancel()
		t.inbox.Close()
		t.state.Store(int32(StateQuit))
	}()

	for {
		msg, err := t.inbox.Receive(ctx)
		if err != nil {
			return
		}
		if !t.handle(msg) {
			return
		}
	}
}

// handle processes one message and reports whether the loop should go on.
func (t *TimerAgent) handle(msg TimerMessage) bool {
	switch m := msg.(type) {
	case TimerStart:
		if t.State() != StateRunning {
			t.setState(StateRunning)
			t.schedule()
		}

	case TimerStop:
		if t.State() == StateRunning {
			t.setState(StateStopped)
			t.cancel()
		}

	case TimerPause:
		switch t.State() {
		case StateRunning:
			t.setState(StateStopped)
			t.cancel()
		case StateStopped:
			t.setState(StateRunning)
			t.schedule()
		}

	case TimerSetPeriod:
		if m.Period <= 0 {
			t.logger.Warn("ignoring non-positive timer period", "period", m.Period)
			return true
		}
		t.periodNs.Store(int64(m.Period))
		t.logger.Debug("timer period changed", "period", m.Period)

	case TimerQuit:
		return false

	case timerFired:
		if t.State() != StateRunning || m.gen != t.gen {
			return true // stale
		}
		if err := t.game.Post(Tick{}); err != nil {
			t.logger.Debug("game mailbox closed, timer quitting", "err", err)
			return false
		}
		t.schedule()
	}
	return true
}

func (t *TimerAgent) setState(s TimerState) {
	prev := TimerState(t.state.Swap(int32(s)))
	if prev != s {
		t.logger.Debug("timer state", "from", prev, "to", s)
	}
}

func (t *TimerAgent) schedule() {
	t.cancel()
	gen := t.gen
	t.pending = time.AfterFunc(t.Period(), func() {
		_ = t.inbox.Post(timerFired{gen: gen}) //nolint:errcheck // closed mailbox means the session is gone
	})
}

// cancel stops the pending tick and invalidates any fire already queued.
func (t *TimerAgent) cancel() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.gen++
}
