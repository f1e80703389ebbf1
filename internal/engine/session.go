package engine

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/sneaky-snake/internal/core"
	"github.com/vovakirdan/sneaky-snake/internal/game"
	"github.com/vovakirdan/sneaky-snake/internal/postoffice"
)

// ErrSessionEnded is returned when a command is passed to a session that
// has been torn down.
var ErrSessionEnded = fmt.Errorf("engine: session ended: %w", postoffice.ErrMailboxClosed)

type buildOptions struct {
	rules   game.Rules
	seed    int64
	seedSet bool
	timing  TimerConfig
	logger  *log.Logger
}

// Option configures BuildGame.
type Option func(*buildOptions)

// WithRules sets the field and perk rules. Defaults to game.DefaultRules.
func WithRules(r game.Rules) Option {
	return func(o *buildOptions) { o.rules = r }
}

// WithSeed fixes the field seed. Defaults to the current time.
func WithSeed(seed int64) Option {
	return func(o *buildOptions) {
		o.seed = seed
		o.seedSet = true
	}
}

// WithTimerConfig sets the tick timing. Defaults to DefaultTimerConfig.
func WithTimerConfig(c TimerConfig) Option {
	return func(o *buildOptions) { o.timing = c }
}

// WithLogger sets the logger used by both agents.
// By default only warnings and errors are logged, to nowhere.
func WithLogger(l *log.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// Handle is a running game session: its network and its two agents.
type Handle struct {
	id      string
	network *postoffice.Network
	timer   *TimerAgent
	game    *GameAgent

	speed int
	opts  buildOptions
}

// BuildGame creates a session on network and starts both agent loops.
// The timer is left idle; post TimerStart to begin ticking.
func BuildGame(network *postoffice.Network, speed int, opts ...Option) (*Handle, error) {
	o := buildOptions{
		rules:  game.DefaultRules(),
		timing: DefaultTimerConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return build(network, speed, o)
}

func build(network *postoffice.Network, speed int, o buildOptions) (*Handle, error) {
	if speed < 0 {
		return nil, fmt.Errorf("engine: build game: negative speed %d", speed)
	}
	if err := o.rules.Validate(); err != nil {
		return nil, fmt.Errorf("engine: build game: %w", err)
	}
	if !o.seedSet {
		o.seed = time.Now().UnixNano()
		o.seedSet = true
	}
	if o.logger == nil {
		o.logger = log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
	}

	timerBox, err := postoffice.CreateMailbox[TimerMessage](network, TimerAgentID)
	if err != nil {
		return nil, fmt.Errorf("engine: build game: %w", err)
	}
	gameBox, err := postoffice.CreateMailbox[GameMessage](network, GameAgentID)
	if err != nil {
		network.Remove(TimerAgentID)
		return nil, fmt.Errorf("engine: build game: %w", err)
	}

	id := uuid.NewString()
	logger := o.logger.With("session", id[:8])

	h := &Handle{
		id:      id,
		network: network,
		timer:   newTimerAgent(timerBox, gameBox, o.timing.Period(speed, false), logger.WithPrefix("timer")),
		game:    newGameAgent(gameBox, timerBox, game.NewState(o.rules, o.seed), o.timing, speed, logger.WithPrefix("game")),
		speed:   speed,
		opts:    o,
	}

	network.Go(h.timer.run)
	network.Go(h.game.run)

	logger.Debug("session built", "seed", o.seed, "speed", speed,
		"field", fmt.Sprintf("%dx%d", o.rules.Width, o.rules.Height))
	return h, nil
}

// ID returns the unique session id.
func (h *Handle) ID() string { return h.id }

// Timer returns the timer agent.
func (h *Handle) Timer() *TimerAgent { return h.timer }

// Game returns the game agent.
func (h *Handle) Game() *GameAgent { return h.game }

// Speed returns the speed setting the session was built with.
func (h *Handle) Speed() int { return h.speed }

// Seed returns the seed of the session's first field.
func (h *Handle) Seed() int64 { return h.opts.seed }

// AddSubscriber registers fn for every committed state.
func (h *Handle) AddSubscriber(fn Subscriber) {
	h.game.Subscribers().Add(fn)
}

// GetState returns the latest committed state.
func (h *Handle) GetState() *game.State {
	return h.game.GetState()
}

// Done is closed once the session has been closed.
func (h *Handle) Done() <-chan struct{} {
	return h.network.Done()
}

// Close tears the session down and waits for both agents to stop.
// It must not be called from a subscriber.
func (h *Handle) Close() {
	h.network.Close()
	h.network.Wait()
}

// PassCommand routes a player command to the right agent of h.
//
// Pause toggles the timer. Quit stops the game and closes h. Restart closes
// h and returns a freshly built session with callback attached and its
// timer started. Every other command goes to the game agent.
// PassCommand must not be called from a subscriber.
func PassCommand(callback Subscriber, h *Handle, cmd core.Command) (*Handle, error) {
	var err error
	switch cmd {
	case core.CmdNone:
		return h, nil
	case core.CmdRestart:
		return h.restart(callback)
	case core.CmdPause:
		err = h.timer.Post(TimerPause{})
	case core.CmdQuit:
		err = h.game.Post(CommandMsg{Command: cmd})
		h.Close()
	default:
		err = h.game.Post(CommandMsg{Command: cmd})
	}

	if errors.Is(err, postoffice.ErrMailboxClosed) {
		return h, fmt.Errorf("engine: pass %s: %w", cmd, ErrSessionEnded)
	}
	return h, err
}

func (h *Handle) restart(callback Subscriber) (*Handle, error) {
	// Derive the next seed the same way an in-game restart would.
	fresh, err := h.GetState().Apply(core.CmdRestart)
	if err != nil {
		return h, fmt.Errorf("engine: restart: %w", err)
	}
	h.Close()

	o := h.opts
	o.seed = fresh.Seed()
	next, err := build(postoffice.NewNetwork(), h.speed, o)
	if err != nil {
		return h, fmt.Errorf("engine: restart: %w", err)
	}
	if callback != nil {
		subs := next.game.Subscribers()
		subs.Add(callback)
		subs.deliver(subs.Len()-1, callback, next.GetState())
	}
	if err := next.timer.Post(TimerStart{}); err != nil {
		return next, fmt.Errorf("engine: restart: %w", err)
	}
	return next, nil
}
