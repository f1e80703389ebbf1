package engine

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vovakirdan/sneaky-snake/internal/core"
	"github.com/vovakirdan/sneaky-snake/internal/game"
	"github.com/vovakirdan/sneaky-snake/internal/postoffice"
)

const tracerName = "github.com/vovakirdan/sneaky-snake/internal/engine"

// GameAgent is the only writer of a session's game state. It handles one
// message at a time: transition, store, publish, then adjust the timer.
type GameAgent struct {
	inbox  *postoffice.Mailbox[GameMessage]
	timer  *postoffice.Mailbox[TimerMessage]
	subs   *Subscribers
	logger *log.Logger
	tracer trace.Tracer

	timing TimerConfig
	speed  int

	state atomic.Pointer[game.State]
}

func newGameAgent(
	inbox *postoffice.Mailbox[GameMessage],
	timer *postoffice.Mailbox[TimerMessage],
	initial *game.State,
	timing TimerConfig,
	speed int,
	logger *log.Logger,
) *GameAgent {
	a := &GameAgent{
		inbox:  inbox,
		timer:  timer,
		subs:   newSubscribers(logger),
		logger: logger,
		tracer: otel.Tracer(tracerName),
		timing: timing,
		speed:  speed,
	}
	a.state.Store(initial)
	return a
}

// Post enqueues a message for the agent.
func (a *GameAgent) Post(msg GameMessage) error {
	return a.inbox.Post(msg)
}

// GetState returns the latest committed state. Safe from any goroutine.
func (a *GameAgent) GetState() *game.State {
	return a.state.Load()
}

// Subscribers returns the agent's subscriber registry.
func (a *GameAgent) Subscribers() *Subscribers {
	return a.subs
}

func (a *GameAgent) run(ctx context.Context) {
	for {
		msg, err := a.inbox.Receive(ctx)
		if err != nil {
			return
		}
		if !a.process(ctx, msg) {
			return
		}
	}
}

// process handles one message and reports whether the loop should go on.
func (a *GameAgent) process(ctx context.Context, msg GameMessage) bool {
	_, span := a.tracer.Start(ctx, "engine.apply",
		trace.WithAttributes(attribute.String("snake.message", messageName(msg))))
	defer span.End()

	cur := a.state.Load()

	var (
		next *game.State
		err  error
	)
	switch m := msg.(type) {
	case Tick:
		next, err = cur.Step()
	case CommandMsg:
		if m.Command == core.CmdQuit {
			a.logger.Debug("game agent quitting", "tick", cur.Tick())
			// The timer's loop exits once its mailbox is closed.
			a.timer.Close()
			a.inbox.Close()
			return false
		}
		next, err = cur.Apply(m.Command)
	default:
		a.logger.Warn("unknown game message", "type", messageName(msg))
		return true
	}

	if err != nil {
		a.logger.Debug("message ignored", "msg", messageName(msg), "tick", cur.Tick(), "reason", err)
		span.SetAttributes(attribute.String("snake.ignored", err.Error()))
		return true
	}
	if next == cur {
		return true
	}

	a.state.Store(next)
	span.SetAttributes(
		attribute.Int64("snake.tick", int64(next.Tick())),
		attribute.Int("snake.score", next.Score()),
	)
	if res, ok := next.Result(); ok {
		span.SetStatus(codes.Ok, res.String())
		a.logger.Info("game over", "result", res, "score", next.Score(), "tick", next.Tick())
	}

	a.subs.Publish(next)

	if was, now := cur.Snake().HasPerk(game.PerkSpeed), next.Snake().HasPerk(game.PerkSpeed); was != now {
		period := a.timing.Period(a.speed, now)
		if err := a.timer.Post(TimerSetPeriod{Period: period}); err != nil {
			a.logger.Debug("timer unavailable for period change", "err", err)
		}
	}
	return true
}
