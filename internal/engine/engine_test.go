package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/sneaky-snake/internal/core"
	"github.com/vovakirdan/sneaky-snake/internal/game"
	"github.com/vovakirdan/sneaky-snake/internal/postoffice"
)

func testRules() game.Rules {
	return game.Rules{
		Width:         60,
		Height:        5,
		InitialLength: 3,
		ExitThreshold: 100,
		Attack:        game.PerkRule{Threshold: 1, Duration: 5},
		Speed:         game.PerkRule{Threshold: 0, Duration: 1000},
	}
}

// slowTimer never fires within a test unless started.
func slowTimer() TimerConfig {
	return TimerConfig{BaseInterval: 100 * time.Millisecond, MinInterval: time.Millisecond, SpeedPerkFactor: 2}
}

func newTestHandle(t *testing.T, opts ...Option) *Handle {
	t.Helper()
	opts = append([]Option{WithRules(testRules()), WithSeed(1), WithTimerConfig(slowTimer())}, opts...)
	h, err := BuildGame(postoffice.NewNetwork(), 0, opts...)
	if err != nil {
		t.Fatalf("BuildGame() failed: %v", err)
	}
	t.Cleanup(h.Close)
	return h
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBuildGame(t *testing.T) {
	h := newTestHandle(t)

	s := h.GetState()
	if s.Tick() != 0 || s.Score() != 0 || s.IsEnd() {
		t.Errorf("initial state tick=%d score=%d end=%v", s.Tick(), s.Score(), s.IsEnd())
	}
	if h.Timer().State() != StateIdle {
		t.Errorf("Timer().State() = %v, expected idle", h.Timer().State())
	}
	if h.ID() == "" {
		t.Error("ID() is empty")
	}
	if h.Seed() != 1 {
		t.Errorf("Seed() = %d, expected 1", h.Seed())
	}
}

func TestBuildGameErrors(t *testing.T) {
	bad := testRules()
	bad.Width = 2

	if _, err := BuildGame(postoffice.NewNetwork(), 0, WithRules(bad)); err == nil {
		t.Error("BuildGame() with invalid rules succeeded")
	}
	if _, err := BuildGame(postoffice.NewNetwork(), -1, WithRules(testRules())); err == nil {
		t.Error("BuildGame() with negative speed succeeded")
	}

	n := postoffice.NewNetwork()
	defer n.Close()
	if _, err := BuildGame(n, 0, WithRules(testRules())); err != nil {
		t.Fatalf("BuildGame() failed: %v", err)
	}
	if _, err := BuildGame(n, 0, WithRules(testRules())); !errors.Is(err, postoffice.ErrDuplicateAgent) {
		t.Errorf("second BuildGame() on one network = %v, expected ErrDuplicateAgent", err)
	}
}

func TestGameAgentLinearHistory(t *testing.T) {
	h := newTestHandle(t)

	var mu sync.Mutex
	var published []*game.State
	h.AddSubscriber(func(s *game.State) {
		mu.Lock()
		published = append(published, s)
		mu.Unlock()
	})

	const tickers, perProducer = 4, 5
	commands := [][]core.Command{
		{core.CmdMoveUp, core.CmdMoveRight, core.CmdMoveDown, core.CmdMoveRight},
		{core.CmdAttack, core.CmdSpeedToggle},
	}

	var wg sync.WaitGroup
	for range tickers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProducer {
				if err := h.Game().Post(Tick{}); err != nil {
					t.Errorf("Post(Tick) failed: %v", err)
				}
			}
		}()
	}
	for _, cmds := range commands {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				cmd := cmds[i%len(cmds)]
				if err := h.Game().Post(CommandMsg{Command: cmd}); err != nil {
					t.Errorf("Post(%v) failed: %v", cmd, err)
				}
			}
		}()
	}
	wg.Wait()

	// The final tick is queued behind every message posted above.
	final := uint64(tickers*perProducer + 1)
	if err := h.Game().Post(Tick{}); err != nil {
		t.Fatalf("Post(Tick) failed: %v", err)
	}
	waitFor(t, "final tick or game end", func() bool {
		mu.Lock()
		defer mu.Unlock()
		if len(published) == 0 {
			return false
		}
		last := published[len(published)-1]
		return last.IsEnd() || last.Tick() == final
	})

	mu.Lock()
	defer mu.Unlock()
	if len(published) == 0 {
		t.Fatal("nothing published")
	}
	var prev *game.State
	for i, s := range published {
		if prev != nil {
			if s == prev {
				t.Fatalf("state %d published twice", i)
			}
			if s.Tick() < prev.Tick() {
				t.Fatalf("tick went back from %d to %d at %d", prev.Tick(), s.Tick(), i)
			}
			if s.Tick()-prev.Tick() > 1 {
				t.Fatalf("tick jumped from %d to %d at %d", prev.Tick(), s.Tick(), i)
			}
			if prev.IsEnd() {
				t.Fatalf("state %d published after the game ended", i)
			}
		}
		prev = s
	}
	if last := h.GetState(); last != prev {
		t.Errorf("GetState() tick %d is not the last published state (tick %d)", last.Tick(), prev.Tick())
	}
	if !prev.IsEnd() && prev.Tick() != final {
		t.Errorf("GetState().Tick() = %d, expected %d", prev.Tick(), final)
	}
}

func TestRejectedCommandIsNotPublished(t *testing.T) {
	h := newTestHandle(t)

	published := make(chan *game.State, 4)
	h.AddSubscriber(func(s *game.State) { published <- s })

	before := h.GetState()
	// Reversing into the neck is rejected, then a tick proves the loop is alive.
	if err := h.Game().Post(CommandMsg{Command: core.CmdMoveLeft}); err != nil {
		t.Fatalf("Post() failed: %v", err)
	}
	if err := h.Game().Post(Tick{}); err != nil {
		t.Fatalf("Post() failed: %v", err)
	}

	select {
	case s := <-published:
		if s.Tick() != 1 {
			t.Errorf("first published tick = %d, expected 1", s.Tick())
		}
		if s.Snake().Heading() != before.Snake().Heading() {
			t.Errorf("heading changed to %v", s.Snake().Heading())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no state published")
	}
}

func TestSubscriberPanicIsolated(t *testing.T) {
	h := newTestHandle(t)

	got := make(chan uint64, 1)
	h.AddSubscriber(func(*game.State) { panic("boom") })
	h.AddSubscriber(func(s *game.State) { got <- s.Tick() })

	if err := h.Game().Post(Tick{}); err != nil {
		t.Fatalf("Post() failed: %v", err)
	}

	select {
	case tick := <-got:
		if tick != 1 {
			t.Errorf("tick = %d, expected 1", tick)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second subscriber was not called")
	}
}

func TestBuildGameFailureLeavesNetworkClean(t *testing.T) {
	network := postoffice.NewNetwork()
	defer network.Close()
	if _, err := postoffice.CreateMailbox[int](network, GameAgentID); err != nil {
		t.Fatalf("CreateMailbox() failed: %v", err)
	}

	if _, err := BuildGame(network, 0, WithRules(testRules())); !errors.Is(err, postoffice.ErrDuplicateAgent) {
		t.Fatalf("BuildGame() = %v, expected ErrDuplicateAgent", err)
	}
	if agents := network.Agents(); len(agents) != 1 || agents[0] != GameAgentID {
		t.Errorf("Agents() = %v, expected [%s]", agents, GameAgentID)
	}
}

func TestSubscribersOrder(t *testing.T) {
	subs := newSubscribers(newTestLogger())

	var order []int
	for i := range 3 {
		subs.Add(func(*game.State) { order = append(order, i) })
	}
	subs.Add(nil)

	if subs.Len() != 3 {
		t.Fatalf("Len() = %d, expected 3", subs.Len())
	}
	subs.Publish(game.NewState(testRules(), 1))

	for i, v := range order {
		if v != i {
			t.Fatalf("call order = %v, expected [0 1 2]", order)
		}
	}
}

func TestTimerTicksOnlyWhileRunning(t *testing.T) {
	fast := TimerConfig{BaseInterval: 2 * time.Millisecond, MinInterval: time.Millisecond, SpeedPerkFactor: 2}
	h := newTestHandle(t, WithTimerConfig(fast))

	time.Sleep(30 * time.Millisecond)
	if tick := h.GetState().Tick(); tick != 0 {
		t.Fatalf("idle timer produced %d ticks", tick)
	}

	if err := h.Timer().Post(TimerStart{}); err != nil {
		t.Fatalf("Post(TimerStart) failed: %v", err)
	}
	waitFor(t, "ticks while running", func() bool { return h.GetState().Tick() >= 3 })

	if err := h.Timer().Post(TimerPause{}); err != nil {
		t.Fatalf("Post(TimerPause) failed: %v", err)
	}
	waitFor(t, "timer to stop", func() bool { return h.Timer().State() == StateStopped })
	time.Sleep(20 * time.Millisecond)
	paused := h.GetState().Tick()
	time.Sleep(30 * time.Millisecond)
	if tick := h.GetState().Tick(); tick != paused {
		t.Fatalf("stopped timer advanced from %d to %d", paused, tick)
	}

	if err := h.Timer().Post(TimerPause{}); err != nil {
		t.Fatalf("Post(TimerPause) failed: %v", err)
	}
	waitFor(t, "ticks after resume", func() bool { return h.GetState().Tick() > paused })
}

func TestSpeedPerkChangesTimerPeriod(t *testing.T) {
	h := newTestHandle(t)
	base := slowTimer().Period(0, false)

	if h.Timer().Period() != base {
		t.Fatalf("Period() = %v, expected %v", h.Timer().Period(), base)
	}

	if err := h.Game().Post(CommandMsg{Command: core.CmdSpeedToggle}); err != nil {
		t.Fatalf("Post() failed: %v", err)
	}
	waitFor(t, "faster period", func() bool { return h.Timer().Period() == base/2 })

	if err := h.Game().Post(CommandMsg{Command: core.CmdSpeedToggle}); err != nil {
		t.Fatalf("Post() failed: %v", err)
	}
	waitFor(t, "base period", func() bool { return h.Timer().Period() == base })
}

func TestTimerConfigPeriod(t *testing.T) {
	cfg := TimerConfig{
		BaseInterval:    150 * time.Millisecond,
		SpeedStep:       20 * time.Millisecond,
		MinInterval:     50 * time.Millisecond,
		SpeedPerkFactor: 2,
	}

	tests := []struct {
		name     string
		speed    int
		perk     bool
		expected time.Duration
	}{
		{"base", 0, false, 150 * time.Millisecond},
		{"faster", 2, false, 110 * time.Millisecond},
		{"floor", 10, false, 50 * time.Millisecond},
		{"perk", 0, true, 75 * time.Millisecond},
		{"perk at floor", 10, true, 25 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cfg.Period(tc.speed, tc.perk); got != tc.expected {
				t.Errorf("Period(%d, %v) = %v, expected %v", tc.speed, tc.perk, got, tc.expected)
			}
		})
	}
}

func TestPassCommandRestart(t *testing.T) {
	h := newTestHandle(t)
	if err := h.Game().Post(Tick{}); err != nil {
		t.Fatalf("Post() failed: %v", err)
	}
	waitFor(t, "first tick", func() bool { return h.GetState().Tick() == 1 })

	states := make(chan *game.State, 64)
	callback := func(s *game.State) {
		select {
		case states <- s:
		default:
		}
	}

	next, err := PassCommand(callback, h, core.CmdRestart)
	if err != nil {
		t.Fatalf("PassCommand(Restart) failed: %v", err)
	}
	t.Cleanup(next.Close)

	if next == h || next.ID() == h.ID() {
		t.Fatal("restart returned the old session")
	}
	select {
	case s := <-states:
		if s.Tick() != 0 || s.Score() != 0 {
			t.Errorf("restarted state tick=%d score=%d", s.Tick(), s.Score())
		}
		if s.Field().Count(game.Exit) != 1 {
			t.Errorf("restarted field has %d exits", s.Field().Count(game.Exit))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback not called with the restarted state")
	}
	waitFor(t, "restarted timer", func() bool { return next.Timer().State() == StateRunning })

	select {
	case <-h.Done():
	default:
		t.Error("old session still open")
	}
	if _, err := PassCommand(callback, h, core.CmdMoveUp); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("PassCommand on old session = %v, expected ErrSessionEnded", err)
	}
}

func TestPassCommandRestartSurvivesPanickingCallback(t *testing.T) {
	h := newTestHandle(t)

	var calls sync.WaitGroup
	calls.Add(1)
	var once sync.Once
	callback := func(*game.State) {
		once.Do(calls.Done)
		panic("render failed")
	}

	next, err := PassCommand(callback, h, core.CmdRestart)
	if err != nil {
		t.Fatalf("PassCommand(Restart) failed: %v", err)
	}
	t.Cleanup(next.Close)

	calls.Wait()
	if next == h {
		t.Fatal("restart returned the old session")
	}
	waitFor(t, "restarted timer", func() bool { return next.Timer().State() == StateRunning })
	if _, err := PassCommand(callback, next, core.CmdMoveUp); err != nil {
		t.Errorf("PassCommand(MoveUp) after restart = %v, expected nil", err)
	}
}

func TestPassCommandQuit(t *testing.T) {
	h := newTestHandle(t)

	same, err := PassCommand(nil, h, core.CmdQuit)
	if err != nil {
		t.Fatalf("PassCommand(Quit) failed: %v", err)
	}
	if same != h {
		t.Error("Quit returned a different handle")
	}
	if h.Timer().State() != StateQuit {
		t.Errorf("Timer().State() = %v, expected quit", h.Timer().State())
	}

	for _, cmd := range []core.Command{core.CmdMoveUp, core.CmdPause, core.CmdAttack} {
		_, err := PassCommand(nil, h, cmd)
		if !errors.Is(err, ErrSessionEnded) {
			t.Errorf("PassCommand(%v) after quit = %v, expected ErrSessionEnded", cmd, err)
		}
		if !errors.Is(err, postoffice.ErrMailboxClosed) {
			t.Errorf("PassCommand(%v) after quit = %v, expected it to wrap ErrMailboxClosed", cmd, err)
		}
	}
}

func TestQuitMessageStopsAgents(t *testing.T) {
	h := newTestHandle(t)
	before := h.GetState()

	if err := h.Game().Post(CommandMsg{Command: core.CmdQuit}); err != nil {
		t.Fatalf("Post(Quit) failed: %v", err)
	}
	waitFor(t, "timer to quit", func() bool { return h.Timer().State() == StateQuit })

	if err := h.Game().Post(Tick{}); !errors.Is(err, postoffice.ErrMailboxClosed) {
		t.Errorf("Post after quit = %v, expected ErrMailboxClosed", err)
	}
	for _, msg := range []TimerMessage{TimerStart{}, TimerPause{}, TimerSetPeriod{Period: time.Millisecond}} {
		if err := h.Timer().Post(msg); !errors.Is(err, postoffice.ErrMailboxClosed) {
			t.Errorf("Timer().Post(%T) after quit = %v, expected ErrMailboxClosed", msg, err)
		}
	}
	if h.GetState() != before {
		t.Error("quit changed the state")
	}
}

func TestTimerQuitClosesMailbox(t *testing.T) {
	h := newTestHandle(t)

	if err := h.Timer().Post(TimerQuit{}); err != nil {
		t.Fatalf("Post(TimerQuit) failed: %v", err)
	}
	waitFor(t, "timer to quit", func() bool { return h.Timer().State() == StateQuit })

	if err := h.Timer().Post(TimerStart{}); !errors.Is(err, postoffice.ErrMailboxClosed) {
		t.Errorf("Timer().Post(TimerStart) after quit = %v, expected ErrMailboxClosed", err)
	}
}

func TestPassCommandRoutesToGame(t *testing.T) {
	h := newTestHandle(t)

	if _, err := PassCommand(nil, h, core.CmdMoveUp); err != nil {
		t.Fatalf("PassCommand(MoveUp) failed: %v", err)
	}
	waitFor(t, "heading change", func() bool { return h.GetState().Snake().Heading() == core.DirUp })

	if _, err := PassCommand(nil, h, core.CmdPause); err != nil {
		t.Fatalf("PassCommand(Pause) failed: %v", err)
	}
	// Pause on an idle timer is ignored.
	time.Sleep(10 * time.Millisecond)
	if h.Timer().State() != StateIdle {
		t.Errorf("Timer().State() = %v, expected idle", h.Timer().State())
	}
}
