package tui

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sneaky-snake/internal/core"
	"github.com/vovakirdan/sneaky-snake/internal/engine"
	"github.com/vovakirdan/sneaky-snake/internal/game"
	"github.com/vovakirdan/sneaky-snake/internal/storage"
)

// feedBuffer is how many snapshots the model may fall behind by.
const feedBuffer = 8

// liveSession tracks the handle a model currently drives. It is shared by
// every copy of the model so the session can be closed from outside the
// program.
type liveSession struct {
	mu       sync.Mutex
	handle   *engine.Handle
	recorder *engine.ResultRecorder
	feed     *Feed
}

func (l *liveSession) set(h *engine.Handle, rec *engine.ResultRecorder) {
	l.mu.Lock()
	l.handle = h
	l.recorder = rec
	l.mu.Unlock()
}

// current returns the handle being driven.
func (l *liveSession) current() *engine.Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle
}

// flush waits up to timeout for the result of a finished game to be stored.
func (l *liveSession) flush(timeout time.Duration) {
	l.mu.Lock()
	h, rec := l.handle, l.recorder
	l.mu.Unlock()
	if rec == nil || !h.GetState().IsEnd() {
		return
	}
	select {
	case <-rec.Saved():
	case <-time.After(timeout):
	}
}

// Close stops the feed and tears down the current session.
func (l *liveSession) Close() {
	h := l.current()
	l.feed.Close()
	h.Close()
}

// Model is the Bubble Tea model for one Sneaky Snake session.
type Model struct {
	handle *engine.Handle
	feed   *Feed
	live   *liveSession
	store  *storage.Store
	player string
	logger *log.Logger

	keys KeyMap
	help help.Model

	state    *game.State
	paused   bool
	best     int    // player's stored high score, -1 when unknown
	newBest  bool   // the last finished game set the high score
	awaiting string // session whose stored result is being loaded
	width    int
	height   int
	quitting bool
	showHelp bool
}

// NewModel creates a model driving h. Finished games are recorded to store
// under player when store is not nil.
func NewModel(h *engine.Handle, store *storage.Store, player string) Model {
	feed := NewFeed(feedBuffer)
	m := Model{
		handle: h,
		feed:   feed,
		live:   &liveSession{handle: h, feed: feed},
		store:  store,
		player: player,
		logger: log.Default().WithPrefix("tui"),
		keys:   DefaultKeyMap(),
		help:   help.New(),
		state:  h.GetState(),
		best:   -1,
	}
	if store != nil {
		if best, err := store.HighScore(player); err == nil {
			m.best = best
		}
	}
	h.AddSubscriber(m.feed.Send)
	m.live.set(h, m.attachRecorder())
	return m
}

// resultSavedMsg carries a finished game as stored, with the player's high
// score after it.
type resultSavedMsg struct {
	sessionID string
	result    storage.GameResult
	best      int
}

// waitForResult waits for the current session's result to be stored and
// reads it back.
func (m Model) waitForResult() tea.Cmd {
	m.live.mu.Lock()
	rec := m.live.recorder
	m.live.mu.Unlock()
	if m.store == nil || rec == nil {
		return nil
	}

	store, player, id := m.store, m.player, m.handle.ID()
	return func() tea.Msg {
		select {
		case <-rec.Saved():
		case <-time.After(5 * time.Second):
			return nil
		}
		res, err := store.ResultBySession(id)
		if err != nil || res == nil {
			return nil
		}
		best, err := store.HighScore(player)
		if err != nil {
			return nil
		}
		return resultSavedMsg{sessionID: id, result: *res, best: best}
	}
}

// attachRecorder stores the result of the current session once it ends.
func (m Model) attachRecorder() *engine.ResultRecorder {
	if m.store == nil {
		return nil
	}
	return m.handle.RecordResults(m.store.ResultSaver(m.player))
}

// Handle returns the session currently driven by the model.
// It changes after a restart.
func (m Model) Handle() *engine.Handle { return m.handle }

// Close stops the snapshot feed and closes the current session.
// Safe to call multiple times and from any goroutine.
func (m Model) Close() { m.live.Close() }

// Init starts the session timer and begins listening for snapshots.
func (m Model) Init() tea.Cmd {
	if err := m.handle.Timer().Post(engine.TimerStart{}); err != nil {
		m.logger.Warn("failed to start timer", "err", err)
	}
	return m.feed.Wait()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case SnapshotMsg:
		// Snapshots of a session closed by restart may still be queued,
		// so always show what the current handle has committed.
		m.state = m.handle.GetState()
		if m.state.IsEnd() && m.awaiting != m.handle.ID() {
			m.awaiting = m.handle.ID()
			return m, tea.Batch(m.feed.Wait(), m.waitForResult())
		}
		return m, m.feed.Wait()

	case resultSavedMsg:
		// A restart may have replaced the session in the meantime
		if msg.sessionID == m.handle.ID() {
			m.newBest = msg.result.Points > 0 && msg.result.Points >= msg.best
			m.best = msg.best
		}
		return m, nil

	case feedClosedMsg:
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}

	cmd := m.keys.Command(msg)
	if cmd == core.CmdNone {
		return m, nil
	}

	prev := m.handle
	next, err := engine.PassCommand(m.feed.Send, m.handle, cmd)
	if err != nil && !errors.Is(err, engine.ErrSessionEnded) {
		m.logger.Warn("command failed", "command", cmd, "err", err)
	}
	m.handle = next

	switch cmd {
	case core.CmdQuit:
		m.quitting = true
		return m, tea.Quit
	case core.CmdRestart:
		if next != prev {
			m.live.set(next, m.attachRecorder())
			m.paused = false
			m.newBest = false
		}
	case core.CmdPause:
		// An idle timer ignores pause, so only toggle once ticking has begun.
		if st := m.handle.Timer().State(); err == nil && (st == engine.StateRunning || st == engine.StateStopped) {
			m.paused = !m.paused
		}
	}
	m.state = m.handle.GetState()
	return m, nil
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	s := m.state
	b.WriteString(RenderField(s.Field(), s.Snake()))
	b.WriteString("\n")
	b.WriteString(renderHUD(s, hudStatus{paused: m.paused, best: m.best, newBest: m.newBest}))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	view := b.String()
	if m.width > lipgloss.Width(view) {
		lines := strings.Split(view, "\n")
		for i, line := range lines {
			lines[i] = centerText(line, m.width)
		}
		view = strings.Join(lines, "\n")
	}
	return view
}

// Run starts the Bubble Tea program driving h and closes the session when
// the program exits.
func Run(h *engine.Handle, store *storage.Store, player string) error {
	model := NewModel(h, store, player)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	model.live.flush(2 * time.Second)
	model.Close()
	return err
}
