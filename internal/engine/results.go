package engine

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sneaky-snake/internal/game"
)

// ResultSaver persists finished games.
// This allows the engine to save results without depending on the storage package.
type ResultSaver interface {
	SaveResult(result ResultData) error
}

// ResultData contains a finished game for persistence.
type ResultData struct {
	SessionID  string
	Outcome    string // "win" or "lose"
	Reason     string // lose reason, empty on a win
	Points     int
	Length     int
	Ticks      uint64
	Seed       int64
	Width      int
	Height     int
	FinishedAt time.Time
}

// NewResultData builds the record of a finished state.
func NewResultData(sessionID string, s *game.State) (ResultData, bool) {
	res, ok := s.Result()
	if !ok {
		return ResultData{}, false
	}
	data := ResultData{
		SessionID:  sessionID,
		Points:     s.Score(),
		Length:     s.Snake().Length(),
		Ticks:      s.Tick(),
		Seed:       s.Seed(),
		Width:      s.Rules().Width,
		Height:     s.Rules().Height,
		FinishedAt: time.Now(),
	}
	switch r := res.(type) {
	case game.Win:
		data.Outcome = "win"
		data.Points = r.Points
	case game.Lose:
		data.Outcome = "lose"
		data.Reason = r.Reason.String()
	}
	return data, true
}

// ResultRecorder is a subscriber that saves the first finished state of a
// session. Saving happens in the background.
type ResultRecorder struct {
	sessionID string
	saver     ResultSaver
	logger    *log.Logger

	once  sync.Once
	saved chan struct{}
}

// NewResultRecorder creates a recorder for one session. A nil logger
// disables failure logging.
func NewResultRecorder(sessionID string, saver ResultSaver, logger *log.Logger) *ResultRecorder {
	return &ResultRecorder{
		sessionID: sessionID,
		saver:     saver,
		logger:    logger,
		saved:     make(chan struct{}),
	}
}

// Observe is the Subscriber callback.
func (r *ResultRecorder) Observe(s *game.State) {
	data, ok := NewResultData(r.sessionID, s)
	if !ok {
		return
	}
	r.once.Do(func() {
		go func() {
			defer close(r.saved)
			if err := r.saver.SaveResult(data); err != nil && r.logger != nil {
				r.logger.Error("failed to save result", "session", r.sessionID, "err", err)
			}
		}()
	})
}

// Saved is closed once the result has been handed to the saver.
func (r *ResultRecorder) Saved() <-chan struct{} {
	return r.saved
}

// RecordResults attaches a ResultRecorder for h and returns it.
func (h *Handle) RecordResults(saver ResultSaver) *ResultRecorder {
	rec := NewResultRecorder(h.id, saver, h.opts.logger)
	h.AddSubscriber(rec.Observe)
	return rec
}
