package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/vovakirdan/sneaky-snake/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// recordPoints stores a finished game worth points for player.
func recordPoints(t *testing.T, store *Store, player string, points int) {
	t.Helper()
	data := engine.ResultData{SessionID: uuid.NewString(), Outcome: "lose", Reason: "You hit the wall.", Points: points}
	if _, err := store.RecordResult(player, data); err != nil {
		t.Fatalf("RecordResult() failed: %v", err)
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreTopScores(t *testing.T) {
	store := openTestStore(t)

	for i, score := range []int{100, 50, 200, 400, 300} {
		player := "ann"
		if i%2 == 1 {
			player = "bob"
		}
		recordPoints(t, store, player, score)
	}

	scores, err := store.TopScores(3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores with limit, got %d", len(scores))
	}
	if scores[0].Score != 400 || scores[1].Score != 300 || scores[2].Score != 200 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
	if scores[0].Player != "bob" {
		t.Errorf("Expected bob on top, got %q", scores[0].Player)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty store, got %d", high)
	}

	recordPoints(t, store, "ann", 100)
	recordPoints(t, store, "bob", 300)
	recordPoints(t, store, "ann", 200)

	tests := []struct {
		player   string
		expected int
	}{
		{"", 300},
		{"ann", 200},
		{"bob", 300},
		{"eve", 0},
	}
	for _, tc := range tests {
		high, err := store.HighScore(tc.player)
		if err != nil {
			t.Fatalf("HighScore(%q) failed: %v", tc.player, err)
		}
		if high != tc.expected {
			t.Errorf("HighScore(%q) = %d, expected %d", tc.player, high, tc.expected)
		}
	}
}

func TestStoreRecordResult(t *testing.T) {
	store := openTestStore(t)

	data := engine.ResultData{
		SessionID: uuid.NewString(),
		Outcome:   "win",
		Points:    21,
		Length:    24,
		Ticks:     412,
		Seed:      7,
		Width:     50,
		Height:    20,
	}
	if _, err := store.RecordResult("ann", data); err != nil {
		t.Fatalf("RecordResult() failed: %v", err)
	}

	got, err := store.ResultBySession(data.SessionID)
	if err != nil {
		t.Fatalf("ResultBySession() failed: %v", err)
	}
	if got == nil {
		t.Fatal("ResultBySession() returned nil")
	}
	if got.Player != "ann" || got.Outcome != "win" || got.Reason != "" {
		t.Errorf("result = %+v", got)
	}
	if got.Points != 21 || got.Length != 24 || got.Ticks != 412 || got.Seed != 7 {
		t.Errorf("result = %+v", got)
	}

	// The score table follows the results
	high, _ := store.HighScore("ann")
	if high != 21 {
		t.Errorf("HighScore() = %d, expected 21", high)
	}

	// Session ids are unique
	if _, err := store.RecordResult("ann", data); err == nil {
		t.Error("RecordResult() accepted a duplicate session")
	}
	scores, _ := store.TopScores(10)
	if len(scores) != 1 {
		t.Errorf("failed insert left %d scores, expected 1", len(scores))
	}
}

func TestStoreRecordResultInvalidSession(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.RecordResult("ann", engine.ResultData{SessionID: "not-a-uuid", Outcome: "lose"}); err == nil {
		t.Error("RecordResult() accepted an invalid session id")
	}
}

func TestStoreResultBySessionMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.ResultBySession(uuid.NewString())
	if err != nil {
		t.Fatalf("ResultBySession() failed: %v", err)
	}
	if got != nil {
		t.Errorf("ResultBySession() = %+v, expected nil", got)
	}
}

func TestStoreRecentResultsAndStats(t *testing.T) {
	store := openTestStore(t)
	saver := store.ResultSaver("bob")

	games := []engine.ResultData{
		{SessionID: uuid.NewString(), Outcome: "lose", Reason: "You hit the wall.", Points: 4},
		{SessionID: uuid.NewString(), Outcome: "win", Points: 20},
		{SessionID: uuid.NewString(), Outcome: "lose", Reason: "You bit yourself.", Points: 6},
	}
	for _, g := range games {
		if err := saver.SaveResult(g); err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
	}

	recent, err := store.RecentResults(2)
	if err != nil {
		t.Fatalf("RecentResults() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(recent))
	}
	if recent[0].SessionID != games[2].SessionID {
		t.Errorf("Expected the latest game first, got %+v", recent[0])
	}
	if recent[0].Reason != "You bit yourself." {
		t.Errorf("Reason = %q", recent[0].Reason)
	}

	stats, err := store.GetStats("bob")
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if stats.Games != 3 || stats.Wins != 1 || stats.HighScore != 20 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AvgScore != 10 {
		t.Errorf("AvgScore = %v, expected 10", stats.AvgScore)
	}

	empty, err := store.GetStats("eve")
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if empty.Games != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("stats for unknown player = %+v", empty)
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	recordPoints(t, store, "ann", 100)

	if err := store.ClearScores(); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	scores, _ := store.TopScores(10)
	if len(scores) != 0 {
		t.Errorf("Expected 0 scores after clear, got %d", len(scores))
	}
	results, _ := store.RecentResults(10)
	if len(results) != 0 {
		t.Errorf("Expected 0 results after clear, got %d", len(results))
	}
}
