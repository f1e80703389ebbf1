package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/sneaky-snake/internal/platform/tui"
	"github.com/vovakirdan/sneaky-snake/internal/storage"
)

var (
	flagLimit     int
	flagScoresTUI bool
	flagClear     bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores and recent games",
	Long: `Display the top high scores and the most recent finished games.

Examples:
  sneaky scores
  sneaky scores --limit 20
  sneaky scores --tui
  sneaky scores --clear`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of entries to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse scores interactively")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all recorded scores and games")
}

func runScores(_ *cobra.Command, _ []string) {
	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearScores(); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			return
		}
		fmt.Println("All scores cleared.")
		return
	}

	if flagScoresTUI {
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunScoreboard(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error running scoreboard: %v\n", err)
		}
		return
	}

	// Get top scores
	scores, err := store.TopScores(flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		return
	}

	// Display scores
	fmt.Println("High Scores - Sneaky Snake")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'sneaky play' to set the first high score!")
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-16s  %-6s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-16s  %-6s  %s\n", "----", "------", "-----", "----")

	for i, entry := range scores {
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-16s  %-6d  %s\n", i+1, entry.Player, entry.Score, dateStr)
	}

	// Recent games
	results, err := store.RecentResults(flagLimit)
	if err == nil && len(results) > 0 {
		fmt.Println()
		fmt.Println("Recent Games")
		fmt.Println()
		for _, r := range results {
			outcome := "won"
			if r.Outcome != "win" {
				outcome = "lost: " + r.Reason
			}
			fmt.Printf("  %-16s  %4d pts  %dx%d  %s\n", r.Player, r.Points, r.Width, r.Height, outcome)
		}
	}

	// Show totals
	if stats, err := store.GetStats(""); err == nil && stats.Games > 0 {
		fmt.Println()
		fmt.Printf("Best: %d  Games: %d  Wins: %d\n", stats.HighScore, stats.Games, stats.Wins)
	}
}
