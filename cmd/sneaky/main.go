// sneaky is Sneaky Snake for the terminal: a snake game that can attack,
// speed up and escape through an exit once it has eaten enough.
//
// Usage:
//
//	sneaky play              - Play a game in this terminal
//	sneaky serve             - Start SSH server for remote play
//	sneaky scores            - Show high scores and recent games
//
// Global flags:
//
//	--seed <value>  - Set RNG seed for reproducible fields
//	--db <path>     - Set database path (default: ~/.sneaky/scores.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagSeed   int64
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sneaky",
	Short: "Sneaky Snake - a snake that bites back",
	Long: `Sneaky Snake is a terminal snake game. Eat food to grow, unlock the
Attack and Speed perks, and leave through the exit once it opens.

Available commands:
  play     - Play in this terminal
  serve    - Start SSH server for remote play
  scores   - View high scores and recent games

Examples:
  sneaky play
  sneaky play --difficulty hard --seed 42
  sneaky serve --ssh :2222
  sneaky scores --tui`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.sneaky/scores.db", "Path to scores database")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}
