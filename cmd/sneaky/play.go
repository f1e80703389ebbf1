package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/sneaky-snake/internal/config"
	"github.com/vovakirdan/sneaky-snake/internal/engine"
	"github.com/vovakirdan/sneaky-snake/internal/platform/tui"
	"github.com/vovakirdan/sneaky-snake/internal/postoffice"
	"github.com/vovakirdan/sneaky-snake/internal/storage"
	"github.com/vovakirdan/sneaky-snake/internal/telemetry"
)

var (
	flagConfig     string
	flagDifficulty string
	flagSpeed      int
	flagLogFile    string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Start a game of Sneaky Snake in this terminal.

Controls:
  Arrows/hjkl  - Turn
  A            - Attack (crush obstacles, bite your own tail)
  S            - Toggle speed
  Space/P      - Pause
  R            - Restart
  Q/Ctrl+C     - Quit

Difficulty options:
  easy   - Fewer obstacles, slower snake
  normal - Default level
  hard   - More obstacles, faster snake
  fixed  - Use the config's initial level as is

Examples:
  sneaky play
  sneaky play --difficulty easy
  sneaky play --speed 3 --seed 42
  sneaky play --config ./my-snake.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().IntVar(&flagSpeed, "speed", 0, "Speed level (overrides config)")
	playCmd.Flags().StringVar(&flagLogFile, "log", "", "Write engine debug logs to this file")
}

// loadGameConfig loads the snake config and applies the command line overrides.
func loadGameConfig(cmd *cobra.Command) (config.SnakeConfig, error) {
	cfg, err := config.LoadSnake(flagConfig)
	if err != nil {
		return cfg, err
	}

	if flagDifficulty != "" {
		preset, ok := config.ParsePreset(flagDifficulty)
		if !ok {
			return cfg, fmt.Errorf("unknown difficulty %q", flagDifficulty)
		}
		config.ApplySnakePreset(&cfg, preset)
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = flagSeed
	}
	if cmd.Flags().Changed("speed") {
		cfg.Timing.Speed = flagSpeed
	}
	return cfg, cfg.Validate()
}

// engineOptions converts cfg to engine build options. A nil logger keeps
// the engine quiet.
func engineOptions(cfg config.SnakeConfig, logger *log.Logger) []engine.Option {
	opts := []engine.Option{
		engine.WithRules(cfg.Rules()),
		engine.WithTimerConfig(cfg.TimerConfig()),
	}
	if logger != nil {
		opts = append(opts, engine.WithLogger(logger))
	}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithSeed(cfg.Seed))
	}
	return opts
}

func playerName() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "player"
}

func runPlay(cmd *cobra.Command, _ []string) {
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Shrink the field to the terminal
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	cfg.FitTo(width, height)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: terminal too small: %v\n", err)
		os.Exit(1)
	}

	shutdown, err := telemetry.Setup(context.Background(), "sneaky-snake")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: tracing disabled: %v\n", err)
	}
	defer shutdown(context.Background()) //nolint:errcheck // Best-effort flush on exit

	// The TUI owns the terminal, so engine logs only go to a file.
	var logger *log.Logger
	if flagLogFile != "" {
		f, logErr := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", logErr)
			os.Exit(1)
		}
		defer f.Close()
		logger = log.NewWithOptions(f, log.Options{
			ReportTimestamp: true,
			Level:           log.DebugLevel,
			Prefix:          "sneaky",
		})
	}

	h, err := engine.BuildGame(postoffice.NewNetwork(), cfg.Speed(), engineOptions(cfg, logger)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building game: %v\n", err)
		os.Exit(1)
	}

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}

	// Run the game
	runErr := tui.Run(h, store, playerName())

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
