// Package config provides YAML-based game configuration loading,
// environment overrides and difficulty presets for Sneaky Snake.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/sneaky-snake/internal/engine"
	"github.com/vovakirdan/sneaky-snake/internal/game"
)

// SnakeConfig contains all configuration for a Sneaky Snake session.
type SnakeConfig struct {
	Field      SnakeField       `yaml:"field"`
	Perks      SnakePerks       `yaml:"perks"`
	Timing     SnakeTiming      `yaml:"timing"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Seed       int64            `yaml:"seed" env:"SNEAKY_SEED"` // 0 picks a random seed
}

// SnakeField defines the playing field.
type SnakeField struct {
	Width         int `yaml:"width" env:"SNEAKY_FIELD_WIDTH"`
	Height        int `yaml:"height" env:"SNEAKY_FIELD_HEIGHT"`
	Obstacles     int `yaml:"obstacles" env:"SNEAKY_OBSTACLES"`
	Food          int `yaml:"food" env:"SNEAKY_FOOD"`
	InitialLength int `yaml:"initial_length"`
	ExitThreshold int `yaml:"exit_threshold" env:"SNEAKY_EXIT_THRESHOLD"` // points before the exit opens
}

// SnakePerks defines the perk unlock thresholds and durations.
type SnakePerks struct {
	Attack PerkConfig `yaml:"attack"`
	Speed  PerkConfig `yaml:"speed"`
}

// PerkConfig defines a single perk.
type PerkConfig struct {
	Threshold int `yaml:"threshold"` // points per unlock
	Duration  int `yaml:"duration"`  // ticks
}

// SnakeTiming defines the tick period.
type SnakeTiming struct {
	BaseIntervalMs  int `yaml:"base_interval_ms" env:"SNEAKY_BASE_INTERVAL_MS"`
	SpeedStepMs     int `yaml:"speed_step_ms"`
	MinIntervalMs   int `yaml:"min_interval_ms"`
	SpeedPerkFactor int `yaml:"speed_perk_factor"`
	Speed           int `yaml:"speed"` // initial speed setting
}

// Validate reports configs that cannot produce a playable game.
func (c SnakeConfig) Validate() error {
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	t := c.Timing
	if t.BaseIntervalMs <= 0 || t.MinIntervalMs <= 0 {
		return errors.New("config: timing intervals must be positive")
	}
	if t.SpeedStepMs < 0 || t.Speed < 0 {
		return errors.New("config: speed and speed step must not be negative")
	}
	if t.SpeedPerkFactor < 1 {
		return fmt.Errorf("config: speed perk factor %d must be at least 1", t.SpeedPerkFactor)
	}
	if l := c.Difficulty.InitialLevel; l < 0 || l > 1 {
		return fmt.Errorf("config: difficulty level %.2f outside [0, 1]", l)
	}
	return nil
}

// Rules converts the config into game rules, with difficulty applied.
func (c SnakeConfig) Rules() game.Rules {
	dm := NewDifficultyManager(c.Difficulty)
	return game.Rules{
		Width:         c.Field.Width,
		Height:        c.Field.Height,
		Obstacles:     dm.Obstacles(c.Field.Obstacles),
		Food:          c.Field.Food,
		InitialLength: c.Field.InitialLength,
		ExitThreshold: c.Field.ExitThreshold,
		Attack:        c.Perks.Attack.rule(),
		Speed:         c.Perks.Speed.rule(),
	}
}

func (p PerkConfig) rule() game.PerkRule {
	return game.PerkRule{Threshold: p.Threshold, Duration: uint64(max(0, p.Duration))}
}

// TimerConfig converts the timing section into engine timing.
func (c SnakeConfig) TimerConfig() engine.TimerConfig {
	return engine.TimerConfig{
		BaseInterval:    time.Duration(c.Timing.BaseIntervalMs) * time.Millisecond,
		SpeedStep:       time.Duration(c.Timing.SpeedStepMs) * time.Millisecond,
		MinInterval:     time.Duration(c.Timing.MinIntervalMs) * time.Millisecond,
		SpeedPerkFactor: c.Timing.SpeedPerkFactor,
	}
}

// Speed returns the speed setting with difficulty applied.
func (c SnakeConfig) Speed() int {
	return NewDifficultyManager(c.Difficulty).Speed(c.Timing.Speed)
}

// FitTo shrinks the field so it can be drawn in a cols x rows terminal,
// leaving room for the HUD. Obstacles and food shrink with the area.
func (c *SnakeConfig) FitTo(cols, rows int) {
	const hudRows = 6
	w := min(c.Field.Width, cols/2-2) // two columns per cell plus border
	h := min(c.Field.Height, rows-hudRows)
	if w <= 0 || h <= 0 || (w == c.Field.Width && h == c.Field.Height) {
		return
	}
	area := c.Field.Width * c.Field.Height
	c.Field.Obstacles = c.Field.Obstacles * w * h / area
	c.Field.Food = max(1, c.Field.Food*w*h/area)
	c.Field.Width, c.Field.Height = w, h
}
