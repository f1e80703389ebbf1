package config

import (
	_ "embed"
)

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

// DefaultSnakeConfig returns the default Sneaky Snake configuration.
func DefaultSnakeConfig() SnakeConfig {
	return SnakeConfig{
		Field: SnakeField{
			Width:         50,
			Height:        20,
			Obstacles:     40,
			Food:          8,
			InitialLength: 3,
			ExitThreshold: 20,
		},
		Perks: SnakePerks{
			Attack: PerkConfig{Threshold: 10, Duration: 30},
			Speed:  PerkConfig{Threshold: 5, Duration: 50},
		},
		Timing: SnakeTiming{
			BaseIntervalMs:  150,
			SpeedStepMs:     15,
			MinIntervalMs:   40,
			SpeedPerkFactor: 2,
			Speed:           0,
		},
		Difficulty: DifficultyConfig{
			InitialLevel: 0.3,
			Scaling: ScalingConfig{
				ObstacleMultiplier: 1.0,
				SpeedLevels:        5,
			},
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultSnakeYAML
}
