package config

import "math"

// DifficultyConfig defines how hard a session starts.
type DifficultyConfig struct {
	InitialLevel float64       `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Scaling      ScalingConfig `yaml:"scaling"`
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	ObstacleMultiplier float64 `yaml:"obstacle_multiplier"` // Extra obstacles at max difficulty, relative to base
	SpeedLevels        int     `yaml:"speed_levels"`        // Speed setting added at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. An empty name means normal.
func ParsePreset(name string) (DifficultyPreset, bool) {
	switch p := DifficultyPreset(name); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, true
	case "":
		return DifficultyNormal, true
	default:
		return "", false
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset keeps the configured level.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplySnakePreset modifies the config based on a difficulty preset.
func ApplySnakePreset(cfg *SnakeConfig, preset DifficultyPreset) {
	if IsFixedPreset(preset) {
		return
	}
	cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)

	// Perks come sooner on easy and later on hard
	switch preset {
	case DifficultyEasy:
		cfg.Perks.Attack.Threshold = max(1, cfg.Perks.Attack.Threshold/2)
		cfg.Perks.Speed.Threshold = max(1, cfg.Perks.Speed.Threshold/2)
	case DifficultyHard:
		cfg.Perks.Attack.Threshold += cfg.Perks.Attack.Threshold / 2
		cfg.Field.ExitThreshold += cfg.Field.ExitThreshold / 4
	}
}

// DifficultyManager derives session parameters from the difficulty level.
type DifficultyManager struct {
	cfg   DifficultyConfig
	level float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:   cfg,
		level: clampF(cfg.InitialLevel, 0.0, 1.0),
	}
}

// Level returns the difficulty level (0.0 to 1.0).
func (d *DifficultyManager) Level() float64 {
	return d.level
}

// Obstacles returns the obstacle count for the level.
func (d *DifficultyManager) Obstacles(base int) int {
	// Obstacles grow from base to base * (1 + multiplier)
	return int(math.Round(float64(base) * (1.0 + d.level*d.cfg.Scaling.ObstacleMultiplier)))
}

// Speed returns the speed setting for the level.
func (d *DifficultyManager) Speed(base int) int {
	return base + int(d.level*float64(d.cfg.Scaling.SpeedLevels))
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
