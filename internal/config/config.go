// Package config provides YAML-based configuration loading for the 2048
// game and its move solver.
package config

import (
	"errors"
	"fmt"
)

// T2048Config contains all configuration for the 2048 game.
type T2048Config struct {
	Board  BoardConfig  `yaml:"board"`
	Solver SolverConfig `yaml:"solver"`
}

// BoardConfig defines the grid.
type BoardConfig struct {
	Size         int `yaml:"size"`          // Board dimension (N for an NxN grid)
	InitialTiles int `yaml:"initial_tiles"` // Tiles spawned on a new game
}

// SolverConfig defines the Monte-Carlo solver and the autoplay pace.
type SolverConfig struct {
	Intelligence int     `yaml:"intelligence"` // 0-100; rollouts per direction scale with it
	Delay        float64 `yaml:"delay"`        // Seconds between AI moves (0.0-1.0)
	Workers      int     `yaml:"workers"`      // Rollout goroutines, 0 = one per CPU
	Seed         int64   `yaml:"seed"`         // Solver RNG seed, 0 = from clock
}

// Limits for interactive adjustment.
const (
	MinBoardSize    = 2
	MaxBoardSize    = 8
	MaxIntelligence = 100
	MaxDelay        = 1.0
)

// Validate checks the configuration for values the game cannot run with.
func (c T2048Config) Validate() error {
	var errs []error
	if c.Board.Size < MinBoardSize || c.Board.Size > MaxBoardSize {
		errs = append(errs, fmt.Errorf("board.size must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, c.Board.Size))
	}
	if c.Board.InitialTiles < 0 || c.Board.InitialTiles > c.Board.Size*c.Board.Size {
		errs = append(errs, fmt.Errorf("board.initial_tiles out of range: %d", c.Board.InitialTiles))
	}
	if c.Solver.Intelligence < 0 {
		errs = append(errs, fmt.Errorf("solver.intelligence must not be negative, got %d", c.Solver.Intelligence))
	}
	if c.Solver.Delay < 0 {
		errs = append(errs, fmt.Errorf("solver.delay must not be negative, got %v", c.Solver.Delay))
	}
	if c.Solver.Workers < 0 {
		errs = append(errs, fmt.Errorf("solver.workers must not be negative, got %d", c.Solver.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid t2048 config: %w", errors.Join(errs...))
	}
	return nil
}

// DifficultyPreset represents a named solver strength.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// IntelligenceForPreset returns the solver intelligence for a preset.
// Unknown presets report ok=false.
func IntelligenceForPreset(preset DifficultyPreset) (intelligence int, ok bool) {
	switch preset {
	case DifficultyEasy:
		return 10, true
	case DifficultyNormal:
		return 50, true
	case DifficultyHard:
		return 100, true
	default:
		return 0, false
	}
}

// ApplyT2048Preset sets the solver intelligence from a preset name.
// An empty preset leaves the config unchanged.
func ApplyT2048Preset(cfg *T2048Config, preset DifficultyPreset) error {
	if preset == "" {
		return nil
	}
	intelligence, ok := IntelligenceForPreset(preset)
	if !ok {
		return fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", preset)
	}
	cfg.Solver.Intelligence = intelligence
	return nil
}
