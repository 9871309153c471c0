// Package config handles loading and saving animation tool settings.
//
// Settings come from built-in defaults, then a YAML or TOML file, then
// command-line flags, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/midgard-anim/pkg/anim"
)

// Config holds all runtime settings.
type Config struct {
	Animation AnimationConfig `yaml:"animation" toml:"animation"`
	Skinning  SkinningConfig  `yaml:"skinning" toml:"skinning"`
	Library   LibraryConfig   `yaml:"library" toml:"library"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// AnimationConfig holds playback settings.
type AnimationConfig struct {
	LoopMode        string     `yaml:"loop_mode" toml:"loop_mode"`
	PlaybackSpeed   float64    `yaml:"playback_speed" toml:"playback_speed"`
	RootTranslation [3]float32 `yaml:"root_translation,flow" toml:"root_translation"`
}

// SkinningConfig holds deformation settings.
type SkinningConfig struct {
	// WeightEpsilon is the tolerance used when checking that vertex
	// weights sum to one.
	WeightEpsilon float32 `yaml:"weight_epsilon" toml:"weight_epsilon"`
}

// LibraryConfig holds clip library settings.
type LibraryConfig struct {
	ClipDir string `yaml:"clip_dir" toml:"clip_dir"`
	Watch   bool   `yaml:"watch" toml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Animation: AnimationConfig{
			LoopMode:      anim.LoopWrap.String(),
			PlaybackSpeed: 1,
		},
		Skinning: SkinningConfig{
			WeightEpsilon: 1e-4,
		},
		Library: LibraryConfig{
			ClipDir: "clips",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoopMode returns the parsed loop mode.
func (c *Config) LoopMode() (anim.LoopMode, error) {
	return anim.ParseLoopMode(c.Animation.LoopMode)
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.LoopMode(); err != nil {
		errs = append(errs, fmt.Errorf("animation.loop_mode: %w", err))
	}
	if s := c.Animation.PlaybackSpeed; math.IsNaN(s) || math.IsInf(s, 0) {
		errs = append(errs, fmt.Errorf("animation.playback_speed must be finite, got %v", s))
	}
	for i, v := range c.Animation.RootTranslation {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, fmt.Errorf("animation.root_translation[%d] must be finite", i))
		}
	}
	if e := c.Skinning.WeightEpsilon; !(e > 0) || e >= 1 {
		errs = append(errs, fmt.Errorf("skinning.weight_epsilon must be in (0, 1), got %v", e))
	}
	return errors.Join(errs...)
}
