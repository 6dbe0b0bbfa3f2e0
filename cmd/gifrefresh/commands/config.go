package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/agiangrant/gifrefresh/retained"
)

// ConfigFile is the name of the project configuration file.
const ConfigFile = "gifrefresh.toml"

// ProjectConfig represents the gifrefresh.toml configuration file
type ProjectConfig struct {
	Refresh  RefreshConfig  `toml:"refresh"`
	Loop     LoopConfig     `toml:"loop"`
	Scroll   ScrollConfig   `toml:"scroll"`
	Simulate SimulateConfig `toml:"simulate"`
}

// RefreshConfig mirrors retained.RefreshConfig. Durations are in seconds.
type RefreshConfig struct {
	AnimateOnScroll   bool    `toml:"animate_on_scroll"`
	AnimationDuration float64 `toml:"animation_duration"`
	AnimationDamping  float64 `toml:"animation_damping"`
	AnimationVelocity float64 `toml:"animation_velocity"`
	// Visible display height; the control expands to at most a fifth of it
	DisplayHeight float32 `toml:"display_height"`
	// One of scale-to-fill, aspect-fit, aspect-fill, center, top, bottom
	ContentMode string `toml:"content_mode"`
}

type LoopConfig struct {
	TargetFPS int `toml:"target_fps"`
}

// ScrollConfig describes the scroll view used by simulate.
type ScrollConfig struct {
	Width         float32 `toml:"width"`
	Height        float32 `toml:"height"`
	ContentHeight float32 `toml:"content_height"`
	InsetTop      float32 `toml:"inset_top"`
}

type SimulateConfig struct {
	// Seconds of application work between the commit and EndRefreshing
	Work float64 `toml:"work"`
	// Pull distance in points; 0 pulls one and a half expanded heights
	Pull float32 `toml:"pull"`
	// Seconds to keep stepping after the refresh ends
	Tail float64 `toml:"tail"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() ProjectConfig {
	refresh := retained.DefaultRefreshConfig()
	return ProjectConfig{
		Refresh: RefreshConfig{
			AnimateOnScroll:   refresh.AnimateOnScroll,
			AnimationDuration: refresh.AnimationDuration.Seconds(),
			AnimationDamping:  refresh.AnimationDamping,
			AnimationVelocity: refresh.AnimationVelocity,
			DisplayHeight:     refresh.DisplayHeight,
			ContentMode:       retained.ContentModeScaleAspectFit.String(),
		},
		Loop: LoopConfig{
			TargetFPS: retained.DefaultLoopConfig().TargetFPS,
		},
		Scroll: ScrollConfig{
			Width:         375,
			Height:        600,
			ContentHeight: 2000,
		},
		Simulate: SimulateConfig{
			Work: 1,
			Tail: 1,
		},
	}
}

// LoadConfig loads the project configuration from gifrefresh.toml in dir.
// If the file doesn't exist, returns default config
func LoadConfig(dir string) (ProjectConfig, error) {
	config := DefaultConfig()

	configPath := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid %s: %w", configPath, err)
	}
	return config, nil
}

// SaveConfig saves the configuration to gifrefresh.toml in dir
func SaveConfig(dir string, config ProjectConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(dir, ConfigFile)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	return nil
}

// FindProjectRoot finds the project root by looking for gifrefresh.toml or
// go.mod, starting at dir.
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil {
			return dir, nil
		}
		// Check for go.mod as fallback
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", fmt.Errorf("not in a gifrefresh project (no %s or go.mod found)", ConfigFile)
		}
		dir = parent
	}
}

// Validate reports the first out-of-range setting.
func (c ProjectConfig) Validate() error {
	switch {
	case c.Refresh.AnimationDuration < 0:
		return fmt.Errorf("refresh.animation_duration must not be negative, got %v", c.Refresh.AnimationDuration)
	case c.Refresh.DisplayHeight < 0:
		return fmt.Errorf("refresh.display_height must not be negative, got %v", c.Refresh.DisplayHeight)
	case c.Loop.TargetFPS < 0:
		return fmt.Errorf("loop.target_fps must not be negative, got %d", c.Loop.TargetFPS)
	case c.Simulate.Work < 0 || c.Simulate.Tail < 0:
		return errors.New("simulate.work and simulate.tail must not be negative")
	}
	if c.Refresh.ContentMode != "" {
		if _, ok := retained.ParseContentMode(c.Refresh.ContentMode); !ok {
			return fmt.Errorf("unknown refresh.content_mode %q", c.Refresh.ContentMode)
		}
	}
	return nil
}

// RefreshOptions converts the refresh section for retained.NewRefreshControl.
func (c ProjectConfig) RefreshOptions(logger *slog.Logger) retained.RefreshConfig {
	return retained.RefreshConfig{
		AnimateOnScroll:   c.Refresh.AnimateOnScroll,
		AnimationDuration: seconds(c.Refresh.AnimationDuration),
		AnimationDamping:  c.Refresh.AnimationDamping,
		AnimationVelocity: c.Refresh.AnimationVelocity,
		DisplayHeight:     c.Refresh.DisplayHeight,
		Logger:            logger,
	}
}

// LoopOptions converts the loop section for retained.NewLoop.
func (c ProjectConfig) LoopOptions(logger *slog.Logger) retained.LoopConfig {
	return retained.LoopConfig{
		TargetFPS: c.Loop.TargetFPS,
		Logger:    logger,
	}
}

// ScrollOptions converts the scroll section for retained.NewScrollView.
func (c ProjectConfig) ScrollOptions() retained.ScrollViewConfig {
	config := retained.DefaultScrollViewConfig()
	config.Bounds = retained.Rect{Width: c.Scroll.Width, Height: c.Scroll.Height}
	config.ContentHeight = c.Scroll.ContentHeight
	config.Inset = retained.Insets{Top: c.Scroll.InsetTop}
	return config
}

// ContentMode returns the configured content mode.
func (c ProjectConfig) ContentMode() retained.ContentMode {
	m, _ := retained.ParseContentMode(c.Refresh.ContentMode)
	return m
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
