package graphcanvas

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ViewConfig configures the canvas ViewTransform.
type ViewConfig struct {
	Initial         View         `yaml:"initial" toml:"initial"`
	MovementScalar  View         `yaml:"movement_scalar" toml:"movement_scalar"`
	Min             View         `yaml:"min" toml:"min"`
	Max             View         `yaml:"max" toml:"max"`
	Behavior        ZoomBehavior `yaml:"zoom_behavior" toml:"zoom_behavior"`
	ZoomInterpSpeed float64      `yaml:"zoom_interp_speed" toml:"zoom_interp_speed"`
	PanInterpSpeed  float64      `yaml:"pan_interp_speed" toml:"pan_interp_speed"`
	FocusDuration   float32      `yaml:"focus_duration" toml:"focus_duration"`
}

// CullingConfig configures node culling.
type CullingConfig struct {
	GuardBand float64 `yaml:"guard_band" toml:"guard_band"`
}

// InputConfig configures pointer handling and connection painting.
type InputConfig struct {
	DragDeadZone          float64 `yaml:"drag_dead_zone" toml:"drag_dead_zone"`
	LegacyConnectionPaint bool    `yaml:"legacy_connection_paint" toml:"legacy_connection_paint"`
	DesignMode            bool    `yaml:"design_mode" toml:"design_mode"`
	// KeymapFile, when set, is loaded and watched for changes instead of
	// using Keymap.
	KeymapFile string `yaml:"keymap_file,omitempty" toml:"keymap_file,omitempty"`
}

// DebugConfig configures debug mode and log verbosity.
type DebugConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	LogLevel string `yaml:"log_level,omitempty" toml:"log_level,omitempty"`
}

// Config holds every canvas setting that can be loaded from a file.
type Config struct {
	View    ViewConfig    `yaml:"view" toml:"view"`
	Culling CullingConfig `yaml:"culling" toml:"culling"`
	Input   InputConfig   `yaml:"input" toml:"input"`
	Debug   DebugConfig   `yaml:"debug" toml:"debug"`
	// Keymap replaces DefaultKeymap when set.
	Keymap *Keymap `yaml:"keymap,omitempty" toml:"keymap,omitempty"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		View: ViewConfig{
			Initial:         DefaultView,
			MovementScalar:  DefaultMovementScalar,
			Min:             DefaultViewBounds.Min,
			Max:             DefaultViewBounds.Max,
			Behavior:        ZoomMouseRelative,
			ZoomInterpSpeed: defaultInterpSpeed,
			PanInterpSpeed:  defaultInterpSpeed,
			FocusDuration:   0.35,
		},
		Culling: CullingConfig{GuardBand: DefaultGuardBand},
		Input: InputConfig{
			DragDeadZone:          defaultDragDeadZone,
			LegacyConnectionPaint: true,
		},
		Debug: DebugConfig{LogLevel: "info"},
	}
}

// LoadConfig reads a YAML or TOML config file. Missing fields keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	format, err := fileFormat(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data, format)
}

// ParseConfig decodes a config in the given format ("yaml" or "toml") on
// top of DefaultConfig.
func ParseConfig(data []byte, format string) (Config, error) {
	cfg := DefaultConfig()
	if err := decodeFile(data, format, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	v := cfg.View
	if v.Min.Zoom <= 0 || v.Max.Zoom < v.Min.Zoom {
		return fmt.Errorf("view: zoom range [%g, %g] is invalid", v.Min.Zoom, v.Max.Zoom)
	}
	if v.Max.X < v.Min.X || v.Max.Y < v.Min.Y {
		return fmt.Errorf("view: offset bounds are inverted")
	}
	if cfg.Culling.GuardBand < 0 {
		return fmt.Errorf("culling: guard band %g is negative", cfg.Culling.GuardBand)
	}
	if cfg.Input.DragDeadZone < 0 {
		return fmt.Errorf("input: drag dead zone %g is negative", cfg.Input.DragDeadZone)
	}
	if _, err := parseLogLevel(cfg.Debug.LogLevel); err != nil {
		return fmt.Errorf("debug: %w", err)
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// LogLevel returns the configured slog level.
func (cfg Config) LogLevel() slog.Level {
	l, _ := parseLogLevel(cfg.Debug.LogLevel)
	return l
}

// Apply pushes the settings into c and binds the keymap with
// DefaultActions: KeymapFile if set, otherwise Keymap, otherwise
// DefaultKeymap. The keymap replaces one bound by an earlier Apply.
func (cfg Config) Apply(c *Canvas) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("apply config: %w", err)
	}

	v := c.View()
	v.MovementScalar = cfg.View.MovementScalar
	v.Bounds = ViewBounds{Min: cfg.View.Min, Max: cfg.View.Max}
	v.Behavior = cfg.View.Behavior
	v.ZoomInterpSpeed = cfg.View.ZoomInterpSpeed
	v.PanInterpSpeed = cfg.View.PanInterpSpeed
	v.SetZoom(cfg.View.Initial.Zoom, false)
	v.SetViewCorner(cfg.View.Initial.Offset(), false)

	c.GuardBand = cfg.Culling.GuardBand
	c.DragDeadZone = cfg.Input.DragDeadZone
	c.LegacyConnectionPaint = cfg.Input.LegacyConnectionPaint
	c.DesignMode = cfg.Input.DesignMode
	c.FocusDuration = cfg.View.FocusDuration
	c.SetDebugMode(cfg.Debug.Enabled)

	if cfg.Input.KeymapFile != "" {
		return c.WatchKeymap(cfg.Input.KeymapFile)
	}
	k := DefaultKeymap()
	if cfg.Keymap != nil {
		k = *cfg.Keymap
	}
	if err := c.BindKeymap(k); err != nil {
		return fmt.Errorf("apply config: %w", err)
	}
	return nil
}
