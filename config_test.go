package graphcanvas

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const testConfigYAML = `
view:
  initial: {x: 10, y: 20, zoom: 2}
  zoom_behavior: graph_relative
culling:
  guard_band: 0.5
input:
  drag_dead_zone: 8
  legacy_connection_paint: false
debug:
  log_level: debug
keymap:
  bindings:
    - trip: "press:Space"
      action: reset_view
`

const testConfigTOML = `
[view]
zoom_behavior = "graph_relative"

[view.initial]
x = 10
y = 20
zoom = 2

[culling]
guard_band = 0.5

[input]
drag_dead_zone = 8
legacy_connection_paint = false

[debug]
log_level = "debug"

[[keymap.bindings]]
trip = "press:Space"
action = "reset_view"
`

func TestParseConfigFormats(t *testing.T) {
	for _, tt := range []struct{ format, data string }{
		{"yaml", testConfigYAML},
		{"toml", testConfigTOML},
	} {
		t.Run(tt.format, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			if cfg.View.Initial != (View{X: 10, Y: 20, Zoom: 2}) {
				t.Errorf("initial = %+v", cfg.View.Initial)
			}
			if cfg.View.Behavior != ZoomGraphRelative {
				t.Errorf("behavior = %v", cfg.View.Behavior)
			}
			if cfg.Culling.GuardBand != 0.5 || cfg.Input.DragDeadZone != 8 || cfg.Input.LegacyConnectionPaint {
				t.Errorf("culling/input = %+v %+v", cfg.Culling, cfg.Input)
			}
			if cfg.LogLevel() != slog.LevelDebug {
				t.Errorf("log level = %v", cfg.LogLevel())
			}
			// Unset fields keep their defaults.
			def := DefaultConfig()
			if cfg.View.Min != def.View.Min || cfg.View.FocusDuration != def.View.FocusDuration {
				t.Error("missing fields should keep defaults")
			}
			if cfg.Keymap == nil || len(cfg.Keymap.Bindings) != 1 {
				t.Errorf("keymap = %+v", cfg.Keymap)
			}
		})
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero min zoom", "view:\n  min: {x: -1, y: -1, zoom: 0}\n"},
		{"inverted zoom", "view:\n  min: {x: -1, y: -1, zoom: 5}\n  max: {x: 1, y: 1, zoom: 2}\n"},
		{"inverted offset", "view:\n  min: {x: 5, y: 0, zoom: 1}\n  max: {x: 1, y: 1, zoom: 2}\n"},
		{"negative guard band", "culling:\n  guard_band: -1\n"},
		{"negative dead zone", "input:\n  drag_dead_zone: -2\n"},
		{"bad log level", "debug:\n  log_level: loud\n"},
		{"bad zoom behavior", "view:\n  zoom_behavior: sideways\n"},
		{"unknown field", "culling:\n  guardband: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.data), "yaml"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canvas.toml")
	if err := os.WriteFile(path, []byte(testConfigTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Culling.GuardBand != 0.5 {
		t.Errorf("guard band = %v", cfg.Culling.GuardBand)
	}
	if _, err := LoadConfig(filepath.Join(dir, "canvas.ini")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestConfigApply(t *testing.T) {
	c, _ := newTestCanvas(t)
	cfg, err := ParseConfig([]byte(testConfigYAML), "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if c.View().Current() != (View{X: 10, Y: 20, Zoom: 2}) {
		t.Errorf("view = %+v", c.View().Current())
	}
	if c.View().Behavior != ZoomGraphRelative {
		t.Errorf("behavior = %v", c.View().Behavior)
	}
	if c.GuardBand != 0.5 || c.DragDeadZone != 8 || c.LegacyConnectionPaint {
		t.Errorf("canvas settings not applied")
	}
	if c.Linker().NumCallbacks() != 1 || c.Linker().NumDragTriggers() != 0 {
		t.Errorf("config keymap should replace the default: %d callbacks", c.Linker().NumCallbacks())
	}
}

func TestDefaultConfigApply(t *testing.T) {
	c, _ := newTestCanvas(t)
	if err := DefaultConfig().Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	def := DefaultKeymap()
	if c.Linker().NumCallbacks() != len(def.Bindings) || c.Linker().NumDragTriggers() != len(def.DragBindings) {
		t.Errorf("bound %d/%d, want %d/%d", c.Linker().NumCallbacks(), c.Linker().NumDragTriggers(),
			len(def.Bindings), len(def.DragBindings))
	}
}

func TestConfigApplyKeymapFile(t *testing.T) {
	c, _ := newTestCanvas(t)
	path := filepath.Join(t.TempDir(), "keys.yaml")
	replaceFile(t, path, testKeymapYAML)

	cfg := DefaultConfig()
	cfg.Input.KeymapFile = path
	if err := cfg.Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	t.Cleanup(func() { c.keymap.Close() })
	if c.keymap == nil || c.Linker().NumCallbacks() != 2 {
		t.Error("keymap file should be bound and watched")
	}

	bad := DefaultConfig()
	bad.Culling.GuardBand = -1
	if err := bad.Apply(NewCanvas(nil)); err == nil {
		t.Error("invalid config should not apply")
	}
}

func TestConfigApplyReplacesKeymap(t *testing.T) {
	c, _ := newTestCanvas(t)
	own := c.Linker().BindInputCallback(ManualTrip("own"), InputCallback{})
	def := DefaultKeymap()
	want := len(def.Bindings) + 1

	for range 2 {
		if err := DefaultConfig().Apply(c); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	if c.Linker().NumCallbacks() != want || c.Linker().NumDragTriggers() != len(def.DragBindings) {
		t.Fatalf("after two applies bound %d/%d, want %d/%d", c.Linker().NumCallbacks(),
			c.Linker().NumDragTriggers(), want, len(def.DragBindings))
	}

	path := filepath.Join(t.TempDir(), "keys.yaml")
	replaceFile(t, path, testKeymapYAML)
	watched := DefaultConfig()
	watched.Input.KeymapFile = path
	if err := watched.Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if c.Linker().NumCallbacks() != 3 || c.Linker().NumDragTriggers() != 1 {
		t.Errorf("watched keymap bound %d/%d, want 3/1", c.Linker().NumCallbacks(), c.Linker().NumDragTriggers())
	}

	if err := DefaultConfig().Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if c.keymap != nil {
		t.Error("watcher should be closed when a static keymap replaces it")
	}
	if c.Linker().NumCallbacks() != want {
		t.Errorf("callbacks = %d, want %d", c.Linker().NumCallbacks(), want)
	}

	bad := Keymap{Bindings: []Binding{{Trip: "press:A", Action: "nope"}}}
	if err := c.BindKeymap(bad); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("err = %v, want ErrUnknownAction", err)
	}
	if c.Linker().NumCallbacks() != want {
		t.Error("a rejected keymap should keep the current bindings")
	}
	own.Remove()
}
