// Package config holds the parsed configuration the core consumes.
// The core never reads files or the environment itself; cmd glue
// resolves the path and hands the parsed value in.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crestwm/crest/internal/layout"
)

// Config is the effective configuration after defaults are applied.
type Config struct {
	DefaultLayout layout.Kind
	GapPx         int
	MasterRatio   float64
	Workspaces    int
	Keybindings   map[string]string // key-combo -> command name
}

// Params returns the layout parameters shared by all workspaces at
// startup.
func (c *Config) Params() layout.Params {
	return layout.Params{MasterRatio: c.MasterRatio, GapPx: c.GapPx}
}

// raw mirrors the YAML document. Pointer fields distinguish "absent"
// from zero so missing keys fall back to built-in defaults.
type raw struct {
	DefaultLayout *string           `yaml:"default_layout"`
	GapPx         *int              `yaml:"gap_px"`
	MasterRatio   *float64          `yaml:"master_ratio"`
	Workspaces    *int              `yaml:"workspaces"`
	Keybindings   map[string]string `yaml:"keybindings"`
}

// Default returns the built-in configuration used when no file exists
// or a key is unspecified.
func Default() *Config {
	return &Config{
		DefaultLayout: layout.Tiling,
		GapPx:         0,
		MasterRatio:   0.6,
		Workspaces:    9,
		Keybindings: map[string]string{
			"Mod4-j":       "focus-next",
			"Mod4-k":       "focus-prev",
			"Mod4-Shift-j": "swap-next",
			"Mod4-Shift-k": "swap-prev",
			"Mod4-f":       "toggle-floating",
			"Mod4-m":       "toggle-fullscreen",
			"Mod4-i":       "iconify",
			"Mod4-q":       "close",
			"Mod4-t":       "layout-tiling",
			"Mod4-s":       "layout-floating",
			"Mod4-w":       "layout-tabbed",
			"Mod4-Shift-e": "quit",
			"Mod4-1":       "workspace-1",
			"Mod4-2":       "workspace-2",
			"Mod4-3":       "workspace-3",
			"Mod4-4":       "workspace-4",
			"Mod4-5":       "workspace-5",
			"Mod4-Shift-1": "move-to-workspace-1",
			"Mod4-Shift-2": "move-to-workspace-2",
			"Mod4-Shift-3": "move-to-workspace-3",
			"Mod4-Shift-4": "move-to-workspace-4",
			"Mod4-Shift-5": "move-to-workspace-5",
		},
	}
}

// Parse decodes a YAML document and merges it over the defaults.
// Missing keys are never an error; out-of-range master ratios are
// clamped rather than rejected.
func Parse(data []byte) (*Config, error) {
	var r raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()

	if r.DefaultLayout != nil {
		kind := layout.Kind(*r.DefaultLayout)
		if !kind.Valid() {
			return nil, fmt.Errorf("parse config: unknown default_layout %q", *r.DefaultLayout)
		}
		cfg.DefaultLayout = kind
	}
	if r.GapPx != nil {
		if *r.GapPx < 0 {
			return nil, fmt.Errorf("parse config: gap_px must not be negative, got %d", *r.GapPx)
		}
		cfg.GapPx = *r.GapPx
	}
	if r.MasterRatio != nil {
		cfg.MasterRatio = layout.ClampRatio(*r.MasterRatio)
	}
	if r.Workspaces != nil {
		if *r.Workspaces < 1 {
			return nil, fmt.Errorf("parse config: workspaces must be at least 1, got %d", *r.Workspaces)
		}
		cfg.Workspaces = *r.Workspaces
	}
	if r.Keybindings != nil {
		cfg.Keybindings = r.Keybindings
	}

	return cfg, nil
}

// Load reads and parses the file at path. A missing file yields the
// built-in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}
