// Package config loads the workspace configuration from YAML, applies environment overrides and
// saves debug prefs back.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Path is the config file, relative to the process working directory.
const Path = "config/workspace.yaml"

// Environment overrides.
const (
	EnvDBPath    = "WORKSPACE_DB_PATH"
	EnvDebugAddr = "WORKSPACE_DEBUG_ADDR"
	EnvLogLevel  = "WORKSPACE_LOG_LEVEL"
	EnvAssetsDir = "WORKSPACE_ASSETS_DIR"
)

// Config holds everything the workspace reads at startup. Debug prefs are written back when
// toggled from the terminal.
type Config struct {
	Window  Window  `yaml:"window"`
	Assets  Assets  `yaml:"assets"`
	Catalog string  `yaml:"catalog,omitempty"`
	Storage Storage `yaml:"storage"`
	// DefaultExclusions are merged into the persisted exclusion set at startup.
	DefaultExclusions []string `yaml:"default_exclusions"`
	Chart             Chart    `yaml:"chart"`
	Debug             Debug    `yaml:"debug"`
}

// Window is the raylib window setup.
type Window struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	TargetFPS  int    `yaml:"target_fps"`
	Title      string `yaml:"title"`
	// Font is a family name or file under assets/fonts for the HUD and terminal.
	Font string `yaml:"font,omitempty"`
}

// Assets locates the base models.
type Assets struct {
	Dir            string `yaml:"dir"`
	Ultrawide      string `yaml:"ultrawide_monitor"`
	Monitor        string `yaml:"monitor"`
	HangingMonitor string `yaml:"hanging_monitor"`
}

// Storage is the durable key/value store.
type Storage struct {
	Path string `yaml:"path"`
}

// Chart configures the synthetic feed and raster.
type Chart struct {
	Symbol      string  `yaml:"symbol"`
	Interval    string  `yaml:"interval"`
	Exchange    string  `yaml:"exchange"`
	InitialBars int     `yaml:"initial_bars"`
	StartPrice  float64 `yaml:"start_price"`
	Retention   int     `yaml:"retention"`
	Width       int     `yaml:"raster_width"`
	Height      int     `yaml:"raster_height"`
	TickSpec    string  `yaml:"tick"`
}

// Debug holds overlay prefs and the optional HTTP debug surface.
type Debug struct {
	ShowFPS      bool   `yaml:"show_fps"`
	ShowMemAlloc bool   `yaml:"show_memalloc"`
	GridVisible  bool   `yaml:"grid_visible"`
	HTTPAddr     string `yaml:"http_addr,omitempty"`
	LogLevel     string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: Window{Width: 1280, Height: 720, TargetFPS: 60, Title: "Chart Workspace"},
		Assets: Assets{
			Dir:            "assets",
			Ultrawide:      "ultrawide_monitor.glb",
			Monitor:        "monitor.glb",
			HangingMonitor: "hanging_monitor.glb",
		},
		Storage:           Storage{Path: "data/workspace.db"},
		DefaultExclusions: []string{"ultrawide_monitor_2", "hanging_monitor_2"},
		Chart: Chart{
			Symbol:      "SBIN",
			Interval:    "1",
			Exchange:    "NSE",
			InitialBars: 120,
			StartPrice:  856,
			Retention:   360,
			Width:       1600,
			Height:      720,
			TickSpec:    "@every 1s",
		},
		Debug: Debug{GridVisible: true, LogLevel: "info"},
	}
}

// Load reads path over the defaults. A missing file yields Default() and no error; an invalid one
// yields Default() and the parse error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays non-empty environment values. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		c.Storage.Path = v
	}
	if v := strings.TrimSpace(getenv(EnvDebugAddr)); v != "" {
		c.Debug.HTTPAddr = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Debug.LogLevel = v
	}
	if v := strings.TrimSpace(getenv(EnvAssetsDir)); v != "" {
		c.Assets.Dir = v
	}
}

// AssetPath joins the assets dir with a model file name.
func (c Config) AssetPath(file string) string {
	if filepath.IsAbs(file) || c.Assets.Dir == "" {
		return file
	}
	return filepath.Join(c.Assets.Dir, file)
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
