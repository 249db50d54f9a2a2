package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, []string{"ultrawide_monitor_2", "hanging_monitor_2"}, cfg.DefaultExclusions)
	assert.Equal(t, "@every 1s", cfg.Chart.TickSpec)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chart:\n  symbol: INFY\n  initial_bars: 60\ndebug:\n  show_fps: true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "INFY", cfg.Chart.Symbol)
	assert.Equal(t, 60, cfg.Chart.InitialBars)
	assert.Equal(t, 856.0, cfg.Chart.StartPrice)
	assert.True(t, cfg.Debug.ShowFPS)
	assert.True(t, cfg.Debug.GridVisible)
}

func TestLoadInvalidFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chart: [unterminated"), 0644))
	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "workspace.yaml")
	cfg := Default()
	cfg.Debug.GridVisible = false
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.False(t, got.Debug.GridVisible)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{EnvDBPath: "/tmp/x.db", EnvDebugAddr: " :8089 ", EnvAssetsDir: "models"}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })
	assert.Equal(t, "/tmp/x.db", cfg.Storage.Path)
	assert.Equal(t, ":8089", cfg.Debug.HTTPAddr)
	assert.Equal(t, "info", cfg.Debug.LogLevel)
	assert.Equal(t, filepath.Join("models", "monitor.glb"), cfg.AssetPath(cfg.Assets.Monitor))
}
