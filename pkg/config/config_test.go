package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fadegraph/pkg/cache"
	"github.com/matzehuels/fadegraph/pkg/errors"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fadegraph.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Controls.Gravity != 50 || cfg.Controls.NodeSize != 10 {
		t.Errorf("controls = %+v", cfg.Controls)
	}
	if cfg.Animation.FPS != DefaultFPS || cfg.Serve.Addr != DefaultAddr {
		t.Errorf("animation/serve = %+v / %+v", cfg.Animation, cfg.Serve)
	}
	if cfg.Cache.Backend != cache.BackendFile || cfg.Cache.Dir == "" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[viewport]
width = 1920
height = 1080

[controls]
gravity = 80
rejection = 20

[animation]
fps = 30

[source]
location = "https://example.com/skills.json"
ttl = "10m"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2

[palette]
Go = "#00ADD8"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Viewport.Width != 1920 || cfg.ViewportSize().Height != 1080 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Controls.Gravity != 80 || cfg.Controls.Rejection != 20 || cfg.Controls.NodeSize != 10 {
		t.Errorf("controls = %+v", cfg.Controls)
	}
	if cfg.Animation.FPS != 30 {
		t.Errorf("fps = %d", cfg.Animation.FPS)
	}
	if cfg.Source.TTL != 10*time.Minute || cfg.Source.Attempts != DefaultAttempts {
		t.Errorf("source = %+v", cfg.Source)
	}

	opts := cfg.CacheOptions()
	if opts.Backend != cache.BackendRedis || opts.Redis.Addr != "localhost:6379" || opts.Redis.DB != 2 {
		t.Errorf("cache options = %+v", opts)
	}
	if opts.Dir != "" {
		t.Errorf("redis backend should not get a cache dir, got %q", opts.Dir)
	}

	p, err := cfg.PaletteWithOverrides()
	if err != nil {
		t.Fatalf("PaletteWithOverrides: %v", err)
	}
	if p.Color("Go") != "#00add8" || p.Color("Java") != "#ff0000" {
		t.Errorf("palette = %v", p)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		body     string
		wantCode errors.Code
	}{
		{"syntax", "[controls\ngravity = 1", errors.ErrCodeInvalidConfig},
		{"unknown key", "[controls]\ngravty = 1", errors.ErrCodeInvalidConfig},
		{"negative gravity", "[controls]\ngravity = -1", errors.ErrCodeInvalidConfig},
		{"fps too high", "[animation]\nfps = 1000", errors.ErrCodeInvalidConfig},
		{"bad backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidConfig},
		{"bad colour", "[palette]\nGo = \"teal\"", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, dir, tt.body))
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
		})
	}

	_, err := Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil || cfg.Animation.FPS != DefaultFPS {
		t.Fatalf("LoadOrDefault(\"\") = %+v, %v", cfg, err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fadegraph.toml")
	cfg := Default()
	cfg.Controls.Gravity = 12
	cfg.Source.Location = "graph.yaml"
	cfg.Palette = map[string]string{"Go": "#00add8"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Controls.Gravity != 12 || got.Source.Location != "graph.yaml" || got.Palette["Go"] != "#00add8" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestControls(t *testing.T) {
	c := NewControls(ControlsConfig{Gravity: 50, Rejection: 10, NodeSize: 10})
	if c.Gravity() != 50 || c.Rejection() != 10 || c.NodeSize() != 10 {
		t.Fatalf("values = %+v", c.Values())
	}

	v := c.Adjust(-60, -20, 5)
	if v.Gravity != 50 {
		t.Errorf("gravity went non-positive: %v", v.Gravity)
	}
	if v.Rejection != 0 {
		t.Errorf("rejection = %v, want clamped to 0", v.Rejection)
	}
	if v.NodeSize != 15 {
		t.Errorf("node size = %v, want 15", v.NodeSize)
	}

	c.Set(ControlsConfig{Gravity: 1, Rejection: 2, NodeSize: 3})
	if c.Values() != (ControlsConfig{Gravity: 1, Rejection: 2, NodeSize: 3}) {
		t.Errorf("Set not applied: %+v", c.Values())
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[controls]\ngravity = 10\n")

	controls := NewControls(Default().Controls)
	w := NewWatcher(path, controls, log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel}))
	reloaded := make(chan *Config, 4)
	w.OnReload = func(c *Config) { reloaded <- c }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		writeConfig(t, dir, "[controls]\ngravity = 25\nnode_size = 14\n")
		select {
		case cfg := <-reloaded:
			if cfg.Controls.Gravity != 25 {
				t.Errorf("reloaded gravity = %v", cfg.Controls.Gravity)
			}
			if controls.NodeSize() != 14 {
				t.Errorf("controls not updated: %+v", controls.Values())
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Run: %v", err)
			}
			return
		case <-tick.C:
		case <-deadline:
			t.Fatal("config was not reloaded")
		}
	}
}

func TestDefaultCacheDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	if got, want := DefaultCacheDir(), filepath.Join(dir, "fadegraph"); got != want {
		t.Errorf("DefaultCacheDir() = %q, want %q", got, want)
	}
}
