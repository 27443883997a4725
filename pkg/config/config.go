// Package config loads fadegraph's TOML configuration and keeps the live
// control values (gravity, rejection, node size) that the engine reads every
// tick.
//
// A configuration file looks like:
//
//	[viewport]
//	width = 1280
//	height = 800
//
//	[controls]
//	gravity = 50
//	rejection = 50
//	node_size = 10
//
//	[animation]
//	fps = 60
//
//	[source]
//	location = "graph.json"
//	ttl = "1h"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[serve]
//	addr = ":8080"
//
//	[palette]
//	Go = "#00add8"
//
// Missing values fall back to [Default]. [Watcher] reloads the file when it
// changes and pushes new control values into a [Controls].
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fadegraph/pkg/cache"
	"github.com/matzehuels/fadegraph/pkg/engine"
	"github.com/matzehuels/fadegraph/pkg/errors"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

// Config is the full configuration file.
type Config struct {
	Viewport  ViewportConfig    `toml:"viewport"`
	Controls  ControlsConfig    `toml:"controls"`
	Animation AnimationConfig   `toml:"animation"`
	Source    SourceConfig      `toml:"source"`
	Cache     CacheConfig       `toml:"cache"`
	Serve     ServeConfig       `toml:"serve"`
	Palette   map[string]string `toml:"palette"`
}

// ViewportConfig sizes the drawing area.
type ViewportConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// ControlsConfig holds the live control values.
type ControlsConfig struct {
	Gravity   float64 `toml:"gravity"`
	Rejection float64 `toml:"rejection"`
	NodeSize  float64 `toml:"node_size"`
}

// AnimationConfig paces the animation loop.
type AnimationConfig struct {
	FPS int `toml:"fps"`
}

// SourceConfig names the graph definition to load.
type SourceConfig struct {
	Location string        `toml:"location"` // file path or http(s) URL
	TTL      time.Duration `toml:"ttl"`      // cache lifetime of fetched documents
	Attempts int           `toml:"attempts"` // fetch attempts for transient failures
}

// CacheConfig selects the cache backend for fetched sources.
type CacheConfig struct {
	Backend         string `toml:"backend"` // none, file, redis, mongo
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServeConfig configures the HTTP host.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Defaults.
const (
	appName = "fadegraph"

	DefaultFPS       = engine.DefaultFPS
	DefaultAddr      = ":8080"
	DefaultSourceTTL = time.Hour
	DefaultAttempts  = 3
)

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every zero value with its default.
func (c *Config) SetDefaults() {
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = engine.DefaultViewport.Width
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = engine.DefaultViewport.Height
	}
	if c.Controls.Gravity == 0 {
		c.Controls.Gravity = engine.DefaultGravity
	}
	if c.Controls.Rejection == 0 {
		c.Controls.Rejection = engine.DefaultRejection
	}
	if c.Controls.NodeSize == 0 {
		c.Controls.NodeSize = engine.DefaultNodeSize
	}
	if c.Animation.FPS == 0 {
		c.Animation.FPS = DefaultFPS
	}
	if c.Source.TTL == 0 {
		c.Source.TTL = DefaultSourceTTL
	}
	if c.Source.Attempts == 0 {
		c.Source.Attempts = DefaultAttempts
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.Backend == cache.BackendFile && c.Cache.Dir == "" {
		c.Cache.Dir = DefaultCacheDir()
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}
}

// Validate checks value ranges. Errors carry code INVALID_CONFIG.
func (c *Config) Validate() error {
	var problems []string
	if c.Controls.Gravity <= 0 {
		problems = append(problems, "controls.gravity must be positive")
	}
	if c.Controls.Rejection < 0 {
		problems = append(problems, "controls.rejection must not be negative")
	}
	if c.Controls.NodeSize <= 0 {
		problems = append(problems, "controls.node_size must be positive")
	}
	if c.Animation.FPS < 1 || c.Animation.FPS > 240 {
		problems = append(problems, "animation.fps must be between 1 and 240")
	}
	if c.Source.Attempts < 1 {
		problems = append(problems, "source.attempts must be at least 1")
	}
	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile, cache.BackendRedis, cache.BackendMongo:
	default:
		problems = append(problems, fmt.Sprintf("cache.backend %q is not one of none, file, redis, mongo", c.Cache.Backend))
	}
	if _, err := scene.DefaultPalette().Merge(c.Palette); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}

// ViewportSize returns the configured viewport.
func (c *Config) ViewportSize() scene.Viewport {
	return scene.Viewport{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

// PaletteWithOverrides returns the default palette merged with [palette].
func (c *Config) PaletteWithOverrides() (scene.Palette, error) {
	return scene.DefaultPalette().Merge(c.Palette)
}

// CacheOptions converts the [cache] section for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   appName + ":",
		},
		Mongo: cache.MongoConfig{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
	}
}

// Load reads path, applies defaults and validates. Unknown keys are an error
// so that typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is non-empty, otherwise returns Default().
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// DefaultCacheDir returns the cache directory using the XDG convention
// ($XDG_CACHE_HOME/fadegraph, falling back to ~/.cache/fadegraph).
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}
