package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "capo.yml"

// Store backends
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// StoreConfig selects and configures the song store
type StoreConfig struct {
	Backend    string `yaml:"backend,omitempty"`     // "redis" (default) or "sqlite"
	RedisURL   string `yaml:"redis_url,omitempty"`   // e.g. redis://localhost:6379/0
	Namespace  string `yaml:"namespace,omitempty"`   // Key namespace for the redis backend
	SQLitePath string `yaml:"sqlite_path,omitempty"` // Database file for the sqlite backend
}

// DisplayConfig controls chord sheet output
type DisplayConfig struct {
	Color      *bool `yaml:"color,omitempty"`       // Colour the chord rail (default true)
	ShowArtist *bool `yaml:"show_artist,omitempty"` // Print the artist under the title (default true)
}

// CapoConfig represents the top-level capo.yml configuration
type CapoConfig struct {
	Version string        `yaml:"version"`
	Store   StoreConfig   `yaml:"store"`
	Display DisplayConfig `yaml:"display"`
}

// Default returns the configuration used when no capo.yml exists.
func Default() *CapoConfig {
	c := &CapoConfig{Version: "1.0"}
	c.applyDefaults()
	return c
}

// UseColor reports whether the chord rail should be coloured.
func (c *CapoConfig) UseColor() bool {
	return c.Display.Color == nil || *c.Display.Color
}

// ShowArtist reports whether the artist subtitle should be printed.
func (c *CapoConfig) ShowArtist() bool {
	return c.Display.ShowArtist == nil || *c.Display.ShowArtist
}

func (c *CapoConfig) applyDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = BackendRedis
	}
	if c.Store.RedisURL == "" {
		c.Store.RedisURL = "redis://localhost:6379"
	}
	if c.Store.Namespace == "" {
		c.Store.Namespace = "default"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "capo.sqlite3"
	}
}

// applyEnv lets CAPO_REDIS_URL and CAPO_NAMESPACE override the file.
func (c *CapoConfig) applyEnv() {
	if v := os.Getenv("CAPO_REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv("CAPO_NAMESPACE"); v != "" {
		c.Store.Namespace = v
	}
}

// Validate applies defaults and performs strict validation on the configuration
func (c *CapoConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	c.applyDefaults()

	switch c.Store.Backend {
	case BackendRedis:
		if _, err := redis.ParseURL(c.Store.RedisURL); err != nil {
			return fmt.Errorf("store.redis_url is invalid: %w", err)
		}
	case BackendSQLite:
	default:
		return fmt.Errorf("invalid store.backend: %s (must be '%s' or '%s')", c.Store.Backend, BackendRedis, BackendSQLite)
	}

	for _, r := range c.Store.Namespace {
		if r == ':' || r == '*' || r == ' ' {
			return fmt.Errorf("store.namespace must not contain ':', '*' or spaces: %q", c.Store.Namespace)
		}
	}

	return nil
}

// Load reads and validates capo.yml from the specified path
func Load(path string) (*CapoConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config CapoConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path, falling back to Default() when path is the
// default location and no file exists there.
func LoadOrDefault(path string) (*CapoConfig, error) {
	config, err := Load(path)
	if err == nil {
		return config, nil
	}
	if path == DefaultPath && errors.Is(err, fs.ErrNotExist) {
		config = Default()
		config.applyEnv()
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return config, nil
	}
	return nil, err
}
