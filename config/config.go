// Package config loads the minting service configuration from YAML and the
// environment, and builds the pieces a process needs from it: the logger and
// the counter store.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/waldmeta/mint"
	"github.com/waldmeta/mint/counter"
	"github.com/waldmeta/mint/counter/etcdstore"
)

// FileName is the configuration file name searched for by Find.
const FileName = "mint.yaml"

// Store backends.
const (
	BackendRedis  = "redis"
	BackendEtcd   = "etcd"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

var backends = []string{BackendRedis, BackendEtcd, BackendBadger, BackendMemory}

// Config is the complete service configuration.
type Config struct {
	Mint   mint.Config  `yaml:"mint"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// StoreConfig selects and configures the counter store.
type StoreConfig struct {
	// Backend is one of "redis", "etcd", "badger" or "memory".
	// Default: "redis"
	Backend string `yaml:"backend"`

	Redis  RedisConfig      `yaml:"redis"`
	Etcd   etcdstore.Config `yaml:"etcd"`
	Badger BadgerConfig     `yaml:"badger"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379/0")
	URL string `yaml:"url"`

	// KeyPrefix is prepended to every counter key
	KeyPrefix string `yaml:"keyPrefix,omitempty"`

	TLS counter.TLSConfig `yaml:"tls,omitempty"`

	ConnectTimeout time.Duration `yaml:"connectTimeout,omitempty"`
	ReadTimeout    time.Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout   time.Duration `yaml:"writeTimeout,omitempty"`
}

// BadgerConfig configures the embedded Badger backend.
type BadgerConfig struct {
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"inMemory,omitempty"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// AllowReset enables the counter reset endpoint. Resetting a counter
	// below its current value makes the minter hand out duplicates.
	AllowReset bool `yaml:"allowReset,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults. The mint section has
// no defaults for the namespace; it must come from a file.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendRedis,
			Redis: RedisConfig{
				URL: "redis://127.0.0.1:6379",
			},
			Etcd: etcdstore.Config{
				Endpoints:   []string{"localhost:2379"},
				Namespace:   etcdstore.DefaultNamespace,
				DialTimeout: 5 * time.Second,
			},
			Badger: BadgerConfig{
				Dir: "data/counters",
			},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Mint.Validate(); err != nil {
		return err
	}

	if !slices.Contains(backends, c.Store.Backend) {
		return fmt.Errorf("%w: store.backend must be one of %v, got %q", mint.ErrInvalidConfig, backends, c.Store.Backend)
	}

	switch c.Store.Backend {
	case BackendRedis:
		if err := c.Store.Redis.TLS.Validate(); err != nil {
			return fmt.Errorf("%w: store.redis.tls: %v", mint.ErrInvalidConfig, err)
		}
	case BackendEtcd:
		if len(c.Store.Etcd.Endpoints) == 0 {
			return fmt.Errorf("%w: store.etcd.endpoints is required", mint.ErrInvalidConfig)
		}
		if err := c.Store.Etcd.TLS.Validate(); err != nil {
			return fmt.Errorf("%w: store.etcd.tls: %v", mint.ErrInvalidConfig, err)
		}
	case BackendBadger:
		if c.Store.Badger.Dir == "" && !c.Store.Badger.InMemory {
			return fmt.Errorf("%w: store.badger.dir is required", mint.ErrInvalidConfig)
		}
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", mint.ErrInvalidConfig, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log.format must be text or json, got %q", mint.ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Find searches for FileName starting from dir and walking up to parent
// directories until found or the root is reached.
func Find(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		path := filepath.Join(absDir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return "", fmt.Errorf("no %s found in %s or parent directories", FileName, dir)
		}
		absDir = parent
	}
}
