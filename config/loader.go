package config

import (
	"cmp"
	"fmt"
	"os"
	"strings"
)

// Environment variables read by Loader.
const (
	EnvConfig        = "MINT_CONFIG"
	EnvRedisURL      = "MINT_REDIS_URL"
	EnvLegacyRedis   = "WALD_MINT_REDIS" // read when EnvRedisURL is unset
	EnvStoreBackend  = "MINT_STORE_BACKEND"
	EnvEtcdEndpoints = "MINT_ETCD_ENDPOINTS"
	EnvBadgerDir     = "MINT_BADGER_DIR"
	EnvHTTPAddr      = "MINT_HTTP_ADDR"
	EnvLogLevel      = "MINT_LOG_LEVEL"
)

// Loader builds a Config with precedence defaults, then file, then
// environment.
type Loader struct {
	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// Dir is where the file search starts when no path is given.
	// Defaults to the working directory.
	Dir string
}

// Load reads the configuration at path. With an empty path it uses
// MINT_CONFIG, or else searches for mint.yaml from Dir upwards; if no file is
// found the defaults are used. The result is validated.
func (l *Loader) Load(path string) (*Config, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if path == "" {
		path = getenv(EnvConfig)
	}
	if path == "" {
		dir := l.Dir
		if dir == "" {
			dir = "."
		}
		if found, err := Find(dir); err == nil {
			path = found
		}
	}

	cfg := DefaultConfig()
	if path != "" {
		var err error
		cfg, err = LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnv(cfg, getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", describe(path), err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := cmp.Or(getenv(EnvRedisURL), getenv(EnvLegacyRedis)); v != "" {
		cfg.Store.Redis.URL = v
	}
	if v := getenv(EnvStoreBackend); v != "" {
		cfg.Store.Backend = strings.ToLower(v)
	}
	if v := getenv(EnvEtcdEndpoints); v != "" {
		var endpoints []string
		for _, ep := range strings.Split(v, ",") {
			if ep = strings.TrimSpace(ep); ep != "" {
				endpoints = append(endpoints, ep)
			}
		}
		cfg.Store.Etcd.Endpoints = endpoints
	}
	if v := getenv(EnvBadgerDir); v != "" {
		cfg.Store.Badger.Dir = v
	}
	if v := getenv(EnvHTTPAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

func describe(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}
