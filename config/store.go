package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/waldmeta/mint/counter"
	"github.com/waldmeta/mint/counter/badgerstore"
	"github.com/waldmeta/mint/counter/etcdstore"
	"github.com/waldmeta/mint/counter/redisstore"
)

// OpenStore connects to the configured counter store. Every returned store
// also implements counter.Pinger.
func OpenStore(cfg StoreConfig, logger *slog.Logger) (counter.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "", BackendRedis:
		tlsConfig, err := cfg.Redis.TLS.ClientConfig()
		if err != nil {
			return nil, err
		}
		store, err := redisstore.New(redisstore.Options{
			URL:            cfg.Redis.URL,
			KeyPrefix:      cfg.Redis.KeyPrefix,
			TLS:            tlsConfig,
			ConnectTimeout: cfg.Redis.ConnectTimeout,
			ReadTimeout:    cfg.Redis.ReadTimeout,
			WriteTimeout:   cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("connected to counter store", "backend", BackendRedis, "addr", store.Addr())
		return store, nil

	case BackendEtcd:
		store, err := etcdstore.New(cfg.Etcd)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to counter store", "backend", BackendEtcd, "endpoints", cfg.Etcd.Endpoints)
		return store, nil

	case BackendBadger:
		store, err := badgerstore.Open(badgerstore.Options{
			Dir:      cfg.Badger.Dir,
			InMemory: cfg.Badger.InMemory,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("opened counter store", "backend", BackendBadger, "dir", cfg.Badger.Dir, "in_memory", cfg.Badger.InMemory)
		return store, nil

	case BackendMemory:
		logger.Warn("using in-memory counter store; counters are lost on exit")
		return counter.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Endpoints returns the host:port addresses of a networked backend. Badger
// and memory stores have none.
func (c StoreConfig) Endpoints() ([]string, error) {
	switch c.Backend {
	case "", BackendRedis:
		raw := c.Redis.URL
		if raw == "" {
			raw = redisstore.DefaultURL
		}
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		return []string{opts.Addr}, nil

	case BackendEtcd:
		out := make([]string, 0, len(c.Etcd.Endpoints))
		for _, ep := range c.Etcd.Endpoints {
			if strings.Contains(ep, "://") {
				u, err := url.Parse(ep)
				if err != nil {
					return nil, fmt.Errorf("failed to parse etcd endpoint %q: %w", ep, err)
				}
				ep = u.Host
			}
			out = append(out, ep)
		}
		return out, nil

	default:
		return nil, nil
	}
}
