// Package redisstore implements counter.Store on Redis.
//
// Each counter is a plain Redis string incremented with INCR, so values are
// bounded by Redis' signed 64-bit integer range. Keys can be namespaced with a
// prefix to share one Redis database between deployments.
package redisstore

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/waldmeta/mint/bigint"
	"github.com/waldmeta/mint/counter"
)

// DefaultURL is used when Options.URL is empty.
const DefaultURL = "redis://localhost:6379"

// Options configures the Redis connection.
type Options struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379/0")
	URL string

	// KeyPrefix is prepended to every counter key
	KeyPrefix string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// Store implements counter.Store using go-redis/v9.
type Store struct {
	client *redis.Client
	prefix string
}

var (
	_ counter.Store  = (*Store)(nil)
	_ counter.Pinger = (*Store)(nil)
)

// New connects to Redis and verifies the connection with PING.
func New(opts Options) (*Store, error) {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}

	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}

	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if opts.TLS != nil {
		redisOpts.TLSConfig = opts.TLS
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout
	// INCR is not idempotent; a retried command may consume a second value.
	redisOpts.MaxRetries = -1

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client, prefix: opts.KeyPrefix}, nil
}

// Increment runs INCR on the prefixed key.
func (s *Store) Increment(ctx context.Context, key string) (string, error) {
	n, err := s.client.Incr(ctx, s.key(key)).Result()
	if err != nil {
		return "", classify(err, "increment", key)
	}
	return strconv.FormatInt(n, 10), nil
}

// Set overwrites the prefixed key. Values outside the signed 64-bit range are
// rejected because INCR could never advance them.
func (s *Store) Set(ctx context.Context, key, value string) error {
	v, err := bigint.ParseDec(value)
	if err != nil {
		return fmt.Errorf("%w: %q", counter.ErrInvalidValue, value)
	}
	if v.BitLen() > 63 {
		return fmt.Errorf("%w: %s exceeds the Redis integer range", counter.ErrOverflow, value)
	}

	if err := s.client.Set(ctx, s.key(key), v.String(), 0).Err(); err != nil {
		return classify(err, "set", key)
	}
	return nil
}

// Ping checks that the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %w", counter.ErrUnavailable, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Addr returns the host:port the client is configured for.
func (s *Store) Addr() string {
	return s.client.Options().Addr
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

// classify maps Redis replies onto counter errors. Server replies mean the
// command was rejected; anything else is a transport failure.
func classify(err error, op, key string) error {
	var rerr redis.Error
	if errors.As(err, &rerr) && !errors.Is(err, redis.Nil) {
		msg := strings.ToLower(rerr.Error())
		switch {
		case strings.Contains(msg, "overflow"):
			return fmt.Errorf("%w: failed to %s %s: %w", counter.ErrOverflow, op, key, err)
		case strings.Contains(msg, "not an integer"):
			return fmt.Errorf("%w: failed to %s %s: %w", counter.ErrInvalidValue, op, key, err)
		}
	}
	return fmt.Errorf("%w: failed to %s %s: %w", counter.ErrUnavailable, op, key, err)
}
