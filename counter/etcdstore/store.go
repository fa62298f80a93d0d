// Package etcdstore implements counter.Store on an etcd v3 cluster.
//
// Counters are stored as decimal strings under /{namespace}/{key}. An
// increment reads the current value and writes value+1 in a transaction that
// only commits if the key's ModRevision is unchanged, so concurrent writers
// never observe the same value. Because the arithmetic happens client side,
// counters are not limited to 64 bits.
package etcdstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc"

	"github.com/waldmeta/mint/counter"
)

// DefaultNamespace is used when Config.Namespace is empty.
const DefaultNamespace = "mint"

// Config holds etcd connection configuration.
type Config struct {
	// Endpoints is the list of etcd endpoints
	// Format: ["host1:2379", "host2:2379"]
	Endpoints []string `yaml:"endpoints" json:"endpoints"`

	// Namespace is the key prefix for all counters
	// Default: "mint"
	Namespace string `yaml:"namespace" json:"namespace"`

	// DialTimeout bounds connection establishment
	// Default: 5 seconds
	DialTimeout time.Duration `yaml:"dialTimeout" json:"dial_timeout"`

	// TLS holds certificate configuration; nil disables TLS
	TLS *counter.TLSConfig `yaml:"tls" json:"tls"`
}

// Store implements counter.Store with compare-and-swap transactions.
//
// Thread-safety: All methods are safe for concurrent use.
type Store struct {
	client    *clientv3.Client
	namespace string
}

var (
	_ counter.Store  = (*Store)(nil)
	_ counter.Pinger = (*Store)(nil)
)

// New connects to the cluster. The dial blocks until a connection is up or
// DialTimeout passes, so an unreachable cluster fails here rather than on the
// first increment.
func New(cfg Config) (*Store, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints cannot be empty")
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
		DialOptions: []grpc.DialOption{grpc.WithBlock()},
	}

	tlsConfig, err := cfg.TLS.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}
	clientCfg.TLS = tlsConfig

	cli, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	return NewFromClient(cli, cfg.Namespace), nil
}

// NewFromClient wraps an existing client. The Store takes ownership and
// closes it on Close.
func NewFromClient(cli *clientv3.Client, namespace string) *Store {
	return &Store{client: cli, namespace: normalizeNamespace(namespace)}
}

// Increment implements counter.Store.
//
// A lost compare-and-swap is retried: nothing was written, so no value was
// consumed. A transport error is returned as is, since the put may have
// committed.
func (s *Store) Increment(ctx context.Context, key string) (string, error) {
	k := s.Key(key)

	for {
		resp, err := s.client.Get(ctx, k)
		if err != nil {
			return "", fmt.Errorf("%w: failed to read %s: %w", counter.ErrUnavailable, key, err)
		}

		var current string
		var rev int64
		if len(resp.Kvs) > 0 {
			current = string(resp.Kvs[0].Value)
			rev = resp.Kvs[0].ModRevision
		}

		next, err := counter.Next(current)
		if err != nil {
			return "", fmt.Errorf("failed to increment %s: %w", key, err)
		}

		txn, err := s.client.Txn(ctx).
			If(clientv3.Compare(clientv3.ModRevision(k), "=", rev)).
			Then(clientv3.OpPut(k, next)).
			Commit()
		if err != nil {
			return "", fmt.Errorf("%w: failed to increment %s: %w", counter.ErrUnavailable, key, err)
		}
		if txn.Succeeded {
			return next, nil
		}

		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: failed to increment %s: %w", counter.ErrUnavailable, key, err)
		}
	}
}

// Set implements counter.Store.
func (s *Store) Set(ctx context.Context, key, value string) error {
	canonical, err := counter.Canonical(value)
	if err != nil {
		return err
	}

	if _, err := s.client.Put(ctx, s.Key(key), canonical); err != nil {
		return fmt.Errorf("%w: failed to set %s: %w", counter.ErrUnavailable, key, err)
	}
	return nil
}

// Ping performs a cheap read to confirm the cluster answers.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.Get(ctx, s.Key("health-check")); err != nil {
		return fmt.Errorf("%w: etcd health check failed: %w", counter.ErrUnavailable, err)
	}
	return nil
}

// Close closes the etcd client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Key returns the etcd key a counter key is stored under.
func (s *Store) Key(key string) string {
	return "/" + s.namespace + "/" + key
}

func normalizeNamespace(ns string) string {
	ns = strings.Trim(ns, "/")
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}
