// Package badgerstore implements counter.Store on an embedded Badger database.
//
// It suits single-process deployments that still need counters to survive a
// restart. Increments run in serializable Badger transactions; a transaction
// that loses a conflict is retried because it never committed.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v3"

	"github.com/waldmeta/mint/counter"
)

// Options configures the database.
type Options struct {
	// Dir is the directory holding the database files. Ignored when InMemory is set.
	Dir string

	// InMemory keeps everything in memory; nothing survives Close.
	InMemory bool

	// Logger receives Badger's internal log lines. Defaults to slog.Default().
	Logger *slog.Logger
}

// Store implements counter.Store.
type Store struct {
	db *badger.DB
}

var (
	_ counter.Store  = (*Store)(nil)
	_ counter.Pinger = (*Store)(nil)
)

// Open opens (or creates) the database.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, fmt.Errorf("badger directory is required unless running in memory")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bopts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts = bopts.WithLogger(badgerLogger{logger: logger.With("component", "badger")})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Increment implements counter.Store.
func (s *Store) Increment(ctx context.Context, key string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: failed to increment %s: %w", counter.ErrUnavailable, key, err)
		}

		var next string
		err := s.db.Update(func(txn *badger.Txn) error {
			current, err := readValue(txn, key)
			if err != nil {
				return err
			}
			next, err = counter.Next(current)
			if err != nil {
				return err
			}
			return txn.Set([]byte(key), []byte(next))
		})

		switch {
		case err == nil:
			return next, nil
		case errors.Is(err, badger.ErrConflict):
			continue
		case errors.Is(err, counter.ErrInvalidValue):
			return "", fmt.Errorf("failed to increment %s: %w", key, err)
		default:
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
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: failed to set %s: %w", counter.ErrUnavailable, key, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(canonical))
	})
	if err != nil {
		return fmt.Errorf("%w: failed to set %s: %w", counter.ErrUnavailable, key, err)
	}
	return nil
}

// Get returns the stored value for key, or "" when it has never been set.
func (s *Store) Get(key string) (string, error) {
	var v string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		v, err = readValue(txn, key)
		return err
	})
	return v, err
}

// Ping reports whether the database is still open.
func (s *Store) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("%w: badger database is closed", counter.ErrUnavailable)
	}
	return ctx.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func readValue(txn *badger.Txn, key string) (string, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// badgerLogger implements badger.Logger on slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l badgerLogger) Warningf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l badgerLogger) Infof(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l badgerLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
