package counter

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/waldmeta/mint/bigint"
)

// Sentinel errors returned by counter stores.
var (
	// ErrUnavailable indicates the store round trip failed. The increment may
	// or may not have been applied remotely.
	ErrUnavailable = errors.New("counter store unavailable")

	// ErrOverflow indicates the backend cannot represent the next value.
	ErrOverflow = errors.New("counter overflow")

	// ErrInvalidValue indicates a stored or supplied value is not a
	// non-negative decimal integer.
	ErrInvalidValue = errors.New("invalid counter value")
)

var one = big.NewInt(1)

// Store is an atomic per-key counter.
type Store interface {
	// Increment atomically adds one to the value at key, treating a missing
	// key as zero, and returns the new value in decimal.
	Increment(ctx context.Context, key string) (string, error)

	// Set overwrites the value at key. It is not ordered with respect to
	// concurrent increments on the same key.
	Set(ctx context.Context, key, value string) error

	// Close releases the store's connection or handle.
	Close() error
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Next returns current+1 in canonical decimal. An empty current value is zero.
func Next(current string) (string, error) {
	if current == "" {
		return "1", nil
	}

	v, err := bigint.ParseDec(current)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidValue, current)
	}
	return v.Add(v, one).String(), nil
}

// Canonical validates value and returns its canonical decimal form.
func Canonical(value string) (string, error) {
	v, err := bigint.ParseDec(value)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidValue, value)
	}
	return v.String(), nil
}
