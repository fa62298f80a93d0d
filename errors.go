package mint

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/waldmeta/mint/bigint"
	"github.com/waldmeta/mint/counter"
)

// Sentinel errors for minting. Use errors.Is to test for them; the errors
// returned by Minter methods are *Error values wrapping one of these.
var (
	// ErrInvalidEncoding indicates a decimal, hex or compact string could not
	// be parsed.
	ErrInvalidEncoding = bigint.ErrInvalidEncoding

	// ErrUnknownEntity indicates the entity kind (or code prefix) is not
	// configured.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrStoreUnavailable indicates the counter store round trip failed.
	ErrStoreUnavailable = counter.ErrUnavailable

	// ErrInvalidConfig indicates the configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error kinds categorize errors by their type.
const (
	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindNotFound represents errors where an entity kind or prefix is not configured.
	KindNotFound = "not_found"

	// KindStore represents errors returned by the counter store.
	KindStore = "store"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindOverflow represents a counter that has reached the largest value
	// its backend can hold. Retrying does not help.
	KindOverflow = "overflow"
)

// Error wraps an underlying error with the operation that failed, the
// category of failure and the entity kind involved.
//
// Example usage:
//
//	var merr *mint.Error
//	if errors.As(err, &merr) && merr.Kind == mint.KindStore {
//		// back off and try again later
//	}
type Error struct {
	// Op is the operation that failed (e.g., "Minter.NewEntity").
	Op string

	// Kind categorizes the error (e.g., KindNotFound, KindStore).
	Kind string

	// Entity is the entity kind involved, if any.
	Entity string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("mint: %s: %s", e.Op, e.Kind)
	}

	if e.Entity != "" {
		return fmt.Sprintf("mint: %s (%s) [entity: %s]: %v", e.Op, e.Kind, e.Entity, e.Err)
	}

	return fmt.Sprintf("mint: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a target *Error by Kind (and Op, when the target sets one) and
// otherwise delegates to the underlying error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

func newError(op, kind, entity string, err error) *Error {
	return &Error{Op: op, Kind: kind, Entity: entity, Err: err}
}

// kindOf picks an error kind for a store failure.
func kindOf(err error) string {
	switch {
	case errors.Is(err, counter.ErrInvalidValue), errors.Is(err, ErrInvalidEncoding):
		return KindValidation
	case errors.Is(err, counter.ErrOverflow):
		return KindOverflow
	default:
		return KindStore
	}
}

// CloseWithLog closes the resource and logs any error at warning level.
// If logger is nil, slog.Default() is used.
//
//	defer mint.CloseWithLog(store, logger, "counter store")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
