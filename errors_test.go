package mint

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldmeta/mint/bigint"
	"github.com/waldmeta/mint/counter"
)

func TestSentinelErrors(t *testing.T) {
	assert.Same(t, bigint.ErrInvalidEncoding, ErrInvalidEncoding)
	assert.Same(t, counter.ErrUnavailable, ErrStoreUnavailable)
	assert.Equal(t, "unknown entity", ErrUnknownEntity.Error())
	assert.Equal(t, "invalid configuration", ErrInvalidConfig.Error())
}

func TestErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "no underlying error",
			err:  &Error{Op: "Minter.NewEntity", Kind: KindStore},
			want: "mint: Minter.NewEntity: store",
		},
		{
			name: "with entity",
			err:  &Error{Op: "Minter.NewEntity", Kind: KindNotFound, Entity: "album", Err: ErrUnknownEntity},
			want: "mint: Minter.NewEntity (not_found) [entity: album]: unknown entity",
		},
		{
			name: "without entity",
			err:  &Error{Op: "Minter.Parse", Kind: KindValidation, Err: ErrInvalidEncoding},
			want: "mint: Minter.Parse (validation): invalid encoding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorIs(t *testing.T) {
	storeErr := fmt.Errorf("%w: dial tcp: connection refused", counter.ErrUnavailable)
	err := newError("Minter.NewEntity", KindStore, "song", storeErr)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, &Error{Kind: KindStore})
	assert.ErrorIs(t, err, &Error{Op: "Minter.NewEntity", Kind: KindStore})
	assert.NotErrorIs(t, err, &Error{Op: "Minter.Reset", Kind: KindStore})
	assert.NotErrorIs(t, err, &Error{Kind: KindValidation})
	assert.NotErrorIs(t, err, ErrUnknownEntity)
	assert.False(t, err.Is(nil))
}

func TestErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("serve: %w", newError("Minter.BNode", KindStore, "bnode", ErrStoreUnavailable))

	var merr *Error
	require.True(t, errors.As(wrapped, &merr))
	assert.Equal(t, "Minter.BNode", merr.Op)
	assert.Equal(t, "bnode", merr.Entity)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, kindOf(fmt.Errorf("%w: %q", counter.ErrInvalidValue, "abc")))
	assert.Equal(t, KindValidation, kindOf(ErrInvalidEncoding))
	assert.Equal(t, KindOverflow, kindOf(fmt.Errorf("%w: at max", counter.ErrOverflow)))
	assert.Equal(t, KindStore, kindOf(errors.New("boom")))
}
