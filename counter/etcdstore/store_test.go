package etcdstore

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldmeta/mint/counter"
)

func TestNew_Validation(t *testing.T) {
	t.Run("empty endpoints", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "endpoints cannot be empty")
	})

	t.Run("incomplete TLS", func(t *testing.T) {
		_, err := New(Config{
			Endpoints: []string{"localhost:2379"},
			TLS:       &counter.TLSConfig{Enabled: true},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to configure TLS")
	})
}

func TestKey(t *testing.T) {
	tests := []struct {
		namespace string
		want      string
	}{
		{"", "/mint/https://x/song"},
		{"ids", "/ids/https://x/song"},
		{"/ids/", "/ids/https://x/song"},
	}

	for _, tt := range tests {
		t.Run(tt.namespace, func(t *testing.T) {
			s := &Store{namespace: normalizeNamespace(tt.namespace)}
			assert.Equal(t, tt.want, s.Key("https://x/song"))
		})
	}
}

// TestStore_Live runs against a real cluster when MINT_ETCD_ENDPOINTS is set.
func TestStore_Live(t *testing.T) {
	endpoints := os.Getenv("MINT_ETCD_ENDPOINTS")
	if endpoints == "" {
		t.Skip("MINT_ETCD_ENDPOINTS not set")
	}

	store, err := New(Config{
		Endpoints:   strings.Split(endpoints, ","),
		Namespace:   "mint-test-" + uuid.NewString(),
		DialTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, store.Ping(ctx))

	v, err := store.Increment(ctx, "song")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	require.NoError(t, store.Set(ctx, "bnode", "18446744073709551615"))
	v, err = store.Increment(ctx, "bnode")
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551616", v)

	assert.ErrorIs(t, store.Set(ctx, "bnode", "x"), counter.ErrInvalidValue)
}
