package redisstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldmeta/mint/counter"
)

// setupTestStore creates a miniredis instance and returns a connected Store.
func setupTestStore(t *testing.T, prefix string) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := New(Options{
		URL:            fmt.Sprintf("redis://%s", mr.Addr()),
		KeyPrefix:      prefix,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store, mr
}

func TestNew(t *testing.T) {
	t.Run("successful connection", func(t *testing.T) {
		mr := miniredis.RunT(t)

		store, err := New(Options{URL: fmt.Sprintf("redis://%s", mr.Addr())})
		require.NoError(t, err)
		require.NotNil(t, store)
		defer store.Close()

		assert.Equal(t, mr.Addr(), store.Addr())
	})

	t.Run("connection failure", func(t *testing.T) {
		_, err := New(Options{
			URL:            "redis://127.0.0.1:1",
			ConnectTimeout: 100 * time.Millisecond,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := New(Options{URL: "invalid://url"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse Redis URL")
	})
}

func TestIncrement(t *testing.T) {
	ctx := context.Background()

	t.Run("starts at one and is monotonic", func(t *testing.T) {
		store, _ := setupTestStore(t, "")

		for want := 1; want <= 3; want++ {
			got, err := store.Increment(ctx, "https://x/artist")
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprint(want), got)
		}
	})

	t.Run("key prefix is applied", func(t *testing.T) {
		store, mr := setupTestStore(t, "https://test.waldmeta.org/")

		_, err := store.Increment(ctx, "mint/song")
		require.NoError(t, err)

		v, err := mr.Get("https://test.waldmeta.org/mint/song")
		require.NoError(t, err)
		assert.Equal(t, "1", v)
		assert.False(t, mr.Exists("mint/song"))
	})

	t.Run("int64 maximum is reachable", func(t *testing.T) {
		store, _ := setupTestStore(t, "")
		require.NoError(t, store.Set(ctx, "k", "9223372036854775806"))

		got, err := store.Increment(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "9223372036854775807", got)
	})

	t.Run("overflow past int64", func(t *testing.T) {
		store, _ := setupTestStore(t, "")
		require.NoError(t, store.Set(ctx, "k", "9223372036854775807"))

		_, err := store.Increment(ctx, "k")
		require.Error(t, err)
		assert.ErrorIs(t, err, counter.ErrOverflow)
	})

	t.Run("non-integer stored value", func(t *testing.T) {
		store, mr := setupTestStore(t, "")
		require.NoError(t, mr.Set("k", "not-a-number"))

		_, err := store.Increment(ctx, "k")
		require.Error(t, err)
		assert.ErrorIs(t, err, counter.ErrInvalidValue)
	})

	t.Run("server gone", func(t *testing.T) {
		store, mr := setupTestStore(t, "")
		mr.Close()

		_, err := store.Increment(ctx, "k")
		require.Error(t, err)
		assert.ErrorIs(t, err, counter.ErrUnavailable)
	})

	t.Run("concurrent increments are unique", func(t *testing.T) {
		store, _ := setupTestStore(t, "")

		var mu sync.Mutex
		seen := make(map[string]bool)
		var wg sync.WaitGroup
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					v, err := store.Increment(ctx, "shared")
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					assert.False(t, seen[v], "duplicate %s", v)
					seen[v] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 200)
	})
}

func TestSet(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestStore(t, "p:")

	require.NoError(t, store.Set(ctx, "k", "0042"))
	v, err := mr.Get("p:k")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	assert.ErrorIs(t, store.Set(ctx, "k", "-1"), counter.ErrInvalidValue)
	assert.ErrorIs(t, store.Set(ctx, "k", "9223372036854775808"), counter.ErrOverflow)
}

func TestPing(t *testing.T) {
	store, mr := setupTestStore(t, "")
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.ErrorIs(t, store.Ping(context.Background()), counter.ErrUnavailable)
}
