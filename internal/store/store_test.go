package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/argontune/internal/params"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testParams(memoryCost uint32) params.CostParameters {
	p := params.DefaultParameters(params.Argon2id)
	p.MemoryCost = memoryCost
	return p
}

// stores returns a fresh instance of every implementation.
func stores(t *testing.T) map[string]Store {
	_, client := newTestRedis(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client, "test-host"),
	}
}

func TestStoreFirstWriterWins(t *testing.T) {
	t.Parallel()
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.Get(ctx, "100ms")
			require.NoError(t, err)
			assert.False(t, ok)

			got, stored, err := s.PutIfAbsent(ctx, "100ms", testParams(16))
			require.NoError(t, err)
			assert.True(t, stored)
			assert.Equal(t, testParams(16), got)

			got, stored, err = s.PutIfAbsent(ctx, "100ms", testParams(18))
			require.NoError(t, err)
			assert.False(t, stored)
			assert.Equal(t, testParams(16), got, "second writer must observe the first value")

			got, ok, err = s.Get(ctx, "100ms")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, testParams(16), got)

			_, ok, err = s.Get(ctx, "200ms")
			require.NoError(t, err)
			assert.False(t, ok, "keys are independent")
		})
	}
}

func TestStoreConcurrentWriters(t *testing.T) {
	t.Parallel()
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const writers = 16

			var wg sync.WaitGroup
			results := make([]params.CostParameters, writers)
			wins := make([]bool, writers)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					p, stored, err := s.PutIfAbsent(ctx, "race", testParams(uint32(10+i)))
					assert.NoError(t, err)
					results[i], wins[i] = p, stored
				}(i)
			}
			wg.Wait()

			winners := 0
			for i := range results {
				if wins[i] {
					winners++
				}
				assert.Equal(t, results[0], results[i], "writer %d saw a different value", i)
			}
			assert.Equal(t, 1, winners)
		})
	}
}

func TestMemoryStoreLen(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	for i := 0; i < 3; i++ {
		_, _, err := s.PutIfAbsent(context.Background(), fmt.Sprintf("k%d", i), testParams(12))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, s.Len())
}

func TestRedisStoreKeyLayout(t *testing.T) {
	t.Parallel()
	mr, client := newTestRedis(t)
	s := NewRedisStore(client, "linux-amd64-8")

	_, _, err := s.PutIfAbsent(context.Background(), "100ms:closest-match:max-cost", testParams(14))
	require.NoError(t, err)

	raw, err := mr.Get("argontune:linux-amd64-8:100ms:closest-match:max-cost")
	require.NoError(t, err)
	assert.Contains(t, raw, `"variant":"argon2id"`)
	assert.Contains(t, raw, `"memoryCost":14`)

	other := NewRedisStore(client, "darwin-arm64-10")
	_, ok, err := other.Get(context.Background(), "100ms:closest-match:max-cost")
	require.NoError(t, err)
	assert.False(t, ok, "fingerprints must not share entries")
}

func TestRedisStoreCorruptValue(t *testing.T) {
	t.Parallel()
	mr, client := newTestRedis(t)
	s := NewRedisStore(client, "h")
	require.NoError(t, mr.Set("argontune:h:bad", "{not json"))

	_, _, err := s.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestRedisStoreUnavailable(t *testing.T) {
	t.Parallel()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client, "h")
	mr.Close()

	_, _, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, _, err = s.PutIfAbsent(context.Background(), "k", testParams(12))
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, s.Ping(context.Background()), ErrUnavailable)
}
