package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/agbru/argontune/internal/params"
)

// DefaultKeyPrefix namespaces every key written by RedisStore.
const DefaultKeyPrefix = "argontune"

// RedisStore shares tuned parameters between processes through Redis.
// Timings only transfer between identical machines, so callers pass a host
// fingerprint that becomes part of every key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a store writing keys under prefix:fingerprint:.
func NewRedisStore(client *redis.Client, fingerprint string) *RedisStore {
	return &RedisStore{client: client, prefix: DefaultKeyPrefix + ":" + fingerprint + ":"}
}

var _ Store = (*RedisStore)(nil)

func (r *RedisStore) key(k string) string { return r.prefix + k }

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key string) (params.CostParameters, bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return params.CostParameters{}, false, nil
	}
	if err != nil {
		return params.CostParameters{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var p params.CostParameters
	if err := json.Unmarshal(raw, &p); err != nil {
		return params.CostParameters{}, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return p, true, nil
}

// PutIfAbsent implements Store with SETNX; on a lost race the winning value
// is read back.
func (r *RedisStore) PutIfAbsent(ctx context.Context, key string, p params.CostParameters) (params.CostParameters, bool, error) {
	encoded, err := json.Marshal(p)
	if err != nil {
		return params.CostParameters{}, false, fmt.Errorf("encoding %s: %w", key, err)
	}
	set, err := r.client.SetNX(ctx, r.key(key), encoded, 0).Result()
	if err != nil {
		return params.CostParameters{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if set {
		return p, true, nil
	}
	existing, ok, err := r.Get(ctx, key)
	if err != nil {
		return params.CostParameters{}, false, err
	}
	if !ok {
		return params.CostParameters{}, false, fmt.Errorf("%w: key %s vanished after SETNX", ErrUnavailable, key)
	}
	return existing, false, nil
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
