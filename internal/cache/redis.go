package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yourorg/salesdash/internal/config"
)

// RedisStore is a Store backed by Redis. All keys live under prefix.
type RedisStore struct {
	client *redis.Client
	prefix string

	hits   atomic.Uint64
	misses atomic.Uint64
	errs   atomic.Uint64
}

// Stats is a snapshot of RedisStore counters.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Errors uint64 `json:"errors"`
}

// NewRedisClient builds a client from REDIS_* settings.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.misses.Add(1)
			return false, nil
		}
		r.errs.Add(1)
		return false, fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		r.errs.Add(1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	r.hits.Add(1)
	return true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		r.errs.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		r.errs.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix using SCAN, so it
// never blocks Redis the way KEYS would.
func (r *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	pattern := r.prefix + prefix + "*"

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			r.errs.Add(1)
			return fmt.Errorf("cache scan error: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				r.errs.Add(1)
				return fmt.Errorf("cache delete error: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (r *RedisStore) Stats() Stats {
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load(), Errors: r.errs.Load()}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
