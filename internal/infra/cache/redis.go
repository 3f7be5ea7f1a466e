package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/antoinerimano/Netflix/internal/resilience/circuitbreaker"
)

// Redis is a Cache backed by a shared Redis instance, safe for concurrent use
// from multiple in-flight requests. All operations run through a circuit
// breaker: when Redis is unreachable the breaker opens and every call becomes
// an immediate miss, so callers fall back to direct computation instead of
// stacking up timeouts.
type Redis struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewRedis creates a Redis cache from an address ("host:port").
func NewRedis(addr string, logger *slog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	return &Redis{
		client:  client,
		breaker: circuitbreaker.New(circuitbreaker.CacheConfig(), logger),
		logger:  logger,
	}
}

// Get returns the value for key, or (nil, false) on miss, error, or open breaker.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		raw, err := r.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		r.logger.Debug("cache get degraded", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	raw, ok := result.([]byte)
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

// Set stores value under key with the given TTL. Failures are logged and
// dropped: the cache is never a correctness dependency.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.client.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		r.logger.Debug("cache set degraded", slog.String("key", key), slog.Any("error", err))
	}
}

// GetMany fetches all keys with a single MGET.
func (r *Redis) GetMany(ctx context.Context, keys []string) map[string][]byte {
	if len(keys) == 0 {
		return map[string][]byte{}
	}
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.MGet(ctx, keys...).Result()
	})
	if err != nil {
		r.logger.Debug("cache mget degraded", slog.Int("keys", len(keys)), slog.Any("error", err))
		return map[string][]byte{}
	}
	values, ok := result.([]interface{})
	if !ok {
		return map[string][]byte{}
	}
	found := make(map[string][]byte, len(keys))
	for i, v := range values {
		if i >= len(keys) || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			found[keys[i]] = []byte(s)
		}
	}
	return found
}

// SetMany stores all items with a single pipeline round trip.
func (r *Redis) SetMany(ctx context.Context, items map[string][]byte, ttl time.Duration) {
	if len(items) == 0 {
		return
	}
	_, err := r.breaker.Execute(func() (interface{}, error) {
		pipe := r.client.Pipeline()
		for key, value := range items {
			pipe.Set(ctx, key, value, ttl)
		}
		_, err := pipe.Exec(ctx)
		return nil, err
	})
	if err != nil {
		r.logger.Debug("cache pipeline set degraded", slog.Int("items", len(items)), slog.Any("error", err))
	}
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
