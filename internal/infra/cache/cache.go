// Package cache provides the shared key-value cache used for candidate ID
// lists, trending lists, profile vectors, ranker artifacts, and serialized
// item summaries. The cache is a performance optimization only: every cached
// value is a pure function of its key's inputs, rebuilds are idempotent, and
// callers must compute directly when the cache is unavailable.
package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

// Cache is the minimal contract shared by all backends. A miss and a backend
// failure are indistinguishable to callers; both simply trigger a rebuild.
// Set failures are swallowed for the same reason.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	GetMany(ctx context.Context, keys []string) map[string][]byte
	SetMany(ctx context.Context, items map[string][]byte, ttl time.Duration)
}

// GetJSON reads key and unmarshals it into dest. Returns false on miss or on
// a corrupt entry (which callers treat exactly like a miss).
func GetJSON(ctx context.Context, c Cache, key string, dest any) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// SetJSON marshals value and stores it under key. Marshal failures are
// dropped; the entry will be rebuilt on the next read.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(ctx, key, raw, ttl)
}

// fills collapses concurrent misses on the same key into one build. Global
// candidate lists expire together across all in-flight serves; without the
// group every serve would hit the catalog at once on expiry.
var fills singleflight.Group

// GetOrBuildIDs implements the cache-aside pattern for the planner's ID
// lists: read key, or build, store, and return. Concurrent misses on one key
// share a single build; latecomers receive the winner's result, built under
// the winner's context. Build errors propagate so the caller can drop the
// affected row without caching an empty list.
func GetOrBuildIDs(ctx context.Context, c Cache, key string, ttl time.Duration, build func(context.Context) ([]int64, error)) ([]int64, error) {
	var ids []int64
	if GetJSON(ctx, c, key, &ids) && len(ids) > 0 {
		return ids, nil
	}
	v, err, _ := fills.Do(key, func() (interface{}, error) {
		// Re-check: the previous holder may have filled the key already.
		var ids []int64
		if GetJSON(ctx, c, key, &ids) && len(ids) > 0 {
			return ids, nil
		}
		ids, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			SetJSON(ctx, c, key, ids, ttl)
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]int64), nil
}
