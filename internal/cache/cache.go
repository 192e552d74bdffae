// Package cache provides the read-through aggregate cache: a key-value store
// with sliding expiration, explicit removal and prefix invalidation.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"chronicle/internal/observability"
)

// Store is the cache abstraction injected into the services. Implementations
// must be safe for concurrent use.
//
// Expiration is sliding: Get resets the entry's window to slide, and an entry
// past its window behaves exactly as a miss. Remove is idempotent; removing a
// missing key is not an error. RemoveByPrefix drops the whole key family
// sharing prefix, which is how unbounded paginated families are invalidated.
type Store interface {
	Get(ctx context.Context, key string, slide time.Duration) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, keys ...string) error
	RemoveByPrefix(ctx context.Context, prefix string) error
}

// Nop is a Store that never hits and never fails. It is used in tests and
// when caching is disabled by configuration.
type Nop struct{}

func (Nop) Get(context.Context, string, time.Duration) ([]byte, bool, error) {
	return nil, false, nil
}
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Remove(context.Context, ...string) error                  { return nil }
func (Nop) RemoveByPrefix(context.Context, string) error             { return nil }

// GetJSON reads key from s and unmarshals it into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, s Store, key string, dest any, slide time.Duration) (bool, error) {
	b, ok, err := s.Get(ctx, key, slide)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, b, ttl)
}

// Aside is the read-through helper: it tries the cache first and on miss
// calls fetch (which must write into dest), then stores the result with ttl.
// Cache failures are absorbed: a broken store degrades to fetching every
// time, it never fails the read itself.
func Aside(ctx context.Context, s Store, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, s, key, dest, ttl)
	if err != nil {
		observability.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	if found {
		observability.CacheHits.WithLabelValues(KeyFamily(key)).Inc()
		return nil
	}
	observability.CacheMisses.WithLabelValues(KeyFamily(key)).Inc()

	if err := fetch(); err != nil {
		return err
	}

	if err := SetJSON(ctx, s, key, dest, ttl); err != nil {
		observability.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}
