// Package cache memoizes expensive aggregate reads for a short time.
//
// Entries carry the time they were stored and freshness is decided by the
// reader: Remember recomputes a value once it is older than the ttl it was
// asked with. Nothing is evicted in the background and the memory store has
// no size bound. The cache is advisory, every caller stays correct with
// NoopStore.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Keys for the home feed aggregates.
const (
	KeyPopularRecipes    = "popular_recipes"
	KeyRecentRecipes     = "recent_recipes"
	KeyGroupedCategories = "grouped_categories"
	KeyPopularUsers      = "popular_users"
)

// RecipeKeys are invalidated by any recipe write.
var RecipeKeys = []string{KeyPopularRecipes, KeyRecentRecipes, KeyGroupedCategories}

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "recipebox_cache_requests_total",
	Help: "Cache lookups by result (hit, miss, error).",
}, []string{"result"})

// Entry is a stored value and the moment it was stored.
type Entry struct {
	Data     []byte    `json:"data"`
	StoredAt time.Time `json:"stored_at"`
}

// Store is a key/value backend for serialized values.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Set stores data with the current time. ttl is a hint a backend may use
	// to drop the entry on its own; freshness is still checked on read.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Remember returns the value cached under key when it is younger than ttl.
// Otherwise it runs producer, stores the result and returns it. A producer
// error is returned and nothing is stored. Backend errors fall through to
// the producer.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	entry, ok, err := s.Get(ctx, key)
	switch {
	case err != nil:
		requestsTotal.WithLabelValues("error").Inc()
	case ok && time.Since(entry.StoredAt) < ttl:
		var v T
		if err := json.Unmarshal(entry.Data, &v); err == nil {
			requestsTotal.WithLabelValues("hit").Inc()
			return v, nil
		}
		requestsTotal.WithLabelValues("error").Inc()
	default:
		requestsTotal.WithLabelValues("miss").Inc()
	}

	v, err := producer(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if data, err := json.Marshal(v); err == nil {
		if err := s.Set(ctx, key, data, ttl); err != nil {
			requestsTotal.WithLabelValues("error").Inc()
		}
	}
	return v, nil
}

// Clear drops one key, or every key when key is empty.
func Clear(ctx context.Context, s Store, key string) error {
	if key == "" {
		return s.Clear(ctx)
	}
	return s.Delete(ctx, key)
}

// Invalidate drops each of keys, returning the first error.
func Invalidate(ctx context.Context, s Store, keys ...string) error {
	var first error
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// New builds the store named by driver: memory, redis or none.
func New(driver string, rdb *redis.Client) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("cache driver redis needs a redis client")
		}
		return NewRedisStore(rdb, DefaultRedisPrefix), nil
	case "none":
		return NoopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", driver)
	}
}
