package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "recipebox:cache:"

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// RedisStore shares cached entries between processes. Entries are stored as
// JSON envelopes so the stored time survives the round trip.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	res, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(res, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Set stores the entry. Redis drops it after twice the ttl so stale keys
// do not pile up.
func (r *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	b, err := json.Marshal(Entry{Data: data, StoredAt: time.Now()})
	if err != nil {
		return err
	}
	var exp time.Duration
	if ttl > 0 {
		exp = 2 * ttl
	}
	return r.rdb.Set(ctx, r.prefix+key, b, exp).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}

// Clear removes every key under the prefix.
func (r *RedisStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
