package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed entry store, useful when several instances
// of an application should share one translation cache. Entries are
// JSON-encoded; the logical freshness timestamp lives inside the entry,
// but an optional hard TTL can additionally expire keys on the Redis side.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g. "redis://localhost:6379")
	TTL       int    // hard key TTL in seconds (0 = keys never expire)
	KeyPrefix string // prefix for all keys (default: "weblate:")
}

// NewRedisStore creates a new Redis store with the given configuration.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis
// client.
func NewRedisStoreFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "weblate:"
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &RedisStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves the entry for a locale key. A missing key or an
// undecodable value counts as a miss.
func (s *RedisStore) Get(key string) (Entry, bool) {
	ctx := context.Background()
	val, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return Entry{}, false
	}
	return entry, true
}

// Set stores the entry for a locale key.
func (s *RedisStore) Set(key string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return s.client.Set(ctx, s.keyPrefix+key, data, s.ttl).Err()
}

// Delete removes the entry for a locale key.
func (s *RedisStore) Delete(key string) error {
	ctx := context.Background()
	return s.client.Del(ctx, s.keyPrefix+key).Err()
}

// Keys returns all stored locale keys, with the prefix stripped.
func (s *RedisStore) Keys() []string {
	ctx := context.Background()

	var keys []string
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(s.keyPrefix):])
	}
	return keys
}

// Clear removes all entries under the key prefix.
func (s *RedisStore) Clear() error {
	ctx := context.Background()

	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping() error {
	ctx := context.Background()
	return s.client.Ping(ctx).Err()
}

// Verify RedisStore implements Store
var _ Store = (*RedisStore)(nil)
