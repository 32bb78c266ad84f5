package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisKey is the default key used to store the snapshot in Redis.
	DefaultRedisKey = "goleet:catalog"

	// DefaultRedisTTL is the default time-to-live for the stored snapshot
	// (24 hours). This ensures stale data eventually expires if the
	// application stops updating.
	DefaultRedisTTL = 24 * time.Hour
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379" or "redis://:password@host:6379/0")
	URL string

	// Key is the Redis key to store the snapshot (defaults to "goleet:catalog")
	Key string

	// TTL is the time-to-live for the stored snapshot (defaults to 24 hours)
	TTL time.Duration
}

// RedisStore implements Store using Redis. This is suitable for
// multi-instance deployments where every instance should warm up from the
// same artifact. Note that each instance still serves from its own
// in-memory snapshot; Redis is only the bootstrap source.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-based store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = DefaultRedisKey
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultRedisTTL
	}

	slog.Info("redis snapshot store connected", "key", key, "ttl", ttl)

	return &RedisStore{
		client: client,
		key:    key,
		ttl:    ttl,
	}, nil
}

// Load retrieves the snapshot artifact from Redis.
func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot from redis: %w", err)
	}

	return data, nil
}

// Save stores the snapshot artifact in Redis.
func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot in redis: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
