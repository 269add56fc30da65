package credstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisOpTimeout = 3 * time.Second

// RedisStore keeps credentials in Redis under a per-installation namespace.
// It exists for shared kiosk and agent deployments where several processes
// serve the same signed-in principal.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// RedisConfig holds connection settings for a RedisStore.
type RedisConfig struct {
	URL       string
	Password  string
	DB        int
	Namespace string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB >= 0 {
		opts.DB = cfg.DB
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = redisOpTimeout
	opts.WriteTimeout = redisOpTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "concierge"
	}

	return &RedisStore{client: client, namespace: namespace}, nil
}

// NewRedisStoreWithClient wraps an existing client. Used by tests.
func NewRedisStoreWithClient(client *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = "concierge"
	}
	return &RedisStore{client: client, namespace: namespace}
}

// Get returns the value for key and whether it was present. Backend errors
// report absence.
func (s *RedisStore) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores value under key. Backend errors are swallowed.
func (s *RedisStore) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	_ = s.client.Set(ctx, s.redisKey(key), value, 0).Err()
}

// Remove deletes key. Backend errors are swallowed.
func (s *RedisStore) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	_ = s.client.Del(ctx, s.redisKey(key)).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) redisKey(key string) string {
	return s.namespace + ":" + key
}
