package dedup

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisKey is the Redis set that holds seen URLs.
const DefaultRedisKey = "spider_urls"

// RedisOptions configures a Redis filter.
type RedisOptions struct {
	// Addr is the server address (host:port).
	Addr string

	// Password is the optional AUTH password.
	Password string

	// DB is the database index.
	DB int

	// Key is the set name. Defaults to DefaultRedisKey.
	Key string
}

// Redis is a Filter backed by a Redis set, shared between processes.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	key := opts.Key
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}, nil
}

// Seen reports whether url is a member of the set.
func (r *Redis) Seen(ctx context.Context, url string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.key, url).Result()
	if err != nil {
		return false, fmt.Errorf("redis SISMEMBER %s: %w", r.key, err)
	}
	return ok, nil
}

// MarkSeen adds url to the set.
func (r *Redis) MarkSeen(ctx context.Context, url string) error {
	if err := r.client.SAdd(ctx, r.key, url).Err(); err != nil {
		return fmt.Errorf("redis SADD %s: %w", r.key, err)
	}
	return nil
}

// Close closes the Redis connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
