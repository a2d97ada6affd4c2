package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient .
type RedisClient struct {
	conn *redis.Client
}

var _ KeyValueDB = &RedisClient{}

// NewRedisClient create a redis client
func NewRedisClient(host string, port int, password string, db int) *RedisClient {
	conn := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})
	return &RedisClient{
		conn: conn,
	}
}

// Set implement KeyValueDB
func (rdb *RedisClient) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return rdb.conn.Set(ctx, key, value, expiration).Err()
}

// Get implement KeyValueDB
func (rdb *RedisClient) Get(ctx context.Context, key string) (string, error) {
	value, err := rdb.conn.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return value, err
}

// Del implement KeyValueDB
func (rdb *RedisClient) Del(ctx context.Context, key string) error {
	return rdb.conn.Del(ctx, key).Err()
}

// Exists implement KeyValueDB
func (rdb *RedisClient) Exists(ctx context.Context, key string) (bool, error) {
	n, err := rdb.conn.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Ping implement KeyValueDB
func (rdb *RedisClient) Ping(ctx context.Context) error {
	return rdb.conn.Ping(ctx).Err()
}

// Close release the underlying connection pool
func (rdb *RedisClient) Close() error {
	return rdb.conn.Close()
}
