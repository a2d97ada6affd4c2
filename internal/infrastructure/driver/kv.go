package driver

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound key does not exist in the key-value storage
var ErrKeyNotFound = errors.New("key not found")

// KeyValueDB define a key-value storage interface
type KeyValueDB interface {
	// Set store value under key, zero expiration keeps the key forever
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	// Get returns ErrKeyNotFound for a missing key
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}
