package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface.
// Values are JSON-encoded, except strings which are stored as-is.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	Close() error
}

// GetInt64 reads a counter written by Increment. Missing keys read as zero.
func GetInt64(ctx context.Context, c Service, key string) (int64, error) {
	var n int64
	if err := c.Get(ctx, key, &n); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}
