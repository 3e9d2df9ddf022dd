package repository

import (
	"context"
	"time"
)

// CacheRepository is a string key/value cache with per-entry expiry. Get
// reports a miss with ok == false and a nil error.
type CacheRepository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
