package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrCacheUnavailable marks failures of the cache itself rather than of the loader.
var ErrCacheUnavailable = errors.New("users cache unavailable")

const (
	listVersionKey = "users:list:version"
	listKeyPrefix  = "users:list"
)

// ListCache keeps the full user list in Redis under a versioned key. Writes
// bump the version so stale entries are never read again and expire by TTL.
// Concurrent misses for the same version share one load. When a bump
// cannot reach Redis the cache is marked stale and bypassed until a later
// bump succeeds.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	stale  atomic.Bool
}

// NewListCache builds a ListCache. A nil client disables caching.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

// Version returns the current list version, initialising when missing.
func (c *ListCache) Version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, listVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, listVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, listVersionKey).Int64()
	}
	return ver, err
}

// Fetch returns the cached list or populates it with loader.
func (c *ListCache) Fetch(ctx context.Context, loader func(context.Context) ([]User, error)) ([]User, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	if c.stale.Load() {
		if err := c.Bump(ctx); err != nil {
			return nil, fmt.Errorf("%w: stale: %v", ErrCacheUnavailable, err)
		}
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: version: %v", ErrCacheUnavailable, err)
	}
	key := fmt.Sprintf("%s:%d", listKeyPrefix, ver)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var users []User
		if err := json.Unmarshal(payload, &users); err != nil {
			return nil, fmt.Errorf("%w: decode: %v", ErrCacheUnavailable, err)
		}
		return users, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: get: %v", ErrCacheUnavailable, err)
	}

	// The shared load outlives any single caller; each caller stops waiting
	// when its own context ends.
	loadCtx := context.WithoutCancel(ctx)
	resultChan := c.group.DoChan(key, func() (interface{}, error) {
		users, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(users)
		if err != nil {
			return nil, fmt.Errorf("%w: encode: %v", ErrCacheUnavailable, err)
		}
		// A failed write only costs a later miss.
		_ = c.client.Set(loadCtx, key, raw, c.ttl).Err()
		return users, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]User), nil
	}
}

// Bump invalidates every cached list by advancing the version. When the
// version cannot be advanced the current list key is dropped instead and the
// cache stays bypassed until a bump succeeds.
func (c *ListCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Incr(ctx, listVersionKey).Err()
	if err == nil {
		c.stale.Store(false)
		return nil
	}
	c.stale.Store(true)
	if ver, verErr := c.client.Get(ctx, listVersionKey).Int64(); verErr == nil {
		_ = c.client.Del(ctx, fmt.Sprintf("%s:%d", listKeyPrefix, ver)).Err()
	}
	return err
}
