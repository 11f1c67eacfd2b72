// ABOUTME: In-memory cache with TTL-based expiration for discovery results
// ABOUTME: Thread-safe sync.Map store with background cleanup and singleflight loads

package cache

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultCleanupInterval = 1 * time.Minute

type entry struct {
	data      any
	expiresAt time.Time
}

type Cache struct {
	store   sync.Map
	ttl     time.Duration
	loads   singleflight.Group
	stop    chan struct{}
	stopped sync.Once
}

// New returns a cache whose entries live for ttl. Call Close to stop the
// background cleanup goroutine.
func New(ttl time.Duration) *Cache {
	return newWithInterval(ttl, defaultCleanupInterval)
}

func newWithInterval(ttl, interval time.Duration) *Cache {
	c := &Cache{
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go c.startCleanup(interval)
	return c
}

func (c *Cache) Get(key string) (any, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}

	e := val.(entry)
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	e := entry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
	c.store.Store(key, e)
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result for the default TTL. Concurrent callers for the same key share a
// single load. Errors are not cached.
func (c *Cache) GetOrLoad(key string, load func() (any, error)) (any, error) {
	return c.GetOrLoadWithTTL(key, c.ttl, load)
}

// GetOrLoadWithTTL is GetOrLoad with a custom TTL for the loaded value
func (c *Cache) GetOrLoadWithTTL(key string, ttl time.Duration, load func() (any, error)) (any, error) {
	if val, ok := c.Get(key); ok {
		return val, nil
	}

	val, err, shared := c.loads.Do(key, func() (any, error) {
		if val, ok := c.Get(key); ok {
			return val, nil
		}
		val, err := load()
		if err != nil {
			return nil, err
		}
		c.SetWithTTL(key, val, ttl)
		return val, nil
	})
	if shared {
		slog.Debug("Cache load shared", "key", key)
	}
	return val, err
}

func (c *Cache) Clear(key string) {
	c.store.Delete(key)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() {
	c.stopped.Do(func() { close(c.stop) })
}

func (c *Cache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.store.Range(func(key, val any) bool {
				e := val.(entry)
				if now.After(e.expiresAt) {
					c.store.Delete(key)
				}
				return true
			})
		}
	}
}
