// Package local is an in-process cache for single-replica deployments without redis.
package local

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agustogpt/chatstore/pkg/apis/cache"
)

var _ cache.Cache = &Cache{}

type Cache struct {
	c *gocache.Cache
}

// NewLocalCache returns a cache whose entries default to ttl and are swept every cleanup interval.
func NewLocalCache(ttl, cleanup time.Duration) *Cache {
	return &Cache{c: gocache.New(ttl, cleanup)}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.c.Get(key)
	if !ok {
		return nil, cache.ErrMiss
	}
	b := v.([]byte)
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (c *Cache) Set(_ context.Context, key string, content []byte, duration time.Duration) error {
	b := make([]byte, len(content))
	copy(b, content)
	c.c.Set(key, b, duration)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Delete(key)
	return nil
}

func (c *Cache) ItemCount() int {
	return c.c.ItemCount()
}
