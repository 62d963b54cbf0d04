package redis

import (
	"context"
	"time"

	r "gopkg.in/redis.v5"

	"github.com/agustogpt/chatstore/pkg/apis/cache"
)

const prefix = "_CHATSTORE_"

var _ cache.Cache = &Cache{}

type Cache struct {
	client *r.Client
}

func NewRedisCache(url string) (*Cache, error) {
	var opts *r.Options
	var err error

	if opts, err = r.ParseURL(url); err != nil {
		return nil, err
	}

	return &Cache{
		client: r.NewClient(opts),
	}, nil
}

// Ping checks connectivity, used at startup to decide whether caching is usable.
func (c Cache) Ping() error {
	return c.client.Ping().Err()
}

func (c Cache) Get(_ context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(prefix + key).Bytes()
	if err == r.Nil {
		return nil, cache.ErrMiss
	}
	return b, err
}

func (c Cache) Set(_ context.Context, key string, content []byte, duration time.Duration) error {
	return c.client.Set(prefix+key, content, duration).Err()
}

func (c Cache) Delete(_ context.Context, key string) error {
	return c.client.Del(prefix + key).Err()
}

func (c Cache) Close() error {
	return c.client.Close()
}
