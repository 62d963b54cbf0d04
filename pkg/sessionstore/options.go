package sessionstore

import (
	"time"

	"github.com/agustogpt/chatstore/pkg/apis/cache"
)

const (
	// DefaultListLimit is used when a listing asks for zero or fewer sessions.
	DefaultListLimit = 50
	// DefaultMaxSessionBytes matches the largest conversation the HTTP API accepts.
	DefaultMaxSessionBytes = 4 * 1024 * 1024
	DefaultTimeout         = 30 * time.Second
	DefaultListCacheTTL    = 5 * time.Minute
)

type config struct {
	timeout         time.Duration
	maxSessionBytes int
	listCache       cache.Cache
	listCacheTTL    time.Duration
	now             func() time.Time
}

func defaultConfig() config {
	return config{
		timeout:         DefaultTimeout,
		maxSessionBytes: DefaultMaxSessionBytes,
		listCacheTTL:    DefaultListCacheTTL,
		now:             time.Now,
	}
}

type Option func(*config)

// WithTimeout bounds every manager operation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithMaxSessionBytes caps the serialized transcript size. Zero disables the cap.
func WithMaxSessionBytes(n int) Option {
	return func(c *config) {
		c.maxSessionBytes = n
	}
}

// WithListCache caches each user's sorted listing for ttl.
func WithListCache(c cache.Cache, ttl time.Duration) Option {
	return func(cfg *config) {
		cfg.listCache = c
		if ttl > 0 {
			cfg.listCacheTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}
