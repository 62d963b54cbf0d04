package flags

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/agustogpt/chatstore/pkg/apis/cache"
	"github.com/agustogpt/chatstore/pkg/cache/compressed"
	"github.com/agustogpt/chatstore/pkg/cache/local"
	"github.com/agustogpt/chatstore/pkg/cache/redis"
	"github.com/agustogpt/chatstore/pkg/sessionstore"
)

// CacheFlags holds caching configuration for chat listings.
type CacheFlags struct {
	RedisURL     string
	LocalCache   bool
	ListCacheTTL time.Duration
}

func NewCacheFlags() *CacheFlags {
	return &CacheFlags{
		ListCacheTTL: sessionstore.DefaultListCacheTTL,
	}
}

func (f *CacheFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.RedisURL,
		"redis-url",
		os.Getenv("REDIS_URL"),
		"Redis URL for caching chat listings")
	fs.BoolVar(&f.LocalCache, "local-list-cache", f.LocalCache,
		"Cache chat listings in process when no redis URL is set (single replica deployments only)")
	fs.DurationVar(&f.ListCacheTTL, "list-cache-ttl", f.ListCacheTTL, "How long a cached chat listing is served")
}

// GetCacheClient returns the configured cache, or nil when listing caching is off. A redis cache
// that cannot be reached is skipped with a warning rather than failing startup.
func (f *CacheFlags) GetCacheClient() (cache.Cache, error) {
	if f.RedisURL != "" {
		rc, err := redis.NewRedisCache(f.RedisURL)
		if err != nil {
			return nil, err
		}
		if err := rc.Ping(); err != nil {
			log.WithError(err).Warn("redis is unreachable, chat listings will not be cached")
			return nil, nil
		}
		return compressed.NewCompressedCache(rc)
	}
	if f.LocalCache {
		return local.NewLocalCache(f.ListCacheTTL, 2*f.ListCacheTTL), nil
	}

	return nil, nil
}
