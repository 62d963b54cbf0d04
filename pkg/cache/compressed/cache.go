package compressed

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5" // nolint:gosec
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/agustogpt/chatstore/pkg/apis/cache"
)

const (
	cachePrefix = "cc:"
	sumLen      = md5.Size
)

var (
	_ cache.Cache = Cache{}

	ErrCorrupt = errors.New("corrupt compressed cache item")
)

// Cache gzips values before handing them to the wrapped cache. Listings of long chat
// histories repeat a lot of text, so they compress well. Every item carries a trailing md5 of
// the uncompressed value and is rejected on mismatch.
type Cache struct {
	Cache cache.Cache
}

func NewCompressedCache(c cache.Cache) (*Cache, error) {
	if c == nil {
		return nil, fmt.Errorf("compressed cache requires a backing cache")
	}
	return &Cache{Cache: c}, nil
}

func (c Cache) Get(ctx context.Context, key string) ([]byte, error) {
	item, err := c.Cache.Get(ctx, cachePrefix+key)
	if err != nil {
		return nil, err
	}
	return decode(item)
}

func (c Cache) Set(ctx context.Context, key string, content []byte, duration time.Duration) error {
	item, err := encode(content)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"key":    key,
		"before": len(content),
		"after":  len(item),
	}).Debug("compressed cache item")
	return c.Cache.Set(ctx, cachePrefix+key, item, duration)
}

func (c Cache) Delete(ctx context.Context, key string) error {
	return c.Cache.Delete(ctx, cachePrefix+key)
}

// encode returns gzip(value) followed by md5(value).
func encode(value []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(value); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	sum := md5.Sum(value) // nolint:gosec
	return append(buf.Bytes(), sum[:]...), nil
}

func decode(item []byte) ([]byte, error) {
	if len(item) < sumLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(item))
	}
	body, trailer := item[:len(item)-sumLen], item[len(item)-sumLen:]

	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	value, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if sum := md5.Sum(value); !bytes.Equal(sum[:], trailer) { // nolint:gosec
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return value, nil
}
