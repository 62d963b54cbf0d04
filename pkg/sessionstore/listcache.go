package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/agustogpt/chatstore/pkg/apis/cache"
	chatv1 "github.com/agustogpt/chatstore/pkg/apis/chat/v1"
)

// listCache holds each user's full sorted listing. A nil listCache caches nothing. Cache
// failures are logged and otherwise ignored; the record store stays authoritative.
//
// Listings are stored under the user's current generation. Writes move the user to a new
// generation, so a listing read from the record store before a write can only be stored under a
// generation that is no longer read.
type listCache struct {
	c   cache.Cache
	ttl time.Duration
}

func newListCache(c cache.Cache, ttl time.Duration) *listCache {
	if c == nil {
		return nil
	}
	return &listCache{c: c, ttl: ttl}
}

func generationKey(userID string) string {
	return "chatgen:" + userID
}

func listCacheKey(userID, generation string) string {
	return "chats:" + userID + "@" + generation
}

// generation returns the user's current generation, starting a new one when none is cached.
// An empty result means the cache is unusable and nothing should be stored.
func (l *listCache) generation(ctx context.Context, userID string) string {
	data, err := l.c.Get(ctx, generationKey(userID))
	if err == nil && len(data) > 0 {
		return string(data)
	}
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		log.WithError(err).WithField("user_id", userID).Warn("error reading chat list generation")
		return ""
	}
	return l.advance(ctx, userID)
}

func (l *listCache) advance(ctx context.Context, userID string) string {
	gen := uuid.NewString()
	if err := l.c.Set(ctx, generationKey(userID), []byte(gen), l.ttl); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("error writing chat list generation")
		return ""
	}
	return gen
}

// get returns the cached listing and the generation it belongs to. On a miss the generation is
// still returned and must be passed to set once the listing has been read.
func (l *listCache) get(ctx context.Context, userID string) ([]chatv1.ChatSummary, string, bool) {
	if l == nil {
		return nil, "", false
	}
	gen := l.generation(ctx, userID)
	if gen == "" {
		return nil, "", false
	}
	data, err := l.c.Get(ctx, listCacheKey(userID, gen))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.WithError(err).WithField("user_id", userID).Warn("error reading chat list cache")
		}
		return nil, gen, false
	}
	var summaries []chatv1.ChatSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("discarding undecodable chat list cache entry")
		return nil, gen, false
	}
	return summaries, gen, true
}

func (l *listCache) set(ctx context.Context, userID, generation string, summaries []chatv1.ChatSummary) {
	if l == nil || generation == "" {
		return
	}
	data, err := json.Marshal(summaries)
	if err != nil {
		log.WithError(err).Warn("error encoding chat list for cache")
		return
	}
	if err := l.c.Set(ctx, listCacheKey(userID, generation), data, l.ttl); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("error writing chat list cache")
	}
}

// invalidate moves the user to a new generation and drops the listing of the old one.
func (l *listCache) invalidate(ctx context.Context, userID string) {
	if l == nil {
		return
	}
	old, err := l.c.Get(ctx, generationKey(userID))
	if l.advance(ctx, userID) == "" {
		// without a generation key the next read starts a fresh generation
		if err := l.c.Delete(ctx, generationKey(userID)); err != nil {
			log.WithError(err).WithField("user_id", userID).Error("error invalidating chat list cache")
		}
	}
	if err != nil || len(old) == 0 {
		return
	}
	if err := l.c.Delete(ctx, listCacheKey(userID, string(old))); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("error removing stale chat list cache entry")
	}
}
