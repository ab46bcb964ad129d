package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a document is not cached.
var ErrCacheMiss = errors.New("document not in cache")

// DocumentKind selects which generated document a cache entry holds.
type DocumentKind string

const (
	DocumentPRD          DocumentKind = "prd"
	DocumentBusinessPlan DocumentKind = "business_plan"
)

// DocumentCache keeps completed analysis documents in Redis so repeated
// reads of the same PRD or business plan skip the database. Entries expire;
// the row store stays authoritative.
type DocumentCache struct {
	ttl time.Duration
}

var (
	setCacheValue = Set
	getCacheValue = Get
	delCacheValue = Del
)

// NewDocumentCache creates a document cache with the given entry TTL.
func NewDocumentCache(ttl time.Duration) *DocumentCache {
	return &DocumentCache{ttl: ttl}
}

func cacheKey(kind DocumentKind, videoID string) string {
	return "analysis:" + string(kind) + ":" + videoID
}

// Put stores a generated document for a video.
func (c *DocumentCache) Put(ctx context.Context, kind DocumentKind, videoID, content string) error {
	return setCacheValue(ctx, cacheKey(kind, videoID), content, c.ttl)
}

// Get returns a cached document or ErrCacheMiss.
func (c *DocumentCache) Get(ctx context.Context, kind DocumentKind, videoID string) (string, error) {
	val, err := getCacheValue(ctx, cacheKey(kind, videoID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

// Invalidate drops both cached documents for a video.
func (c *DocumentCache) Invalidate(ctx context.Context, videoID string) error {
	if err := delCacheValue(ctx, cacheKey(DocumentPRD, videoID)); err != nil {
		return err
	}
	return delCacheValue(ctx, cacheKey(DocumentBusinessPlan, videoID))
}
