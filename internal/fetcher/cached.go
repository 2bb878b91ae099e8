package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/voyagen/pimplecast/internal/cache"
)

const pageKeyPrefix = "pimplecast:page:"

// CacheFilter reports whether a fetched page may be stored in the page cache.
type CacheFilter func(path, page string) bool

// ListingsOrStreams caches the listings page and detail pages that already
// carry a stream. Detail pages without one are refetched on every build.
func ListingsOrStreams(listingsPath string) CacheFilter {
	return func(path, page string) bool {
		return path == listingsPath || len(StreamIDs(page)) > 0
	}
}

// CachedPager wraps a Pager with a Redis read-through cache. Redis errors are
// logged and the inner Pager is used instead. Missing pages are not cached.
type CachedPager struct {
	inner  Pager
	rds    *cache.Redis
	ttl    time.Duration
	keep   CacheFilter
	logger zerolog.Logger
}

// NewCachedPager caches pages fetched by inner for ttl. A nil keep caches
// every non-empty page.
func NewCachedPager(inner Pager, rds *cache.Redis, ttl time.Duration, keep CacheFilter, logger zerolog.Logger) *CachedPager {
	return &CachedPager{inner: inner, rds: rds, ttl: ttl, keep: keep, logger: logger}
}

// Fetch implements Pager.
func (p *CachedPager) Fetch(ctx context.Context, path string) (string, error) {
	key := pageKeyPrefix + path
	page, err := cache.Get[string](ctx, p.rds, key)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, redis.Nil) {
		p.logger.Warn().Err(err).Str("key", key).Msg("cache: get")
	}

	page, err = p.inner.Fetch(ctx, path)
	if err != nil || page == "" {
		return page, err
	}
	if p.keep != nil && !p.keep(path, page) {
		p.logger.Debug().Str("path", path).Msg("cache: skip")
		return page, nil
	}
	if err := cache.Set(ctx, p.rds, key, page, p.ttl); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("cache: set")
	}
	return page, nil
}
