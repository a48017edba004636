package fetch

import (
	"context"
	"encoding/json"
	"time"

	"seoscout/internal/cache"
)

// CachedFetcher wraps a Fetcher with a Redis-backed page cache. Load timing
// must not go through here: cache hits carry no Elapsed.
type CachedFetcher struct {
	next  Fetcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedFetcher creates a caching wrapper around next.
func NewCachedFetcher(next Fetcher, c cache.Cache, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{next: next, cache: c, ttl: ttl}
}

type cachedPage struct {
	URL        string `json:"url"`
	HTML       string `json:"html"`
	StatusCode int    `json:"status_code"`
	SizeBytes  int64  `json:"size_bytes"`
}

func (f *CachedFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	key := cache.PageKey(URLKey(rawURL))

	if data, found, err := f.cache.Get(ctx, key); err == nil && found {
		var cp cachedPage
		if err := json.Unmarshal(data, &cp); err == nil {
			return &Page{
				URL:        cp.URL,
				HTML:       cp.HTML,
				StatusCode: cp.StatusCode,
				SizeBytes:  cp.SizeBytes,
			}, nil
		}
	}

	page, err := f.next.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// Cache failures never fail a fetch
	if data, err := json.Marshal(cachedPage{
		URL:        page.URL,
		HTML:       page.HTML,
		StatusCode: page.StatusCode,
		SizeBytes:  page.SizeBytes,
	}); err == nil {
		_ = f.cache.Set(ctx, key, data, f.ttl)
	}

	return page, nil
}

// Compile-time check that CachedFetcher implements Fetcher.
var _ Fetcher = (*CachedFetcher)(nil)
