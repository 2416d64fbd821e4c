package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/cardforge/pkg/cache"
)

// maxBodySize caps downloaded payloads. A sheet CSV export is text; anything
// beyond this is either the wrong URL or abuse.
const maxBodySize = 32 << 20 // 32 MiB

// Fetcher downloads URLs with retry and optional caching.
type Fetcher struct {
	client *http.Client
	cache  cache.Cache
	ttl    time.Duration
}

// NewFetcher creates a Fetcher. A nil client falls back to a client with a
// 30 second timeout; a nil cache disables caching.
func NewFetcher(client *http.Client, c cache.Cache, ttl time.Duration) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Fetcher{client: client, cache: c, ttl: ttl}
}

// Get downloads url, consulting the cache first unless refresh is set.
// Transient failures (network errors and 5xx responses) are retried with
// exponential backoff; 4xx responses fail immediately.
func (f *Fetcher) Get(ctx context.Context, url string, refresh bool) ([]byte, bool, error) {
	key := cache.Key("http", url)

	if !refresh {
		if data, ok, err := f.cache.Get(ctx, key); err == nil && ok {
			return data, true, nil
		}
	}

	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return Retryable(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return Retryable(fmt.Errorf("server error: %s", resp.Status))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("unexpected status: %s", resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return Retryable(err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	// Cache write failures don't fail the fetch.
	_ = f.cache.Set(ctx, key, body, f.ttl)
	return body, false, nil
}
