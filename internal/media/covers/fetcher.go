// Package covers provides artwork image fetching with in-memory
// memoization. Fetched bytes feed both the preview proxy endpoint and
// the archive builder, so a selected image downloads at most once.
package covers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coverdash/coverdash-server/internal/cache"
	"github.com/coverdash/coverdash-server/internal/errors"
)

const (
	// maxImageSize limits download size to prevent memory exhaustion.
	maxImageSize = 10 * 1024 * 1024 // 10MB

	// defaultFetchTimeout is the maximum time for a single image download.
	defaultFetchTimeout = 10 * time.Second
)

// Fetcher downloads artwork images from catalog CDNs.
type Fetcher struct {
	httpClient *http.Client
	cache      *cache.Cache
	logger     *slog.Logger
	timeout    time.Duration
}

// NewFetcher creates a new image fetcher. A non-positive timeout uses
// the default.
func NewFetcher(memo *cache.Cache, logger *slog.Logger, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:   memo,
		logger:  logger,
		timeout: timeout,
	}
}

// Fetch returns the image bytes at url, memoized by URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.ImageFetch("empty image URL")
	}

	key := cache.Key("img", url)
	if data, err := f.cache.GetBytes(key); err == nil {
		return data, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.ImageFetchf("create request: %v", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.ImageFetchf("download: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.ImageFetchf("download failed: status %d", resp.StatusCode)
	}

	// Read one byte past the cap so an oversize image is rejected
	// outright rather than silently truncated into corrupt bytes.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, errors.ImageFetchf("read data: %v", err)
	}
	if len(data) > maxImageSize {
		return nil, errors.ImageFetchf("image exceeds %d byte limit", maxImageSize)
	}
	if len(data) == 0 {
		return nil, errors.ImageFetch("empty response body")
	}

	if err := f.cache.SetBytes(key, data); err != nil {
		f.logger.Warn("failed to memoize image", "url", url, "error", err)
	}

	f.logger.Debug("fetched image", "url", url, "size", len(data))
	return data, nil
}
