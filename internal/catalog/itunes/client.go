// Package itunes implements the keyless catalog client. No credentials
// are required, so it always participates in a batch search.
package itunes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coverdash/coverdash-server/internal/cache"
	"golang.org/x/time/rate"
)

const (
	defaultSearchURL = "https://itunes.apple.com/search"
	defaultTimeout   = 10 * time.Second
	defaultLimit     = 5
)

// Client provides access to the iTunes Search API for artwork.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	cache       *cache.Cache
	limit       int

	// When set, every candidate's Width/Height is filled by probing
	// image headers. Off by default; it costs one ranged request per
	// candidate.
	probeDimensions bool

	searchURL string
}

// NewClient creates a new iTunes client. Rate limited to roughly
// 20 requests per minute as Apple recommends.
func NewClient(logger *slog.Logger, memo *cache.Cache, timeout time.Duration, limit int, probeDimensions bool) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// 20 requests per minute = 1 request per 3 seconds, burst of 5
		rateLimiter:     rate.NewLimiter(rate.Every(3*time.Second), 5),
		logger:          logger,
		cache:           memo,
		limit:           limit,
		probeDimensions: probeDimensions,
		searchURL:       defaultSearchURL,
	}
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}

// searchResponse is the raw iTunes API response.
type searchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []searchResult `json:"results"`
}

// searchResult is a single result from iTunes search.
type searchResult struct {
	WrapperType    string `json:"wrapperType"`
	CollectionName string `json:"collectionName"`
	TrackName      string `json:"trackName"`
	ArtistName     string `json:"artistName"`
	ArtworkURL60   string `json:"artworkUrl60"`
	ArtworkURL100  string `json:"artworkUrl100"`
}
