// Package spotify implements the token-gated catalog client.
// Searches require an access token obtained through the
// client-credentials flow; tokens and search results are memoized in
// the shared cache so a batch never repeats an upstream call.
package spotify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coverdash/coverdash-server/internal/cache"
	"github.com/coverdash/coverdash-server/internal/errors"
	"github.com/coverdash/coverdash-server/internal/ratelimit"
)

const (
	defaultAccountsURL = "https://accounts.spotify.com/api/token"
	defaultSearchURL   = "https://api.spotify.com/v1/search"

	// Rate limit: 5 requests per second per host, burst of 5.
	defaultRPS   = 5.0
	defaultBurst = 5

	defaultTimeout = 10 * time.Second
	defaultLimit   = 5
)

// Credentials holds a client-credentials pair. Callers may supply
// per-request credentials that override the configured ones.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Empty reports whether either half of the pair is missing.
func (cr Credentials) Empty() bool {
	return cr.ClientID == "" || cr.ClientSecret == ""
}

// Client is a rate-limited Spotify search client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
	cache   *cache.Cache
	limit   int

	accountsURL string
	searchURL   string
}

// New creates a new Spotify client. limit caps the number of results
// requested per search; zero means the default of 5.
func New(logger *slog.Logger, memo *cache.Cache, timeout time.Duration, limit int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		limiter:     ratelimit.New(defaultRPS, defaultBurst),
		logger:      logger,
		cache:       memo,
		limit:       limit,
		accountsURL: defaultAccountsURL,
		searchURL:   defaultSearchURL,
	}
}

// doSearch executes an authenticated GET against the search endpoint.
func (c *Client) doSearch(ctx context.Context, token string, query url.Values) ([]byte, error) {
	host := hostOf(c.searchURL)
	if err := c.limiter.Wait(ctx, host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	c.logger.Debug("spotify request", "query", query.Get("q"), "type", query.Get("type"))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.CatalogRequestf("execute request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.CatalogRequestf("read response: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.AuthFailure("search rejected with status 401")
	default:
		return nil, errors.CatalogRequestf("unexpected status %d", resp.StatusCode)
	}
}

// hostOf extracts the host portion of a URL for rate limiter keying.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// Raw API response types (internal)

type searchResponse struct {
	Artists *artistPage `json:"artists"`
	Albums  *albumPage  `json:"albums"`
	Tracks  *trackPage  `json:"tracks"`
}

type artistPage struct {
	Items []rawArtist `json:"items"`
}

type albumPage struct {
	Items []rawAlbum `json:"items"`
}

type trackPage struct {
	Items []rawTrack `json:"items"`
}

type rawArtist struct {
	Name   string     `json:"name"`
	Images []rawImage `json:"images"`
}

type rawAlbum struct {
	Name      string     `json:"name"`
	AlbumType string     `json:"album_type"`
	Images    []rawImage `json:"images"`
}

type rawTrack struct {
	Name  string   `json:"name"`
	Album rawAlbum `json:"album"`
}

// rawImage entries arrive largest first.
type rawImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// matchesArtist reports whether a returned artist is an exact
// case-insensitive match for the requested name. Fuzzy matches produce
// the wrong person's photo, so they are dropped.
func matchesArtist(got, want string) bool {
	return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
}
