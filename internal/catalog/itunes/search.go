package itunes

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/coverdash/coverdash-server/internal/artwork"
	"github.com/coverdash/coverdash-server/internal/cache"
	"github.com/coverdash/coverdash-server/internal/errors"
)

// Search queries the catalog for artwork candidates matching req.
// Track searches run two queries, one for tracks and one for albums,
// and merge the results. Memoized per request tuple.
func (c *Client) Search(ctx context.Context, req artwork.SearchRequest) (artwork.CandidateSet, error) {
	if !req.Kind.Valid() {
		return nil, errors.Validationf("unknown search kind %q", req.Kind)
	}

	key := cache.Key("itunes", req.Artist, req.Track, req.Album, string(req.Kind))
	var cached artwork.CandidateSet
	if err := c.cache.GetJSON(key, &cached); err == nil {
		return cached, nil
	}

	var candidates artwork.CandidateSet
	for _, q := range queriesFor(req, c.limit) {
		resp, err := c.doSearch(ctx, q)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c.convert(resp)...)
	}
	candidates = candidates.Dedupe()

	if c.probeDimensions {
		c.fillDimensions(ctx, candidates)
	}

	if err := c.cache.SetJSON(key, candidates); err != nil {
		c.logger.Warn("failed to memoize search results", "error", err)
	}
	return candidates, nil
}

// queriesFor shapes the query parameter sets for the requested kind.
func queriesFor(req artwork.SearchRequest, limit int) []url.Values {
	base := func(term, entity string) url.Values {
		q := url.Values{}
		q.Set("term", term)
		q.Set("entity", entity)
		q.Set("limit", strconv.Itoa(limit))
		return q
	}

	switch req.Kind {
	case artwork.KindArtistPhoto:
		// No artist photo concept here; surface the artist's most
		// popular album art instead.
		q := base(req.Artist, "album")
		q.Set("sort", "popular")
		return []url.Values{q}
	case artwork.KindAlbum:
		title := req.Album
		if title == "" {
			title = req.Track
		}
		return []url.Values{base(req.Artist+" "+title, "album")}
	default: // KindTrack, KindTrackOrAlbum
		term := req.Artist + " " + req.Track
		return []url.Values{
			base(term, "musicTrack"),
			base(term, "album"),
		}
	}
}

// doSearch executes a single search query.
func (c *Client) doSearch(ctx context.Context, query url.Values) (*searchResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CodeCatalogRequest, "rate limit wait")
	}

	searchURL := c.searchURL + "?" + query.Encode()
	c.logger.Debug("itunes request", "term", query.Get("term"), "entity", query.Get("entity"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCatalogRequest, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.CatalogRequestf("execute request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.CatalogRequestf("unexpected status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, errors.CatalogRequestf("parse search response: %v", err)
	}
	return &searchResp, nil
}

// convert maps raw catalog items to candidates. Items without artwork
// are dropped.
func (c *Client) convert(resp *searchResponse) artwork.CandidateSet {
	out := make(artwork.CandidateSet, 0, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]

		previewURL := r.ArtworkURL100
		if previewURL == "" {
			previewURL = r.ArtworkURL60
		}
		imageURL := FullResURL(previewURL)
		if imageURL == "" {
			continue
		}

		// Artist searches return album art too: this catalog has no
		// artist photo concept, so candidates keep their album identity.
		out = append(out, artwork.Candidate{
			Source:      artwork.SourceITunes,
			ImageURL:    imageURL,
			PreviewURL:  previewURL,
			DisplayName: r.CollectionName,
			TrackName:   r.TrackName,
			Kind:        classify(r),
		})
	}
	return out
}

// classify infers whether a result is a single or a full album.
// Labels on this catalog are unreliable, so the collection name itself
// is the signal.
func classify(r *searchResult) artwork.ArtworkKind {
	name := strings.ToLower(r.CollectionName)
	if strings.Contains(name, "single") {
		return artwork.Single
	}
	if r.TrackName != "" && strings.EqualFold(r.TrackName, r.CollectionName) {
		return artwork.Single
	}
	return artwork.Album
}

// fillDimensions probes each candidate's image headers for its actual
// size. Failures leave the zero dimensions in place.
func (c *Client) fillDimensions(ctx context.Context, candidates artwork.CandidateSet) {
	for i := range candidates {
		w, h, err := GetImageDimensions(ctx, c.httpClient, candidates[i].ImageURL)
		if err != nil {
			c.logger.Warn("failed to probe image dimensions",
				"url", candidates[i].ImageURL,
				"error", err,
			)
			continue
		}
		candidates[i].Width = w
		candidates[i].Height = h
	}
}
