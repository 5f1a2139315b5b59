package spotify

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"

	"github.com/coverdash/coverdash-server/internal/artwork"
	"github.com/coverdash/coverdash-server/internal/cache"
	"github.com/coverdash/coverdash-server/internal/errors"
)

// Search queries the catalog for artwork candidates matching req.
// Results are memoized per (credentials, request) tuple for the
// lifetime of the process.
func (c *Client) Search(ctx context.Context, creds Credentials, req artwork.SearchRequest) (artwork.CandidateSet, error) {
	if !req.Kind.Valid() {
		return nil, errors.Validationf("unknown search kind %q", req.Kind)
	}

	key := cache.Key("spotify", creds.ClientID, req.Artist, req.Track, req.Album, string(req.Kind))
	var cached artwork.CandidateSet
	if err := c.cache.GetJSON(key, &cached); err == nil {
		return cached, nil
	}

	token, err := c.token(ctx, creds)
	if err != nil {
		return nil, err
	}

	query := buildQuery(req, c.limit)
	body, err := c.doSearch(ctx, token, query)
	if errors.Is(err, errors.ErrAuthFailure) {
		// The memoized token may have been revoked upstream. Fetch a
		// fresh one and retry once.
		c.invalidateToken(creds)
		if token, err = c.token(ctx, creds); err != nil {
			return nil, err
		}
		body, err = c.doSearch(ctx, token, query)
	}
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.CatalogRequestf("parse search response: %v", err)
	}

	candidates := convert(&resp, req).Dedupe()

	if err := c.cache.SetJSON(key, candidates); err != nil {
		c.logger.Warn("failed to memoize search results", "error", err)
	}
	return candidates, nil
}

// buildQuery shapes the search query for the requested kind.
func buildQuery(req artwork.SearchRequest, limit int) url.Values {
	query := url.Values{}
	switch req.Kind {
	case artwork.KindArtistPhoto:
		query.Set("q", "artist:"+req.Artist)
		query.Set("type", "artist")
	case artwork.KindAlbum:
		query.Set("q", fmt.Sprintf("artist:%s album:%s", req.Artist, req.Album))
		query.Set("type", "album")
	default: // KindTrack, KindTrackOrAlbum
		query.Set("q", fmt.Sprintf("artist:%s %s", req.Artist, req.Track))
		query.Set("type", "track,album")
	}
	query.Set("limit", strconv.Itoa(limit))
	return query
}

// convert maps raw catalog items to candidates. Items without images
// are dropped.
func convert(resp *searchResponse, req artwork.SearchRequest) artwork.CandidateSet {
	var out artwork.CandidateSet

	if resp.Artists != nil {
		for i := range resp.Artists.Items {
			a := &resp.Artists.Items[i]
			if !matchesArtist(a.Name, req.Artist) || len(a.Images) == 0 {
				continue
			}
			out = append(out, candidateFromImages(a.Images, artwork.Candidate{
				Source:      artwork.SourceSpotify,
				DisplayName: a.Name,
				Kind:        artwork.ArtistPhoto,
			}))
		}
	}

	if resp.Tracks != nil {
		for i := range resp.Tracks.Items {
			t := &resp.Tracks.Items[i]
			if len(t.Album.Images) == 0 {
				continue
			}
			out = append(out, candidateFromImages(t.Album.Images, artwork.Candidate{
				Source:      artwork.SourceSpotify,
				DisplayName: t.Album.Name,
				Kind:        albumKind(t.Album.AlbumType),
				TrackName:   t.Name,
			}))
		}
	}

	if resp.Albums != nil {
		for i := range resp.Albums.Items {
			al := &resp.Albums.Items[i]
			if len(al.Images) == 0 {
				continue
			}
			out = append(out, candidateFromImages(al.Images, artwork.Candidate{
				Source:      artwork.SourceSpotify,
				DisplayName: al.Name,
				Kind:        albumKind(al.AlbumType),
			}))
		}
	}

	return out
}

// candidateFromImages fills the image fields of base from an image
// list ordered largest first.
func candidateFromImages(images []rawImage, base artwork.Candidate) artwork.Candidate {
	base.ImageURL = images[0].URL
	base.Width = images[0].Width
	base.Height = images[0].Height
	base.PreviewURL = images[len(images)-1].URL
	return base
}

func albumKind(albumType string) artwork.ArtworkKind {
	if albumType == "single" {
		return artwork.Single
	}
	return artwork.Album
}
