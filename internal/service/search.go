// Package service wires parsing, catalog clients, sessions and export
// into the operations the API exposes.
package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/coverdash/coverdash-server/internal/artwork"
	"github.com/coverdash/coverdash-server/internal/catalog/spotify"
	"github.com/coverdash/coverdash-server/internal/entry"
	"github.com/coverdash/coverdash-server/internal/session"
)

// SpotifySearcher is the token-gated catalog dependency.
type SpotifySearcher interface {
	Search(ctx context.Context, creds spotify.Credentials, req artwork.SearchRequest) (artwork.CandidateSet, error)
}

// ITunesSearcher is the keyless catalog dependency.
type ITunesSearcher interface {
	Search(ctx context.Context, req artwork.SearchRequest) (artwork.CandidateSet, error)
}

// SearchService runs batch artwork searches and stores the results as
// sessions.
type SearchService struct {
	spotify  SpotifySearcher
	itunes   ITunesSearcher
	registry *session.Registry
	creds    spotify.Credentials // configured defaults
	logger   *slog.Logger
}

// NewSearchService creates a SearchService. creds may be empty; batches
// then run iTunes-only unless the request carries its own credentials.
func NewSearchService(sp SpotifySearcher, it ITunesSearcher, registry *session.Registry, creds spotify.Credentials, logger *slog.Logger) *SearchService {
	return &SearchService{
		spotify:  sp,
		itunes:   it,
		registry: registry,
		creds:    creds,
		logger:   logger,
	}
}

// RunText parses free-form text entries and runs the batch.
func (s *SearchService) RunText(ctx context.Context, text string, creds spotify.Credentials) (*session.Session, error) {
	return s.run(ctx, entry.ParseText(text), creds)
}

// RunCSV parses a CSV upload and runs the batch. A missing Artist
// column fails the whole upload; no entries are searched.
func (s *SearchService) RunCSV(ctx context.Context, r io.Reader, creds spotify.Credentials) (*session.Session, error) {
	entries, err := entry.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, entries, creds)
}

// run searches each entry in sequence. Catalog failures degrade to an
// empty candidate set plus a warning; a batch never aborts because one
// catalog or one entry failed.
func (s *SearchService) run(ctx context.Context, entries []artwork.SearchRequest, creds spotify.Credentials) (*session.Session, error) {
	if creds.Empty() {
		creds = s.creds
	}

	results := make([]session.Result, 0, len(entries))
	for _, req := range entries {
		result := session.Result{Request: req}

		var spotifySet artwork.CandidateSet
		if creds.Empty() {
			result.Warnings = append(result.Warnings, "spotify disabled: no credentials configured")
		} else {
			var err error
			spotifySet, err = s.spotify.Search(ctx, creds, req)
			if err != nil {
				s.logger.Warn("spotify search failed",
					"entry", req.DisplayLabel(),
					"error", err,
				)
				result.Warnings = append(result.Warnings, "spotify: "+err.Error())
				spotifySet = nil
			}
		}

		itunesSet, err := s.itunes.Search(ctx, req)
		if err != nil {
			s.logger.Warn("itunes search failed",
				"entry", req.DisplayLabel(),
				"error", err,
			)
			result.Warnings = append(result.Warnings, "itunes: "+err.Error())
			itunesSet = nil
		}

		result.Candidates = artwork.Aggregate(spotifySet, itunesSet)
		result.Best = result.Candidates.Best()
		results = append(results, result)
	}

	sess := session.New(results)
	s.registry.Put(sess)

	s.logger.Info("batch search complete",
		"session_id", sess.ID,
		"entries", len(results),
		"found", found(results),
	)
	return sess, nil
}

// found counts entries with at least one candidate.
func found(results []session.Result) int {
	n := 0
	for i := range results {
		if len(results[i].Candidates) > 0 {
			n++
		}
	}
	return n
}
