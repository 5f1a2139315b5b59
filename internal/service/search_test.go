package service

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdash/coverdash-server/internal/artwork"
	"github.com/coverdash/coverdash-server/internal/catalog/spotify"
	"github.com/coverdash/coverdash-server/internal/errors"
	"github.com/coverdash/coverdash-server/internal/session"
)

type fakeSpotify struct {
	sets  map[string]artwork.CandidateSet // keyed by artist
	err   error
	calls int
}

func (f *fakeSpotify) Search(_ context.Context, _ spotify.Credentials, req artwork.SearchRequest) (artwork.CandidateSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.sets[req.Artist], nil
}

type fakeITunes struct {
	sets  map[string]artwork.CandidateSet
	err   error
	calls int
}

func (f *fakeITunes) Search(_ context.Context, req artwork.SearchRequest) (artwork.CandidateSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.sets[req.Artist], nil
}

func itunesCandidate(name string) artwork.Candidate {
	return artwork.Candidate{
		Source:      artwork.SourceITunes,
		ImageURL:    "http://img/" + name + "/3000x3000bb.jpg",
		PreviewURL:  "http://img/" + name + "/100x100bb.jpg",
		DisplayName: name,
		Kind:        artwork.Album,
	}
}

func newSearchService(sp *fakeSpotify, it *fakeITunes, creds spotify.Credentials) (*SearchService, *session.Registry) {
	registry := session.NewRegistry(0)
	svc := NewSearchService(sp, it, registry, creds, slog.New(slog.DiscardHandler))
	return svc, registry
}

func TestRunText_ITunesOnlyWithoutCredentials(t *testing.T) {
	sp := &fakeSpotify{}
	it := &fakeITunes{sets: map[string]artwork.CandidateSet{
		"Daft Punk":     {itunesCandidate("daft")},
		"Billie Eilish": {itunesCandidate("badguy")},
	}}
	svc, registry := newSearchService(sp, it, spotify.Credentials{})

	sess, err := svc.RunText(context.Background(), "Daft Punk\nBillie Eilish - Bad Guy", spotify.Credentials{})
	require.NoError(t, err)

	require.Len(t, sess.Results, 2)

	first := sess.Results[0]
	assert.Equal(t, artwork.KindArtistPhoto, first.Request.Kind)
	require.Len(t, first.Candidates, 1)
	assert.Equal(t, artwork.SourceITunes, first.Candidates[0].Source)
	require.NotNil(t, first.Best)
	assert.Equal(t, first.Candidates[0], *first.Best)
	assert.Contains(t, first.Warnings[0], "spotify disabled")

	second := sess.Results[1]
	assert.Equal(t, artwork.KindTrackOrAlbum, second.Request.Kind)
	assert.Equal(t, "Bad Guy", second.Request.Track)
	require.Len(t, second.Candidates, 1)

	// The gated catalog was never called without credentials.
	assert.Zero(t, sp.calls)
	assert.Equal(t, 2, it.calls)

	// The session is retrievable from the registry.
	got, err := registry.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)
}

func TestRun_PrefersSpotifyEntirely(t *testing.T) {
	spotifyCand := artwork.Candidate{
		Source: artwork.SourceSpotify, ImageURL: "http://img/sp.jpg", Kind: artwork.Album,
	}
	sp := &fakeSpotify{sets: map[string]artwork.CandidateSet{"Daft Punk": {spotifyCand}}}
	it := &fakeITunes{sets: map[string]artwork.CandidateSet{"Daft Punk": {itunesCandidate("daft")}}}
	svc, _ := newSearchService(sp, it, spotify.Credentials{ClientID: "id", ClientSecret: "sec"})

	sess, err := svc.RunText(context.Background(), "Daft Punk", spotify.Credentials{})
	require.NoError(t, err)

	require.Len(t, sess.Results, 1)
	require.Len(t, sess.Results[0].Candidates, 1)
	assert.Equal(t, artwork.SourceSpotify, sess.Results[0].Candidates[0].Source)
	assert.Empty(t, sess.Results[0].Warnings)
}

func TestRun_SpotifyFailureDegradesToITunes(t *testing.T) {
	sp := &fakeSpotify{err: errors.AuthFailure("bad credentials")}
	it := &fakeITunes{sets: map[string]artwork.CandidateSet{"Daft Punk": {itunesCandidate("daft")}}}
	svc, _ := newSearchService(sp, it, spotify.Credentials{ClientID: "id", ClientSecret: "sec"})

	sess, err := svc.RunText(context.Background(), "Daft Punk", spotify.Credentials{})
	require.NoError(t, err)

	result := sess.Results[0]
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, artwork.SourceITunes, result.Candidates[0].Source)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "spotify:")
}

func TestRun_BothCatalogsFailingStillCompletes(t *testing.T) {
	sp := &fakeSpotify{err: errors.CatalogRequest("boom")}
	it := &fakeITunes{err: errors.CatalogRequest("boom")}
	svc, _ := newSearchService(sp, it, spotify.Credentials{ClientID: "id", ClientSecret: "sec"})

	sess, err := svc.RunText(context.Background(), "Daft Punk\nQueen", spotify.Credentials{})
	require.NoError(t, err)

	require.Len(t, sess.Results, 2)
	for _, result := range sess.Results {
		assert.Empty(t, result.Candidates)
		assert.Nil(t, result.Best)
		assert.Len(t, result.Warnings, 2)
	}
}

func TestRun_RequestCredentialsOverrideConfigured(t *testing.T) {
	sp := &fakeSpotify{}
	it := &fakeITunes{}
	svc, _ := newSearchService(sp, it, spotify.Credentials{})

	_, err := svc.RunText(context.Background(), "Daft Punk",
		spotify.Credentials{ClientID: "req-id", ClientSecret: "req-sec"})
	require.NoError(t, err)

	assert.Equal(t, 1, sp.calls)
}

func TestRunCSV_MissingColumnAbortsBatch(t *testing.T) {
	sp := &fakeSpotify{}
	it := &fakeITunes{}
	svc, registry := newSearchService(sp, it, spotify.Credentials{})

	_, err := svc.RunCSV(context.Background(), strings.NewReader("Name\nDaft Punk\n"), spotify.Credentials{})
	assert.True(t, errors.Is(err, errors.ErrMissingColumn))

	assert.Zero(t, it.calls)
	assert.Zero(t, registry.Len())
}

func TestRunCSV_Entries(t *testing.T) {
	sp := &fakeSpotify{}
	it := &fakeITunes{sets: map[string]artwork.CandidateSet{
		"Daft Punk": {itunesCandidate("daft")},
	}}
	svc, _ := newSearchService(sp, it, spotify.Credentials{})

	csv := "Artist,Track\nDaft Punk,One More Time\n"
	sess, err := svc.RunCSV(context.Background(), strings.NewReader(csv), spotify.Credentials{})
	require.NoError(t, err)

	require.Len(t, sess.Results, 1)
	assert.Equal(t, artwork.KindTrackOrAlbum, sess.Results[0].Request.Kind)
	assert.Len(t, sess.Results[0].Candidates, 1)
}
