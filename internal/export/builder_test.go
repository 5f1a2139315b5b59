package export

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdash/coverdash-server/internal/artwork"
	"github.com/coverdash/coverdash-server/internal/cache"
	"github.com/coverdash/coverdash-server/internal/errors"
	"github.com/coverdash/coverdash-server/internal/media/covers"
	"github.com/coverdash/coverdash-server/internal/session"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	memo, err := cache.New(nil, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = memo.Close() })
	logger := slog.New(slog.DiscardHandler)
	return NewBuilder(covers.NewFetcher(memo, logger, time.Second), logger)
}

// imageServer serves fake image bytes, returning 404 for paths in fail.
func imageServer(t *testing.T, fail map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail[r.URL.Path] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("bytes-of-" + r.URL.Path))
	}))
}

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		files[f.Name] = string(content)
	}
	return files
}

func sessionWith(results []session.Result, selections map[int]string) *session.Session {
	sess := session.New(results)
	for idx, url := range selections {
		if err := sess.Select(idx, url); err != nil {
			panic(err)
		}
	}
	return sess
}

func TestBuild_ArchivesSelections(t *testing.T) {
	server := imageServer(t, nil)
	defer server.Close()

	sess := sessionWith([]session.Result{
		{
			Request: artwork.SearchRequest{Artist: "Daft Punk", Kind: artwork.KindArtistPhoto},
			Candidates: artwork.CandidateSet{
				{ImageURL: server.URL + "/daft.jpg"},
			},
		},
		{
			Request: artwork.SearchRequest{
				Artist: "AC/DC", Track: "Back in Black", Album: "Back in Black",
				Kind: artwork.KindTrackOrAlbum,
			},
			Candidates: artwork.CandidateSet{
				{ImageURL: server.URL + "/bib.jpg"},
			},
		},
	}, map[int]string{
		0: server.URL + "/daft.jpg",
		1: server.URL + "/bib.jpg",
	})

	b := newBuilder(t)
	data, err := b.Build(context.Background(), sess)
	require.NoError(t, err)

	files := readArchive(t, data)
	require.Len(t, files, 2)
	assert.Equal(t, "bytes-of-/daft.jpg", files["Daft Punk_artist_photo.jpg"])
	// Slashes in names are made filesystem safe.
	assert.Equal(t, "bytes-of-/bib.jpg", files["AC_DC_Back in Black.jpg"])
}

func TestBuild_SkipsFailedFetches(t *testing.T) {
	server := imageServer(t, map[string]bool{"/gone.jpg": true})
	defer server.Close()

	sess := sessionWith([]session.Result{
		{
			Request:    artwork.SearchRequest{Artist: "Queen", Kind: artwork.KindArtistPhoto},
			Candidates: artwork.CandidateSet{{ImageURL: server.URL + "/gone.jpg"}},
		},
		{
			Request:    artwork.SearchRequest{Artist: "Daft Punk", Kind: artwork.KindArtistPhoto},
			Candidates: artwork.CandidateSet{{ImageURL: server.URL + "/daft.jpg"}},
		},
	}, map[int]string{
		0: server.URL + "/gone.jpg",
		1: server.URL + "/daft.jpg",
	})

	b := newBuilder(t)
	data, err := b.Build(context.Background(), sess)
	require.NoError(t, err)

	files := readArchive(t, data)
	require.Len(t, files, 1)
	assert.Contains(t, files, "Daft Punk_artist_photo.jpg")
}

func TestBuild_DuplicateNamesGetSuffixes(t *testing.T) {
	server := imageServer(t, nil)
	defer server.Close()

	results := make([]session.Result, 3)
	selections := make(map[int]string)
	paths := []string{"/a.jpg", "/b.jpg", "/c.jpg"}
	for i, p := range paths {
		results[i] = session.Result{
			Request: artwork.SearchRequest{
				Artist: "Daft Punk", Track: "One More Time", Album: "One More Time",
				Kind: artwork.KindTrackOrAlbum,
			},
			Candidates: artwork.CandidateSet{{ImageURL: server.URL + p}},
		}
		selections[i] = server.URL + p
	}

	b := newBuilder(t)
	data, err := b.Build(context.Background(), sessionWith(results, selections))
	require.NoError(t, err)

	files := readArchive(t, data)
	assert.Contains(t, files, "Daft Punk_One More Time.jpg")
	assert.Contains(t, files, "Daft Punk_One More Time_2.jpg")
	assert.Contains(t, files, "Daft Punk_One More Time_3.jpg")
}

func TestBuild_NoSelections(t *testing.T) {
	sess := session.New([]session.Result{
		{Request: artwork.SearchRequest{Artist: "Queen", Kind: artwork.KindArtistPhoto}},
	})

	b := newBuilder(t)
	_, err := b.Build(context.Background(), sess)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestBuild_AllFetchesFail(t *testing.T) {
	server := imageServer(t, map[string]bool{"/gone.jpg": true})
	defer server.Close()

	sess := sessionWith([]session.Result{
		{
			Request:    artwork.SearchRequest{Artist: "Queen", Kind: artwork.KindArtistPhoto},
			Candidates: artwork.CandidateSet{{ImageURL: server.URL + "/gone.jpg"}},
		},
	}, map[int]string{0: server.URL + "/gone.jpg"})

	b := newBuilder(t)
	_, err := b.Build(context.Background(), sess)
	assert.True(t, errors.Is(err, errors.ErrImageFetch))
}
