package itunes

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdash/coverdash-server/internal/artwork"
	"github.com/coverdash/coverdash-server/internal/cache"
	"github.com/coverdash/coverdash-server/internal/errors"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	memo, err := cache.New(nil, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = memo.Close() })

	c := NewClient(slog.New(slog.DiscardHandler), memo, time.Second, 5, false)
	// Tests never wait on the production rate limit.
	c.rateLimiter.SetLimit(1000)
	if server != nil {
		c.searchURL = server.URL
	}
	return c
}

func TestFullResURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "standard thumbnail",
			in:   "https://is1-ssl.mzstatic.com/image/thumb/abc/100x100bb.jpg",
			want: "https://is1-ssl.mzstatic.com/image/thumb/abc/3000x3000bb.jpg",
		},
		{
			name: "60px thumbnail",
			in:   "https://is1-ssl.mzstatic.com/image/thumb/abc/60x60bb.jpg",
			want: "https://is1-ssl.mzstatic.com/image/thumb/abc/3000x3000bb.jpg",
		},
		{
			name: "no size token",
			in:   "https://example.com/cover.jpg",
			want: "",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FullResURL(tt.in))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		result searchResult
		want   artwork.ArtworkKind
	}{
		{
			name:   "collection name mentions single",
			result: searchResult{CollectionName: "Bad Guy - Single", TrackName: "Bad Guy"},
			want:   artwork.Single,
		},
		{
			name:   "track name equals collection name",
			result: searchResult{CollectionName: "bad guy", TrackName: "Bad Guy"},
			want:   artwork.Single,
		},
		{
			name:   "regular album",
			result: searchResult{CollectionName: "Discovery", TrackName: "One More Time"},
			want:   artwork.Album,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(&tt.result))
		})
	}
}

func TestSearch_TrackRunsTwoQueriesAndDedupes(t *testing.T) {
	var entities []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entity := r.URL.Query().Get("entity")
		entities = append(entities, entity)
		assert.Equal(t, "Daft Punk One More Time", r.URL.Query().Get("term"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		if entity == "musicTrack" {
			_, _ = w.Write([]byte(`{"resultCount":1,"results":[
				{"wrapperType":"track","collectionName":"Discovery","trackName":"One More Time",
				 "artistName":"Daft Punk","artworkUrl100":"http://img/discovery/100x100bb.jpg"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"resultCount":2,"results":[
			{"wrapperType":"collection","collectionName":"Discovery","artistName":"Daft Punk",
			 "artworkUrl100":"http://img/discovery/100x100bb.jpg"},
			{"wrapperType":"collection","collectionName":"Homework","artistName":"Daft Punk",
			 "artworkUrl100":"http://img/homework/100x100bb.jpg"}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)

	got, err := c.Search(context.Background(), artwork.SearchRequest{
		Artist: "Daft Punk",
		Track:  "One More Time",
		Album:  "One More Time",
		Kind:   artwork.KindTrackOrAlbum,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"musicTrack", "album"}, entities)

	// Discovery appears in both result sets but survives once.
	require.Len(t, got, 2)
	assert.Equal(t, "http://img/discovery/3000x3000bb.jpg", got[0].ImageURL)
	assert.Equal(t, "http://img/discovery/100x100bb.jpg", got[0].PreviewURL)
	assert.Equal(t, "One More Time", got[0].TrackName)
	assert.Equal(t, "http://img/homework/3000x3000bb.jpg", got[1].ImageURL)
	assert.Equal(t, artwork.SourceITunes, got[0].Source)
}

func TestSearch_ArtistPhotoUsesPopularAlbums(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Daft Punk", r.URL.Query().Get("term"))
		assert.Equal(t, "album", r.URL.Query().Get("entity"))
		assert.Equal(t, "popular", r.URL.Query().Get("sort"))

		_, _ = w.Write([]byte(`{"resultCount":1,"results":[
			{"wrapperType":"collection","collectionName":"Random Access Memories",
			 "artistName":"Daft Punk","artworkUrl100":"http://img/ram/100x100bb.jpg"}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)

	got, err := c.Search(context.Background(), artwork.SearchRequest{
		Artist: "Daft Punk",
		Kind:   artwork.KindArtistPhoto,
	})
	require.NoError(t, err)

	// The catalog has no artist photos, so the results stay labeled as
	// the album art they are.
	require.Len(t, got, 1)
	assert.Equal(t, artwork.Album, got[0].Kind)
	assert.Equal(t, "Random Access Memories", got[0].DisplayName)
}

func TestSearch_AlbumTermFallsBackToTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Daft Punk One More Time", r.URL.Query().Get("term"))
		assert.Equal(t, "album", r.URL.Query().Get("entity"))

		_, _ = w.Write([]byte(`{"resultCount":1,"results":[
			{"wrapperType":"collection","collectionName":"Discovery","artistName":"Daft Punk",
			 "artworkUrl100":"http://img/discovery/100x100bb.jpg"}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)

	got, err := c.Search(context.Background(), artwork.SearchRequest{
		Artist: "Daft Punk",
		Track:  "One More Time",
		Kind:   artwork.KindAlbum,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSearch_DropsResultsWithoutArtwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultCount":2,"results":[
			{"wrapperType":"collection","collectionName":"No Art","artistName":"X"},
			{"wrapperType":"collection","collectionName":"Has Art","artistName":"X",
			 "artworkUrl100":"http://img/art/100x100bb.jpg"}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)

	got, err := c.Search(context.Background(), artwork.SearchRequest{
		Artist: "X", Album: "Has Art", Kind: artwork.KindAlbum,
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Has Art", got[0].DisplayName)
}

func TestSearch_Memoized(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"resultCount":1,"results":[
			{"wrapperType":"collection","collectionName":"Discovery","artistName":"Daft Punk",
			 "artworkUrl100":"http://img/discovery/100x100bb.jpg"}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)
	req := artwork.SearchRequest{Artist: "Daft Punk", Album: "Discovery", Kind: artwork.KindAlbum}

	first, err := c.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := c.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_ServerErrorIsCatalogRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(t, server)

	_, err := c.Search(context.Background(), artwork.SearchRequest{
		Artist: "Daft Punk", Kind: artwork.KindArtistPhoto,
	})
	assert.True(t, errors.Is(err, errors.ErrCatalogRequest))
}
