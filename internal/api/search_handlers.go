package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/coverdash/coverdash-server/internal/catalog/spotify"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createSearch",
		Method:        http.MethodPost,
		Path:          "/api/v1/searches",
		Summary:       "Run a batch artwork search",
		Description:   "Parses the submitted entries, queries both catalogs and returns a new session",
		Tags:          []string{"Searches"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSearch)
}

// SearchRequestBody is the batch search payload. Either free-form text
// or an entry list must be present.
type SearchRequestBody struct {
	Text    string   `json:"text,omitempty" doc:"Entries, one per line, 'Artist' or 'Artist - Title'" validate:"required_without=Entries"`
	Entries []string `json:"entries,omitempty" doc:"Entries as a list, same line format" validate:"required_without=Text"`

	SpotifyClientID     string `json:"spotify_client_id,omitempty" doc:"Overrides the configured Spotify client ID"`
	SpotifyClientSecret string `json:"spotify_client_secret,omitempty" doc:"Overrides the configured Spotify client secret"`
}

// CreateSearchInput is the Huma input for createSearch.
type CreateSearchInput struct {
	Body SearchRequestBody
}

func (s *Server) handleCreateSearch(ctx context.Context, input *CreateSearchInput) (*SessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	lines := input.Body.Text
	if len(input.Body.Entries) > 0 {
		joined := strings.Join(input.Body.Entries, "\n")
		if lines != "" {
			lines += "\n" + joined
		} else {
			lines = joined
		}
	}

	creds := spotify.Credentials{
		ClientID:     input.Body.SpotifyClientID,
		ClientSecret: input.Body.SpotifyClientSecret,
	}

	sess, err := s.searches.RunText(ctx, lines, creds)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: toSessionResponse(sess)}, nil
}
