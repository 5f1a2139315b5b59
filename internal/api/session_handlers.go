package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get session",
		Description: "Returns a session's results and current selections",
		Tags:        []string{"Sessions"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectArtwork",
		Method:      http.MethodPut,
		Path:        "/api/v1/sessions/{id}/selections/{index}",
		Summary:     "Select artwork for an entry",
		Description: "Records one of the entry's candidate images as its selection",
		Tags:        []string{"Sessions"},
	}, s.handleSelectArtwork)

	huma.Register(s.api, huma.Operation{
		OperationID: "unselectArtwork",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}/selections/{index}",
		Summary:     "Remove one entry's selection",
		Tags:        []string{"Sessions"},
	}, s.handleUnselectArtwork)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearSelections",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}/selections",
		Summary:     "Clear all selections",
		Tags:        []string{"Sessions"},
	}, s.handleClearSelections)
}

// GetSessionInput identifies a session.
type GetSessionInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// SelectionInput identifies one entry of a session.
type SelectionInput struct {
	ID    string `path:"id" doc:"Session ID"`
	Index int    `path:"index" doc:"Entry index within the session"`
}

// SelectArtworkInput carries a selection for one entry.
type SelectArtworkInput struct {
	ID    string `path:"id" doc:"Session ID"`
	Index int    `path:"index" doc:"Entry index within the session"`
	Body  struct {
		ImageURL string `json:"image_url" doc:"Candidate image URL to select" validate:"required,url"`
	}
}

// MessageOutput wraps a plain confirmation message.
type MessageOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func messageOutput(msg string) *MessageOutput {
	out := &MessageOutput{}
	out.Body.Message = msg
	return out
}

func (s *Server) handleGetSession(_ context.Context, input *GetSessionInput) (*SessionOutput, error) {
	sess, err := s.exports.Session(input.ID)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: toSessionResponse(sess)}, nil
}

func (s *Server) handleSelectArtwork(_ context.Context, input *SelectArtworkInput) (*SessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	sess, err := s.exports.Select(input.ID, input.Index, input.Body.ImageURL)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: toSessionResponse(sess)}, nil
}

func (s *Server) handleUnselectArtwork(_ context.Context, input *SelectionInput) (*MessageOutput, error) {
	if err := s.exports.Unselect(input.ID, input.Index); err != nil {
		return nil, err
	}
	return messageOutput("selection removed"), nil
}

func (s *Server) handleClearSelections(_ context.Context, input *GetSessionInput) (*MessageOutput, error) {
	if err := s.exports.ClearSelections(input.ID); err != nil {
		return nil, err
	}
	return messageOutput("selections cleared"), nil
}
