package api

import (
	"time"

	"github.com/coverdash/coverdash-server/internal/artwork"
	"github.com/coverdash/coverdash-server/internal/session"
)

// BatchSummary reports batch-level progress counts.
type BatchSummary struct {
	Total    int `json:"total" doc:"Number of entries in the batch"`
	Found    int `json:"found" doc:"Entries with at least one candidate"`
	NotFound int `json:"not_found" doc:"Entries with no candidates"`
}

// EntryResult is one entry's search outcome in API responses.
type EntryResult struct {
	Request    artwork.SearchRequest `json:"request"`
	Candidates artwork.CandidateSet  `json:"candidates"`
	Warnings   []string              `json:"warnings,omitempty"`
	Best       *artwork.Candidate    `json:"best,omitempty" doc:"Highest-priority candidate"`
	Selected   string                `json:"selected,omitempty" doc:"Currently selected image URL"`
}

// SessionResponse contains a session's full state in API responses.
type SessionResponse struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Summary   BatchSummary  `json:"summary"`
	Results   []EntryResult `json:"results"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

func toSessionResponse(sess *session.Session) SessionResponse {
	selections := sess.Selections()

	resp := SessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Results:   make([]EntryResult, len(sess.Results)),
	}
	resp.Summary.Total = len(sess.Results)

	for i := range sess.Results {
		r := &sess.Results[i]
		resp.Results[i] = EntryResult{
			Request:    r.Request,
			Candidates: r.Candidates,
			Warnings:   r.Warnings,
			Best:       r.Best,
			Selected:   selections[i],
		}
		if len(r.Candidates) > 0 {
			resp.Summary.Found++
		}
	}
	resp.Summary.NotFound = resp.Summary.Total - resp.Summary.Found
	return resp
}
