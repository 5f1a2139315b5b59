// Package session holds batch search results and per-entry artwork
// selections in memory. Sessions live for the process lifetime only;
// a bounded registry evicts the oldest when full.
package session

import (
	"sync"
	"time"

	"github.com/coverdash/coverdash-server/internal/artwork"
	"github.com/coverdash/coverdash-server/internal/errors"
	"github.com/coverdash/coverdash-server/internal/id"
)

// Result is the outcome of one batch entry's catalog search.
type Result struct {
	Request    artwork.SearchRequest `json:"request"`
	Candidates artwork.CandidateSet  `json:"candidates"`
	Warnings   []string              `json:"warnings,omitempty"`
	Best       *artwork.Candidate    `json:"best,omitempty"`
}

// Session is one batch search with its results and selections.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Results   []Result  `json:"results"`

	mu         sync.RWMutex
	selections map[int]string // entry index -> selected image URL
}

// New creates a session wrapping a batch's results.
func New(results []Result) *Session {
	return &Session{
		ID:         id.MustGenerate("ses"),
		CreatedAt:  time.Now().UTC(),
		Results:    results,
		selections: make(map[int]string),
	}
}

// Result returns the result at idx.
func (s *Session) Result(idx int) (*Result, error) {
	if idx < 0 || idx >= len(s.Results) {
		return nil, errors.NotFoundf("entry %d not found in session %s", idx, s.ID)
	}
	return &s.Results[idx], nil
}

// Select records imageURL as the selection for entry idx, overwriting
// any previous choice. The URL must be one of the entry's candidates;
// anything else is rejected rather than silently stored, since the
// export step would otherwise fetch an image the user never saw.
func (s *Session) Select(idx int, imageURL string) error {
	result, err := s.Result(idx)
	if err != nil {
		return err
	}
	if !result.Candidates.Contains(imageURL) {
		return errors.Validationf("image URL is not a candidate for entry %d", idx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[idx] = imageURL
	return nil
}

// Unselect removes the selection for entry idx, if any.
func (s *Session) Unselect(idx int) error {
	if _, err := s.Result(idx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, idx)
	return nil
}

// ClearSelections removes every selection.
func (s *Session) ClearSelections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.selections)
}

// Selections returns a copy of the selection map.
func (s *Session) Selections() map[int]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]string, len(s.selections))
	for k, v := range s.selections {
		out[k] = v
	}
	return out
}
