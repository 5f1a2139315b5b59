package service

import (
	"context"
	"log/slog"

	"github.com/coverdash/coverdash-server/internal/errors"
	"github.com/coverdash/coverdash-server/internal/export"
	"github.com/coverdash/coverdash-server/internal/media/covers"
	"github.com/coverdash/coverdash-server/internal/media/images"
	"github.com/coverdash/coverdash-server/internal/session"
)

// ExportService manages per-entry selections and turns them into
// downloadable artwork.
type ExportService struct {
	registry *session.Registry
	builder  *export.Builder
	fetcher  *covers.Fetcher
	logger   *slog.Logger
}

// NewExportService creates an ExportService.
func NewExportService(registry *session.Registry, builder *export.Builder, fetcher *covers.Fetcher, logger *slog.Logger) *ExportService {
	return &ExportService{
		registry: registry,
		builder:  builder,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// Session returns the session with the given ID.
func (s *ExportService) Session(sessionID string) (*session.Session, error) {
	return s.registry.Get(sessionID)
}

// Select records a selection for one entry of a session.
func (s *ExportService) Select(sessionID string, idx int, imageURL string) (*session.Session, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Select(idx, imageURL); err != nil {
		return nil, err
	}
	return sess, nil
}

// Unselect removes the selection for one entry of a session.
func (s *ExportService) Unselect(sessionID string, idx int) error {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return err
	}
	return sess.Unselect(idx)
}

// ClearSelections removes every selection from a session.
func (s *ExportService) ClearSelections(sessionID string) error {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return err
	}
	sess.ClearSelections()
	return nil
}

// Archive builds a ZIP of the session's selected artwork.
func (s *ExportService) Archive(ctx context.Context, sessionID string) ([]byte, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.builder.Build(ctx, sess)
}

// Image fetches the selected image for one entry, plus its BlurHash
// placeholder. Unlike the archive, a fetch failure here is surfaced so
// the client can render an explicit unavailable state.
func (s *ExportService) Image(ctx context.Context, sessionID string, idx int) ([]byte, string, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, "", err
	}
	if _, err := sess.Result(idx); err != nil {
		return nil, "", err
	}

	url, ok := sess.Selections()[idx]
	if !ok {
		return nil, "", errors.NotFoundf("no selection for entry %d", idx)
	}

	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}

	hash, err := images.ComputeBlurHash(data)
	if err != nil {
		// The placeholder is best-effort; the image itself is fine.
		s.logger.Warn("failed to compute blurhash", "url", url, "error", err)
		hash = ""
	}
	return data, hash, nil
}
