package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coverdash/coverdash-server/internal/catalog/spotify"
	"github.com/coverdash/coverdash-server/internal/errors"
	"github.com/coverdash/coverdash-server/internal/export"
)

// maxCSVMemory bounds multipart parsing buffers.
const maxCSVMemory = 10 << 20 // 10MB

// handleCSVSearch runs a batch search from an uploaded CSV file.
// Multipart uploads bypass huma, so this is a plain chi handler.
func (s *Server) handleCSVSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxCSVMemory); err != nil {
		s.writeError(w, errors.Validationf("parse multipart form: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, errors.Validation("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	creds := spotify.Credentials{
		ClientID:     r.FormValue("spotify_client_id"),
		ClientSecret: r.FormValue("spotify_client_secret"),
	}

	sess, err := s.searches.RunCSV(r.Context(), file, creds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// handleEntryImage serves the selected image bytes for one entry, with
// a BlurHash placeholder in the X-Blurhash header.
func (s *Server) handleEntryImage(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, errors.Validation("entry index must be an integer"))
		return
	}

	data, hash, err := s.exports.Image(r.Context(), chi.URLParam(r, "id"), idx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if hash != "" {
		w.Header().Set("X-Blurhash", hash)
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// handleArchive serves the session's selected artwork as a ZIP download.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	data, err := s.exports.Archive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.ArchiveName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// writeError writes a domain error with its mapped status, mirroring
// the huma error shape.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var domainErr *errors.Error
	if !errors.As(err, &domainErr) {
		domainErr = errors.Internal("internal error").WithCause(err)
		s.logger.Error("unhandled error", "error", err)
	}

	s.writeJSON(w, domainErr.HTTPStatus(), &APIError{
		Code:    string(domainErr.Code),
		Message: domainErr.Message,
		Details: domainErr.Details,
	})
}
