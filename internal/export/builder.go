// Package export builds ZIP archives of selected artwork. The archive
// is assembled in memory from freshly resolved selections on every
// request, so it always reflects the current selection state.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/coverdash/coverdash-server/internal/errors"
	"github.com/coverdash/coverdash-server/internal/media/covers"
	"github.com/coverdash/coverdash-server/internal/normalize"
	"github.com/coverdash/coverdash-server/internal/session"
)

// ArchiveName is the download filename served with the archive.
const ArchiveName = "selected_music_artwork.zip"

// artistPhotoLabel names artist photo files in the archive.
const artistPhotoLabel = "artist_photo"

// Builder assembles artwork archives from session selections.
type Builder struct {
	fetcher *covers.Fetcher
	logger  *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(fetcher *covers.Fetcher, logger *slog.Logger) *Builder {
	return &Builder{fetcher: fetcher, logger: logger}
}

// Build fetches every selected image and returns them as ZIP bytes.
// Entries whose image cannot be fetched are skipped with a warning;
// the archive fails only when nothing could be written.
func (b *Builder) Build(ctx context.Context, sess *session.Session) ([]byte, error) {
	selections := sess.Selections()
	if len(selections) == 0 {
		return nil, errors.Validation("no artwork selected")
	}

	// Stable archive order regardless of map iteration.
	indices := make([]int, 0, len(selections))
	for idx := range selections {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	names := make(map[string]int)
	written := 0
	for _, idx := range indices {
		result, err := sess.Result(idx)
		if err != nil {
			// Selections are validated against results at write time,
			// so this only happens for a corrupted session.
			return nil, err
		}

		data, err := b.fetcher.Fetch(ctx, selections[idx])
		if err != nil {
			b.logger.Warn("skipping archive entry",
				"session_id", sess.ID,
				"entry", idx,
				"url", selections[idx],
				"error", err,
			)
			continue
		}

		name := archiveFilename(result, names)
		w, err := zw.Create(name)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInternal, "create archive entry %s", name)
		}
		if _, err := w.Write(data); err != nil {
			return nil, errors.Wrapf(err, errors.CodeInternal, "write archive entry %s", name)
		}
		written++
	}

	if written == 0 {
		return nil, errors.ImageFetch("no selected images could be fetched")
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "finalize archive")
	}

	b.logger.Info("built artwork archive",
		"session_id", sess.ID,
		"entries", written,
		"size", buf.Len(),
	)
	return buf.Bytes(), nil
}

// archiveFilename derives "{artist}_{label}.jpg", suffixing duplicates
// with _2, _3 and so on.
func archiveFilename(result *session.Result, taken map[string]int) string {
	label := result.Request.Track
	if label == "" {
		label = result.Request.Album
	}
	if label == "" {
		label = artistPhotoLabel
	}

	base := normalize.SafeFilename(result.Request.Artist) + "_" + normalize.SafeFilename(label)

	taken[base]++
	if n := taken[base]; n > 1 {
		return fmt.Sprintf("%s_%d.jpg", base, n)
	}
	return base + ".jpg"
}
