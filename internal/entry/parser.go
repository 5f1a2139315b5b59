// Package entry parses operator-supplied batch input (pasted text or CSV
// uploads) into artwork search requests.
package entry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/coverdash/coverdash-server/internal/artwork"
	"github.com/coverdash/coverdash-server/internal/errors"
)

// separator splits "Artist - Title" lines. Only the first occurrence
// counts, so titles that themselves contain " - " stay intact.
const separator = " - "

// artistColumn is the required CSV column. Matching is case-sensitive.
const artistColumn = "Artist"

// Optional CSV columns.
const (
	trackColumn = "Track"
	albumColumn = "Album"
)

// ParseText parses newline-separated entries.
//
// Supported formats:
//
//	"Artist"                  -> artist photo search
//	"Artist - Song or Album"  -> track-or-album search
func ParseText(raw string) []artwork.SearchRequest {
	var entries []artwork.SearchRequest
	for line := range strings.Lines(raw) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		artist, title, found := strings.Cut(line, separator)
		if !found {
			entries = append(entries, artwork.SearchRequest{
				Artist: line,
				Kind:   artwork.KindArtistPhoto,
			})
			continue
		}

		// The caller doesn't yet know whether the title names a track or
		// an album, so both fields carry it and search tries both.
		title = strings.TrimSpace(title)
		entries = append(entries, artwork.SearchRequest{
			Artist: strings.TrimSpace(artist),
			Track:  title,
			Album:  title,
			Kind:   artwork.KindTrackOrAlbum,
		})
	}
	return entries
}

// ParseCSV parses a CSV upload with a header row. The Artist column is
// required; Track and Album are optional. Rows with a blank artist are
// skipped. Returns a MissingColumn domain error when Artist is absent.
func ParseCSV(r io.Reader) ([]artwork.SearchRequest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.MissingColumn(artistColumn)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "could not read CSV header")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	artistIdx, ok := cols[artistColumn]
	if !ok {
		return nil, errors.MissingColumn(artistColumn)
	}
	trackIdx, hasTrack := cols[trackColumn]
	albumIdx, hasAlbum := cols[albumColumn]

	var entries []artwork.SearchRequest
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidation, fmt.Sprintf("malformed CSV at line %d", line))
		}

		artist := cellValue(record, artistIdx)
		if artist == "" {
			continue
		}

		var track, album string
		if hasTrack {
			track = cellValue(record, trackIdx)
		}
		if hasAlbum {
			album = cellValue(record, albumIdx)
		}

		kind := artwork.KindTrackOrAlbum
		if track == "" {
			kind = artwork.KindArtistPhoto
		}

		entries = append(entries, artwork.SearchRequest{
			Artist: artist,
			Track:  track,
			Album:  album,
			Kind:   kind,
		})
	}

	return entries, nil
}

// cellValue extracts and normalizes one cell. Spreadsheet tools that
// round-trip through numeric libraries stringify absent values as the
// literal "nan"; those must read as empty before the blank check.
func cellValue(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	v := strings.TrimSpace(record[idx])
	if v == "nan" {
		return ""
	}
	return v
}
