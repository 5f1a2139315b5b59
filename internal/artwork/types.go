// Package artwork defines the core data model for cover artwork search:
// search requests, candidate images, and the aggregation rules that turn
// two catalogs' answers into one ranked list per entry.
package artwork

// SearchKind describes what a search request is looking for.
type SearchKind string

// Search kinds. KindTrackOrAlbum is produced by "Artist - Title" input
// where the title could name either a track or an album; downstream
// search tries both interpretations.
const (
	KindArtistPhoto  SearchKind = "artist"
	KindTrack        SearchKind = "track"
	KindAlbum        SearchKind = "album"
	KindTrackOrAlbum SearchKind = "track_or_album"
)

// Valid reports whether k is a known search kind.
func (k SearchKind) Valid() bool {
	switch k {
	case KindArtistPhoto, KindTrack, KindAlbum, KindTrackOrAlbum:
		return true
	}
	return false
}

// ArtworkKind classifies a candidate image.
type ArtworkKind string

// Artwork kinds as shown to the user.
const (
	ArtistPhoto ArtworkKind = "Artist Photo"
	Single      ArtworkKind = "Single"
	Album       ArtworkKind = "Album"
)

// Source identifies which catalog produced a candidate.
type Source string

// Catalog sources.
const (
	SourceSpotify Source = "spotify"
	SourceITunes  Source = "itunes"
)

// SearchRequest is one artist/track/album search unit. Immutable once
// created by the entry parser. Artist is always non-empty; Track and
// Album may be empty depending on Kind.
type SearchRequest struct {
	Artist string     `json:"artist"`
	Track  string     `json:"track"`
	Album  string     `json:"album"`
	Kind   SearchKind `json:"kind"`
}

// DisplayLabel returns the entry label shown in result listings.
func (r SearchRequest) DisplayLabel() string {
	if r.Track == "" {
		return r.Artist
	}
	return r.Artist + " - " + r.Track
}

// Candidate is one artwork image option returned by a catalog.
// ImageURL is the identity used for deduplication within one request's
// candidate list. Not mutated after creation.
type Candidate struct {
	Source      Source      `json:"source"`
	ImageURL    string      `json:"image_url"`
	PreviewURL  string      `json:"preview_url,omitempty"`
	Width       int         `json:"width,omitempty"`
	Height      int         `json:"height,omitempty"`
	DisplayName string      `json:"display_name"`
	Kind        ArtworkKind `json:"kind"`
	TrackName   string      `json:"track_name,omitempty"`
}

// CandidateSet is the ordered, deduplicated candidate list for one
// search request. Order is source priority first, then original catalog
// rank; dedup keeps the first occurrence of each image URL.
type CandidateSet []Candidate

// Dedupe returns a new set containing each image URL exactly once,
// keeping the first-encountered candidate and preserving order.
func (s CandidateSet) Dedupe() CandidateSet {
	if len(s) == 0 {
		return s
	}
	seen := make(map[string]bool, len(s))
	out := make(CandidateSet, 0, len(s))
	for _, c := range s {
		if seen[c.ImageURL] {
			continue
		}
		seen[c.ImageURL] = true
		out = append(out, c)
	}
	return out
}

// Best returns the default candidate: the first element, or nil when the
// set is empty.
func (s CandidateSet) Best() *Candidate {
	if len(s) == 0 {
		return nil
	}
	c := s[0]
	return &c
}

// Contains reports whether the set has a candidate with the given image URL.
func (s CandidateSet) Contains(imageURL string) bool {
	for _, c := range s {
		if c.ImageURL == imageURL {
			return true
		}
	}
	return false
}
