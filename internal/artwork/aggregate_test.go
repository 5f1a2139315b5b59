package artwork

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_PrefersSpotifyEntirely(t *testing.T) {
	spotify := CandidateSet{
		{Source: SourceSpotify, ImageURL: "https://img/s1"},
		{Source: SourceSpotify, ImageURL: "https://img/s2"},
	}
	itunes := CandidateSet{
		{Source: SourceITunes, ImageURL: "https://img/i1"},
	}

	got := Aggregate(spotify, itunes)

	// Spotify's full list wins; nothing from iTunes is interleaved.
	assert.Equal(t, spotify, got)
}

func TestAggregate_FallsBackToITunes(t *testing.T) {
	itunes := CandidateSet{
		{Source: SourceITunes, ImageURL: "https://img/i1"},
	}

	got := Aggregate(nil, itunes)
	assert.Equal(t, itunes, got)
}

func TestAggregate_BothEmpty(t *testing.T) {
	got := Aggregate(nil, nil)
	assert.Empty(t, got)
	assert.Nil(t, got.Best())
}
