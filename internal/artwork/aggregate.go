package artwork

// Aggregate combines the two catalogs' candidate sets for one request.
//
// This is a source-level preference, not a per-item merge: when Spotify
// returned anything at all, its full list wins and iTunes is discarded
// for that entry; iTunes only fills in when Spotify came back empty.
// Mixing sources per item would make the per-candidate source badge
// meaningless to the user.
func Aggregate(spotify, itunes CandidateSet) CandidateSet {
	if len(spotify) > 0 {
		return spotify
	}
	return itunes
}
