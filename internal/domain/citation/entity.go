// Package citation fetches forward and backward citation edges for a set of
// applications.  Citations are recorded between publications, not
// applications, so every fetch starts by resolving applications to their
// publication identifiers.
package citation

// Origin is the source database's citation origin code, carried through
// opaquely (e.g. "SEA" for search report, "APP" for applicant).  The
// analysis never branches on it; it exists so exports keep the provenance.
type Origin string

// Edge is a single directed citation between two publications.
type Edge struct {
	// CitingPublnID identifies the publication making the citation.
	CitingPublnID int64 `json:"citing_publn_id"`

	// CitedPublnID identifies the cited publication.  Zero when the cited
	// document is non-patent literature.
	CitedPublnID int64 `json:"cited_publn_id"`

	Origin Origin `json:"origin,omitempty"`

	// CitingAuthority / CitedAuthority are the publication offices of the
	// two ends, filled when resolvable.
	CitingAuthority string `json:"citing_authority,omitempty"`
	CitedAuthority  string `json:"cited_authority,omitempty"`
}

// PublicationRef maps one publication back to its owning application.
type PublicationRef struct {
	PublnID   int64  `json:"publn_id"`
	ApplnID   int64  `json:"appln_id"`
	Authority string `json:"authority,omitempty"`
}

// Set holds both citation directions for one dataset.
//
// Forward edges have a dataset publication on the cited side (others cite
// us); backward edges have a dataset publication on the citing side (we cite
// others).
type Set struct {
	Publications []PublicationRef `json:"publications"`
	Forward      []Edge           `json:"forward"`
	Backward     []Edge           `json:"backward"`
}

// Total returns the combined edge count across both directions.
func (s *Set) Total() int64 {
	if s == nil {
		return 0
	}
	return int64(len(s.Forward) + len(s.Backward))
}

// IsEmpty reports whether no citation edges were found.
func (s *Set) IsEmpty() bool {
	return s.Total() == 0
}
