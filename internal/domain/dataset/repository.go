package dataset

import "context"

// ApplicationRepository is the read-side contract against the source patent
// database.  Implementations issue a single materialising query per call —
// no pagination or streaming.
type ApplicationRepository interface {
	// FindByKeywords returns applications whose title or abstract contains
	// any of the keywords (case-insensitive substring match), filtered to
	// the filing-year window.  An empty keyword list returns an empty slice
	// without touching the database.
	FindByKeywords(ctx context.Context, keywords []string, yearFrom, yearTo, limit int) ([]Application, error)

	// FindByClassPrefixes returns applications carrying at least one IPC or
	// CPC symbol starting with any of the prefixes, filtered to the
	// filing-year window.  An empty prefix list returns an empty slice
	// without touching the database.
	FindByClassPrefixes(ctx context.Context, prefixes []string, yearFrom, yearTo, limit int) ([]Application, error)
}
