package citation

import "context"

// Repository is the read-side contract for citation data.
type Repository interface {
	// ResolvePublications returns the publications belonging to the given
	// applications.  Applications without publications simply produce no
	// rows; an empty input returns an empty slice without a query.
	ResolvePublications(ctx context.Context, applnIDs []int64) ([]PublicationRef, error)

	// ForwardCitations returns edges whose cited side is one of publnIDs.
	ForwardCitations(ctx context.Context, publnIDs []int64) ([]Edge, error)

	// BackwardCitations returns edges whose citing side is one of publnIDs.
	BackwardCitations(ctx context.Context, publnIDs []int64) ([]Edge, error)
}
