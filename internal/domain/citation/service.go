package citation

import (
	"context"

	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fetcher — citation retrieval service
// ─────────────────────────────────────────────────────────────────────────────

// Fetcher retrieves the citation neighbourhood of a dataset.
type Fetcher struct {
	repo   Repository
	logger logging.Logger
}

// NewFetcher wires a Fetcher.  A nil logger falls back to the no-op logger.
func NewFetcher(repo Repository, logger logging.Logger) *Fetcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Fetcher{
		repo:   repo,
		logger: logger.Named("citation"),
	}
}

// Fetch resolves the applications to publications and collects forward and
// backward edges.  The application→publication indirection is the whole
// point of this service: querying the citation table by application id
// directly returns nothing, because edges are keyed by publication id.
//
// Empty inputs short-circuit: no applications, or applications with no
// publications, yield an empty Set with no citation queries issued.
func (f *Fetcher) Fetch(ctx context.Context, applnIDs []int64) (*Set, error) {
	if len(applnIDs) == 0 {
		return &Set{}, nil
	}

	pubs, err := f.repo.ResolvePublications(ctx, applnIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePublicationResolveFailed, "failed to resolve publications")
	}
	if len(pubs) == 0 {
		f.logger.Warn("no publications found for dataset",
			logging.Int("applications", len(applnIDs)))
		return &Set{}, nil
	}

	publnIDs := make([]int64, len(pubs))
	for i, p := range pubs {
		publnIDs[i] = p.PublnID
	}

	forward, err := f.repo.ForwardCitations(ctx, publnIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCitationQueryFailed, "forward citation query failed")
	}

	backward, err := f.repo.BackwardCitations(ctx, publnIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCitationQueryFailed, "backward citation query failed")
	}

	set := &Set{Publications: pubs, Forward: forward, Backward: backward}

	f.logger.Info("citations fetched",
		logging.Int("applications", len(applnIDs)),
		logging.Int("publications", len(pubs)),
		logging.Int("forward", len(forward)),
		logging.Int("backward", len(backward)),
	)
	return set, nil
}
