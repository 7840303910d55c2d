package geography

import (
	"context"

	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Enricher — geographic enrichment service
// ─────────────────────────────────────────────────────────────────────────────

// Enricher resolves primary applicant countries and buckets them into
// regions.
type Enricher struct {
	repo      ApplicantRepository
	overrides map[string]string
	logger    logging.Logger
}

// NewEnricher wires an Enricher.  overrides extends or corrects the builtin
// country→region table; a nil logger falls back to the no-op logger.
func NewEnricher(repo ApplicantRepository, overrides map[string]string, logger logging.Logger) *Enricher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Enricher{
		repo:      repo,
		overrides: overrides,
		logger:    logger.Named("geo"),
	}
}

// Enrich fetches primary applicant countries for the applications, assigns
// regions, and builds the frequency table.  Applications without a
// resolvable applicant country are omitted, not failed; an empty input
// yields an empty Summary with no query.
func (e *Enricher) Enrich(ctx context.Context, applnIDs []int64) (*Summary, error) {
	if len(applnIDs) == 0 {
		return summarize(nil), nil
	}

	applicants, err := e.repo.PrimaryApplicantCountries(ctx, applnIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeGeoQueryFailed, "applicant country query failed")
	}

	other := 0
	for i := range applicants {
		applicants[i].Region = RegionFor(applicants[i].Country, e.overrides)
		if applicants[i].Region == RegionOther {
			other++
		}
	}

	s := summarize(applicants)

	e.logger.Info("geographic enrichment complete",
		logging.Int("applications", len(applnIDs)),
		logging.Int("resolved", len(applicants)),
		logging.Int64("countries", s.DistinctCountries()),
		logging.Int("unmapped", other),
	)
	return s, nil
}
