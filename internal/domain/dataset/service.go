package dataset

import (
	"context"

	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Builder — dataset construction service
// ─────────────────────────────────────────────────────────────────────────────

// Builder constructs analysis datasets by running the keyword and
// classification queries and combining their results.
type Builder struct {
	repo   ApplicationRepository
	logger logging.Logger
}

// NewBuilder wires a Builder.  A nil logger falls back to the no-op logger.
func NewBuilder(repo ApplicationRepository, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Builder{
		repo:   repo,
		logger: logger.Named("dataset"),
	}
}

// Build runs the two match queries described by filter and combines them
// according to mode.  The result is deterministic: applications are ordered
// by ApplnID, and union/intersection are pure set operations on ApplnID.
//
// Empty inputs degrade rather than fail: a filter with no keywords produces
// an empty keyword set, and an intersection with an empty side is empty.
func (b *Builder) Build(ctx context.Context, filter Filter, mode CombineMode) (*Dataset, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if mode != CombineUnion && mode != CombineIntersection {
		return nil, errors.New(errors.CodeDatasetInvalidMode,
			"combine mode must be union or intersection")
	}

	byKeyword, err := b.repo.FindByKeywords(ctx, filter.Keywords, filter.YearFrom, filter.YearTo, filter.Limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatasetQueryFailed, "keyword query failed")
	}

	byClass, err := b.repo.FindByClassPrefixes(ctx, filter.ClassPrefixes, filter.YearFrom, filter.YearTo, filter.Limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatasetQueryFailed, "classification query failed")
	}

	var apps []Application
	switch mode {
	case CombineUnion:
		apps = union(byKeyword, byClass)
	case CombineIntersection:
		apps = intersection(byKeyword, byClass)
	}
	sortApplications(apps)

	if filter.Limit > 0 && len(apps) > filter.Limit {
		apps = apps[:filter.Limit]
	}

	ds := &Dataset{Mode: mode, Applications: apps}

	b.logger.Info("dataset built",
		logging.String("mode", string(mode)),
		logging.Int("keyword_matches", len(byKeyword)),
		logging.Int("class_matches", len(byClass)),
		logging.Int64("size", ds.Size()),
		logging.Int64("families", ds.FamilyCount()),
	)
	return ds, nil
}

// union merges the two match sets, deduplicating on ApplnID.  When both
// sides carry the same application the keyword-side row wins; the two queries
// fetch the same columns so the choice is cosmetic.
func union(a, b []Application) []Application {
	out := make([]Application, 0, len(a)+len(b))
	seen := make(map[int64]struct{}, len(a)+len(b))
	for _, app := range a {
		if _, ok := seen[app.ApplnID]; ok {
			continue
		}
		seen[app.ApplnID] = struct{}{}
		out = append(out, app)
	}
	for _, app := range b {
		if _, ok := seen[app.ApplnID]; ok {
			continue
		}
		seen[app.ApplnID] = struct{}{}
		out = append(out, app)
	}
	return out
}

// intersection keeps applications whose ApplnID appears in both match sets.
func intersection(a, b []Application) []Application {
	inB := make(map[int64]struct{}, len(b))
	for _, app := range b {
		inB[app.ApplnID] = struct{}{}
	}
	out := make([]Application, 0, len(a))
	seen := make(map[int64]struct{}, len(a))
	for _, app := range a {
		if _, ok := inB[app.ApplnID]; !ok {
			continue
		}
		if _, dup := seen[app.ApplnID]; dup {
			continue
		}
		seen[app.ApplnID] = struct{}{}
		out = append(out, app)
	}
	return out
}
