package insight

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patscope/internal/application/export"
	"github.com/patlytics/patscope/internal/domain/citation"
	"github.com/patlytics/patscope/internal/domain/dataset"
	"github.com/patlytics/patscope/internal/domain/geography"
	"github.com/patlytics/patscope/internal/domain/run"
	"github.com/patlytics/patscope/internal/infrastructure/messaging/kafka"
	"github.com/patlytics/patscope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeAppRepo struct {
	apps []dataset.Application
	err  error
}

func (f *fakeAppRepo) FindByKeywords(_ context.Context, keywords []string, _, _, _ int) ([]dataset.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(keywords) == 0 {
		return nil, nil
	}
	return f.apps, nil
}

func (f *fakeAppRepo) FindByClassPrefixes(_ context.Context, prefixes []string, _, _, _ int) ([]dataset.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(prefixes) == 0 {
		return nil, nil
	}
	return f.apps, nil
}

type fakeCitationRepo struct {
	pubs  []citation.PublicationRef
	edges []citation.Edge
}

func (f *fakeCitationRepo) ResolvePublications(context.Context, []int64) ([]citation.PublicationRef, error) {
	return f.pubs, nil
}

func (f *fakeCitationRepo) ForwardCitations(context.Context, []int64) ([]citation.Edge, error) {
	return f.edges, nil
}

func (f *fakeCitationRepo) BackwardCitations(context.Context, []int64) ([]citation.Edge, error) {
	return nil, nil
}

type fakeApplicantRepo struct {
	rows []geography.ApplicantCountry
}

func (f *fakeApplicantRepo) PrimaryApplicantCountries(context.Context, []int64) ([]geography.ApplicantCountry, error) {
	return f.rows, nil
}

type fakeRunRepo struct {
	created   []*run.Record
	finished  []*run.Record
	createErr error
}

func (f *fakeRunRepo) Create(_ context.Context, rec *run.Record) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeRunRepo) Finish(_ context.Context, rec *run.Record) error {
	f.finished = append(f.finished, rec)
	return nil
}

func (f *fakeRunRepo) Get(context.Context, uuid.UUID) (*run.Record, error) {
	return nil, errors.New(errors.CodeRunNotFound, "not found")
}

func (f *fakeRunRepo) List(context.Context, int) ([]*run.Record, error) {
	return nil, nil
}

type fakeEvents struct {
	events []kafka.RunEvent
	err    error
}

func (f *fakeEvents) PublishRunEvent(_ context.Context, event kafka.RunEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeExporter struct {
	reports []*export.Report
	paths   []string
	err     error
}

func (f *fakeExporter) Export(report *export.Report) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.reports = append(f.reports, report)
	return f.paths, nil
}

type fakeArchive struct {
	runs  map[string][]string
	err   error
	calls int
}

func (f *fakeArchive) StoreRunArtifacts(_ context.Context, runID string, paths []string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.runs == nil {
		f.runs = map[string][]string{}
	}
	f.runs[runID] = paths
	return nil
}

// fakeCache mirrors the real cache's round-trip semantics: values are stored
// as JSON and unmarshaled into the caller's destination.
type fakeCache struct {
	entries map[string][]byte
	loads   int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := f.entries[key]
	if !ok {
		return errors.New(errors.CodeNotFound, "cache miss")
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.entries, k)
	}
	return nil
}

func (f *fakeCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	if err := f.Get(ctx, key, dest); err == nil {
		return nil
	}
	f.loads++
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	if err := f.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return f.Get(ctx, key, dest)
}

func (f *fakeCache) Ping(context.Context) error { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func testDeps(appRepo *fakeAppRepo, citeRepo *fakeCitationRepo, geoRepo *fakeApplicantRepo) Deps {
	return Deps{
		Builder:  dataset.NewBuilder(appRepo, nil),
		Fetcher:  citation.NewFetcher(citeRepo, nil),
		Enricher: geography.NewEnricher(geoRepo, nil, nil),
	}
}

func sampleApps() []dataset.Application {
	return []dataset.Application{
		{ApplnID: 1, FilingYear: 2015, Authority: "EP", FamilyID: 100, Title: "Quantum sensor"},
		{ApplnID: 2, FilingYear: 2018, Authority: "US", FamilyID: 200, Title: "Qubit array"},
	}
}

func sampleFilter() dataset.Filter {
	return dataset.Filter{Keywords: []string{"quantum"}, ClassPrefixes: []string{"G06N"}}
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestPipeline_FullRun(t *testing.T) {
	appRepo := &fakeAppRepo{apps: sampleApps()}
	citeRepo := &fakeCitationRepo{
		pubs:  []citation.PublicationRef{{PublnID: 10, ApplnID: 1}},
		edges: []citation.Edge{{CitingPublnID: 90, CitedPublnID: 10}},
	}
	geoRepo := &fakeApplicantRepo{rows: []geography.ApplicantCountry{
		{ApplnID: 1, Country: "DE"},
		{ApplnID: 2, Country: "US"},
	}}

	deps := testDeps(appRepo, citeRepo, geoRepo)
	runs := &fakeRunRepo{}
	events := &fakeEvents{}
	exporter := &fakeExporter{paths: []string{"/tmp/x/dataset.csv"}}
	archive := &fakeArchive{}
	deps.Runs = runs
	deps.Events = events
	deps.Exporter = exporter
	deps.Archive = archive

	p, err := NewPipeline(deps)
	require.NoError(t, err)

	report, err := p.Run(context.Background(), sampleFilter(), dataset.CombineIntersection)
	require.NoError(t, err)

	assert.Equal(t, run.StatusCompleted, report.Run.Status)
	assert.Equal(t, int64(2), report.Run.Counts.Applications)
	assert.Equal(t, int64(1), report.Run.Counts.Citations)
	assert.Equal(t, int64(2), report.Run.Counts.Countries)
	assert.Equal(t, int64(2), report.Run.Counts.Families)
	assert.Equal(t, report.Score.Total, report.Run.Score)
	assert.Positive(t, report.Run.Score)

	require.Len(t, runs.created, 1)
	require.Len(t, runs.finished, 1)
	assert.Equal(t, run.StatusCompleted, runs.finished[0].Status)

	require.Len(t, events.events, 1)
	assert.Equal(t, kafka.EventRunCompleted, events.events[0].Type)
	assert.Equal(t, report.Run.ID.String(), events.events[0].RunID)

	require.Len(t, exporter.reports, 1)
	assert.Equal(t, exporter.paths, archive.runs[report.Run.ID.String()])
}

func TestPipeline_EmptyDatasetDegradesGracefully(t *testing.T) {
	deps := testDeps(&fakeAppRepo{}, &fakeCitationRepo{}, &fakeApplicantRepo{})
	runs := &fakeRunRepo{}
	deps.Runs = runs

	p, err := NewPipeline(deps)
	require.NoError(t, err)

	report, err := p.Run(context.Background(), dataset.Filter{}, dataset.CombineIntersection)
	require.NoError(t, err, "an empty dataset is a result, not a failure")

	assert.True(t, report.Dataset.IsEmpty())
	assert.True(t, report.Citations.IsEmpty())
	assert.True(t, report.Geo.IsEmpty())
	assert.Zero(t, report.Score.Total)
	assert.Equal(t, run.StatusCompleted, report.Run.Status)
}

func TestPipeline_QueryFailureMarksRunFailed(t *testing.T) {
	appRepo := &fakeAppRepo{err: errors.New(errors.CodeDBQueryError, "connection lost")}
	deps := testDeps(appRepo, &fakeCitationRepo{}, &fakeApplicantRepo{})
	runs := &fakeRunRepo{}
	events := &fakeEvents{}
	deps.Runs = runs
	deps.Events = events

	p, err := NewPipeline(deps)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), sampleFilter(), dataset.CombineUnion)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatasetQueryFailed, errors.GetCode(err))

	require.Len(t, runs.finished, 1)
	assert.Equal(t, run.StatusFailed, runs.finished[0].Status)
	assert.NotEmpty(t, runs.finished[0].Error)

	require.Len(t, events.events, 1)
	assert.Equal(t, kafka.EventRunFailed, events.events[0].Type)
}

func TestPipeline_RunStoreCreateFailureAborts(t *testing.T) {
	deps := testDeps(&fakeAppRepo{apps: sampleApps()}, &fakeCitationRepo{}, &fakeApplicantRepo{})
	deps.Runs = &fakeRunRepo{createErr: errors.New(errors.CodeDBQueryError, "insert failed")}

	p, err := NewPipeline(deps)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), sampleFilter(), dataset.CombineUnion)
	require.Error(t, err)
}

func TestPipeline_ExportFailureDoesNotFailRun(t *testing.T) {
	deps := testDeps(&fakeAppRepo{apps: sampleApps()}, &fakeCitationRepo{}, &fakeApplicantRepo{})
	deps.Exporter = &fakeExporter{err: errors.New(errors.CodeExportWriteFailed, "disk full")}
	archive := &fakeArchive{}
	deps.Archive = archive

	p, err := NewPipeline(deps)
	require.NoError(t, err)

	report, err := p.Run(context.Background(), sampleFilter(), dataset.CombineUnion)
	require.NoError(t, err, "artifact failures must not fail a persisted run")
	assert.Equal(t, run.StatusCompleted, report.Run.Status)
	assert.Zero(t, archive.calls, "nothing to archive when the export failed")
}

func TestPipeline_EventPublishFailureDoesNotFailRun(t *testing.T) {
	deps := testDeps(&fakeAppRepo{apps: sampleApps()}, &fakeCitationRepo{}, &fakeApplicantRepo{})
	deps.Events = &fakeEvents{err: errors.New(errors.CodeEventPublishError, "broker down")}

	p, err := NewPipeline(deps)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), sampleFilter(), dataset.CombineUnion)
	require.NoError(t, err)
}

func TestPipeline_OptionalCollaboratorsAllNil(t *testing.T) {
	deps := testDeps(&fakeAppRepo{apps: sampleApps()}, &fakeCitationRepo{}, &fakeApplicantRepo{})

	p, err := NewPipeline(deps)
	require.NoError(t, err)

	report, err := p.Run(context.Background(), sampleFilter(), dataset.CombineUnion)
	require.NoError(t, err)
	assert.NotNil(t, report.Score)
}

func TestPipeline_DatasetStageUsesCache(t *testing.T) {
	appRepo := &fakeAppRepo{apps: sampleApps()}
	deps := testDeps(appRepo, &fakeCitationRepo{}, &fakeApplicantRepo{})
	cache := newFakeCache()
	deps.Cache = cache

	p, err := NewPipeline(deps)
	require.NoError(t, err)

	first, err := p.Run(context.Background(), sampleFilter(), dataset.CombineUnion)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.loads)

	second, err := p.Run(context.Background(), sampleFilter(), dataset.CombineUnion)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.loads, "identical filter must hit the cached dataset")
	assert.Equal(t, first.Dataset.Applications, second.Dataset.Applications)

	_, err = p.Run(context.Background(), sampleFilter(), dataset.CombineIntersection)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.loads, "combine mode is part of the cache key")
}

func TestNewPipeline_RequiresCoreServices(t *testing.T) {
	_, err := NewPipeline(Deps{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))
}

func TestDatasetCacheKey_DependsOnEveryFilterField(t *testing.T) {
	base := sampleFilter()
	baseKey := datasetCacheKey(base, dataset.CombineIntersection)

	variants := []dataset.Filter{
		{Keywords: []string{"other"}, ClassPrefixes: base.ClassPrefixes},
		{Keywords: base.Keywords, ClassPrefixes: []string{"H01L"}},
		{Keywords: base.Keywords, ClassPrefixes: base.ClassPrefixes, YearFrom: 2000},
		{Keywords: base.Keywords, ClassPrefixes: base.ClassPrefixes, Limit: 10},
	}
	for _, v := range variants {
		assert.NotEqual(t, baseKey, datasetCacheKey(v, dataset.CombineIntersection))
	}
	assert.NotEqual(t, baseKey, datasetCacheKey(base, dataset.CombineUnion))
	assert.Equal(t, baseKey, datasetCacheKey(base, dataset.CombineIntersection), "key is deterministic")
}
