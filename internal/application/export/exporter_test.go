package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patscope/internal/config"
	"github.com/patlytics/patscope/internal/domain/citation"
	"github.com/patlytics/patscope/internal/domain/dataset"
	"github.com/patlytics/patscope/internal/domain/geography"
	"github.com/patlytics/patscope/internal/domain/quality"
	"github.com/patlytics/patscope/internal/domain/run"
	"github.com/patlytics/patscope/pkg/errors"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()

	counts := quality.Counts{Applications: 3, Citations: 2, Countries: 2, Families: 2}
	score, err := quality.Score(counts, quality.DefaultThresholds())
	require.NoError(t, err)

	return &Report{
		Run: &run.Record{
			ID:        uuid.MustParse("4b8c9a7e-1111-2222-3333-444455556666"),
			Status:    run.StatusCompleted,
			StartedAt: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
			Keywords:  []string{"quantum", "qubit"},
			Combine:   "intersection",
			YearFrom:  2010,
			YearTo:    2023,
			Counts:    counts,
			Score:     score.Total,
		},
		Dataset: &dataset.Dataset{
			Mode: dataset.CombineIntersection,
			Applications: []dataset.Application{
				{ApplnID: 1, FilingYear: 2015, Authority: "EP", FamilyID: 100, Title: "Quantum sensor"},
				{ApplnID: 2, FilingYear: 2018, Authority: "US", FamilyID: 100, Title: "Qubit, improved"},
				{ApplnID: 3, FilingYear: 2020, Authority: "EP", FamilyID: 200, Title: "Cryostat \"compact\""},
			},
		},
		Citations: &citation.Set{
			Forward:  []citation.Edge{{CitingPublnID: 90, CitedPublnID: 10, Origin: "SEA", CitingAuthority: "US", CitedAuthority: "EP"}},
			Backward: []citation.Edge{{CitingPublnID: 10, CitedPublnID: 91, Origin: "APP"}},
		},
		Geo: &geography.Summary{
			Applicants: []geography.ApplicantCountry{
				{ApplnID: 1, Country: "DE", Region: geography.RegionEurope},
				{ApplnID: 2, Country: "US", Region: geography.RegionNorthAmerica},
				{ApplnID: 3, Country: "DE", Region: geography.RegionEurope},
			},
			Countries: []geography.CountryCount{
				{Country: "DE", Region: geography.RegionEurope, Applications: 2},
				{Country: "US", Region: geography.RegionNorthAmerica, Applications: 1},
			},
			Regions: map[string]int64{geography.RegionEurope: 2, geography.RegionNorthAmerica: 1},
		},
		Score: &score,
	}
}

func TestExporter_AllFormats(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(config.ExportConfig{Dir: dir, Formats: []string{"csv", "json", "html"}}, nil)
	report := sampleReport(t)

	paths, err := e.Export(report)
	require.NoError(t, err)
	require.Len(t, paths, 5, "three CSVs plus JSON plus HTML")

	runDir := filepath.Join(dir, report.Run.ID.String())
	for _, name := range []string{DatasetCSV, CitationsCSV, CountriesCSV, ReportJSON, ReportHTML} {
		assert.FileExists(t, filepath.Join(runDir, name))
	}
}

func TestExporter_DatasetCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(config.ExportConfig{Dir: dir, Formats: []string{"csv"}}, nil)
	report := sampleReport(t)

	_, err := e.Export(report)
	require.NoError(t, err)

	apps, err := LoadDatasetCSV(filepath.Join(dir, report.Run.ID.String(), DatasetCSV))
	require.NoError(t, err)
	require.Len(t, apps, len(report.Dataset.Applications))

	for i, want := range report.Dataset.Applications {
		assert.Equal(t, want.ApplnID, apps[i].ApplnID)
		assert.Equal(t, want.FilingYear, apps[i].FilingYear)
		assert.Equal(t, want.Authority, apps[i].Authority)
		assert.Equal(t, want.FamilyID, apps[i].FamilyID)
		assert.Equal(t, want.Title, apps[i].Title, "quoting must survive the round trip")
	}
}

func TestExporter_CountryFrequencyPreservedInCSV(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(config.ExportConfig{Dir: dir, Formats: []string{"csv"}}, nil)
	report := sampleReport(t)

	_, err := e.Export(report)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, report.Run.ID.String(), CountriesCSV))
	require.NoError(t, err)
	assert.Equal(t,
		"country,region,applications\nDE,Europe,2\nUS,North America,1\n",
		string(data))
}

func TestExporter_JSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(config.ExportConfig{Dir: dir, Formats: []string{"json"}}, nil)
	report := sampleReport(t)

	_, err := e.Export(report)
	require.NoError(t, err)

	loaded, err := LoadReportJSON(filepath.Join(dir, report.Run.ID.String(), ReportJSON))
	require.NoError(t, err)
	assert.Equal(t, report.Run.ID, loaded.Run.ID)
	assert.Equal(t, report.Score.Total, loaded.Score.Total)
	assert.Equal(t, len(report.Dataset.Applications), len(loaded.Dataset.Applications))
}

func TestExporter_HTMLContainsScoreAndCountries(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(config.ExportConfig{Dir: dir, Formats: []string{"html"}}, nil)
	report := sampleReport(t)

	_, err := e.Export(report)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, report.Run.ID.String(), ReportHTML))
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, report.Run.ID.String())
	assert.Contains(t, html, "DE")
	assert.Contains(t, html, "Europe")
}

func TestExporter_UnknownFormat(t *testing.T) {
	e := NewExporter(config.ExportConfig{Dir: t.TempDir(), Formats: []string{"pdf"}}, nil)

	_, err := e.Export(sampleReport(t))
	require.Error(t, err)
	assert.Equal(t, errors.CodeExportFormatError, errors.GetCode(err))
}

func TestExporter_NilReport(t *testing.T) {
	e := NewExporter(config.ExportConfig{Dir: t.TempDir(), Formats: []string{"csv"}}, nil)

	_, err := e.Export(nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeExportFormatError, errors.GetCode(err))
}

func TestExporter_EmptySectionsProduceEmptyArtifacts(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(config.ExportConfig{Dir: dir, Formats: []string{"csv"}}, nil)
	report := sampleReport(t)
	report.Dataset = &dataset.Dataset{Mode: dataset.CombineIntersection}
	report.Citations = &citation.Set{}
	report.Geo = &geography.Summary{}

	paths, err := e.Export(report)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	apps, err := LoadDatasetCSV(filepath.Join(dir, report.Run.ID.String(), DatasetCSV))
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestLoadDatasetCSV_BadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("wrong,header\n"), 0o644))

	_, err := LoadDatasetCSV(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeExportReloadFailed, errors.GetCode(err))
}
