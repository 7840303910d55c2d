package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/patlytics/patscope/internal/domain/dataset"
	"github.com/patlytics/patscope/pkg/errors"
)

// Artifact file names, stable across runs so downstream tooling can glob.
const (
	DatasetCSV   = "dataset.csv"
	CitationsCSV = "citations.csv"
	CountriesCSV = "countries.csv"
)

var datasetHeader = []string{"appln_id", "filing_year", "authority", "family_id", "title"}

func (e *Exporter) exportCSV(outDir string, report *Report) ([]string, error) {
	var paths []string

	datasetPath := filepath.Join(outDir, DatasetCSV)
	if err := writeCSV(datasetPath, datasetHeader, datasetRows(report)); err != nil {
		return nil, err
	}
	paths = append(paths, datasetPath)

	citationsPath := filepath.Join(outDir, CitationsCSV)
	header := []string{"direction", "citing_publn_id", "cited_publn_id", "origin", "citing_authority", "cited_authority"}
	if err := writeCSV(citationsPath, header, citationRows(report)); err != nil {
		return nil, err
	}
	paths = append(paths, citationsPath)

	countriesPath := filepath.Join(outDir, CountriesCSV)
	if err := writeCSV(countriesPath, []string{"country", "region", "applications"}, countryRows(report)); err != nil {
		return nil, err
	}
	paths = append(paths, countriesPath)

	return paths, nil
}

func datasetRows(report *Report) [][]string {
	if report.Dataset == nil {
		return nil
	}
	rows := make([][]string, 0, len(report.Dataset.Applications))
	for _, a := range report.Dataset.Applications {
		rows = append(rows, []string{
			strconv.FormatInt(a.ApplnID, 10),
			strconv.Itoa(a.FilingYear),
			a.Authority,
			strconv.FormatInt(a.FamilyID, 10),
			a.Title,
		})
	}
	return rows
}

func citationRows(report *Report) [][]string {
	if report.Citations == nil {
		return nil
	}
	rows := make([][]string, 0, report.Citations.Total())
	for _, edge := range report.Citations.Forward {
		rows = append(rows, []string{
			"forward",
			strconv.FormatInt(edge.CitingPublnID, 10),
			strconv.FormatInt(edge.CitedPublnID, 10),
			string(edge.Origin),
			edge.CitingAuthority,
			edge.CitedAuthority,
		})
	}
	for _, edge := range report.Citations.Backward {
		rows = append(rows, []string{
			"backward",
			strconv.FormatInt(edge.CitingPublnID, 10),
			strconv.FormatInt(edge.CitedPublnID, 10),
			string(edge.Origin),
			edge.CitingAuthority,
			edge.CitedAuthority,
		})
	}
	return rows
}

func countryRows(report *Report) [][]string {
	if report.Geo == nil {
		return nil
	}
	rows := make([][]string, 0, len(report.Geo.Countries))
	for _, c := range report.Geo.Countries {
		rows = append(rows, []string{
			c.Country,
			c.Region,
			strconv.FormatInt(c.Applications, 10),
		})
	}
	return rows
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeExportWriteFailed, "failed to create CSV file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, errors.CodeExportWriteFailed, "failed to write CSV header")
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, errors.CodeExportWriteFailed, "failed to write CSV row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, errors.CodeExportWriteFailed, "failed to flush CSV")
	}
	return nil
}

// LoadDatasetCSV reads a previously exported dataset.csv back into memory.
// The abstract column is not exported, so reloaded applications carry an
// empty abstract.
func LoadDatasetCSV(path string) ([]dataset.Application, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExportReloadFailed, "failed to open dataset CSV")
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExportReloadFailed, "failed to parse dataset CSV")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.CodeExportReloadFailed, "dataset CSV has no header")
	}
	if len(records[0]) != len(datasetHeader) {
		return nil, errors.New(errors.CodeExportReloadFailed,
			fmt.Sprintf("unexpected dataset CSV header: %v", records[0]))
	}

	apps := make([]dataset.Application, 0, len(records)-1)
	for i, rec := range records[1:] {
		applnID, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeExportReloadFailed,
				fmt.Sprintf("row %d: bad appln_id", i+2))
		}
		year, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeExportReloadFailed,
				fmt.Sprintf("row %d: bad filing_year", i+2))
		}
		familyID, err := strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeExportReloadFailed,
				fmt.Sprintf("row %d: bad family_id", i+2))
		}
		apps = append(apps, dataset.Application{
			ApplnID:    applnID,
			FilingYear: year,
			Authority:  rec[2],
			FamilyID:   familyID,
			Title:      rec[4],
		})
	}
	return apps, nil
}
