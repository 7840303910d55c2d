package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/patlytics/patscope/pkg/errors"
)

// ReportJSON is the machine-readable artifact file name.
const ReportJSON = "report.json"

func (e *Exporter) exportJSON(outDir string, report *Report) ([]string, error) {
	path := filepath.Join(outDir, ReportJSON)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExportFormatError, "failed to serialize report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, errors.Wrap(err, errors.CodeExportWriteFailed, "failed to write JSON report")
	}
	return []string{path}, nil
}

// LoadReportJSON reads a previously exported report.json back into memory.
func LoadReportJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExportReloadFailed, "failed to read JSON report")
	}
	report := &Report{}
	if err := json.Unmarshal(data, report); err != nil {
		return nil, errors.Wrap(err, errors.CodeExportReloadFailed, "failed to parse JSON report")
	}
	return report, nil
}
