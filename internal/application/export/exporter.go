// Package export writes run results to disk as CSV, JSON and HTML
// artifacts, and reloads dataset CSVs for offline reuse.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/patlytics/patscope/internal/config"
	"github.com/patlytics/patscope/internal/domain/citation"
	"github.com/patlytics/patscope/internal/domain/dataset"
	"github.com/patlytics/patscope/internal/domain/geography"
	"github.com/patlytics/patscope/internal/domain/quality"
	"github.com/patlytics/patscope/internal/domain/run"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// Report bundles everything one run produced.  Every exporter consumes this
// one shape; empty sections export as empty artifacts, not errors.
type Report struct {
	Run       *run.Record           `json:"run"`
	Dataset   *dataset.Dataset      `json:"dataset"`
	Citations *citation.Set         `json:"citations"`
	Geo       *geography.Summary    `json:"geography"`
	Score     *quality.QualityScore `json:"score"`
}

// Exporter writes report artifacts into a per-run directory.
type Exporter struct {
	dir     string
	formats []string
	logger  logging.Logger
}

// NewExporter wires an Exporter from configuration.
func NewExporter(cfg config.ExportConfig, log logging.Logger) *Exporter {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Exporter{
		dir:     cfg.Dir,
		formats: cfg.Formats,
		logger:  log.Named("export"),
	}
}

// Export writes the configured formats under <dir>/<run-id>/ and returns the
// paths written.  CSV produces three files; JSON and HTML one each.
func (e *Exporter) Export(report *Report) ([]string, error) {
	if report == nil || report.Run == nil {
		return nil, errors.New(errors.CodeExportFormatError, "report has no run record")
	}

	outDir := filepath.Join(e.dir, report.Run.ID.String())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeExportWriteFailed, "failed to create export directory")
	}

	var paths []string
	for _, format := range e.formats {
		var (
			written []string
			err     error
		)
		switch format {
		case "csv":
			written, err = e.exportCSV(outDir, report)
		case "json":
			written, err = e.exportJSON(outDir, report)
		case "html":
			written, err = e.exportHTML(outDir, report)
		default:
			err = errors.New(errors.CodeExportFormatError,
				fmt.Sprintf("unknown export format %q", format))
		}
		if err != nil {
			return nil, err
		}
		paths = append(paths, written...)
	}

	e.logger.Info("run exported",
		logging.String("run_id", report.Run.ID.String()),
		logging.String("dir", outDir),
		logging.Int("files", len(paths)),
	)
	return paths, nil
}
