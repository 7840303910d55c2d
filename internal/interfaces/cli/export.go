package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/patlytics/patscope/internal/application/export"
	"github.com/patlytics/patscope/internal/domain/citation"
	"github.com/patlytics/patscope/internal/domain/dataset"
	"github.com/patlytics/patscope/internal/domain/geography"
	"github.com/patlytics/patscope/internal/domain/quality"
)

// NewExportCmd creates the export command: regenerate report artifacts for a
// stored run, or re-render a previously exported report.json.
func NewExportCmd() *cobra.Command {
	var (
		fromJSON string
		formats  []string
		dir      string
	)

	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Regenerate report artifacts",
		Long: "Export regenerates report artifacts.  Given a run id, it rebuilds the\n" +
			"score breakdown from the run's persisted counts; the dataset rows are not\n" +
			"stored, so only the summary artifacts carry data.  Given --from-json, it\n" +
			"re-renders a full report.json into the requested formats.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			exportCfg := cliCtx.Config.Export
			if cmd.Flags().Changed("format") {
				exportCfg.Formats = formats
			}
			if cmd.Flags().Changed("dir") {
				exportCfg.Dir = dir
			}
			exporter := export.NewExporter(exportCfg, cliCtx.Logger)

			var report *export.Report
			switch {
			case fromJSON != "":
				report, err = export.LoadReportJSON(fromJSON)
				if err != nil {
					return err
				}
			case len(args) == 1:
				report, err = reportFromStoredRun(cmd, cliCtx, args[0])
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("either a run id or --from-json is required")
			}

			paths, err := exporter.Export(report)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&fromJSON, "from-json", "", "path to a previously exported report.json")
	f.StringSliceVar(&formats, "format", nil, "artifact formats to write: csv, json, html")
	f.StringVar(&dir, "dir", "", "output directory (default from config)")

	return cmd
}

// reportFromStoredRun rebuilds an exportable report from the run store.  The
// score breakdown is recomputed from the persisted counts under the current
// thresholds.
func reportFromStoredRun(cmd *cobra.Command, cliCtx *CLIContext, rawID string) (*export.Report, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", rawID, err)
	}

	conn, runs, err := openDatabase(cmd.Context(), cliCtx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rec, err := runs.Get(cmd.Context(), id)
	if err != nil {
		return nil, err
	}

	thresholds := cliCtx.Config.Scoring
	if thresholds.IsZero() {
		thresholds = quality.DefaultThresholds()
	}
	score, err := quality.Score(rec.Counts, thresholds)
	if err != nil {
		return nil, err
	}

	mode, err := dataset.ParseCombineMode(rec.Combine)
	if err != nil {
		mode = dataset.CombineIntersection
	}
	return &export.Report{
		Run:       rec,
		Dataset:   &dataset.Dataset{Mode: mode},
		Citations: &citation.Set{},
		Geo:       &geography.Summary{},
		Score:     &score,
	}, nil
}
