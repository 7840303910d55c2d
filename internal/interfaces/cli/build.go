package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/patlytics/patscope/internal/application/export"
	"github.com/patlytics/patscope/internal/domain/dataset"
)

// timeRounding trims sub-10ms noise from printed durations.
const timeRounding = 10 * time.Millisecond

// NewBuildCmd creates the build command: one full analysis run.
func NewBuildCmd() *cobra.Command {
	var (
		keywords      []string
		classPrefixes []string
		yearFrom      int
		yearTo        int
		combine       string
		limit         int
		exportDir     string
		exportFormats []string
		noProgress    bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a dataset and run the full analysis pipeline",
		Long: "Build matches PATSTAT applications against the configured keywords and\n" +
			"classification prefixes, fetches citations, enriches applicant geography,\n" +
			"scores the result and exports the report artifacts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			// Flags override the config file per field.
			dsCfg := cliCtx.Config.Dataset
			if cmd.Flags().Changed("keyword") {
				dsCfg.Keywords = keywords
			}
			if cmd.Flags().Changed("class") {
				dsCfg.ClassPrefixes = classPrefixes
			}
			if cmd.Flags().Changed("year-from") {
				dsCfg.YearFrom = yearFrom
			}
			if cmd.Flags().Changed("year-to") {
				dsCfg.YearTo = yearTo
			}
			if cmd.Flags().Changed("combine") {
				dsCfg.Combine = combine
			}
			if cmd.Flags().Changed("limit") {
				dsCfg.Limit = limit
			}
			if cmd.Flags().Changed("export-dir") {
				cliCtx.Config.Export.Dir = exportDir
			}
			if cmd.Flags().Changed("formats") {
				cliCtx.Config.Export.Formats = exportFormats
			}

			mode, err := dataset.ParseCombineMode(dsCfg.Combine)
			if err != nil {
				return err
			}
			filter := dataset.Filter{
				Keywords:      dsCfg.Keywords,
				ClassPrefixes: dsCfg.ClassPrefixes,
				YearFrom:      dsCfg.YearFrom,
				YearTo:        dsCfg.YearTo,
				Limit:         dsCfg.Limit,
			}

			deps, err := buildPipeline(cmd.Context(), cliCtx, !noProgress)
			if err != nil {
				return err
			}
			defer deps.close()

			report, err := deps.pipeline.Run(cmd.Context(), filter, mode)
			if err != nil {
				return err
			}
			return printReportSummary(cmd, report)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&keywords, "keyword", "k", nil, "keyword to match in title or abstract (repeatable)")
	f.StringSliceVarP(&classPrefixes, "class", "C", nil, "IPC/CPC symbol prefix to match (repeatable)")
	f.IntVar(&yearFrom, "year-from", 0, "earliest filing year (0 = open)")
	f.IntVar(&yearTo, "year-to", 0, "latest filing year (0 = open)")
	f.StringVar(&combine, "combine", "", "how to merge keyword and class matches: union|intersection")
	f.IntVar(&limit, "limit", 0, "cap the dataset size (0 = unlimited)")
	f.StringVar(&exportDir, "export-dir", "", "artifact output directory (default from config)")
	f.StringSliceVar(&exportFormats, "formats", nil, "artifact formats to write: csv, json, html")
	f.BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

func printReportSummary(cmd *cobra.Command, report *export.Report) error {
	cliCtx, err := GetCLIContext(cmd)
	if err == nil && cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, report.Run)
	}

	counts := report.Run.Counts
	rows := [][]string{
		{"Applications", humanize.Comma(counts.Applications), strconv.Itoa(report.Score.Applications.Points), strconv.Itoa(report.Score.Applications.Cap)},
		{"Citations", humanize.Comma(counts.Citations), strconv.Itoa(report.Score.Citations.Points), strconv.Itoa(report.Score.Citations.Cap)},
		{"Countries", humanize.Comma(counts.Countries), strconv.Itoa(report.Score.Countries.Points), strconv.Itoa(report.Score.Countries.Cap)},
		{"Families", humanize.Comma(counts.Families), strconv.Itoa(report.Score.Families.Points), strconv.Itoa(report.Score.Families.Cap)},
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s completed in %s\n\n", report.Run.ID, report.Run.Duration().Round(timeRounding))
	fmt.Fprint(out, FormatTable([]string{"Dimension", "Count", "Points", "Cap"}, rows))
	fmt.Fprintf(out, "\nQuality score: %d / 100\n", report.Score.Total)
	return nil
}
