package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/patlytics/patscope/internal/domain/quality"
)

// NewScoreCmd creates the score command: evaluate the quality model against
// explicit counts or against a stored run.
func NewScoreCmd() *cobra.Command {
	var (
		applications int64
		citations    int64
		countries    int64
		families     int64
		runID        string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score dataset counts on the 100-point quality scale",
		Long: "Score applies the bucketed quality model to a set of counts.  Counts come\n" +
			"either from the --applications/--citations/--countries/--families flags or,\n" +
			"with --run, from a stored run's persisted counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			counts := quality.Counts{
				Applications: applications,
				Citations:    citations,
				Countries:    countries,
				Families:     families,
			}

			if runID != "" {
				id, err := uuid.Parse(runID)
				if err != nil {
					return fmt.Errorf("invalid run id %q: %w", runID, err)
				}
				conn, runs, err := openDatabase(cmd.Context(), cliCtx)
				if err != nil {
					return err
				}
				defer conn.Close()

				rec, err := runs.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				counts = rec.Counts
			}

			thresholds := cliCtx.Config.Scoring
			if thresholds.IsZero() {
				thresholds = quality.DefaultThresholds()
			}
			score, err := quality.Score(counts, thresholds)
			if err != nil {
				return err
			}
			return printScore(cmd, score)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&applications, "applications", 0, "application count")
	f.Int64Var(&citations, "citations", 0, "citation count (forward + backward)")
	f.Int64Var(&countries, "countries", 0, "distinct applicant country count")
	f.Int64Var(&families, "families", 0, "distinct DOCDB family count")
	f.StringVar(&runID, "run", "", "score the persisted counts of this run id instead")

	return cmd
}

func printScore(cmd *cobra.Command, score quality.QualityScore) error {
	cliCtx, err := GetCLIContext(cmd)
	if err == nil && cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, score)
	}

	rows := [][]string{
		{"Applications", humanize.Comma(score.Applications.Count), strconv.Itoa(score.Applications.Points), strconv.Itoa(score.Applications.Cap)},
		{"Citations", humanize.Comma(score.Citations.Count), strconv.Itoa(score.Citations.Points), strconv.Itoa(score.Citations.Cap)},
		{"Countries", humanize.Comma(score.Countries.Count), strconv.Itoa(score.Countries.Points), strconv.Itoa(score.Countries.Cap)},
		{"Families", humanize.Comma(score.Families.Count), strconv.Itoa(score.Families.Points), strconv.Itoa(score.Families.Cap)},
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, FormatTable([]string{"Dimension", "Count", "Points", "Cap"}, rows))
	fmt.Fprintf(out, "\nQuality score: %d / 100\n", score.Total)
	return nil
}
