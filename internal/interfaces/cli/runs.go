package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/patlytics/patscope/internal/domain/run"
)

// NewRunsCmd creates the runs command group for browsing run history.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse the stored run history",
	}
	cmd.AddCommand(newRunsListCmd(), newRunsGetCmd())
	return cmd
}

func newRunsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			conn, runs, err := openDatabase(cmd.Context(), cliCtx)
			if err != nil {
				return err
			}
			defer conn.Close()

			records, err := runs.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if cliCtx.OutputFormat == "json" {
				return PrintResult(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.ID.String(),
					string(rec.Status),
					rec.StartedAt.Format("2006-01-02 15:04"),
					humanize.Comma(rec.Counts.Applications),
					strconv.Itoa(rec.Score),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(),
				FormatTable([]string{"ID", "Status", "Started", "Applications", "Score"}, rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func newRunsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <run-id>",
		Short: "Show one run in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
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
			if cliCtx.OutputFormat == "json" {
				return PrintResult(cmd, rec)
			}
			printRunDetail(cmd, rec)
			return nil
		},
	}
	return cmd
}

func printRunDetail(cmd *cobra.Command, rec *run.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:        %s\n", rec.ID)
	fmt.Fprintf(out, "Status:     %s\n", rec.Status)
	fmt.Fprintf(out, "Started:    %s\n", rec.StartedAt.Format("2006-01-02 15:04:05 MST"))
	if rec.FinishedAt != nil {
		fmt.Fprintf(out, "Finished:   %s (%s)\n",
			rec.FinishedAt.Format("2006-01-02 15:04:05 MST"), rec.Duration().Round(timeRounding))
	}
	fmt.Fprintf(out, "Combine:    %s\n", rec.Combine)
	fmt.Fprintf(out, "Keywords:   %v\n", rec.Keywords)
	fmt.Fprintf(out, "Classes:    %v\n", rec.ClassPrefixes)
	if rec.YearFrom != 0 || rec.YearTo != 0 {
		fmt.Fprintf(out, "Years:      %d-%d\n", rec.YearFrom, rec.YearTo)
	}
	fmt.Fprintf(out, "Counts:     %s applications, %s citations, %s countries, %s families\n",
		humanize.Comma(rec.Counts.Applications),
		humanize.Comma(rec.Counts.Citations),
		humanize.Comma(rec.Counts.Countries),
		humanize.Comma(rec.Counts.Families))
	fmt.Fprintf(out, "Score:      %d / 100\n", rec.Score)
	if rec.Error != "" {
		fmt.Fprintf(out, "Error:      %s\n", rec.Error)
	}
}
