package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patlytics/patscope/internal/infrastructure/database/postgres"
)

// NewMigrateCmd creates the migrate command: apply run-store schema
// migrations.  Only the tool-owned patscope schema is touched; the PATSTAT
// tables are never written.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply run-store schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			migrator := postgres.NewMigrator(cliCtx.Config.Database, cliCtx.Logger)
			if err := migrator.Up(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
	return cmd
}
