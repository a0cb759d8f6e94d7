package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/monitor-agent/internal/infrastructure/database"
)

// NewMigrateCmd applies the transcript store schema without starting the server
func NewMigrateCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewDB(deps.Config, deps.Logger)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			if err := database.Migrate(db, deps.Config.Database.Driver, deps.Logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Schema is up to date")
			return nil
		},
	}
}
