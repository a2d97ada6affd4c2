package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and sessions tables if they are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(app *App) error {
				if err := app.Migrate(cmd.Context(), migrateTimeout); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", app.Config.Database.Driver)
				return nil
			})
		},
	}
}
