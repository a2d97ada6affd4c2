package cli

import (
	"encoding/json"

	"github.com/pot-code/study-tracker/internal/infrastructure/logging"
	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the weekly summary of a user as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(app *App) error {
				ctx := logging.SetLoggerInContext(cmd.Context(), app.Logger)
				summary, err := app.Analytics.WeeklySummary(ctx, userID)
				if err != nil {
					return err
				}
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(summary)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id, every user when empty")
	return cmd
}
