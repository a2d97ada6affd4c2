package cli

import (
	"time"

	infra "github.com/pot-code/study-tracker/internal/infrastructure"
	"github.com/spf13/cobra"
)

const migrateTimeout = 30 * time.Second

// NewRootCmd creates the top-level command, serving http when no subcommand is given
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "study-tracker",
		Short:         "Study session tracker with weekly analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	infra.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSummaryCmd(),
	)
	return root
}

// withApp load config from cmd's flags and run fn against the wired App
func withApp(cmd *cobra.Command, fn func(app *App) error) error {
	config, err := infra.InitConfig(cmd.Flags())
	if err != nil {
		return err
	}
	app, err := NewApp(config)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
