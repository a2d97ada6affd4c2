package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pot-code/study-tracker/internal/infrastructure/logging"
	"github.com/pot-code/study-tracker/internal/interfaces/rest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply the schema and serve the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(app *App) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := app.Migrate(ctx, migrateTimeout); err != nil {
			return err
		}
		app.Logger.Info("Schema is up to date", zap.String("db.driver", app.Config.Database.Driver))

		server := rest.NewServer(app.Config, &rest.Dependencies{
			Conn:             app.Conn,
			KV:               app.KV,
			Broker:           app.Broker,
			SessionUseCase:   app.Sessions,
			AnalyticsUseCase: app.Analytics,
			TodoUseCase:      app.Todos,
		}, app.Logger)
		return rest.Serve(logging.SetLoggerInContext(ctx, app.Logger), server, app.Config, app.Logger)
	})
}
