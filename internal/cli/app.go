package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pot-code/study-tracker/internal/analytics"
	infra "github.com/pot-code/study-tracker/internal/infrastructure"
	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
	"github.com/pot-code/study-tracker/internal/infrastructure/logging"
	"github.com/pot-code/study-tracker/internal/infrastructure/pubsub"
	"github.com/pot-code/study-tracker/internal/infrastructure/uuid"
	"github.com/pot-code/study-tracker/internal/session"
	"github.com/pot-code/study-tracker/internal/todo"
	"github.com/pot-code/study-tracker/internal/user"
	"go.uber.org/zap"
)

// App the wired application shared by every command
type App struct {
	Config    *infra.AppConfig
	Logger    *zap.Logger
	Conn      driver.ITransactionalDB
	KV        driver.KeyValueDB
	Broker    *pubsub.Broker
	Sessions  *session.SessionUseCaseImpl
	Analytics *analytics.AnalyticsUseCaseImpl
	Todos     *todo.TodoUseCaseImpl
}

// NewApp open the configured stores and wire the use cases
func NewApp(config *infra.AppConfig) (*App, error) {
	logger, err := logging.NewLogger(&logging.Config{
		FilePath: config.Logging.FilePath,
		Level:    config.Logging.Level,
		AppID:    config.AppID,
		Env:      config.Env,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	loc, err := config.Location()
	if err != nil {
		return nil, err
	}

	conn, err := driver.GetDBConnection(config.DBConfig())
	if err != nil {
		return nil, fmt.Errorf("creating DB connection: %w", err)
	}
	logger.Debug("Create db connection instance",
		zap.String("db.driver", config.Database.Driver),
		zap.String("db.schema", config.Database.Schema),
		zap.String("db.host", config.Database.Host),
	)

	var kv driver.KeyValueDB
	if config.KVStore.Host != "" {
		kv = driver.NewRedisClient(config.KVStore.Host, config.KVStore.Port, config.KVStore.Password, config.KVStore.DB)
		logger.Debug("Create redis client", zap.String("kv.host", config.KVStore.Host), zap.Int("kv.db", config.KVStore.DB))
	} else {
		kv = driver.NewMemoryKV()
		logger.Debug("kv.host is empty, task lists are kept in memory")
	}

	var (
		broker        = pubsub.NewBroker()
		UUIDGenerator = uuid.NewNanoIDGenerator(config.IDLength)
		UserUseCase   = user.NewUserUseCase(user.NewUserRepository(conn))
		SessionRepo   = session.NewSessionRepository(conn)
		Sessions      = session.NewSessionUseCase(conn, SessionRepo, UserUseCase, UUIDGenerator, broker)
	)
	return &App{
		Config:    config,
		Logger:    logger,
		Conn:      conn,
		KV:        kv,
		Broker:    broker,
		Sessions:  Sessions,
		Analytics: analytics.NewAnalyticsUseCase(Sessions, loc),
		Todos:     todo.NewTodoUseCase(todo.NewTodoRepository(kv), UUIDGenerator),
	}, nil
}

// Migrate apply the schema, bounded by timeout
func (app *App) Migrate(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(logging.SetLoggerInContext(ctx, app.Logger), timeout)
	defer cancel()
	return driver.Migrate(ctx, app.Conn)
}

// Close release the stores and flush the logger
func (app *App) Close() {
	ctx := context.Background()
	app.Conn.Close(ctx)
	if closer, ok := app.KV.(interface{ Close() error }); ok {
		closer.Close()
	}
	app.Logger.Sync()
}
