package rest

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
	"github.com/pot-code/study-tracker/internal/analytics"
	infra "github.com/pot-code/study-tracker/internal/infrastructure"
	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
	"github.com/pot-code/study-tracker/internal/infrastructure/pubsub"
	"github.com/pot-code/study-tracker/internal/infrastructure/validate"
	"github.com/pot-code/study-tracker/internal/interfaces/rest/handler"
	"github.com/pot-code/study-tracker/internal/interfaces/rest/middleware"
	"github.com/pot-code/study-tracker/internal/session"
	"github.com/pot-code/study-tracker/internal/todo"
	"go.elastic.co/apm/module/apmechov4"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// internalErrorDetail detail of every 500 envelope, the cause only goes to the log
const internalErrorDetail = "internal error"

// Dependencies everything the http transport serves
type Dependencies struct {
	Conn             driver.ITransactionalDB
	KV               driver.KeyValueDB
	Broker           *pubsub.Broker
	SessionUseCase   session.SessionUseCase
	AnalyticsUseCase analytics.AnalyticsUseCase
	TodoUseCase      todo.TodoUseCase
}

// NewServer create http transport server
func NewServer(option *infra.AppConfig, deps *Dependencies, logger *zap.Logger) *echo.Echo {
	var (
		app       = echo.New()
		validator = validate.NewValidator(option.Locale)
		websocket = infra.NewWebsocket()
		filter    = &handler.UserFilter{Required: option.API.RequireUserID, Validator: validator}
	)
	app.HideBanner = true
	app.HidePort = true

	app.Use(echo_middleware.RequestIDWithConfig(echo_middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	app.Use(middleware.RequestLogger(logger, &middleware.RequestLoggerConfig{
		Skipper: func(e echo.Context) bool {
			return strings.HasPrefix(e.Request().URL.Path, "/health")
		},
	}))
	app.Use(middleware.ErrorHandling(
		&middleware.ErrorHandlingOption{
			Handler: func(c echo.Context, err error) {
				traceID := c.Response().Header().Get(echo.HeaderXRequestID)
				c.JSON(http.StatusInternalServerError,
					handler.NewRESTStandardError(http.StatusInternalServerError, internalErrorDetail).SetTraceID(traceID),
				)
				logger.Error(err.Error(), zap.String("trace.id", traceID))
			},
			HTTPErrorHandler: func(c echo.Context, err *echo.HTTPError) {
				traceID := c.Response().Header().Get(echo.HeaderXRequestID)
				c.JSON(err.Code,
					handler.NewRESTStandardError(err.Code, fmt.Sprintf("%v", err.Message)).SetTraceID(traceID),
				)
			},
			Logger: logger,
		},
	))
	app.Use(echo_middleware.Secure())
	if option.DevOP.APM {
		app.Use(apmechov4.Middleware())
	}
	app.Use(echo_middleware.CORS())
	app.Use(middleware.AbortRequest(&middleware.AbortRequestOption{
		Timeout: option.RequestTimeout,
		Skipper: func(e echo.Context) bool {
			// streams outlive any request timeout
			return strings.HasPrefix(e.Request().URL.Path, "/api/ws/")
		},
	}))

	registerHealthCheck(app)
	registerLivenessProbe(app, deps.Conn, deps.KV)
	if option.Env == infra.EnvDevelopment && option.DevOP.Profile {
		registerProfileEndpoints(app)
	}

	var (
		SessionHandler   = handler.NewSessionHandler(deps.SessionUseCase, validator, filter)
		AnalyticsHandler = handler.NewAnalyticsHandler(deps.AnalyticsUseCase, filter)
		TodoHandler      = handler.NewTodoHandler(deps.TodoUseCase, validator)
		LiveHandler      = handler.NewLiveHandler(deps.AnalyticsUseCase, deps.Broker, websocket)
	)

	mountAPI(app,
		apiGroup{"/sessions", []route{
			{http.MethodGet, "", SessionHandler.HandleListSessions},
			{http.MethodPost, "", SessionHandler.HandleCreateSession},
			{http.MethodDelete, "/:id", SessionHandler.HandleDeleteSession},
		}},
		apiGroup{"/analytics", []route{
			{http.MethodGet, "/summary", AnalyticsHandler.HandleGetSummary},
		}},
		apiGroup{"/todos", []route{
			{http.MethodGet, "", TodoHandler.HandleListTodos},
			{http.MethodPost, "", TodoHandler.HandleAddTodo},
			{http.MethodPatch, "/:id", TodoHandler.HandleToggleTodo},
			{http.MethodDelete, "/:id", TodoHandler.HandleRemoveTodo},
		}},
		apiGroup{"/ws", []route{
			{http.MethodGet, "/summary", LiveHandler.HandleSummaryStream},
		}},
	)

	return app
}

type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
}

type apiGroup struct {
	prefix string
	routes []route
}

// mountAPI registers every group under /api
func mountAPI(app *echo.Echo, groups ...apiGroup) {
	api := app.Group("/api")
	for _, g := range groups {
		group := api.Group(g.prefix)
		for _, r := range g.routes {
			group.Add(r.method, r.path, r.handler)
		}
	}
}

// Serve start app and block until ctx is done or the listener fails
func Serve(ctx context.Context, app *echo.Echo, option *infra.AppConfig, logger *zap.Logger) error {
	addr := fmt.Sprintf("%s:%d", option.Host, option.Port)
	printRoutes(app, logger)

	errc := make(chan error, 1)
	go func() {
		logger.Info("Start listening", zap.String("server.address", addr))
		errc <- app.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	}
}

func printRoutes(app *echo.Echo, logger *zap.Logger) {
	for _, route := range app.Routes() {
		if !strings.HasPrefix(route.Name, "github.com/labstack/echo") {
			logger.Debug("Registered route", zap.String("method", route.Method), zap.String("path", route.Path))
		}
	}
}

func registerHealthCheck(app *echo.Echo) {
	app.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})
}

func registerLivenessProbe(app *echo.Echo, db driver.ITransactionalDB, kv driver.KeyValueDB) {
	app.GET("/healthz", func(c echo.Context) error {
		ctx := c.Request().Context()
		if db.Ping(ctx) == nil && kv.Ping(ctx) == nil {
			return c.NoContent(http.StatusOK)
		}
		return c.NoContent(http.StatusServiceUnavailable)
	})
}

func registerProfileEndpoints(app *echo.Echo) {
	expvarHandler := expvar.Handler()
	app.GET("/debug/vars", func(c echo.Context) error {
		expvarHandler.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/", func(c echo.Context) error {
		pprof.Index(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/:name", func(c echo.Context) error {
		switch c.Param("name") {
		case "cmdline":
			pprof.Cmdline(c.Response().Writer, c.Request())
		case "profile":
			pprof.Profile(c.Response().Writer, c.Request())
		case "symbol":
			pprof.Symbol(c.Response().Writer, c.Request())
		case "trace":
			pprof.Trace(c.Response().Writer, c.Request())
		default:
			pprof.Handler(c.Param("name")).ServeHTTP(c.Response().Writer, c.Request())
		}
		return nil
	})
}
