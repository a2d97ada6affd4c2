package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
	"github.com/pot-code/study-tracker/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newLoggedApp(t *testing.T) (*echo.Echo, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)

	clock := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
	app := echo.New()
	app.Use(echo_middleware.RequestIDWithConfig(echo_middleware.RequestIDConfig{
		Generator: func() string { return "trace-1" },
	}))
	app.Use(RequestLogger(zap.New(core), &RequestLoggerConfig{
		Skipper: func(c echo.Context) bool { return c.Request().URL.Path == "/health" },
		Now: func() time.Time {
			clock = clock.Add(time.Millisecond)
			return clock
		},
	}))

	app.GET("/sessions/:id", func(c echo.Context) error {
		logging.ExtractLoggerFromContext(c.Request().Context()).Info("inside handler")
		return c.NoContent(http.StatusNoContent)
	})
	app.GET("/invalid", func(c echo.Context) error { return c.NoContent(http.StatusBadRequest) })
	app.GET("/broken", func(c echo.Context) error { return c.NoContent(http.StatusServiceUnavailable) })
	app.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return app, logs
}

func serve(app *echo.Echo, path string) {
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
}

func TestRequestLogger(t *testing.T) {
	app, logs := newLoggedApp(t)

	serve(app, "/sessions/s1")

	inner := logs.FilterMessage("inside handler").All()
	require.Len(t, inner, 1)
	assert.Equal(t, "trace-1", inner[0].ContextMap()["trace.id"], "handlers log through the traced logger")

	access := logs.FilterMessage(http.StatusText(http.StatusNoContent)).All()
	require.Len(t, access, 1)
	fields := access[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, access[0].Level)
	assert.Equal(t, "trace-1", fields["trace.id"])
	assert.Equal(t, "/sessions/s1", fields["url.path"])
	assert.EqualValues(t, http.StatusNoContent, fields["http.response.status_code"])
	assert.Equal(t, time.Millisecond, fields["event.duration"])
	assert.Equal(t, []interface{}{"s1"}, fields["route.params.value"])
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	app, logs := newLoggedApp(t)

	serve(app, "/invalid")
	serve(app, "/broken")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestRequestLogger_Skipper(t *testing.T) {
	app, logs := newLoggedApp(t)

	serve(app, "/health")
	assert.Zero(t, logs.Len())
}
