package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pot-code/study-tracker/internal/infrastructure/logging"
	"go.uber.org/zap"
)

type RequestLoggerConfig struct {
	// Skipper skipped requests get neither a trace logger nor an access line
	Skipper middleware.Skipper
	Now     func() time.Time
}

// RequestLogger binds a logger carrying the trace id into the request context, then
// writes one access line per request. 5xx responses log at error, 4xx at warn.
func RequestLogger(base *zap.Logger, options ...*RequestLoggerConfig) echo.MiddlewareFunc {
	cfg := &RequestLoggerConfig{
		Skipper: middleware.DefaultSkipper,
		Now:     time.Now,
	}
	if len(options) > 0 {
		option := options[0]
		if option.Skipper != nil {
			cfg.Skipper = option.Skipper
		}
		if option.Now != nil {
			cfg.Now = option.Now
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			start := cfg.Now()
			req := c.Request()
			traced := base.With(zap.String("trace.id", c.Response().Header().Get(echo.HeaderXRequestID)))
			c.SetRequest(req.WithContext(logging.SetLoggerInContext(req.Context(), traced)))

			err := next(c)

			res := c.Response()
			fields := []zap.Field{
				zap.String("url.path", req.URL.Path),
				zap.String("client.address", c.RealIP()),
				zap.String("http.request.method", req.Method),
				zap.Int64("http.request.body.byte", req.ContentLength),
				zap.Int("http.response.status_code", res.Status),
				zap.Int64("http.response.body.byte", res.Size),
				zap.Duration("event.duration", cfg.Now().Sub(start)),
			}
			if names := c.ParamNames(); len(names) > 0 {
				fields = append(fields,
					zap.Strings("route.params.name", names),
					zap.Strings("route.params.value", c.ParamValues()),
				)
			}

			msg := http.StatusText(res.Status)
			switch {
			case res.Status >= http.StatusInternalServerError:
				traced.Error(msg, fields...)
			case res.Status >= http.StatusBadRequest:
				traced.Warn(msg, fields...)
			default:
				traced.Info(msg, fields...)
			}
			return err
		}
	}
}
