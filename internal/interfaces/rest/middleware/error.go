package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandlingOption options for error handling
type ErrorHandlingOption struct {
	// Handler writes the response of errors other than *echo.HTTPError
	Handler func(c echo.Context, err error)
	// HTTPErrorHandler writes the response of *echo.HTTPError
	HTTPErrorHandler func(c echo.Context, err *echo.HTTPError)
	Logger           *zap.Logger
}

// ErrorHandling handle errors and panics returned from controller
// **DO NOT return error anymore**
func ErrorHandling(options ...*ErrorHandlingOption) echo.MiddlewareFunc {
	custom := &ErrorHandlingOption{
		Handler: func(c echo.Context, err error) {
			c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		},
		HTTPErrorHandler: func(c echo.Context, err *echo.HTTPError) {
			c.String(err.Code, fmt.Sprintf("%v", err.Message))
		},
		Logger: zap.NewNop(),
	}
	if len(options) > 0 {
		option := options[0]
		if option.Handler != nil {
			custom.Handler = option.Handler
		}
		if option.HTTPErrorHandler != nil {
			custom.HTTPErrorHandler = option.HTTPErrorHandler
		}
		if option.Logger != nil {
			custom.Logger = option.Logger
		}
	}
	handler := custom.Handler
	httpHandler := custom.HTTPErrorHandler
	logger := custom.Logger
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if any := recover(); any != nil {
					err, ok := any.(error)
					if !ok {
						err = fmt.Errorf("%v", any)
					}
					logger.Error(err.Error(),
						zap.String("trace.id", c.Response().Header().Get(echo.HeaderXRequestID)),
						zap.String("url.path", c.Request().RequestURI),
						zap.String("http.request.method", c.Request().Method),
						zap.Strings("route.params.name", c.ParamNames()),
						zap.Strings("route.params.value", c.ParamValues()),
						zap.Stack("error.stack_trace"),
					)
					if !c.Response().Committed {
						handler(c, err)
					}
				}
			}()
			if err := next(c); err != nil {
				if c.Response().Committed {
					return nil
				}
				if v, ok := err.(*echo.HTTPError); ok {
					httpHandler(c, v)
				} else {
					handler(c, err)
				}
			}
			return nil
		}
	}
}
