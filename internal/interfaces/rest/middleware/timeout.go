package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AbortRequestOption options for request timeout
type AbortRequestOption struct {
	Skipper middleware.Skipper
	// Timeout zero or negative disables the middleware
	Timeout time.Duration
}

// AbortRequest cancel the request context once Timeout elapsed, store calls bound to it fail fast
func AbortRequest(option *AbortRequestOption) echo.MiddlewareFunc {
	skipper := middleware.DefaultSkipper
	if option.Skipper != nil {
		skipper = option.Skipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if option.Timeout <= 0 || skipper(c) {
				return next(c)
			}
			r := c.Request()
			ctx, cancel := context.WithTimeout(r.Context(), option.Timeout)
			defer cancel()
			c.SetRequest(r.WithContext(ctx))
			return next(c)
		}
	}
}
