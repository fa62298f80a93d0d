package httpapi

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

const stackSize = 4 << 10

// recoverer turns handler panics into 500 responses and logs the stack.
func recoverer(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					stack := make([]byte, stackSize)
					length := runtime.Stack(stack, false)
					logger.Error("panic recovered",
						"error", err,
						"stack", string(stack[:length]))
					c.Error(err)
				}
			}()
			return next(c)
		}
	}
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			logger.Debug("request",
				"method", req.Method,
				"path", c.Path(),
				"status", res.Status,
				"size", res.Size,
				"duration", time.Since(start),
				"request_id", res.Header().Get(echo.HeaderXRequestID))
			return nil
		}
	}
}
