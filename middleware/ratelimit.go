package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Counter increments a fixed-window counter and returns the new count.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit caps requests per client IP and route. When the counter store
// is unreachable requests are let through. A nil counter disables limiting.
func RateLimit(counter Counter, limit int, window time.Duration, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if counter == nil || limit <= 0 {
			return next
		}
		return func(c echo.Context) error {
			key := "ratelimit:" + c.RealIP() + ":" + c.Path()

			count, err := counter.Incr(c.Request().Context(), key, window)
			if err != nil {
				log.Warn("rate limit check failed", "error", err)
				return next(c)
			}

			if count > int64(limit) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "Rate limit exceeded",
				})
			}

			return next(c)
		}
	}
}
