package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	redisdb "github.com/civicwatch/report-system/internal/infrastructure/db/redis"
)

// Limiter is satisfied by redisdb.RateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int) redisdb.Decision
}

// RateLimit applies a per-client-IP ceiling under scope and answers 429 with
// Retry-After once it is exceeded.
func RateLimit(scope string, limiter Limiter, limit int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := limiter.Allow(c.Request().Context(), scope+":"+c.RealIP(), limit)

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				secs := int(d.RetryAfter(time.Now()).Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
