package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/pkg/metrics"
)

// RequireRole rejects callers whose role is not in roles. It must run after
// Auth. The service layer repeats the check; this only fails fast.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[caller.Role]; !ok {
				metrics.AccessDeniedTotal.WithLabelValues("role").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
