package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

const callerKey = "caller"

// Auth resolves the bearer token to a domain.Caller and stores it on the
// context. Every failure is reported as domain.ErrUnauthenticated.
func Auth(authenticator ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return fmt.Errorf("%w: missing authorization header", domain.ErrUnauthenticated)
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				return fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthenticated)
			}

			caller, err := authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			SetCaller(c, caller)
			return next(c)
		}
	}
}

// SetCaller stores the resolved identity on c.
func SetCaller(c echo.Context, caller domain.Caller) {
	c.Set(callerKey, caller)
}

// CallerFrom returns the identity stored by Auth.
func CallerFrom(c echo.Context) (domain.Caller, bool) {
	caller, ok := c.Get(callerKey).(domain.Caller)
	if !ok || caller.ID == "" {
		return domain.Caller{}, false
	}
	return caller, true
}
