package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicwatch/report-system/internal/api/handler"
	"github.com/civicwatch/report-system/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"error", "statusCode"}. Unexpected
// errors are logged; their cause is echoed in "detail" only when
// exposeDetail is set.
func NewHTTPErrorHandler(log zerolog.Logger, exposeDetail bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err)
		resp := handler.ErrorResponse{Error: msg, StatusCode: code}

		if code == http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
			if exposeDetail {
				resp.Detail = err.Error()
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error) (int, string) {
	// Echo's own errors (bind failures, router 404/405, rate limits).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusInternalServerError {
			return he.Code, "internal server error"
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrSelfUpvote):
		return http.StatusForbidden, domain.ErrSelfUpvote.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrMunicipalityNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrImmutableField):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnresolvableLocation):
		return http.StatusBadRequest, domain.ErrUnresolvableLocation.Error()
	case errors.Is(err, domain.ErrInvalidAssignment):
		return http.StatusUnprocessableEntity, domain.ErrInvalidAssignment.Error()
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, domain.ErrUserExists.Error()
	}

	return http.StatusInternalServerError, "internal server error"
}
