package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicwatch/report-system/internal/api/middleware"
	"github.com/civicwatch/report-system/internal/core/domain"
)

// callerFrom returns the identity resolved by the Auth middleware. A route
// wired without Auth fails closed.
func callerFrom(c echo.Context) (domain.Caller, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return domain.Caller{}, domain.ErrUnauthenticated
	}
	return caller, nil
}

// ErrorResponse is the error envelope written by the API error handler.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Detail     string `json:"detail,omitempty"`
}

// dataResponse is the success envelope.
type dataResponse struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, dataResponse{Data: data})
}

func respondMsg(c echo.Context, code int, data any, msg string) error {
	return c.JSON(code, dataResponse{Data: data, Message: msg})
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
