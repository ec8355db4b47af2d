package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicwatch/report-system/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /users/me.
//
// @Summary      Current user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse{data=userResponse}
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	user, err := h.service.Me(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toUserResponse(user))
}

// UpdateMe handles PATCH /users/me.
//
// @Summary      Update the current user's profile
// @Description  New coordinates re-resolve a citizen's municipality. Existing reports keep theirs.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile patch"
// @Success      200   {object}  dataResponse{data=userResponse}
// @Failure      400   {object}  ErrorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateMe(c.Request().Context(), caller, toUpdateProfileInput(req))
	if err != nil {
		return err
	}
	return respondMsg(c, http.StatusOK, toUserResponse(user), "profile updated")
}

// Get handles GET /users/:id.
//
// @Summary      Get a user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  dataResponse{data=userResponse}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toUserResponse(user))
}
