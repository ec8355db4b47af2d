package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicwatch/report-system/internal/core/ports"
)

// MunicipalityHandler serves the public reference-data directory.
type MunicipalityHandler struct {
	service ports.MunicipalityService
}

func NewMunicipalityHandler(service ports.MunicipalityService) *MunicipalityHandler {
	return &MunicipalityHandler{service: service}
}

// List handles GET /municipalities.
//
// @Summary      List municipalities
// @Tags         municipalities
// @Produce      json
// @Success      200  {object}  dataResponse{data=[]municipalityResponse}
// @Router       /municipalities [get]
func (h *MunicipalityHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]*municipalityResponse, len(list))
	for i, m := range list {
		out[i] = toMunicipalityResponse(m)
	}
	return respond(c, http.StatusOK, out)
}

// Get handles GET /municipalities/:id.
//
// @Summary      Get a municipality
// @Tags         municipalities
// @Produce      json
// @Param        id   path      string  true  "Municipality id"
// @Success      200  {object}  dataResponse{data=municipalityResponse}
// @Failure      404  {object}  ErrorResponse
// @Router       /municipalities/{id} [get]
func (h *MunicipalityHandler) Get(c echo.Context) error {
	m, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toMunicipalityResponse(m))
}
