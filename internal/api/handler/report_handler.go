package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

// ReportHandler serves the report lifecycle endpoints. Access rules live in
// ports.ReportService; handlers only translate HTTP.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Create handles POST /reports.
//
// @Summary      Submit a report
// @Description  The report's municipality is resolved once from the caller's profile or the report location.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createReportRequest  true  "Report"
// @Success      201   {object}  dataResponse{data=reportResponse}
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /reports [post]
func (h *ReportHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req createReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.service.Create(c.Request().Context(), caller, toCreateReportInput(req))
	if err != nil {
		return err
	}
	return respondMsg(c, http.StatusCreated, toReportResponse(view), "report created")
}

// ListMine handles GET /reports/mine.
//
// @Summary      List the caller's own reports
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Status filter"
// @Param        category  query     string  false  "Category filter"
// @Param        limit     query     int     false  "Page size (1-100, default 50)"
// @Param        offset    query     int     false  "Zero-based offset"
// @Success      200       {object}  dataResponse{data=reportListResponse}
// @Failure      400       {object}  ErrorResponse
// @Failure      403       {object}  ErrorResponse
// @Router       /reports/mine [get]
func (h *ReportHandler) ListMine(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	in, err := listInput(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListMine(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toReportListResponse(page))
}

// List handles GET /reports for officials.
//
// @Summary      List reports of the caller's municipality
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        municipality_id  query     string  false  "Must equal the caller's municipality"
// @Param        status           query     string  false  "Status filter"
// @Param        category         query     string  false  "Category filter"
// @Param        limit            query     int     false  "Page size (1-100, default 50)"
// @Param        offset           query     int     false  "Zero-based offset"
// @Success      200              {object}  dataResponse{data=reportListResponse}
// @Failure      400              {object}  ErrorResponse
// @Failure      403              {object}  ErrorResponse
// @Router       /reports [get]
func (h *ReportHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	in, err := listInput(c)
	if err != nil {
		return err
	}
	in.MunicipalityID = c.QueryParam("municipality_id")

	page, err := h.service.ListMunicipality(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toReportListResponse(page))
}

// Get handles GET /reports/:id.
//
// @Summary      Get a report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Report id"
// @Success      200  {object}  dataResponse{data=reportResponse}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /reports/{id} [get]
func (h *ReportHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	view, err := h.service.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toReportResponse(view))
}

// Update handles PUT /reports/:id.
//
// @Summary      Update or assign a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Report id"
// @Param        body  body      updateReportRequest  true  "Patch"
// @Success      200   {object}  dataResponse{data=reportResponse}
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /reports/{id} [put]
func (h *ReportHandler) Update(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req updateReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), toUpdateReportInput(req))
	if err != nil {
		return err
	}
	return respondMsg(c, http.StatusOK, toReportResponse(view), "report updated")
}

// ToggleUpvote handles POST /reports/:id/upvote.
//
// @Summary      Toggle the caller's upvote
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Report id"
// @Success      200  {object}  dataResponse{data=upvoteResponse}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /reports/{id}/upvote [post]
func (h *ReportHandler) ToggleUpvote(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	res, err := h.service.ToggleUpvote(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, upvoteResponse{
		ReportID:    res.ReportID,
		Upvoted:     res.Upvoted,
		UpvoteCount: res.UpvoteCount,
	})
}

// Activity handles GET /reports/:id/activity.
//
// @Summary      Report audit trail, newest first
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Report id"
// @Success      200  {object}  dataResponse{data=[]activityResponse}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /reports/{id}/activity [get]
func (h *ReportHandler) Activity(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	entries, err := h.service.Activity(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toActivityResponse(entries))
}

// listInput reads the shared listing query parameters. An explicit limit
// must be at least 1; the upper bound is enforced by the service.
func listInput(c echo.Context) (ports.ListReportsInput, error) {
	in := ports.ListReportsInput{
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
	}
	limitSet := c.QueryParam("limit") != ""

	err := echo.QueryParamsBinder(c).
		Int("limit", &in.Limit).
		Int("offset", &in.Offset).
		BindError()
	if err != nil {
		return in, fmt.Errorf("%w: limit and offset must be integers", domain.ErrValidation)
	}
	if limitSet && in.Limit < 1 {
		return in, fmt.Errorf("%w: limit must be 1-%d", domain.ErrValidation, ports.MaxPageLimit)
	}
	return in, nil
}
