package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/civicwatch/report-system/internal/api/middleware"
	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

type stubReportService struct {
	createFn func(caller domain.Caller, in ports.CreateReportInput) (*ports.ReportView, error)
	listFn   func(caller domain.Caller, in ports.ListReportsInput) (*ports.ReportPage, error)
	getFn    func(caller domain.Caller, id string) (*ports.ReportView, error)
	updateFn func(caller domain.Caller, id string, in ports.UpdateReportInput) (*ports.ReportView, error)
	toggleFn func(caller domain.Caller, id string) (*ports.UpvoteResult, error)
	activity []ports.ActivityEntry

	mineCalled bool
}

func (s *stubReportService) Create(_ context.Context, caller domain.Caller, in ports.CreateReportInput) (*ports.ReportView, error) {
	return s.createFn(caller, in)
}

func (s *stubReportService) ListMine(_ context.Context, caller domain.Caller, in ports.ListReportsInput) (*ports.ReportPage, error) {
	s.mineCalled = true
	return s.listFn(caller, in)
}

func (s *stubReportService) ListMunicipality(_ context.Context, caller domain.Caller, in ports.ListReportsInput) (*ports.ReportPage, error) {
	return s.listFn(caller, in)
}

func (s *stubReportService) Get(_ context.Context, caller domain.Caller, id string) (*ports.ReportView, error) {
	return s.getFn(caller, id)
}

func (s *stubReportService) Update(_ context.Context, caller domain.Caller, id string, in ports.UpdateReportInput) (*ports.ReportView, error) {
	return s.updateFn(caller, id, in)
}

func (s *stubReportService) ToggleUpvote(_ context.Context, caller domain.Caller, id string) (*ports.UpvoteResult, error) {
	return s.toggleFn(caller, id)
}

func (s *stubReportService) Activity(_ context.Context, _ domain.Caller, _ string) ([]ports.ActivityEntry, error) {
	return s.activity, nil
}

type stubUserService struct {
	users    map[string]*domain.User
	updateIn ports.UpdateProfileInput
}

func (s *stubUserService) Me(_ context.Context, caller domain.Caller) (*domain.User, error) {
	return s.users[caller.ID], nil
}

func (s *stubUserService) Get(_ context.Context, caller domain.Caller, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if id != caller.ID && !caller.InMunicipality(u.MunicipalityID) {
		return nil, domain.ErrForbidden
	}
	return u, nil
}

func (s *stubUserService) UpdateMe(_ context.Context, caller domain.Caller, in ports.UpdateProfileInput) (*domain.User, error) {
	s.updateIn = in
	u := *s.users[caller.ID]
	if in.Name != nil {
		u.Name = *in.Name
	}
	return &u, nil
}

type stubMunicipalityService struct {
	list []*domain.Municipality
}

func (s *stubMunicipalityService) List(_ context.Context) ([]*domain.Municipality, error) {
	return s.list, nil
}

func (s *stubMunicipalityService) Get(_ context.Context, id string) (*domain.Municipality, error) {
	for _, m := range s.list {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, domain.ErrMunicipalityNotFound
}

// newContext builds an echo context with the validator installed and an
// optional caller, as the router and Auth middleware would.
func newContext(method, target string, body io.Reader, caller *domain.Caller) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if caller != nil {
		middleware.SetCaller(c, *caller)
	}
	return c, rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) (map[string]any, string) {
	t.Helper()
	var env struct {
		Data    map[string]any `json:"data"`
		Message string         `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return env.Data, env.Message
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

var (
	citizenA  = domain.Caller{ID: "citizen-a", Role: domain.RoleCitizen, MunicipalityID: "m1"}
	officialC = domain.Caller{ID: "official-c", Role: domain.RoleOfficial, MunicipalityID: "m1"}
)

func sampleView() *ports.ReportView {
	return &ports.ReportView{
		Report: domain.Report{
			ID:             "r1",
			Title:          "Pothole",
			Description:    "Deep pothole on Main St",
			Category:       "roads",
			Lat:            10.5,
			Lng:            -66.9,
			Address:        "Main St 1",
			MunicipalityID: "m1",
			CreatedBy:      citizenA.ID,
			Status:         domain.StatusOpen,
		},
		Municipality: &domain.Municipality{ID: "m1", Name: "Aldgate", Province: "North"},
		Author:       &ports.UserSummary{ID: citizenA.ID, Name: "Ana", Email: "ana@example.com", Role: domain.RoleCitizen},
		UpvoteCount:  3,
	}
}
