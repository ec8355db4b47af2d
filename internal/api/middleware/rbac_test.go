package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/civicwatch/report-system/internal/core/domain"
)

func runRBAC(t *testing.T, caller *domain.Caller, roles ...domain.Role) (bool, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if caller != nil {
		SetCaller(c, *caller)
	}
	called := false
	err := RequireRole(roles...)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return called, err
}

func TestRequireRole_Allowed(t *testing.T) {
	called, err := runRBAC(t, &domain.Caller{ID: "u1", Role: domain.RoleCitizen}, domain.RoleCitizen)
	if err != nil || !called {
		t.Fatalf("expected next to run, called=%v err=%v", called, err)
	}
}

func TestRequireRole_AnyOf(t *testing.T) {
	called, err := runRBAC(t, &domain.Caller{ID: "u1", Role: domain.RoleOfficial}, domain.RoleCitizen, domain.RoleOfficial)
	if err != nil || !called {
		t.Fatalf("expected next to run, called=%v err=%v", called, err)
	}
}

func TestRequireRole_WrongRole(t *testing.T) {
	called, err := runRBAC(t, &domain.Caller{ID: "u1", Role: domain.RoleCitizen}, domain.RoleOfficial)
	if called {
		t.Fatal("next should not run")
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRole_NoCaller(t *testing.T) {
	called, err := runRBAC(t, nil, domain.RoleCitizen)
	if called {
		t.Fatal("next should not run")
	}
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
