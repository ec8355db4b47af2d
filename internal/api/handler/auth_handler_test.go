package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Name != "Ana" || in.Role != "citizen" || in.Lat == nil || *in.Lat != 10.5 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Name: in.Name, Email: in.Email, Role: domain.RoleCitizen, MunicipalityID: "m1"}, nil
		},
	}
	h := NewAuthHandler(stub)

	body := `{"name":"Ana","email":"ana@example.com","password":"correct-horse","role":"citizen","lat":10.5,"lng":-66.9}`
	c, rec := newContext(http.MethodPost, "/auth/register", strings.NewReader(body), nil)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)

	data, msg := decodeData(t, rec)
	if msg != "registered" {
		t.Fatalf("unexpected message %q", msg)
	}
	user, ok := data["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response: %v", data)
	}
	if user["id"] != "u1" || user["role"] != "citizen" || user["municipality_id"] != "m1" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("password hash must not be serialised")
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	})

	cases := map[string]string{
		"missing name": `{"email":"a@example.com","password":"correct-horse","role":"citizen"}`,
		"bad email":    `{"name":"A","email":"nope","password":"correct-horse","role":"citizen"}`,
		"short pass":   `{"name":"A","email":"a@example.com","password":"x","role":"citizen"}`,
		"unknown role": `{"name":"A","email":"a@example.com","password":"correct-horse","role":"mayor"}`,
		"bad latitude": `{"name":"A","email":"a@example.com","password":"correct-horse","role":"citizen","lat":123,"lng":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/auth/register", strings.NewReader(body), nil)
			if err := h.Register(c); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	})

	body := `{"name":"Bob","email":"bob@example.com","password":"correct-horse","role":"citizen"}`
	c, _ := newContext(http.MethodPost, "/auth/register", strings.NewReader(body), nil)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if email != "ana@example.com" || password != "correct-horse" {
				t.Fatalf("unexpected credentials %s/%s", email, password)
			}
			return "signed-token", &domain.User{ID: "u1", Email: email, Role: domain.RoleCitizen}, nil
		},
	})

	body := `{"email":"ana@example.com","password":"correct-horse"}`
	c, rec := newContext(http.MethodPost, "/auth/login", strings.NewReader(body), nil)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	data, _ := decodeData(t, rec)
	if data["token"] != "signed-token" {
		t.Fatalf("expected token, got %v", data)
	}
	user, _ := data["user"].(map[string]any)
	if user["municipality_id"] != nil {
		t.Fatalf("expected null municipality for unresolved citizen, got %v", user["municipality_id"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	})

	body := `{"email":"ana@example.com","password":"wrong"}`
	c, _ := newContext(http.MethodPost, "/auth/login", strings.NewReader(body), nil)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_BadPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	c, _ := newContext(http.MethodPost, "/auth/login", strings.NewReader(`{`), nil)
	if err := h.Login(c); err == nil {
		t.Fatal("expected error for malformed json")
	}
}
