package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

const testSecret = "secret"

func newTestAuthService(repo *stubUserRepo) *AuthService {
	return NewAuthService(
		repo,
		newStubMunicipalityRepo("m1", "m2"),
		&stubGeocoder{byLat: map[float64]string{10: "m1"}},
		AuthOptions{JWTSecret: testSecret, TokenTTL: time.Hour, OfficialInviteCode: "letmein"},
		discardLogger,
	)
}

func citizenRegistration(email string) ports.RegisterInput {
	return ports.RegisterInput{Name: "Alice", Email: email, Password: "pass1234", Role: "citizen"}
}

func TestAuthService_Register_Citizen(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	in := citizenRegistration(" Alice@Example.com ")
	in.Lat, in.Lng = ptr(10.0), ptr(5.0)
	user, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected generated id")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "pass1234" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleCitizen || user.MunicipalityID != "m1" {
		t.Errorf("unexpected role/municipality: %s/%s", user.Role, user.MunicipalityID)
	}
}

func TestAuthService_Register_CitizenUnresolvedStaysNull(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	in := citizenRegistration("bob@example.com")
	in.Lat, in.Lng = ptr(50.0), ptr(5.0)
	user, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.MunicipalityID != "" {
		t.Errorf("expected unresolved municipality, got %s", user.MunicipalityID)
	}
}

func TestAuthService_Register_CitizenIgnoresDeclaredMunicipality(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	unresolved := citizenRegistration("cara@example.com")
	unresolved.Lat, unresolved.Lng = ptr(50.0), ptr(5.0)
	unresolved.MunicipalityID = "m2"
	user, err := svc.Register(context.Background(), unresolved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.MunicipalityID != "" {
		t.Errorf("declared municipality must not be trusted, got %s", user.MunicipalityID)
	}

	noCoords := citizenRegistration("dan@example.com")
	noCoords.MunicipalityID = "m2"
	user, err = svc.Register(context.Background(), noCoords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.MunicipalityID != "" {
		t.Errorf("declared municipality must not be trusted, got %s", user.MunicipalityID)
	}

	resolved := citizenRegistration("eve@example.com")
	resolved.Lat, resolved.Lng = ptr(10.0), ptr(5.0)
	resolved.MunicipalityID = "m2"
	user, err = svc.Register(context.Background(), resolved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.MunicipalityID != "m1" {
		t.Errorf("expected geocoded m1, got %s", user.MunicipalityID)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	ctx := context.Background()

	bad := []ports.RegisterInput{
		{Name: "", Email: "a@example.com", Password: "x", Role: "citizen"},
		{Name: "A", Email: "a@example.com", Password: "x", Role: "mayor"},
		{Name: "A", Email: "a@example.com", Password: "x", Role: "citizen", Lat: ptr(1.0)},
	}
	for _, in := range bad {
		if _, err := svc.Register(ctx, in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("input %+v: expected ErrValidation, got %v", in, err)
		}
	}
}

func TestAuthService_Register_Official(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	ctx := context.Background()

	base := ports.RegisterInput{Name: "Olga", Email: "olga@city.gov", Password: "pass1234", Role: "official", MunicipalityID: "m2"}

	noCode := base
	if _, err := svc.Register(ctx, noCode); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("missing invite: expected ErrForbidden, got %v", err)
	}

	unknown := base
	unknown.InviteCode = "letmein"
	unknown.MunicipalityID = "m9"
	if _, err := svc.Register(ctx, unknown); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown municipality: expected ErrValidation, got %v", err)
	}

	ok := base
	ok.InviteCode = "letmein"
	user, err := svc.Register(ctx, ok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != domain.RoleOfficial || user.MunicipalityID != "m2" {
		t.Errorf("unexpected official: %+v", user)
	}
}

func TestAuthService_Register_OfficialDisabledWithoutInviteCode(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), newStubMunicipalityRepo("m1"), &stubGeocoder{},
		AuthOptions{JWTSecret: testSecret}, discardLogger)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "O", Email: "o@city.gov", Password: "pass1234", Role: "official", MunicipalityID: "m1",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	_, _ = svc.Register(context.Background(), citizenRegistration("bob@example.com"))
	if _, err := svc.Register(context.Background(), citizenRegistration("BOB@example.com")); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	in := citizenRegistration("carol@example.com")
	in.Lat, in.Lng = ptr(10.0), ptr(1.0)
	registered, err := svc.Register(ctx, in)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(ctx, "carol@example.com", "pass1234")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || user.ID != registered.ID {
		t.Fatalf("unexpected login result: %q %+v", token, user)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != registered.ID {
		t.Errorf("expected subject %s, got %s", registered.ID, claims.Subject)
	}

	caller, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if caller.ID != registered.ID || caller.Role != domain.RoleCitizen || caller.MunicipalityID != "m1" {
		t.Errorf("unexpected caller: %+v", caller)
	}
}

func TestAuthService_Authenticate_ReadsCurrentProfile(t *testing.T) {
	repo := newStubUserRepo(&domain.User{ID: "u1", Email: "u1@example.com", Role: domain.RoleCitizen, MunicipalityID: "m1"})
	svc := newTestAuthService(repo)

	token, err := svc.generateToken(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	repo.users["u1"].MunicipalityID = "m2"

	caller, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if caller.MunicipalityID != "m2" {
		t.Errorf("expected municipality from stored profile, got %s", caller.MunicipalityID)
	}
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	ghost, _ := svc.generateToken(&domain.User{ID: "ghost"})

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ghost",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	expiredToken, _ := expired.SignedString([]byte(testSecret))

	wrongKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "ghost"})
	wrongKeyToken, _ := wrongKey.SignedString([]byte("other"))

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"unknown user": ghost,
		"expired":      expiredToken,
		"wrong key":    wrongKeyToken,
	} {
		if _, err := svc.Authenticate(ctx, token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	_, _ = svc.Register(context.Background(), citizenRegistration("dave@example.com"))
	if _, _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmailLooksLikeBadPassword(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
