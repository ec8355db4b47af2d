package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

// AuthOptions configures token issuance and official onboarding.
type AuthOptions struct {
	JWTSecret string
	TokenTTL  time.Duration
	// OfficialInviteCode must be presented to register as an official.
	// Official self-registration is disabled when empty.
	OfficialInviteCode string
}

// AuthService implements registration, login and bearer resolution.
type AuthService struct {
	users    ports.UserRepository
	munis    ports.MunicipalityRepository
	geocoder ports.Geocoder
	opts     AuthOptions
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	munis ports.MunicipalityRepository,
	geocoder ports.Geocoder,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, munis: munis, geocoder: geocoder, opts: opts, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, fmt.Errorf("%w: role must be citizen or official", domain.ErrValidation)
	}
	if (in.Lat == nil) != (in.Lng == nil) {
		return nil, fmt.Errorf("%w: lat and lng must be given together", domain.ErrValidation)
	}

	municipalityID, err := s.registrationMunicipality(ctx, role, in)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		PasswordHash:   string(hash),
		Role:           role,
		MunicipalityID: municipalityID,
		HomeAddress:    in.HomeAddress,
		Lat:            in.Lat,
		Lng:            in.Lng,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(role)).Str("municipality_id", municipalityID).Msg("user registered")
	return user, nil
}

// registrationMunicipality decides the tenant of a new account. Officials
// name an existing municipality and must hold the invite code. Citizens are
// placed only by their home coordinates; a municipality_id they send is ignored.
func (s *AuthService) registrationMunicipality(ctx context.Context, role domain.Role, in ports.RegisterInput) (string, error) {
	if role == domain.RoleOfficial {
		if s.opts.OfficialInviteCode == "" ||
			subtle.ConstantTimeCompare([]byte(in.InviteCode), []byte(s.opts.OfficialInviteCode)) != 1 {
			return "", denied("invite")
		}
		if in.MunicipalityID == "" {
			return "", fmt.Errorf("%w: municipality_id is required for officials", domain.ErrValidation)
		}
		return s.existingMunicipality(ctx, in.MunicipalityID)
	}

	if in.Lat != nil && in.Lng != nil {
		id, err := s.geocoder.ResolveMunicipality(ctx, *in.Lat, *in.Lng)
		if err != nil {
			return "", fmt.Errorf("register: resolve municipality: %w", err)
		}
		return id, nil
	}
	return "", nil
}

func (s *AuthService) existingMunicipality(ctx context.Context, id string) (string, error) {
	m, err := s.munis.FindByID(ctx, id)
	if errors.Is(err, domain.ErrMunicipalityNotFound) {
		return "", fmt.Errorf("%w: unknown municipality_id", domain.ErrValidation)
	}
	if err != nil {
		return "", fmt.Errorf("register: find municipality: %w", err)
	}
	return m.ID, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Authenticate verifies the token signature and expiry, then loads the user
// so role and municipality always reflect the stored profile.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Caller, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.opts.JWTSecret), nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return domain.Caller{}, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Caller{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.Caller{}, fmt.Errorf("authenticate: %w", err)
	}
	return domain.CallerOf(user), nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.opts.JWTSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
