package ports

import (
	"context"

	"github.com/civicwatch/report-system/internal/core/domain"
)

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           string
	MunicipalityID string
	InviteCode     string
	HomeAddress    string
	Lat            *float64
	Lng            *float64
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// Authenticator resolves a bearer credential to the caller identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Caller, error)
}
