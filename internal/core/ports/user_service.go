package ports

import (
	"context"

	"github.com/civicwatch/report-system/internal/core/domain"
)

// UpdateProfileInput carries the self-service profile patch.
type UpdateProfileInput struct {
	Name        *string
	HomeAddress *string
	Lat         *float64
	Lng         *float64
}

type UserService interface {
	Me(ctx context.Context, caller domain.Caller) (*domain.User, error)
	Get(ctx context.Context, caller domain.Caller, id string) (*domain.User, error)
	UpdateMe(ctx context.Context, caller domain.Caller, in UpdateProfileInput) (*domain.User, error)
}

type MunicipalityService interface {
	List(ctx context.Context) ([]*domain.Municipality, error)
	Get(ctx context.Context, id string) (*domain.Municipality, error)
}
