package ports

import (
	"context"

	"github.com/civicwatch/report-system/internal/core/domain"
)

// ProfileUpdate carries the self-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name           *string
	HomeAddress    *string
	Lat            *float64
	Lng            *float64
	MunicipalityID *string
}

// UserRepository defines persistence for user profiles.
type UserRepository interface {
	// Create stores a new user. A duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDs returns the users that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*domain.User, error)
}
