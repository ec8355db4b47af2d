package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

// UserService serves profile reads and self-service updates.
type UserService struct {
	users    ports.UserRepository
	geocoder ports.Geocoder
	log      zerolog.Logger
}

func NewUserService(users ports.UserRepository, geocoder ports.Geocoder, log zerolog.Logger) *UserService {
	return &UserService{users: users, geocoder: geocoder, log: log}
}

func (s *UserService) Me(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	return s.users.FindByID(ctx, caller.ID)
}

// Get follows the report visibility rule: existence first, then entitlement.
func (s *UserService) Get(ctx context.Context, caller domain.Caller, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewUser(caller, user) {
		return nil, denied("cross_tenant")
	}
	return user, nil
}

// UpdateMe edits the caller's own profile. New home coordinates move a
// citizen to the municipality containing them; reports already filed keep
// the municipality they were created with.
func (s *UserService) UpdateMe(ctx context.Context, caller domain.Caller, in ports.UpdateProfileInput) (*domain.User, error) {
	if (in.Lat == nil) != (in.Lng == nil) {
		return nil, fmt.Errorf("%w: lat and lng must be given together", domain.ErrValidation)
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}
	if in.Name == nil && in.HomeAddress == nil && in.Lat == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}

	upd := ports.ProfileUpdate{
		Name:        in.Name,
		HomeAddress: in.HomeAddress,
		Lat:         in.Lat,
		Lng:         in.Lng,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		upd.Name = &name
	}
	if in.Lat != nil && caller.IsCitizen() {
		id, err := s.geocoder.ResolveMunicipality(ctx, *in.Lat, *in.Lng)
		if err != nil {
			return nil, fmt.Errorf("update profile: resolve municipality: %w", err)
		}
		upd.MunicipalityID = &id
	}

	user, err := s.users.UpdateProfile(ctx, caller.ID, upd)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", caller.ID).Str("municipality_id", user.MunicipalityID).Msg("profile updated")
	return user, nil
}
