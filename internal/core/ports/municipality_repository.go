package ports

import (
	"context"

	"github.com/civicwatch/report-system/internal/core/domain"
)

// MunicipalityRepository reads municipality reference data.
type MunicipalityRepository interface {
	List(ctx context.Context) ([]*domain.Municipality, error)
	FindByID(ctx context.Context, id string) (*domain.Municipality, error)
}

// Geocoder resolves coordinates to the municipality containing them.
// It returns an empty id and no error when no municipality matches.
type Geocoder interface {
	ResolveMunicipality(ctx context.Context, lat, lng float64) (string, error)
}
