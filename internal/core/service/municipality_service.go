package service

import (
	"context"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

// MunicipalityService is a read-only pass-through over reference data.
type MunicipalityService struct {
	repo ports.MunicipalityRepository
}

func NewMunicipalityService(repo ports.MunicipalityRepository) *MunicipalityService {
	return &MunicipalityService{repo: repo}
}

func (s *MunicipalityService) List(ctx context.Context) ([]*domain.Municipality, error) {
	return s.repo.List(ctx)
}

func (s *MunicipalityService) Get(ctx context.Context, id string) (*domain.Municipality, error) {
	return s.repo.FindByID(ctx, id)
}
