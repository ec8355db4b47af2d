package handler

import (
	"time"

	"github.com/civicwatch/report-system/internal/core/domain"
)

type userResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	MunicipalityID *string   `json:"municipality_id"`
	HomeAddress    string    `json:"home_address,omitempty"`
	Lat            *float64  `json:"lat,omitempty"`
	Lng            *float64  `json:"lng,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type userSummaryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type municipalityResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province"`
}

// updateProfileRequest is the PATCH /users/me body. Absent fields are kept.
type updateProfileRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=120"`
	HomeAddress *string  `json:"home_address" validate:"omitempty,max=300"`
	Lat         *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng         *float64 `json:"lng" validate:"omitempty,longitude"`
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		HomeAddress: u.HomeAddress,
		Lat:         u.Lat,
		Lng:         u.Lng,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.MunicipalityID != "" {
		id := u.MunicipalityID
		resp.MunicipalityID = &id
	}
	return resp
}

func toMunicipalityResponse(m *domain.Municipality) *municipalityResponse {
	if m == nil {
		return nil
	}
	return &municipalityResponse{ID: m.ID, Name: m.Name, Province: m.Province}
}
