package handler

import (
	"encoding/json"
	"time"
)

// --- Requests ---

type createReportRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Category    string   `json:"category" validate:"required,category"`
	Lat         *float64 `json:"lat" validate:"required,latitude"`
	Lng         *float64 `json:"lng" validate:"required,longitude"`
	Address     string   `json:"address" validate:"required,max=300"`
	PhotoURL    string   `json:"photo_url" validate:"omitempty,url"`
}

// updateReportRequest is the official patch. An empty assigned_official
// clears the assignment. ID, CreatedBy and MunicipalityID only exist to
// detect attempts to change immutable fields.
type updateReportRequest struct {
	Status           *string `json:"status"`
	AssignedOfficial *string `json:"assigned_official"`
	Category         *string `json:"category"`

	ID             json.RawMessage `json:"id" swaggerignore:"true"`
	CreatedBy      json.RawMessage `json:"created_by" swaggerignore:"true"`
	MunicipalityID json.RawMessage `json:"municipality_id" swaggerignore:"true"`
}

// immutableField names the first immutable field present in the body.
func (r updateReportRequest) immutableField() string {
	switch {
	case len(r.ID) > 0:
		return "id"
	case len(r.CreatedBy) > 0:
		return "created_by"
	case len(r.MunicipalityID) > 0:
		return "municipality_id"
	}
	return ""
}

// --- Responses ---

type reportResponse struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Category         string                `json:"category"`
	Lat              float64               `json:"lat"`
	Lng              float64               `json:"lng"`
	Address          string                `json:"address"`
	PhotoURL         string                `json:"photo_url,omitempty"`
	Status           string                `json:"status"`
	MunicipalityID   string                `json:"municipality_id"`
	CreatedBy        string                `json:"created_by"`
	AssignedOfficial *string               `json:"assigned_official"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Municipality     *municipalityResponse `json:"municipality,omitempty"`
	Author           *userSummaryResponse  `json:"author,omitempty"`
	Assignee         *userSummaryResponse  `json:"assignee,omitempty"`
	UpvoteCount      int64                 `json:"upvote_count"`
}

type reportListResponse struct {
	Items  []reportResponse `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type upvoteResponse struct {
	ReportID    string `json:"report_id"`
	Upvoted     bool   `json:"upvoted"`
	UpvoteCount int64  `json:"upvote_count"`
}

type activityResponse struct {
	Action           string    `json:"action"`
	ActorID          string    `json:"actor_id"`
	Status           string    `json:"status,omitempty"`
	AssignedOfficial string    `json:"assigned_official,omitempty"`
	Category         string    `json:"category,omitempty"`
	At               time.Time `json:"at"`
}
