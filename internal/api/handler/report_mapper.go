package handler

import (
	"github.com/civicwatch/report-system/internal/core/ports"
)

// --- Request → Service input ---

func toCreateReportInput(req createReportRequest) ports.CreateReportInput {
	in := ports.CreateReportInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Address:     req.Address,
		PhotoURL:    req.PhotoURL,
	}
	if req.Lat != nil {
		in.Lat = *req.Lat
	}
	if req.Lng != nil {
		in.Lng = *req.Lng
	}
	return in
}

func toUpdateReportInput(req updateReportRequest) ports.UpdateReportInput {
	return ports.UpdateReportInput{
		Status:           req.Status,
		AssignedOfficial: req.AssignedOfficial,
		Category:         req.Category,
		ImmutableField:   req.immutableField(),
	}
}

func toUpdateProfileInput(req updateProfileRequest) ports.UpdateProfileInput {
	return ports.UpdateProfileInput{
		Name:        req.Name,
		HomeAddress: req.HomeAddress,
		Lat:         req.Lat,
		Lng:         req.Lng,
	}
}

// --- Service result → Response ---

func toReportResponse(v *ports.ReportView) reportResponse {
	r := v.Report
	resp := reportResponse{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category,
		Lat:            r.Lat,
		Lng:            r.Lng,
		Address:        r.Address,
		PhotoURL:       r.PhotoURL,
		Status:         string(r.Status),
		MunicipalityID: r.MunicipalityID,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Municipality:   toMunicipalityResponse(v.Municipality),
		Author:         toSummaryResponse(v.Author),
		Assignee:       toSummaryResponse(v.Assignee),
		UpvoteCount:    v.UpvoteCount,
	}
	if r.AssignedOfficial != "" {
		assignee := r.AssignedOfficial
		resp.AssignedOfficial = &assignee
	}
	return resp
}

func toReportListResponse(p *ports.ReportPage) reportListResponse {
	items := make([]reportResponse, len(p.Items))
	for i := range p.Items {
		items[i] = toReportResponse(&p.Items[i])
	}
	return reportListResponse{
		Items:  items,
		Total:  p.Total,
		Limit:  p.Limit,
		Offset: p.Offset,
	}
}

func toSummaryResponse(s *ports.UserSummary) *userSummaryResponse {
	if s == nil {
		return nil
	}
	return &userSummaryResponse{ID: s.ID, Name: s.Name, Email: s.Email, Role: string(s.Role)}
}

func toActivityResponse(entries []ports.ActivityEntry) []activityResponse {
	out := make([]activityResponse, len(entries))
	for i, e := range entries {
		out[i] = activityResponse{
			Action:           e.Action,
			ActorID:          e.ActorID,
			Status:           e.Status,
			AssignedOfficial: e.AssignedOfficial,
			Category:         e.Category,
			At:               e.At,
		}
	}
	return out
}
