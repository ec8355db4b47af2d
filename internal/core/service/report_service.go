package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
	"github.com/civicwatch/report-system/internal/pkg/metrics"
)

const activityLimit = 100

// ReportDeps groups the collaborators of ReportService.
type ReportDeps struct {
	Reports        ports.ReportRepository
	Upvotes        ports.UpvoteRepository
	Users          ports.UserRepository
	Municipalities ports.MunicipalityRepository
	Geocoder       ports.Geocoder
	Activity       ports.ActivityRepository
	Publisher      ports.ActivityPublisher
}

// ReportService enforces tenant isolation and the report lifecycle over the
// storage collaborators.
type ReportService struct {
	deps ReportDeps
	log  zerolog.Logger
	now  func() time.Time
}

func NewReportService(deps ReportDeps, log zerolog.Logger) *ReportService {
	return &ReportService{deps: deps, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores a citizen report. The municipality comes from the caller's
// profile, or from the report coordinates when the profile has none, and is
// never re-derived afterwards.
func (s *ReportService) Create(ctx context.Context, caller domain.Caller, in ports.CreateReportInput) (*ports.ReportView, error) {
	if err := requireRole(caller, domain.RoleCitizen); err != nil {
		return nil, err
	}
	if !domain.ValidCategory(in.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, in.Category)
	}

	municipalityID := caller.MunicipalityID
	if municipalityID == "" {
		id, err := s.deps.Geocoder.ResolveMunicipality(ctx, in.Lat, in.Lng)
		if err != nil {
			return nil, fmt.Errorf("create report: resolve municipality: %w", err)
		}
		municipalityID = id
	}
	if municipalityID == "" {
		return nil, domain.ErrUnresolvableLocation
	}

	now := s.now()
	report := &domain.Report{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Lat:            in.Lat,
		Lng:            in.Lng,
		Address:        in.Address,
		PhotoURL:       in.PhotoURL,
		MunicipalityID: municipalityID,
		CreatedBy:      caller.ID,
		Status:         domain.StatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.deps.Reports.Create(ctx, report); err != nil {
		s.log.Error().Err(err).Str("user_id", caller.ID).Msg("failed to create report")
		return nil, fmt.Errorf("create report: %w", err)
	}

	metrics.ReportsCreatedTotal.WithLabelValues(report.Category).Inc()
	s.publish(domain.ReportActivity{
		ReportID: report.ID,
		ActorID:  caller.ID,
		Action:   domain.ActionCreated,
		Status:   report.Status,
		Category: report.Category,
		At:       now,
	})
	s.log.Info().Str("report_id", report.ID).Str("municipality_id", municipalityID).Str("user_id", caller.ID).Msg("report created")

	return s.view(ctx, report)
}

// ListMine lists the caller's own reports.
func (s *ReportService) ListMine(ctx context.Context, caller domain.Caller, in ports.ListReportsInput) (*ports.ReportPage, error) {
	if err := requireRole(caller, domain.RoleCitizen); err != nil {
		return nil, err
	}
	filter, err := listFilter(in)
	if err != nil {
		return nil, err
	}
	filter.CreatedBy = caller.ID
	return s.list(ctx, filter)
}

// ListMunicipality lists the reports of the caller's municipality. Naming any
// other municipality is a cross-tenant attempt and is refused, not clamped.
func (s *ReportService) ListMunicipality(ctx context.Context, caller domain.Caller, in ports.ListReportsInput) (*ports.ReportPage, error) {
	if err := requireRole(caller, domain.RoleOfficial); err != nil {
		return nil, err
	}
	if caller.MunicipalityID == "" {
		return nil, denied("cross_tenant")
	}
	if in.MunicipalityID != "" && in.MunicipalityID != caller.MunicipalityID {
		s.log.Warn().Str("user_id", caller.ID).Str("requested_municipality", in.MunicipalityID).Msg("cross-tenant listing refused")
		return nil, denied("cross_tenant")
	}
	filter, err := listFilter(in)
	if err != nil {
		return nil, err
	}
	filter.MunicipalityID = caller.MunicipalityID
	return s.list(ctx, filter)
}

// Get returns one report. Existence is checked before entitlement.
func (s *ReportService) Get(ctx context.Context, caller domain.Caller, id string) (*ports.ReportView, error) {
	report, err := s.visibleReport(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, report)
}

// Update applies an official's patch to a report of their own municipality.
func (s *ReportService) Update(ctx context.Context, caller domain.Caller, id string, in ports.UpdateReportInput) (*ports.ReportView, error) {
	if err := requireRole(caller, domain.RoleOfficial); err != nil {
		return nil, err
	}

	current, err := s.deps.Reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.InMunicipality(current.MunicipalityID) {
		return nil, denied("cross_tenant")
	}

	if in.ImmutableField != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrImmutableField, in.ImmutableField)
	}
	patch, err := toPatch(in)
	if err != nil {
		return nil, err
	}

	if patch.AssignedOfficial != nil && *patch.AssignedOfficial != "" {
		if err := s.checkAssignee(ctx, *patch.AssignedOfficial, current.MunicipalityID); err != nil {
			return nil, err
		}
	}

	updated, err := s.deps.Reports.Update(ctx, id, patch)
	if err != nil {
		s.log.Error().Err(err).Str("report_id", id).Msg("failed to update report")
		return nil, fmt.Errorf("update report: %w", err)
	}

	action := domain.ActionUpdated
	if patch.AssignedOfficial != nil && *patch.AssignedOfficial != current.AssignedOfficial {
		action = domain.ActionAssigned
	}
	countUpdatedFields(patch)
	s.publish(domain.ReportActivity{
		ReportID:         id,
		ActorID:          caller.ID,
		Action:           action,
		Status:           updated.Status,
		AssignedOfficial: updated.AssignedOfficial,
		Category:         updated.Category,
		At:               s.now(),
	})
	s.log.Info().Str("report_id", id).Str("user_id", caller.ID).Str("status", string(updated.Status)).Msg("report updated")

	return s.view(ctx, updated)
}

// checkAssignee requires the assignee to be an official of municipalityID.
func (s *ReportService) checkAssignee(ctx context.Context, assigneeID, municipalityID string) error {
	assignee, err := s.deps.Users.FindByID(ctx, assigneeID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidAssignment
	}
	if err != nil {
		return fmt.Errorf("update report: find assignee: %w", err)
	}
	if assignee.Role != domain.RoleOfficial || assignee.MunicipalityID != municipalityID {
		return domain.ErrInvalidAssignment
	}
	return nil
}

// ToggleUpvote flips the caller's upvote on a report. A concurrent insert that
// loses the race to the storage uniqueness constraint counts as upvoted.
func (s *ReportService) ToggleUpvote(ctx context.Context, caller domain.Caller, id string) (*ports.UpvoteResult, error) {
	if err := requireRole(caller, domain.RoleCitizen); err != nil {
		return nil, err
	}

	report, err := s.deps.Reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.CreatedBy == caller.ID {
		metrics.AccessDeniedTotal.WithLabelValues("self_upvote").Inc()
		return nil, domain.ErrSelfUpvote
	}

	exists, err := s.deps.Upvotes.Exists(ctx, id, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("toggle upvote: lookup: %w", err)
	}

	upvoted := !exists
	if exists {
		if err := s.deps.Upvotes.Delete(ctx, id, caller.ID); err != nil {
			return nil, fmt.Errorf("toggle upvote: delete: %w", err)
		}
		metrics.UpvoteTogglesTotal.WithLabelValues("removed").Inc()
	} else {
		err := s.deps.Upvotes.Insert(ctx, &domain.Upvote{ReportID: id, UserID: caller.ID, CreatedAt: s.now()})
		if err != nil && !errors.Is(err, domain.ErrUpvoteExists) {
			return nil, fmt.Errorf("toggle upvote: insert: %w", err)
		}
		metrics.UpvoteTogglesTotal.WithLabelValues("added").Inc()
	}

	counts, err := s.deps.Upvotes.CountByReports(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("toggle upvote: count: %w", err)
	}

	s.log.Info().Str("report_id", id).Str("user_id", caller.ID).Bool("upvoted", upvoted).Msg("upvote toggled")
	return &ports.UpvoteResult{ReportID: id, Upvoted: upvoted, UpvoteCount: counts[id]}, nil
}

// Activity returns the audit trail of a report visible to the caller.
func (s *ReportService) Activity(ctx context.Context, caller domain.Caller, id string) ([]ports.ActivityEntry, error) {
	if _, err := s.visibleReport(ctx, caller, id); err != nil {
		return nil, err
	}
	items, err := s.deps.Activity.ListByReport(ctx, id, activityLimit)
	if err != nil {
		return nil, fmt.Errorf("report activity: %w", err)
	}
	out := make([]ports.ActivityEntry, len(items))
	for i, a := range items {
		out[i] = ports.ActivityEntry{
			Action:           string(a.Action),
			ActorID:          a.ActorID,
			Status:           string(a.Status),
			AssignedOfficial: a.AssignedOfficial,
			Category:         a.Category,
			At:               a.At,
		}
	}
	return out, nil
}

func (s *ReportService) visibleReport(ctx context.Context, caller domain.Caller, id string) (*domain.Report, error) {
	report, err := s.deps.Reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewReport(caller, report) {
		if caller.IsOfficial() {
			return nil, denied("cross_tenant")
		}
		return nil, denied("not_owner")
	}
	return report, nil
}

func (s *ReportService) publish(a domain.ReportActivity) {
	if s.deps.Publisher != nil {
		s.deps.Publisher.Publish(a)
	}
}

func (s *ReportService) list(ctx context.Context, filter ports.ListReportsFilter) (*ports.ReportPage, error) {
	reports, total, err := s.deps.Reports.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	items, err := s.views(ctx, reports)
	if err != nil {
		return nil, err
	}
	return &ports.ReportPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *ReportService) view(ctx context.Context, r *domain.Report) (*ports.ReportView, error) {
	views, err := s.views(ctx, []*domain.Report{r})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views joins reports with municipality, author, assignee and upvote count,
// batching lookups across the page.
func (s *ReportService) views(ctx context.Context, reports []*domain.Report) ([]ports.ReportView, error) {
	if len(reports) == 0 {
		return []ports.ReportView{}, nil
	}

	reportIDs := make([]string, 0, len(reports))
	userIDs := make([]string, 0, len(reports)*2)
	munis := make(map[string]*domain.Municipality)
	for _, r := range reports {
		reportIDs = append(reportIDs, r.ID)
		userIDs = append(userIDs, r.CreatedBy)
		if r.AssignedOfficial != "" {
			userIDs = append(userIDs, r.AssignedOfficial)
		}
		if _, seen := munis[r.MunicipalityID]; seen {
			continue
		}
		m, err := s.deps.Municipalities.FindByID(ctx, r.MunicipalityID)
		if err != nil && !errors.Is(err, domain.ErrMunicipalityNotFound) {
			return nil, fmt.Errorf("join municipality: %w", err)
		}
		munis[r.MunicipalityID] = m
	}

	users, err := s.deps.Users.FindByIDs(ctx, dedupe(userIDs))
	if err != nil {
		return nil, fmt.Errorf("join users: %w", err)
	}
	counts, err := s.deps.Upvotes.CountByReports(ctx, reportIDs)
	if err != nil {
		return nil, fmt.Errorf("join upvotes: %w", err)
	}

	out := make([]ports.ReportView, len(reports))
	for i, r := range reports {
		out[i] = ports.ReportView{
			Report:       *r,
			Municipality: munis[r.MunicipalityID],
			Author:       summarize(users[r.CreatedBy]),
			UpvoteCount:  counts[r.ID],
		}
		if r.AssignedOfficial != "" {
			out[i].Assignee = summarize(users[r.AssignedOfficial])
		}
	}
	return out, nil
}

// listFilter validates listing input and applies paging bounds.
func listFilter(in ports.ListReportsInput) (ports.ListReportsFilter, error) {
	if in.Status != "" && !domain.ReportStatus(in.Status).Valid() {
		return ports.ListReportsFilter{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, in.Status)
	}
	if in.Category != "" && !domain.ValidCategory(in.Category) {
		return ports.ListReportsFilter{}, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, in.Category)
	}
	if in.Limit < 0 || in.Limit > ports.MaxPageLimit || in.Offset < 0 {
		return ports.ListReportsFilter{}, fmt.Errorf("%w: limit must be 1-%d and offset non-negative", domain.ErrValidation, ports.MaxPageLimit)
	}
	limit := in.Limit
	if limit == 0 {
		limit = ports.DefaultPageLimit
	}
	return ports.ListReportsFilter{
		Status:   in.Status,
		Category: in.Category,
		Limit:    limit,
		Offset:   in.Offset,
	}, nil
}

func toPatch(in ports.UpdateReportInput) (domain.ReportPatch, error) {
	var patch domain.ReportPatch
	if in.Status != nil {
		st := domain.ReportStatus(*in.Status)
		if !st.Valid() {
			return patch, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *in.Status)
		}
		patch.Status = &st
	}
	if in.Category != nil {
		if !domain.ValidCategory(*in.Category) {
			return patch, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, *in.Category)
		}
		patch.Category = in.Category
	}
	patch.AssignedOfficial = in.AssignedOfficial
	if patch.Empty() {
		return patch, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	return patch, nil
}

func countUpdatedFields(p domain.ReportPatch) {
	if p.Status != nil {
		metrics.ReportsUpdatedTotal.WithLabelValues("status").Inc()
	}
	if p.AssignedOfficial != nil {
		metrics.ReportsUpdatedTotal.WithLabelValues("assigned_official").Inc()
	}
	if p.Category != nil {
		metrics.ReportsUpdatedTotal.WithLabelValues("category").Inc()
	}
}

func summarize(u *domain.User) *ports.UserSummary {
	if u == nil {
		return nil
	}
	return &ports.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
