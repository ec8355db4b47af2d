package ports

import (
	"context"
	"time"

	"github.com/civicwatch/report-system/internal/core/domain"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// CreateReportInput carries a validated report submission.
type CreateReportInput struct {
	Title       string
	Description string
	Category    string
	Lat         float64
	Lng         float64
	Address     string
	PhotoURL    string
}

// ListReportsInput carries listing parameters. MunicipalityID is only
// meaningful for officials and must equal their own municipality.
type ListReportsInput struct {
	MunicipalityID string
	Status         string
	Category       string
	Limit          int
	Offset         int
}

// UpdateReportInput is the official patch. ImmutableField names a read-only
// field the request tried to set; it is rejected once access is established.
type UpdateReportInput struct {
	Status           *string
	AssignedOfficial *string
	Category         *string
	ImmutableField   string
}

// UserSummary is the public slice of a user joined into report views.
type UserSummary struct {
	ID    string
	Name  string
	Email string
	Role  domain.Role
}

// ReportView is a report joined with its municipality, author and assignee.
type ReportView struct {
	Report       domain.Report
	Municipality *domain.Municipality
	Author       *UserSummary
	Assignee     *UserSummary
	UpvoteCount  int64
}

// ReportPage is one page of a listing. Total counts every matching report.
type ReportPage struct {
	Items  []ReportView
	Total  int64
	Limit  int
	Offset int
}

// UpvoteResult reports the state after a toggle.
type UpvoteResult struct {
	ReportID    string
	Upvoted     bool
	UpvoteCount int64
}

// ActivityEntry is one audit trail item.
type ActivityEntry struct {
	Action           string
	ActorID          string
	Status           string
	AssignedOfficial string
	Category         string
	At               time.Time
}

// ReportService is the report lifecycle and its access rules.
type ReportService interface {
	Create(ctx context.Context, caller domain.Caller, in CreateReportInput) (*ReportView, error)
	ListMine(ctx context.Context, caller domain.Caller, in ListReportsInput) (*ReportPage, error)
	ListMunicipality(ctx context.Context, caller domain.Caller, in ListReportsInput) (*ReportPage, error)
	Get(ctx context.Context, caller domain.Caller, id string) (*ReportView, error)
	Update(ctx context.Context, caller domain.Caller, id string, in UpdateReportInput) (*ReportView, error)
	ToggleUpvote(ctx context.Context, caller domain.Caller, id string) (*UpvoteResult, error)
	Activity(ctx context.Context, caller domain.Caller, id string) ([]ActivityEntry, error)
}
