package ports

import (
	"context"

	"github.com/civicwatch/report-system/internal/core/domain"
)

// ListReportsFilter carries the query for listing reports. Exactly one of
// CreatedBy and MunicipalityID is set by the service layer.
type ListReportsFilter struct {
	CreatedBy      string
	MunicipalityID string
	Status         string
	Category       string
	Limit          int
	Offset         int
}

// ReportRepository defines persistence operations for reports.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) error
	FindByID(ctx context.Context, id string) (*domain.Report, error)
	// List returns one page ordered newest first and the full match count.
	List(ctx context.Context, filter ListReportsFilter) ([]*domain.Report, int64, error)
	Update(ctx context.Context, id string, patch domain.ReportPatch) (*domain.Report, error)
}

// UpvoteRepository stores upvote rows. Uniqueness of (report, user) is
// enforced by storage.
type UpvoteRepository interface {
	Exists(ctx context.Context, reportID, userID string) (bool, error)
	// Insert returns domain.ErrUpvoteExists when the pair is already present.
	Insert(ctx context.Context, u *domain.Upvote) error
	Delete(ctx context.Context, reportID, userID string) error
	// CountByReports returns the upvote count per report id; absent ids count zero.
	CountByReports(ctx context.Context, reportIDs []string) (map[string]int64, error)
}

// ActivityRepository persists and reads the report audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, a *domain.ReportActivity) error
	ListByReport(ctx context.Context, reportID string, limit int) ([]*domain.ReportActivity, error)
}

// ActivityPublisher hands activity entries to the asynchronous recorder.
type ActivityPublisher interface {
	Publish(a domain.ReportActivity)
}
