package domain

import "time"

// ReportStatus is the lifecycle state of a report.
type ReportStatus string

const (
	StatusOpen       ReportStatus = "open"
	StatusInProgress ReportStatus = "in_progress"
	StatusResolved   ReportStatus = "resolved"
	StatusRejected   ReportStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Categories lists the accepted report categories.
var Categories = []string{
	"roads",
	"lighting",
	"waste",
	"water",
	"vandalism",
	"parks",
	"other",
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// Report is a citizen-submitted service report. MunicipalityID and CreatedBy
// are fixed at creation.
type Report struct {
	ID               string
	Title            string
	Description      string
	Category         string
	Lat              float64
	Lng              float64
	Address          string
	PhotoURL         string
	MunicipalityID   string
	CreatedBy        string
	Status           ReportStatus
	AssignedOfficial string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReportPatch holds the official-writable fields. Nil means unchanged; an
// empty AssignedOfficial clears the assignment.
type ReportPatch struct {
	Status           *ReportStatus
	AssignedOfficial *string
	Category         *string
}

// Empty reports whether the patch changes nothing.
func (p ReportPatch) Empty() bool {
	return p.Status == nil && p.AssignedOfficial == nil && p.Category == nil
}

// Upvote marks that UserID supports ReportID. Presence of the row is the
// only state.
type Upvote struct {
	ReportID  string
	UserID    string
	CreatedAt time.Time
}
