package domain

import "time"

type ActivityAction string

const (
	ActionCreated  ActivityAction = "created"
	ActionUpdated  ActivityAction = "updated"
	ActionAssigned ActivityAction = "assigned"
)

// ReportActivity is one entry of a report's audit trail.
type ReportActivity struct {
	ReportID         string
	ActorID          string
	Action           ActivityAction
	Status           ReportStatus
	AssignedOfficial string
	Category         string
	At               time.Time
}
