package domain

import "errors"

var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("access denied")
	ErrValidation           = errors.New("validation failed")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrMunicipalityNotFound = errors.New("municipality not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrUnresolvableLocation = errors.New("location does not belong to any known municipality")
	ErrInvalidAssignment    = errors.New("assignee must be an official of the report's municipality")
	ErrSelfUpvote           = errors.New("cannot upvote your own report")
	ErrImmutableField       = errors.New("field cannot be modified")

	// ErrUpvoteExists is returned by storage when the (report, user) pair is
	// already present. The upvote toggle absorbs it.
	ErrUpvoteExists = errors.New("upvote already exists")
)
