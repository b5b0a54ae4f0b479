package leads

import "errors"

var (
	// ErrLeadNotFound is returned when no conversation matches.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrNotQualified is returned when a resend is requested for a lead
	// that has not qualified.
	ErrNotQualified = errors.New("lead is not qualified")
)
