package events

import "errors"

var (
	// ErrNotFound is returned when an event lookup misses.
	ErrNotFound = errors.New("event not found")
	// ErrForbidden is returned on ownership or privilege failures.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownType is returned for an event type outside fest/city.
	ErrUnknownType = errors.New("event_type must be fest or city")
	// ErrUnknownApproval is returned for an approval mode outside auto/manual.
	ErrUnknownApproval = errors.New("approval_mode must be auto or manual")
)
