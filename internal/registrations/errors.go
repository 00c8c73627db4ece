package registrations

import "errors"

var (
	// ErrNotFound is returned when the event or registration lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrForbidden rejects a registration listing by an unprivileged actor.
	ErrForbidden = errors.New("forbidden")
	// ErrWrongEventType rejects registration against a city event.
	ErrWrongEventType = errors.New("event is not a fest event")
	// ErrRegistrationNotRequired rejects registration for open-entry events.
	ErrRegistrationNotRequired = errors.New("event does not take registrations")
	// ErrNoEntryPass is returned when the user holds no approved pass for
	// the event's fest.
	ErrNoEntryPass = errors.New("no approved entry pass for this fest")
	// ErrCapacityExceeded is returned when active registrations have
	// reached the event's registration limit.
	ErrCapacityExceeded = errors.New("registration limit reached")
)
