package passes

import "errors"

var (
	// ErrNotFound is returned when the fest or pass lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrNotLive rejects a pass claim on a draft fest.
	ErrNotLive = errors.New("fest is not live")
	// ErrForbidden rejects a gate scan by an unprivileged actor.
	ErrForbidden = errors.New("forbidden")
	// ErrPassBlocked rejects a gate scan of a blocked pass.
	ErrPassBlocked = errors.New("pass is blocked")
	// ErrAlreadyUsed rejects a second gate scan of the same pass.
	ErrAlreadyUsed = errors.New("pass already used")
)
