package fests

import "errors"

var (
	// ErrNotFound is returned when a fest, member, or user lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned on privilege or ownership failures.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateSlug is returned when a fest slug is already taken.
	ErrDuplicateSlug = errors.New("slug already in use")
	// ErrNoOwner rejects a draft→live transition for an ownerless fest.
	ErrNoOwner = errors.New("fest has no owner")
	// ErrUnknownRole is returned for a role outside owner/core/volunteer.
	ErrUnknownRole = errors.New("unknown member role")
	// ErrUnknownStatus is returned for a status outside draft/live.
	ErrUnknownStatus = errors.New("unknown fest status")
)
