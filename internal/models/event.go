package models

import (
	"errors"
	"time"
)

// EventType discriminates the two event branches.
type EventType string

const (
	// EventTypeFest belongs to a college fest; managed by the fest committee.
	EventTypeFest EventType = "fest"
	// EventTypeCity is a standalone city event; managed by a single organizer.
	EventTypeCity EventType = "city"
)

// ModerationStatus is the admin moderation gate on events.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// ApprovalMode controls how fest-event registrations are approved.
type ApprovalMode string

const (
	ApprovalAuto   ApprovalMode = "auto"
	ApprovalManual ApprovalMode = "manual"
)

var (
	ErrFestIDRequired      = errors.New("fest_id is required for fest events")
	ErrOrganizerIDRequired = errors.New("organizer_id is required for city events")
	ErrScopeConflict       = errors.New("exactly one of fest_id/organizer_id must be set")
	ErrPaidNeedsPrice      = errors.New("price must be > 0 when is_paid is true")
	ErrBadRegistrationCap  = errors.New("registration_limit must be > 0")
)

// Event is either a fest event (FestID set, OrganizerID nil) or a city
// event (OrganizerID set, FestID nil), discriminated by EventType. Use
// NewFestEvent/NewCityEvent so the branch invariant holds by construction;
// the schema enforces the same with a CHECK constraint.
type Event struct {
	ID          int64            `json:"id"`
	EventType   EventType        `json:"event_type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Location    string           `json:"location,omitempty"`
	Date        time.Time        `json:"date"`
	Time        string           `json:"time,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	Category    string           `json:"category,omitempty"`
	Price       float64          `json:"price"`
	IsFree      bool             `json:"is_free"`
	Status      ModerationStatus `json:"status"`
	OrganizerID *int64           `json:"organizer_id,omitempty"`
	CollegeID   *int64           `json:"college_id,omitempty"`
	FestID      *int64           `json:"fest_id,omitempty"`

	// Registration fields are meaningful only for fest events.
	RequiresRegistration bool         `json:"requires_registration"`
	IsPaid               bool         `json:"is_paid"`
	RegistrationLimit    *int         `json:"registration_limit,omitempty"`
	ApprovalMode         ApprovalMode `json:"approval_mode"`

	CreatedAt time.Time `json:"created_at"`
}

// NewFestEvent builds a pending fest-branch event owned by the fest committee.
func NewFestEvent(festID int64, title string, date time.Time) *Event {
	return &Event{
		EventType:    EventTypeFest,
		Title:        title,
		Date:         date,
		FestID:       &festID,
		Status:       ModerationPending,
		ApprovalMode: ApprovalAuto,
		IsFree:       true,
	}
}

// NewCityEvent builds a pending city-branch event owned by one organizer.
func NewCityEvent(organizerID int64, title string, date time.Time) *Event {
	return &Event{
		EventType:    EventTypeCity,
		Title:        title,
		Date:         date,
		OrganizerID:  &organizerID,
		Status:       ModerationPending,
		ApprovalMode: ApprovalAuto,
		IsFree:       true,
	}
}

// ValidateScope checks the branch invariant: exactly one of
// fest_id/organizer_id is set, matching the event type.
func (e *Event) ValidateScope() error {
	switch e.EventType {
	case EventTypeFest:
		if e.FestID == nil {
			return ErrFestIDRequired
		}
		if e.OrganizerID != nil {
			return ErrScopeConflict
		}
	case EventTypeCity:
		if e.OrganizerID == nil {
			return ErrOrganizerIDRequired
		}
		if e.FestID != nil {
			return ErrScopeConflict
		}
	default:
		return ErrScopeConflict
	}
	return nil
}

// ValidateRegistration checks the fest-event registration sub-fields.
func (e *Event) ValidateRegistration() error {
	if e.EventType != EventTypeFest || !e.RequiresRegistration {
		return nil
	}
	if e.IsPaid && e.Price <= 0 {
		return ErrPaidNeedsPrice
	}
	if e.RegistrationLimit != nil && *e.RegistrationLimit <= 0 {
		return ErrBadRegistrationCap
	}
	return nil
}
