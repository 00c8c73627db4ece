package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eventx/backend/internal/models"
)

// OptionalInt distinguishes an absent JSON field from an explicit null.
// A null registration_limit clears the cap; an absent one leaves it alone.
type OptionalInt struct {
	Set   bool
	Value *int
}

func (o *OptionalInt) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Patch is the body for PATCH /events/:id. Nil pointers mean the field
// was not sent.
type Patch struct {
	Title                *string     `json:"title"`
	Description          *string     `json:"description"`
	Location             *string     `json:"location"`
	Date                 *time.Time  `json:"date"`
	Time                 *string     `json:"time"`
	ImageURL             *string     `json:"image_url"`
	Category             *string     `json:"category"`
	Price                *float64    `json:"price"`
	RequiresRegistration *bool       `json:"requires_registration"`
	IsPaid               *bool       `json:"is_paid"`
	RegistrationLimit    OptionalInt `json:"registration_limit"`
	ApprovalMode         *string     `json:"approval_mode"`
}

// LockedFieldsError rejects a patch that would change registration terms
// while the event has active registrations. Fields lists every offending
// field; the patch is rejected wholesale.
type LockedFieldsError struct {
	Fields []string
}

func (e *LockedFieldsError) Error() string {
	return fmt.Sprintf("fields locked by active registrations: %s", strings.Join(e.Fields, ", "))
}

// lockedFields returns the patched fields an event with activeCount > 0
// active registrations refuses to change. Registrants signed up under
// the current terms: the registration requirement and payment flag are
// frozen, price may only rise, and the limit may not drop below the
// head count. Descriptive fields always pass.
func lockedFields(current *models.Event, p Patch, activeCount int) []string {
	if activeCount == 0 {
		return nil
	}
	var locked []string
	if p.RequiresRegistration != nil {
		locked = append(locked, "requires_registration")
	}
	if p.IsPaid != nil {
		locked = append(locked, "is_paid")
	}
	if p.Price != nil && *p.Price < current.Price {
		locked = append(locked, "price")
	}
	if p.RegistrationLimit.Set && p.RegistrationLimit.Value != nil && *p.RegistrationLimit.Value < activeCount {
		locked = append(locked, "registration_limit")
	}
	return locked
}

// applyPatch writes the patched fields onto the event.
func applyPatch(e *models.Event, p Patch) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Price != nil {
		e.Price = *p.Price
		e.IsFree = e.Price == 0
	}
	if p.RequiresRegistration != nil {
		e.RequiresRegistration = *p.RequiresRegistration
	}
	if p.IsPaid != nil {
		e.IsPaid = *p.IsPaid
	}
	if p.RegistrationLimit.Set {
		e.RegistrationLimit = p.RegistrationLimit.Value
	}
	if p.ApprovalMode != nil {
		e.ApprovalMode = models.ApprovalMode(*p.ApprovalMode)
	}
}
