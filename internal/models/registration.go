package models

import "time"

// RegistrationApproval is the approval state of an event registration.
type RegistrationApproval string

const (
	RegistrationPending  RegistrationApproval = "pending"
	RegistrationApproved RegistrationApproval = "approved"
	RegistrationRejected RegistrationApproval = "rejected"
)

// RegistrationPayment is the payment state of an event registration.
type RegistrationPayment string

const (
	PaymentUnpaid RegistrationPayment = "unpaid"
	PaymentPaid   RegistrationPayment = "paid"
)

// EventRegistration records a user's registration (through their FestPass)
// for one fest-scoped event. One row per (fest_pass, event).
type EventRegistration struct {
	ID             int64                `json:"id"`
	FestPassID     int64                `json:"fest_pass_id"`
	EventID        int64                `json:"event_id"`
	ApprovalStatus RegistrationApproval `json:"approval_status"`
	PaymentStatus  RegistrationPayment  `json:"payment_status"`
	CreatedAt      time.Time            `json:"created_at"`
}
