package models

import "time"

// FestPassStatus is the moderation state of an entry pass.
type FestPassStatus string

const (
	FestPassApproved FestPassStatus = "approved"
	// FestPassBlocked is absorbing; only admin moderation sets it.
	FestPassBlocked FestPassStatus = "blocked"
)

// FestPass is a per-user, per-fest entry credential. One row per
// (user, fest); CheckedIn flips false→true exactly once at the gate.
type FestPass struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	FestID    int64          `json:"fest_id"`
	Status    FestPassStatus `json:"status"`
	QRCode    string         `json:"qr_code"`
	CheckedIn bool           `json:"checked_in"`
	CreatedAt time.Time      `json:"created_at"`
}
