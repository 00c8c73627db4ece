package models

import "time"

// FestStatus is the lifecycle state of a fest.
type FestStatus string

const (
	FestStatusDraft FestStatus = "draft"
	FestStatusLive  FestStatus = "live"
)

// Fest is a college festival owning a committee and a set of fest events.
// The slug is unique and immutable once created.
type Fest struct {
	ID        int64      `json:"id"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Tagline   string     `json:"tagline,omitempty"`
	BannerURL string     `json:"banner_url,omitempty"`
	LogoURL   string     `json:"logo_url,omitempty"`
	CollegeID *int64     `json:"college_id,omitempty"`
	Status    FestStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// FestMemberRole is a user's committee role within a fest.
type FestMemberRole string

const (
	FestRoleOwner     FestMemberRole = "owner"
	FestRoleCore      FestMemberRole = "core"
	FestRoleVolunteer FestMemberRole = "volunteer"
)

// Valid reports whether the role is a known committee role.
func (r FestMemberRole) Valid() bool {
	return r == FestRoleOwner || r == FestRoleCore || r == FestRoleVolunteer
}

// FestMember links a user to a fest committee. One row per (fest, user);
// re-adding a member overwrites the role.
type FestMember struct {
	ID        int64          `json:"id"`
	FestID    int64          `json:"fest_id"`
	UserID    int64          `json:"user_id"`
	Role      FestMemberRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}
