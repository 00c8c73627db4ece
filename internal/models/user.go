package models

import "time"

// Role represents user role in the platform.
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one of the known platform roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleOrganizer || r == RoleAdmin
}

// User represents a platform user.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// OrganizerRequestStatus is the moderation state of an organizer request.
type OrganizerRequestStatus string

const (
	OrganizerRequestPending  OrganizerRequestStatus = "pending"
	OrganizerRequestApproved OrganizerRequestStatus = "approved"
	OrganizerRequestRejected OrganizerRequestStatus = "rejected"
)

// OrganizerRequest is a user's application for the organizer role.
// Approval is the only path that mutates a user's role; users never
// change their own role.
type OrganizerRequest struct {
	ID          int64                  `json:"id"`
	UserID      int64                  `json:"user_id"`
	Status      OrganizerRequestStatus `json:"status"`
	RequestedAt time.Time              `json:"requested_at"`
	ReviewedAt  *time.Time             `json:"reviewed_at,omitempty"`
}
