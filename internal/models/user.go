package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the platform.
type Role string

const (
	// RoleMaster has a read-only view over every agency's data.
	RoleMaster Role = "MASTER"
	// RoleAgency has full read/write access within its own agency.
	RoleAgency Role = "AGENCY"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMaster || r == RoleAgency
}

// User represents a platform user with login credentials and profile.
// AgencyID is nil only for MASTER users.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Password     string     `json:"-"`
	FullName     string     `json:"full_name"`
	Organization string     `json:"organization"`
	Position     string     `json:"position"`
	Phone        string     `json:"phone"`
	AgencyID     *uuid.UUID `json:"agency_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserRole links a user to a role. One role per user in the normal flow;
// the schema only enforces uniqueness per (user_id, role).
type UserRole struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	FullName     string     `json:"full_name"`
	Organization string     `json:"organization"`
	Position     string     `json:"position"`
	Phone        string     `json:"phone"`
	AgencyID     *uuid.UUID `json:"agency_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		Organization: u.Organization,
		Position:     u.Position,
		Phone:        u.Phone,
		AgencyID:     u.AgencyID,
		CreatedAt:    u.CreatedAt,
	}
}
