package model

import (
	"time"

	"github.com/google/uuid"
)

// User role constants
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents an authenticated actor. Role and group membership drive
// every notification visibility decision.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	Password     string     `json:"password,omitempty" db:"-"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    *string    `json:"first_name" db:"first_name"`
	LastName     *string    `json:"last_name" db:"last_name"`
	Phone        *string    `json:"phone" db:"phone"`
	Role         string     `json:"role" db:"role"`
	GroupID      *uuid.UUID `json:"group_id" db:"group_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// InGroup reports whether the user belongs to the given group.
func (u *User) InGroup(groupID uuid.UUID) bool {
	return u.GroupID != nil && *u.GroupID == groupID
}

// UserFilters represents user search parameters
type UserFilters struct {
	Role    string     `json:"role"`
	GroupID *uuid.UUID `json:"group_id"`
}

// UserStats mirrors the admin dashboard counters.
type UserStats struct {
	TotalUsers         int64 `json:"total_users" db:"total_users"`
	AdminCount         int64 `json:"admin_count" db:"admin_count"`
	TotalGroups        int64 `json:"total_groups" db:"total_groups"`
	TotalNotifications int64 `json:"total_notifications" db:"total_notifications"`
}
