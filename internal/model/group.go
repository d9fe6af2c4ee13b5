package model

import (
	"time"

	"github.com/google/uuid"
)

// Group is a named cohort that scopes group-targeted notifications.
type Group struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// MemberCount is derived by the repository, never stored.
	MemberCount int64 `json:"member_count" db:"member_count"`
}
