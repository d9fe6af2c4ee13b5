package model

import (
	"time"

	"github.com/google/uuid"
)

// ViewRecord marks that a user has seen a notification. At most one row
// per (user, notification) pair; repeat views refresh ViewedAt.
type ViewRecord struct {
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	NotificationID uuid.UUID `json:"notification_id" db:"notification_id"`
	ViewedAt       time.Time `json:"viewed_at" db:"viewed_at"`
}
