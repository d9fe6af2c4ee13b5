package model

import (
	"time"

	"github.com/google/uuid"
)

// ArchiveRecord is the one-to-one shadow of an archived notification.
// A row exists if and only if the notification's status is archived:
// created on archive, removed on restore.
type ArchiveRecord struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	NotificationID uuid.UUID  `json:"notification_id" db:"notification_id"`
	ArchivedBy     *uuid.UUID `json:"archived_by" db:"archived_by"`
	ArchivedAt     time.Time  `json:"archived_at" db:"archived_at"`
	Reason         string     `json:"reason" db:"reason"`
}

// DaysInArchive reports how long the notification has been archived.
func (r *ArchiveRecord) DaysInArchive(now time.Time) int {
	if r.ArchivedAt.IsZero() {
		return 0
	}
	return int(now.Sub(r.ArchivedAt).Hours() / 24)
}
