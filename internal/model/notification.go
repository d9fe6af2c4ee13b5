package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusActive   NotificationStatus = "active"
	NotificationStatusArchived NotificationStatus = "archived"
	NotificationStatusDeleted  NotificationStatus = "deleted"
)

type NotificationType string

const (
	NotificationTypeGeneral NotificationType = "general"
	NotificationTypeGroup   NotificationType = "group"
)

// Notification is the central board entity. Archive metadata (ArchivedBy,
// ArchivedAt, ArchiveReason) is set only while Status is archived.
type Notification struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	Title         string             `json:"title" db:"title"`
	Content       string             `json:"content" db:"content"`
	Type          NotificationType   `json:"notification_type" db:"notification_type"`
	GroupID       *uuid.UUID         `json:"group_id" db:"group_id"`
	ImagePath     *string            `json:"image_path" db:"image_path"`
	Status        NotificationStatus `json:"status" db:"status"`
	IsImportant   bool               `json:"is_important" db:"is_important"`
	CreatedBy     uuid.UUID          `json:"created_by" db:"created_by"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
	ArchivedBy    *uuid.UUID         `json:"archived_by" db:"archived_by"`
	ArchivedAt    *time.Time         `json:"archived_at" db:"archived_at"`
	ArchiveReason *string            `json:"archive_reason" db:"archive_reason"`
}

func (n *Notification) IsActive() bool {
	return n.Status == NotificationStatusActive
}

func (n *Notification) IsArchived() bool {
	return n.Status == NotificationStatusArchived
}

func (n *Notification) HasImage() bool {
	return n.ImagePath != nil && *n.ImagePath != ""
}

// NotificationFilter narrows repository listings. Zero values mean
// "no constraint" for their field.
type NotificationFilter struct {
	Status        NotificationStatus
	ExcludeStatus NotificationStatus
	ArchivedBy    *uuid.UUID
	// VisibleToGroup selects general notifications plus group ones
	// targeted at the given group.
	VisibleToGroup *uuid.UUID
	// GeneralOnly selects general notifications regardless of group.
	GeneralOnly   bool
	ImportantOnly bool
	OrderBy       string
	Limit         int
	Offset        int
}

// Repository ordering clauses
const (
	OrderByCreatedDesc  = "created_at DESC"
	OrderByArchivedDesc = "archived_at DESC"
)

// NotificationPage is one page of a scoped listing plus the important
// subset derived from the same scope.
type NotificationPage struct {
	Items      []*Notification `json:"items"`
	Important  []*Notification `json:"important,omitempty"`
	Pagination Pagination      `json:"pagination"`
}
