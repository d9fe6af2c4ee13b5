package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Notification lifecycle event types
const (
	EventNotificationCreated  = "NOTIFICATION_CREATED"
	EventNotificationUpdated  = "NOTIFICATION_UPDATED"
	EventNotificationArchived = "NOTIFICATION_ARCHIVED"
	EventNotificationRestored = "NOTIFICATION_RESTORED"
	EventNotificationDeleted  = "NOTIFICATION_DELETED"
)

// OutboxEvent records a lifecycle event for asynchronous publication.
type OutboxEvent struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	EventType   string          `json:"event_type" db:"event_type"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	Status      OutboxStatus    `json:"status" db:"status"`
	Error       *string         `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
}
