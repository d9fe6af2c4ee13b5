package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/eduboard/notice-api/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository handles principal records
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
		CountByGroup(ctx context.Context, groupID uuid.UUID) (int64, error)
		Stats(ctx context.Context) (*model.UserStats, error)
	}

	GroupRepository interface {
		Create(ctx context.Context, group *model.Group) error
		Get(ctx context.Context, id uuid.UUID) (*model.Group, error)
		Update(ctx context.Context, group *model.Group) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Group, error)
	}

	// NotificationRepository owns the notification rows and keeps the
	// archive ledger in lock-step with status: Archive and Restore run
	// the entity update and the ledger write in a single transaction.
	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		Update(ctx context.Context, n *model.Notification) error
		Archive(ctx context.Context, n *model.Notification) error
		Restore(ctx context.Context, n *model.Notification) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, f *model.NotificationFilter) ([]*model.Notification, error)
		Count(ctx context.Context, f *model.NotificationFilter) (int64, error)
		GetArchiveRecord(ctx context.Context, notificationID uuid.UUID) (*model.ArchiveRecord, error)
	}

	ViewRepository interface {
		Upsert(ctx context.Context, view *model.ViewRecord) error
		Get(ctx context.Context, userID, notificationID uuid.UUID) (*model.ViewRecord, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	}
)
