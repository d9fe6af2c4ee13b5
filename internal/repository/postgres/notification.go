package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduboard/notice-api/internal/model"
	"github.com/eduboard/notice-api/internal/repository"
	apperrors "github.com/eduboard/notice-api/pkg/errors"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, title, content, notification_type, group_id, image_path,
			status, is_important, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.Title,
		n.Content,
		n.Type,
		n.GroupID,
		n.ImagePath,
		n.Status,
		n.IsImportant,
		n.CreatedBy,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `SELECT * FROM notifications WHERE id = $1`

	var n model.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("notification", err)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &n, nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	query := `
		UPDATE notifications SET
			title = $1,
			content = $2,
			notification_type = $3,
			group_id = $4,
			image_path = $5,
			status = $6,
			is_important = $7,
			updated_at = $8
		WHERE id = $9
	`

	result, err := r.db.ExecContext(ctx, query,
		n.Title,
		n.Content,
		n.Type,
		n.GroupID,
		n.ImagePath,
		n.Status,
		n.IsImportant,
		n.UpdatedAt,
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("notification", nil)
	}

	return nil
}

// Archive flips the notification into archived state and upserts the
// matching ledger row in one transaction, so a crash cannot leave one
// without the other.
func (r *notificationRepository) Archive(ctx context.Context, n *model.Notification) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE notifications SET
				status = $1,
				archived_by = $2,
				archived_at = $3,
				archive_reason = $4,
				updated_at = $5
			WHERE id = $6
		`, n.Status, n.ArchivedBy, n.ArchivedAt, n.ArchiveReason, n.UpdatedAt, n.ID)
		if err != nil {
			return fmt.Errorf("failed to archive notification: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("notification", nil)
		}

		reason := ""
		if n.ArchiveReason != nil {
			reason = *n.ArchiveReason
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO notification_archives (
				id, notification_id, archived_by, archived_at, reason
			) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (notification_id) DO UPDATE SET
				archived_by = EXCLUDED.archived_by,
				archived_at = EXCLUDED.archived_at,
				reason = EXCLUDED.reason
		`, uuid.New(), n.ID, n.ArchivedBy, n.ArchivedAt, reason)
		if err != nil {
			return fmt.Errorf("failed to upsert archive record: %w", err)
		}

		return nil
	})
}

// Restore clears the archive state and removes the ledger row in one
// transaction. The ledger delete is idempotent.
func (r *notificationRepository) Restore(ctx context.Context, n *model.Notification) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE notifications SET
				status = $1,
				archived_by = NULL,
				archived_at = NULL,
				archive_reason = NULL,
				updated_at = $2
			WHERE id = $3
		`, n.Status, n.UpdatedAt, n.ID)
		if err != nil {
			return fmt.Errorf("failed to restore notification: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("notification", nil)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM notification_archives WHERE notification_id = $1
		`, n.ID); err != nil {
			return fmt.Errorf("failed to delete archive record: %w", err)
		}

		return nil
	})
}

// Delete physically removes the row. Ledger and view rows go with it via
// ON DELETE CASCADE.
func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("notification", nil)
	}

	return nil
}

func buildFilter(f *model.NotificationFilter) (string, []interface{}) {
	query := " WHERE 1=1"
	args := []interface{}{}

	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, f.Status)
	}

	if f.ExcludeStatus != "" {
		query += fmt.Sprintf(" AND status != $%d", len(args)+1)
		args = append(args, f.ExcludeStatus)
	}

	if f.ArchivedBy != nil {
		query += fmt.Sprintf(" AND archived_by = $%d", len(args)+1)
		args = append(args, *f.ArchivedBy)
	}

	if f.VisibleToGroup != nil {
		query += fmt.Sprintf(" AND (notification_type = 'general' OR group_id = $%d)", len(args)+1)
		args = append(args, *f.VisibleToGroup)
	} else if f.GeneralOnly {
		query += " AND notification_type = 'general'"
	}

	if f.ImportantOnly {
		query += " AND is_important = TRUE"
	}

	return query, args
}

func (r *notificationRepository) List(ctx context.Context, f *model.NotificationFilter) ([]*model.Notification, error) {
	where, args := buildFilter(f)

	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = model.OrderByCreatedDesc
	}

	query := "SELECT * FROM notifications" + where + " ORDER BY " + orderBy
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, f.Limit, f.Offset)
	}

	notifications := []*model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) Count(ctx context.Context, f *model.NotificationFilter) (int64, error) {
	where, args := buildFilter(f)

	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM notifications"+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	return count, nil
}

func (r *notificationRepository) GetArchiveRecord(ctx context.Context, notificationID uuid.UUID) (*model.ArchiveRecord, error) {
	query := `SELECT * FROM notification_archives WHERE notification_id = $1`

	var record model.ArchiveRecord
	if err := r.db.GetContext(ctx, &record, query, notificationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("archive record", err)
		}
		return nil, fmt.Errorf("failed to get archive record: %w", err)
	}

	return &record, nil
}
