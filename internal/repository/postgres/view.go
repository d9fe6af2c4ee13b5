package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/eduboard/notice-api/internal/model"
	"github.com/eduboard/notice-api/internal/repository"
	apperrors "github.com/eduboard/notice-api/pkg/errors"
)

type viewRepository struct {
	BaseRepository
}

func NewViewRepository(base BaseRepository) repository.ViewRepository {
	return &viewRepository{base}
}

// Upsert records the view, refreshing viewed_at when the pair already
// exists. No preceding read is needed.
func (r *viewRepository) Upsert(ctx context.Context, view *model.ViewRecord) error {
	query := `
		INSERT INTO notification_views (user_id, notification_id, viewed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, notification_id) DO UPDATE SET
			viewed_at = EXCLUDED.viewed_at
	`

	_, err := r.db.ExecContext(ctx, query, view.UserID, view.NotificationID, view.ViewedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert view record: %w", err)
	}

	return nil
}

func (r *viewRepository) Get(ctx context.Context, userID, notificationID uuid.UUID) (*model.ViewRecord, error) {
	query := `
		SELECT * FROM notification_views
		WHERE user_id = $1 AND notification_id = $2
	`

	var view model.ViewRecord
	if err := r.db.GetContext(ctx, &view, query, userID, notificationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("view record", err)
		}
		return nil, fmt.Errorf("failed to get view record: %w", err)
	}

	return &view, nil
}
