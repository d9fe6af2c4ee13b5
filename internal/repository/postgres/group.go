package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eduboard/notice-api/internal/model"
	"github.com/eduboard/notice-api/internal/repository"
	apperrors "github.com/eduboard/notice-api/pkg/errors"
)

type groupRepository struct {
	BaseRepository
}

func NewGroupRepository(base BaseRepository) repository.GroupRepository {
	return &groupRepository{base}
}

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	query := `
		INSERT INTO groups (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		group.ID,
		group.Name,
		group.Description,
		group.CreatedAt,
		group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

func (r *groupRepository) Get(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	query := `
		SELECT g.*, COUNT(u.id) AS member_count
		FROM groups g
		LEFT JOIN users u ON u.group_id = g.id
		WHERE g.id = $1
		GROUP BY g.id
	`

	var group model.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("group", err)
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return &group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *model.Group) error {
	query := `
		UPDATE groups SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		group.Name,
		group.Description,
		time.Now(),
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("group", nil)
	}

	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("group", nil)
	}

	return nil
}

func (r *groupRepository) List(ctx context.Context) ([]*model.Group, error) {
	query := `
		SELECT g.*, COUNT(u.id) AS member_count
		FROM groups g
		LEFT JOIN users u ON u.group_id = g.id
		GROUP BY g.id
		ORDER BY g.created_at DESC
	`

	groups := []*model.Group{}
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, nil
}
