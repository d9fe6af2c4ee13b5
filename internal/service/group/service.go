package group

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eduboard/notice-api/internal/model"
	"github.com/eduboard/notice-api/internal/repository"
	apperrors "github.com/eduboard/notice-api/pkg/errors"
)

type GroupServicer interface {
	CreateGroup(ctx context.Context, name, description string) (*model.Group, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*model.Group, error)
	UpdateGroup(ctx context.Context, id uuid.UUID, name, description string) (*model.Group, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	ListGroups(ctx context.Context) ([]*model.Group, error)
}

type Service struct {
	repo     repository.GroupRepository
	userRepo repository.UserRepository
}

func NewService(repo repository.GroupRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
	}
}

func (s *Service) CreateGroup(ctx context.Context, name, description string) (*model.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.Validation("group name is required", nil)
	}

	now := time.Now()
	group := &model.Group{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

func (s *Service) GetGroup(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateGroup(ctx context.Context, id uuid.UUID, name, description string) (*model.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.Validation("group name is required", nil)
	}

	group, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	group.Name = name
	group.Description = description
	group.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// DeleteGroup refuses to remove a group that still has members.
func (s *Service) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	members, err := s.userRepo.CountByGroup(ctx, id)
	if err != nil {
		return err
	}
	if members > 0 {
		return apperrors.Conflict("group still has members", nil)
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) ListGroups(ctx context.Context) ([]*model.Group, error) {
	return s.repo.List(ctx)
}
