package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eduboard/notice-api/internal/model"
	"github.com/eduboard/notice-api/internal/repository"
	apperrors "github.com/eduboard/notice-api/pkg/errors"
	"github.com/eduboard/notice-api/pkg/security"
)

// CreateInput carries admin-created user fields.
type CreateInput struct {
	Username string
	Email    string
	Password string
	Role     string
	GroupID  *uuid.UUID
}

// UpdateInput carries admin user updates; nil fields are left untouched.
type UpdateInput struct {
	Email   *string
	Role    *string
	GroupID *uuid.UUID
}

type UserServicer interface {
	CreateUser(ctx context.Context, input *CreateInput) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input *UpdateInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
	Stats(ctx context.Context) (*model.UserStats, error)
}

type Service struct {
	repo      repository.UserRepository
	groupRepo repository.GroupRepository
	hasher    security.PasswordHasher
}

func NewService(repo repository.UserRepository, groupRepo repository.GroupRepository, hasher security.PasswordHasher) *Service {
	return &Service{
		repo:      repo,
		groupRepo: groupRepo,
		hasher:    hasher,
	}
}

func (s *Service) CreateUser(ctx context.Context, input *CreateInput) (*model.User, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, apperrors.Validation("username is required", nil)
	}
	if input.Role != model.RoleAdmin && input.Role != model.RoleMember {
		return nil, apperrors.Validation("invalid role", nil)
	}

	if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.Conflict("username is already taken", nil)
	}
	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.Conflict("email is already registered", nil)
	}

	if input.GroupID != nil {
		if _, err := s.groupRepo.Get(ctx, *input.GroupID); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.Validation("password is too weak", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		GroupID:      input.GroupID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, input *UpdateInput) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Role != nil {
		if *input.Role != model.RoleAdmin && *input.Role != model.RoleMember {
			return nil, apperrors.Validation("invalid role", nil)
		}
		user.Role = *input.Role
	}
	if input.GroupID != nil {
		if _, err := s.groupRepo.Get(ctx, *input.GroupID); err != nil {
			return nil, err
		}
		user.GroupID = input.GroupID
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Stats(ctx context.Context) (*model.UserStats, error) {
	return s.repo.Stats(ctx)
}
