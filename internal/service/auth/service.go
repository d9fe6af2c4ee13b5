package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eduboard/notice-api/internal/model"
	"github.com/eduboard/notice-api/internal/repository"
	"github.com/eduboard/notice-api/pkg/auth"
	apperrors "github.com/eduboard/notice-api/pkg/errors"
	"github.com/eduboard/notice-api/pkg/security"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	GroupID  *uuid.UUID
}

type ProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	GroupID   *uuid.UUID
}

type AuthServicer interface {
	Register(ctx context.Context, input *RegisterInput) (*model.TokenResponse, error)
	Login(ctx context.Context, username, password string) (*model.TokenResponse, error)
	UpdateProfile(ctx context.Context, actor *model.User, input *ProfileInput) (*model.User, error)
}

type Service struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
}

func NewService(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
	}
}

func (s *Service) Register(ctx context.Context, input *RegisterInput) (*model.TokenResponse, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, apperrors.Validation("username is required", nil)
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, apperrors.Validation("email is required", nil)
	}

	if _, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.Conflict("username is already taken", nil)
	}
	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
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
		Role:         model.RoleMember,
		GroupID:      input.GroupID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *Service) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.Unauthorized(nil)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized(nil)
	}

	return s.issueToken(user)
}

func (s *Service) UpdateProfile(ctx context.Context, actor *model.User, input *ProfileInput) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = input.FirstName
	}
	if input.LastName != nil {
		user.LastName = input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.GroupID != nil {
		if _, err := s.groupRepo.Get(ctx, *input.GroupID); err != nil {
			return nil, err
		}
		user.GroupID = input.GroupID
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) issueToken(user *model.User) (*model.TokenResponse, error) {
	token, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtSvc.Expiry().Seconds()),
		User:        user,
	}, nil
}
