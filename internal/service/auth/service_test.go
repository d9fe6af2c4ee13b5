package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduboard/notice-api/internal/model"
	pkgauth "github.com/eduboard/notice-api/pkg/auth"
	apperrors "github.com/eduboard/notice-api/pkg/errors"
	"github.com/eduboard/notice-api/pkg/security"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.NotFound("user", nil)
	}
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ *model.UserFilters) ([]*model.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) CountByGroup(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeUserRepo) Stats(_ context.Context) (*model.UserStats, error) { return nil, nil }

type fakeGroupRepo struct {
	groups map[uuid.UUID]bool
}

func (r *fakeGroupRepo) Create(_ context.Context, _ *model.Group) error { return nil }
func (r *fakeGroupRepo) Get(_ context.Context, id uuid.UUID) (*model.Group, error) {
	if !r.groups[id] {
		return nil, apperrors.NotFound("group", nil)
	}
	return &model.Group{ID: id}, nil
}
func (r *fakeGroupRepo) Update(_ context.Context, _ *model.Group) error { return nil }
func (r *fakeGroupRepo) Delete(_ context.Context, _ uuid.UUID) error    { return nil }
func (r *fakeGroupRepo) List(_ context.Context) ([]*model.Group, error) { return nil, nil }

func newTestService(groupIDs ...uuid.UUID) (*Service, *fakeUserRepo) {
	users := newFakeUserRepo()
	groups := &fakeGroupRepo{groups: make(map[uuid.UUID]bool)}
	for _, id := range groupIDs {
		groups.groups[id] = true
	}

	svc := NewService(
		users,
		groups,
		pkgauth.NewJWTService("test-secret", time.Hour),
		security.NewBcryptHasher(bcrypt.MinCost),
	)
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()

	token, err := svc.Register(context.Background(), &RegisterInput{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, model.RoleMember, token.User.Role, "self-registration never grants admin")
	assert.Empty(t, token.User.Password)

	got, err := svc.Login(context.Background(), "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, token.User.ID, got.User.ID)

	_, err = svc.Login(context.Background(), "alice", "wrong-password")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))

	_, err = svc.Login(context.Background(), "nobody", "whatever")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestRegisterUniqueness(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), &RegisterInput{
		Username: "bob",
		Email:    "bob@example.org",
		Password: "password-1",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &RegisterInput{
		Username: "bob",
		Email:    "other@example.org",
		Password: "password-2",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	_, err = svc.Register(context.Background(), &RegisterInput{
		Username: "bobby",
		Email:    "bob@example.org",
		Password: "password-2",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestRegisterValidatesGroup(t *testing.T) {
	groupID := uuid.New()
	svc, _ := newTestService(groupID)

	unknown := uuid.New()
	_, err := svc.Register(context.Background(), &RegisterInput{
		Username: "carol",
		Email:    "carol@example.org",
		Password: "password-1",
		GroupID:  &unknown,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	token, err := svc.Register(context.Background(), &RegisterInput{
		Username: "carol",
		Email:    "carol@example.org",
		Password: "password-1",
		GroupID:  &groupID,
	})
	require.NoError(t, err)
	require.NotNil(t, token.User.GroupID)
	assert.Equal(t, groupID, *token.User.GroupID)
}

func TestUpdateProfilePatchesOnlyProvidedFields(t *testing.T) {
	groupID := uuid.New()
	svc, users := newTestService(groupID)

	token, err := svc.Register(context.Background(), &RegisterInput{
		Username: "dave",
		Email:    "dave@example.org",
		Password: "password-1",
	})
	require.NoError(t, err)

	first := "Dave"
	updated, err := svc.UpdateProfile(context.Background(), token.User, &ProfileInput{
		FirstName: &first,
		GroupID:   &groupID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Dave", *updated.FirstName)
	assert.Nil(t, updated.LastName)
	require.NotNil(t, updated.GroupID)
	assert.Equal(t, groupID, *updated.GroupID)

	stored, err := users.Get(context.Background(), token.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave@example.org", stored.Email)
}
