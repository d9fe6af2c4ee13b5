package group

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduboard/notice-api/internal/model"
	apperrors "github.com/eduboard/notice-api/pkg/errors"
)

type fakeGroupRepo struct {
	groups map[uuid.UUID]*model.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[uuid.UUID]*model.Group)}
}

func (r *fakeGroupRepo) Create(_ context.Context, g *model.Group) error {
	c := *g
	r.groups[g.ID] = &c
	return nil
}

func (r *fakeGroupRepo) Get(_ context.Context, id uuid.UUID) (*model.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, apperrors.NotFound("group", nil)
	}
	c := *g
	return &c, nil
}

func (r *fakeGroupRepo) Update(_ context.Context, g *model.Group) error {
	c := *g
	r.groups[g.ID] = &c
	return nil
}

func (r *fakeGroupRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.groups, id)
	return nil
}

func (r *fakeGroupRepo) List(_ context.Context) ([]*model.Group, error) {
	out := make([]*model.Group, 0, len(r.groups))
	for _, g := range r.groups {
		c := *g
		out = append(out, &c)
	}
	return out, nil
}

type fakeUserCounter struct {
	counts map[uuid.UUID]int64
}

func (r *fakeUserCounter) Create(_ context.Context, _ *model.User) error { return nil }
func (r *fakeUserCounter) Get(_ context.Context, _ uuid.UUID) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}
func (r *fakeUserCounter) GetByUsername(_ context.Context, _ string) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}
func (r *fakeUserCounter) GetByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}
func (r *fakeUserCounter) Update(_ context.Context, _ *model.User) error { return nil }
func (r *fakeUserCounter) Delete(_ context.Context, _ uuid.UUID) error   { return nil }
func (r *fakeUserCounter) List(_ context.Context, _ *model.UserFilters) ([]*model.User, error) {
	return nil, nil
}
func (r *fakeUserCounter) CountByGroup(_ context.Context, groupID uuid.UUID) (int64, error) {
	return r.counts[groupID], nil
}
func (r *fakeUserCounter) Stats(_ context.Context) (*model.UserStats, error) { return nil, nil }

func TestCreateGroupRequiresName(t *testing.T) {
	svc := NewService(newFakeGroupRepo(), &fakeUserCounter{})

	_, err := svc.CreateGroup(context.Background(), "  ", "desc")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))

	g, err := svc.CreateGroup(context.Background(), "Grade 7", "homeroom")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, g.ID)
	assert.Equal(t, "Grade 7", g.Name)
}

func TestUpdateGroup(t *testing.T) {
	repo := newFakeGroupRepo()
	svc := NewService(repo, &fakeUserCounter{})

	g, err := svc.CreateGroup(context.Background(), "Old name", "")
	require.NoError(t, err)

	updated, err := svc.UpdateGroup(context.Background(), g.ID, "New name", "updated")
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)
	assert.Equal(t, "updated", updated.Description)

	_, err = svc.UpdateGroup(context.Background(), uuid.New(), "Missing", "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestDeleteGroupRefusesNonEmpty(t *testing.T) {
	repo := newFakeGroupRepo()
	counter := &fakeUserCounter{counts: make(map[uuid.UUID]int64)}
	svc := NewService(repo, counter)

	g, err := svc.CreateGroup(context.Background(), "Populated", "")
	require.NoError(t, err)
	counter.counts[g.ID] = 4

	err = svc.DeleteGroup(context.Background(), g.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	counter.counts[g.ID] = 0
	require.NoError(t, svc.DeleteGroup(context.Background(), g.ID))

	_, err = svc.GetGroup(context.Background(), g.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
