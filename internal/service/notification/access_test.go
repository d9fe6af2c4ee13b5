package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/eduboard/notice-api/internal/model"
)

func newTestUser(role string, groupID *uuid.UUID) *model.User {
	return &model.User{
		ID:      uuid.New(),
		Role:    role,
		GroupID: groupID,
	}
}

func TestCanArchive(t *testing.T) {
	groupID := uuid.New()
	otherGroupID := uuid.New()

	admin := newTestUser(model.RoleAdmin, nil)
	creator := newTestUser(model.RoleMember, nil)
	groupMember := newTestUser(model.RoleMember, &groupID)
	outsider := newTestUser(model.RoleMember, &otherGroupID)

	groupNotification := &model.Notification{
		ID:        uuid.New(),
		Type:      model.NotificationTypeGroup,
		GroupID:   &groupID,
		Status:    model.NotificationStatusActive,
		CreatedBy: creator.ID,
	}

	assert.True(t, CanArchive(admin, groupNotification))
	assert.True(t, CanArchive(creator, groupNotification))
	assert.True(t, CanArchive(groupMember, groupNotification), "members of the targeted group may archive")
	assert.False(t, CanArchive(outsider, groupNotification))

	generalNotification := &model.Notification{
		ID:        uuid.New(),
		Type:      model.NotificationTypeGeneral,
		Status:    model.NotificationStatusActive,
		CreatedBy: creator.ID,
	}

	assert.True(t, CanArchive(creator, generalNotification))
	assert.False(t, CanArchive(groupMember, generalNotification), "group membership grants nothing on general notifications")
}

func TestCanRestoreIsArchiverOnly(t *testing.T) {
	groupID := uuid.New()

	admin := newTestUser(model.RoleAdmin, nil)
	creator := newTestUser(model.RoleMember, nil)
	archiver := newTestUser(model.RoleMember, &groupID)

	n := &model.Notification{
		ID:         uuid.New(),
		Type:       model.NotificationTypeGroup,
		GroupID:    &groupID,
		Status:     model.NotificationStatusArchived,
		CreatedBy:  creator.ID,
		ArchivedBy: &archiver.ID,
	}

	assert.True(t, CanRestore(admin, n))
	assert.True(t, CanRestore(archiver, n))
	assert.False(t, CanRestore(creator, n), "the creator may not restore what someone else archived")
}

func TestCanEditAndDelete(t *testing.T) {
	admin := newTestUser(model.RoleAdmin, nil)
	creator := newTestUser(model.RoleMember, nil)
	other := newTestUser(model.RoleMember, nil)

	n := &model.Notification{
		ID:        uuid.New(),
		Type:      model.NotificationTypeGeneral,
		Status:    model.NotificationStatusActive,
		CreatedBy: creator.ID,
	}

	assert.True(t, CanEdit(admin, n))
	assert.True(t, CanEdit(creator, n))
	assert.False(t, CanEdit(other, n))
	assert.Equal(t, CanEdit(creator, n), CanDelete(creator, n))

	n.Status = model.NotificationStatusDeleted
	assert.False(t, CanEdit(creator, n), "deleted rows are frozen for non-admins")
	assert.True(t, CanEdit(admin, n))
}

func TestIsAccessibleBy(t *testing.T) {
	groupID := uuid.New()
	otherGroupID := uuid.New()

	admin := newTestUser(model.RoleAdmin, nil)
	archiver := newTestUser(model.RoleMember, &groupID)
	groupMember := newTestUser(model.RoleMember, &groupID)
	outsider := newTestUser(model.RoleMember, &otherGroupID)
	noGroup := newTestUser(model.RoleMember, nil)

	general := &model.Notification{
		ID:     uuid.New(),
		Type:   model.NotificationTypeGeneral,
		Status: model.NotificationStatusActive,
	}
	assert.True(t, IsAccessibleBy(noGroup, general))
	assert.True(t, IsAccessibleBy(outsider, general))

	grouped := &model.Notification{
		ID:      uuid.New(),
		Type:    model.NotificationTypeGroup,
		GroupID: &groupID,
		Status:  model.NotificationStatusActive,
	}
	assert.True(t, IsAccessibleBy(groupMember, grouped))
	assert.False(t, IsAccessibleBy(outsider, grouped))
	assert.False(t, IsAccessibleBy(noGroup, grouped))

	archived := &model.Notification{
		ID:         uuid.New(),
		Type:       model.NotificationTypeGeneral,
		Status:     model.NotificationStatusArchived,
		ArchivedBy: &archiver.ID,
	}
	assert.True(t, IsAccessibleBy(archiver, archived), "archived rows stay visible to their archiver")
	assert.False(t, IsAccessibleBy(groupMember, archived))
	assert.True(t, IsAccessibleBy(admin, archived))

	deleted := &model.Notification{
		ID:     uuid.New(),
		Type:   model.NotificationTypeGeneral,
		Status: model.NotificationStatusDeleted,
	}
	assert.False(t, IsAccessibleBy(groupMember, deleted))
	assert.True(t, IsAccessibleBy(admin, deleted), "admins see deleted rows")
}
