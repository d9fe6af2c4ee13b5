package notification

import (
	"github.com/eduboard/notice-api/internal/model"
)

// Authorization predicates. All are pure functions of (actor, notification)
// so handlers can check them before invoking a mutating operation; the
// mutations themselves trust the caller.

// CanArchive reports whether the actor may move the notification into the
// archive: admins, the creator, and members of the targeted group.
func CanArchive(actor *model.User, n *model.Notification) bool {
	if actor.IsAdmin() {
		return true
	}
	if n.CreatedBy == actor.ID {
		return true
	}
	if n.Type == model.NotificationTypeGroup && n.GroupID != nil && actor.InGroup(*n.GroupID) {
		return true
	}
	return false
}

// CanRestore reports whether the actor may bring the notification back
// from the archive. Only admins and the recorded archiver qualify; being
// the creator grants nothing here.
func CanRestore(actor *model.User, n *model.Notification) bool {
	if actor.IsAdmin() {
		return true
	}
	return n.ArchivedBy != nil && *n.ArchivedBy == actor.ID
}

// CanEdit reports whether the actor may modify the notification.
func CanEdit(actor *model.User, n *model.Notification) bool {
	if actor.IsAdmin() {
		return true
	}
	return n.CreatedBy == actor.ID && n.Status != model.NotificationStatusDeleted
}

// CanDelete mirrors CanEdit: admins, or the creator while not yet deleted.
func CanDelete(actor *model.User, n *model.Notification) bool {
	return CanEdit(actor, n)
}

// IsAccessibleBy decides per-actor visibility. Admins see everything,
// including deleted rows; listings exclude deleted separately.
func IsAccessibleBy(actor *model.User, n *model.Notification) bool {
	if actor.IsAdmin() {
		return true
	}

	switch n.Status {
	case model.NotificationStatusDeleted:
		return false
	case model.NotificationStatusArchived:
		return n.ArchivedBy != nil && *n.ArchivedBy == actor.ID
	}

	switch n.Type {
	case model.NotificationTypeGeneral:
		return true
	case model.NotificationTypeGroup:
		return n.GroupID != nil && actor.InGroup(*n.GroupID)
	}

	return false
}
