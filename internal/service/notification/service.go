package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eduboard/notice-api/internal/model"
	"github.com/eduboard/notice-api/internal/repository"
	apperrors "github.com/eduboard/notice-api/pkg/errors"
	"github.com/eduboard/notice-api/pkg/logger"
	"github.com/eduboard/notice-api/pkg/storage"
)

const (
	listPageSize    = 10
	archivePageSize = 15

	maxImageSize = 5 << 20 // 5 MiB
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Attachment is an image upload accompanying a create or update.
type Attachment struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// CreateInput carries the fields of a new notification.
type CreateInput struct {
	Title       string
	Content     string
	Type        model.NotificationType
	GroupID     *uuid.UUID
	IsImportant bool
	Image       *Attachment
}

// UpdateInput replaces the content fields of an existing notification.
// A nil Image leaves the current attachment untouched.
type UpdateInput struct {
	Title       string
	Content     string
	Type        model.NotificationType
	GroupID     *uuid.UUID
	IsImportant bool
	Image       *Attachment
}

type Servicer interface {
	Create(ctx context.Context, actor *model.User, input *CreateInput) (*model.Notification, error)
	Get(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Notification, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, input *UpdateInput) (*model.Notification, error)
	Archive(ctx context.Context, actor *model.User, id uuid.UUID, reason string) error
	Restore(ctx context.Context, actor *model.User, id uuid.UUID) error
	SoftDelete(ctx context.Context, actor *model.User, id uuid.UUID) error
	HardDelete(ctx context.Context, actor *model.User, id uuid.UUID) error
	List(ctx context.Context, actor *model.User, statusFilter string, page int) (*model.NotificationPage, error)
	ListArchive(ctx context.Context, actor *model.User, page int) (*model.NotificationPage, error)
	MarkViewed(ctx context.Context, actor *model.User, id uuid.UUID) error
	OpenImage(ctx context.Context, actor *model.User, id uuid.UUID) (io.ReadCloser, string, error)
	RemoveImage(ctx context.Context, actor *model.User, id uuid.UUID) error
	GetArchiveRecord(ctx context.Context, actor *model.User, id uuid.UUID) (*model.ArchiveRecord, error)
}

type Service struct {
	repo       repository.NotificationRepository
	groupRepo  repository.GroupRepository
	viewRepo   repository.ViewRepository
	outboxRepo repository.OutboxRepository
	store      storage.BlobStore
	logger     *logger.Logger
}

func NewService(
	repo repository.NotificationRepository,
	groupRepo repository.GroupRepository,
	viewRepo repository.ViewRepository,
	outboxRepo repository.OutboxRepository,
	store storage.BlobStore,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:       repo,
		groupRepo:  groupRepo,
		viewRepo:   viewRepo,
		outboxRepo: outboxRepo,
		store:      store,
		logger:     logger,
	}
}

// Create validates and persists a new notification. The id is generated
// before the insert, so an id-derived attachment path can be written in a
// single phase.
func (s *Service) Create(ctx context.Context, actor *model.User, input *CreateInput) (*model.Notification, error) {
	if err := s.validateInput(ctx, input.Title, input.Content, input.Type, input.GroupID); err != nil {
		return nil, err
	}
	if err := validateAttachment(input.Image); err != nil {
		return nil, err
	}

	now := time.Now()
	n := &model.Notification{
		ID:          uuid.New(),
		Title:       input.Title,
		Content:     input.Content,
		Type:        input.Type,
		GroupID:     input.GroupID,
		Status:      model.NotificationStatusActive,
		IsImportant: input.IsImportant,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if n.Type != model.NotificationTypeGroup {
		n.GroupID = nil
	}

	if input.Image != nil {
		key := storage.NotificationImagePath(n.ID, input.Image.Filename)
		if _, err := s.store.Save(key, input.Image.Reader); err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		n.ImagePath = &key
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.deleteBlob(n.ImagePath)
		return nil, err
	}

	s.emitEvent(ctx, model.EventNotificationCreated, n)
	return n, nil
}

func (s *Service) Get(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !IsAccessibleBy(actor, n) {
		return nil, apperrors.Forbidden("notification is not accessible", nil)
	}

	return n, nil
}

// Update atomically replaces the content fields. When a new attachment is
// supplied the previous blob is removed after the write succeeds;
// blob-delete failures are logged and swallowed.
func (s *Service) Update(ctx context.Context, actor *model.User, id uuid.UUID, input *UpdateInput) (*model.Notification, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanEdit(actor, n) {
		return nil, apperrors.Forbidden("you may not edit this notification", nil)
	}

	if err := s.validateInput(ctx, input.Title, input.Content, input.Type, input.GroupID); err != nil {
		return nil, err
	}
	if err := validateAttachment(input.Image); err != nil {
		return nil, err
	}

	oldImage := n.ImagePath

	n.Title = input.Title
	n.Content = input.Content
	n.Type = input.Type
	n.GroupID = input.GroupID
	n.IsImportant = input.IsImportant
	n.UpdatedAt = time.Now()
	if n.Type != model.NotificationTypeGroup {
		n.GroupID = nil
	}

	if input.Image != nil {
		key := storage.NotificationImagePath(n.ID, input.Image.Filename)
		if _, err := s.store.Save(key, input.Image.Reader); err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		n.ImagePath = &key
	}

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}

	if input.Image != nil && oldImage != nil && *oldImage != *n.ImagePath {
		s.deleteBlob(oldImage)
	}

	s.emitEvent(ctx, model.EventNotificationUpdated, n)
	return n, nil
}

// Archive moves an active notification into the archive, recording who,
// when and why, and upserting the ledger row in the same transaction.
func (s *Service) Archive(ctx context.Context, actor *model.User, id uuid.UUID, reason string) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !CanArchive(actor, n) {
		return apperrors.Forbidden("you may not archive this notification", nil)
	}
	if !n.IsActive() {
		return apperrors.Validation("only active notifications can be archived", nil)
	}

	now := time.Now()
	n.Status = model.NotificationStatusArchived
	n.ArchivedBy = &actor.ID
	n.ArchivedAt = &now
	n.ArchiveReason = &reason
	n.UpdatedAt = now

	if err := s.repo.Archive(ctx, n); err != nil {
		return err
	}

	s.emitEvent(ctx, model.EventNotificationArchived, n)
	return nil
}

// Restore brings an archived notification back to active, clearing the
// archive metadata and removing the ledger row.
func (s *Service) Restore(ctx context.Context, actor *model.User, id uuid.UUID) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !CanRestore(actor, n) {
		return apperrors.Forbidden("you may not restore this notification", nil)
	}
	if !n.IsArchived() {
		return apperrors.Validation("only archived notifications can be restored", nil)
	}

	n.Status = model.NotificationStatusActive
	n.ArchivedBy = nil
	n.ArchivedAt = nil
	n.ArchiveReason = nil
	n.UpdatedAt = time.Now()

	if err := s.repo.Restore(ctx, n); err != nil {
		return err
	}

	s.emitEvent(ctx, model.EventNotificationRestored, n)
	return nil
}

// SoftDelete marks the notification deleted without touching other fields.
func (s *Service) SoftDelete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !CanDelete(actor, n) {
		return apperrors.Forbidden("you may not delete this notification", nil)
	}

	n.Status = model.NotificationStatusDeleted
	n.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, n); err != nil {
		return err
	}

	s.emitEvent(ctx, model.EventNotificationDeleted, n)
	return nil
}

// HardDelete physically removes the notification. The database cascades
// the ledger and view rows; the blob delete is best-effort.
func (s *Service) HardDelete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !CanDelete(actor, n) {
		return apperrors.Forbidden("you may not delete this notification", nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.deleteBlob(n.ImagePath)
	s.emitEvent(ctx, model.EventNotificationDeleted, n)
	return nil
}

// List returns one page of the actor's scoped listing plus the important
// subset derived from the same scope.
func (s *Service) List(ctx context.Context, actor *model.User, statusFilter string, page int) (*model.NotificationPage, error) {
	filter := listScope(actor, statusFilter)
	return s.paginate(ctx, filter, page, listPageSize, true)
}

// ListArchive is the dedicated archive view: all archived for admins,
// only the actor's own archivals otherwise.
func (s *Service) ListArchive(ctx context.Context, actor *model.User, page int) (*model.NotificationPage, error) {
	filter := &model.NotificationFilter{
		Status:  model.NotificationStatusArchived,
		OrderBy: model.OrderByArchivedDesc,
	}
	if !actor.IsAdmin() {
		filter.ArchivedBy = &actor.ID
	}
	return s.paginate(ctx, filter, page, archivePageSize, false)
}

// MarkViewed records that the actor has seen the notification. A repeat
// view only refreshes the timestamp.
func (s *Service) MarkViewed(ctx context.Context, actor *model.User, id uuid.UUID) error {
	return s.viewRepo.Upsert(ctx, &model.ViewRecord{
		UserID:         actor.ID,
		NotificationID: id,
		ViewedAt:       time.Now(),
	})
}

// OpenImage streams the attachment blob. The second return value is the
// stored key, which carries the slugified filename.
func (s *Service) OpenImage(ctx context.Context, actor *model.User, id uuid.UUID) (io.ReadCloser, string, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if !IsAccessibleBy(actor, n) {
		return nil, "", apperrors.Forbidden("notification is not accessible", nil)
	}
	if !n.HasImage() {
		return nil, "", apperrors.NotFound("attachment", nil)
	}

	rc, err := s.store.Open(*n.ImagePath)
	if err != nil {
		return nil, "", apperrors.NotFound("attachment", err)
	}

	return rc, *n.ImagePath, nil
}

// RemoveImage detaches and best-effort deletes the attachment blob.
func (s *Service) RemoveImage(ctx context.Context, actor *model.User, id uuid.UUID) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !CanEdit(actor, n) {
		return apperrors.Forbidden("you may not edit this notification", nil)
	}
	if !n.HasImage() {
		return nil
	}

	oldImage := n.ImagePath
	n.ImagePath = nil
	n.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, n); err != nil {
		return err
	}

	s.deleteBlob(oldImage)
	return nil
}

// GetArchiveRecord exposes the ledger row for historical reporting.
func (s *Service) GetArchiveRecord(ctx context.Context, actor *model.User, id uuid.UUID) (*model.ArchiveRecord, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !IsAccessibleBy(actor, n) {
		return nil, apperrors.Forbidden("notification is not accessible", nil)
	}

	return s.repo.GetArchiveRecord(ctx, id)
}

// listScope builds the repository filter for (actor, statusFilter) per the
// visibility rules.
func listScope(actor *model.User, statusFilter string) *model.NotificationFilter {
	if actor.IsAdmin() {
		switch statusFilter {
		case "all":
			return &model.NotificationFilter{
				ExcludeStatus: model.NotificationStatusDeleted,
				OrderBy:       model.OrderByCreatedDesc,
			}
		case "archived":
			return &model.NotificationFilter{
				Status:  model.NotificationStatusArchived,
				OrderBy: model.OrderByArchivedDesc,
			}
		default:
			return &model.NotificationFilter{
				Status:  model.NotificationStatusActive,
				OrderBy: model.OrderByCreatedDesc,
			}
		}
	}

	if statusFilter == "archived" {
		return &model.NotificationFilter{
			Status:     model.NotificationStatusArchived,
			ArchivedBy: &actor.ID,
			OrderBy:    model.OrderByArchivedDesc,
		}
	}

	filter := &model.NotificationFilter{
		Status:  model.NotificationStatusActive,
		OrderBy: model.OrderByCreatedDesc,
	}
	if actor.GroupID != nil {
		filter.VisibleToGroup = actor.GroupID
	} else {
		filter.GeneralOnly = true
	}
	return filter
}

func (s *Service) paginate(ctx context.Context, filter *model.NotificationFilter, page, pageSize int, withImportant bool) (*model.NotificationPage, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	// Out-of-range pages clamp to the nearest valid page instead of
	// returning an empty result.
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &model.NotificationPage{
		Items: items,
		Pagination: model.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}

	if withImportant {
		important := *filter
		important.Status = model.NotificationStatusActive
		important.ExcludeStatus = ""
		important.ImportantOnly = true
		important.Limit = 0
		important.Offset = 0

		result.Important, err = s.repo.List(ctx, &important)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *Service) validateInput(ctx context.Context, title, content string, typ model.NotificationType, groupID *uuid.UUID) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.Validation("title is required", nil)
	}
	if strings.TrimSpace(content) == "" {
		return apperrors.Validation("content is required", nil)
	}

	switch typ {
	case model.NotificationTypeGeneral:
	case model.NotificationTypeGroup:
		if groupID == nil {
			return apperrors.Validation("group is required for group notifications", nil)
		}
		if _, err := s.groupRepo.Get(ctx, *groupID); err != nil {
			return err
		}
	default:
		return apperrors.Validation("invalid notification type", nil)
	}

	return nil
}

func validateAttachment(a *Attachment) error {
	if a == nil {
		return nil
	}

	ext := strings.ToLower(path.Ext(a.Filename))
	if !allowedImageExtensions[ext] {
		return apperrors.Validation("only JPG, JPEG, PNG, GIF and WebP images are allowed", nil)
	}
	if a.Size > maxImageSize {
		return apperrors.Validation("image must not exceed 5 MiB", nil)
	}

	return nil
}

func (s *Service) deleteBlob(key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := s.store.Delete(*key); err != nil {
		s.logger.Warn("failed to delete attachment blob", "path", *key, "error", err.Error())
	}
}

func (s *Service) emitEvent(ctx context.Context, eventType string, n *model.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Error(err, "failed to marshal notification for event")
		return
	}

	if err := s.outboxRepo.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to create outbox event", "event_type", eventType)
	}
}
