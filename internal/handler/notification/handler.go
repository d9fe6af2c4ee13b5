package notification

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eduboard/notice-api/internal/handler"
	"github.com/eduboard/notice-api/internal/model"
	notificationService "github.com/eduboard/notice-api/internal/service/notification"
)

type Handler struct {
	service notificationService.Servicer
}

func NewHandler(service notificationService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.POST("", h.CreateNotification)
		notifications.GET("", h.ListNotifications)
		notifications.GET("/archive", h.ListArchive)
		notifications.GET("/:id", h.GetNotification)
		notifications.PUT("/:id", h.UpdateNotification)
		notifications.DELETE("/:id", h.DeleteNotification)
		notifications.DELETE("/:id/hard", h.HardDeleteNotification)
		notifications.POST("/:id/archive", h.ArchiveNotification)
		notifications.POST("/:id/restore", h.RestoreNotification)
		notifications.POST("/:id/view", h.MarkViewed)
		notifications.GET("/:id/image", h.DownloadImage)
		notifications.DELETE("/:id/image", h.RemoveImage)
		notifications.GET("/:id/archive-record", h.GetArchiveRecord)
	}
}

type notificationForm struct {
	Title       string `form:"title" binding:"required"`
	Content     string `form:"content" binding:"required"`
	Type        string `form:"notification_type" binding:"required,oneof=general group"`
	GroupID     string `form:"group_id"`
	IsImportant bool   `form:"is_important"`
}

type archiveRequest struct {
	Reason string `json:"reason"`
}

// permissions mirrors the authorization predicates for the requesting
// actor, so clients can render the right actions.
type permissions struct {
	CanArchive bool `json:"can_archive"`
	CanRestore bool `json:"can_restore"`
	CanEdit    bool `json:"can_edit"`
	CanDelete  bool `json:"can_delete"`
}

type detailResponse struct {
	Notification *model.Notification `json:"notification"`
	Permissions  permissions         `json:"permissions"`
}

func (h *Handler) CreateNotification(c *gin.Context) {
	actor, ok := handler.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	input, errMsg := bindForm(c)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(errMsg))
		return
	}

	n, err := h.service.Create(c.Request.Context(), actor, &notificationService.CreateInput{
		Title:       input.title,
		Content:     input.content,
		Type:        input.typ,
		GroupID:     input.groupID,
		IsImportant: input.isImportant,
		Image:       input.image,
	})
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(n))
}

func (h *Handler) GetNotification(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	n, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(detailResponse{
		Notification: n,
		Permissions: permissions{
			CanArchive: notificationService.CanArchive(actor, n),
			CanRestore: notificationService.CanRestore(actor, n),
			CanEdit:    notificationService.CanEdit(actor, n),
			CanDelete:  notificationService.CanDelete(actor, n),
		},
	}))
}

func (h *Handler) UpdateNotification(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	input, errMsg := bindForm(c)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(errMsg))
		return
	}

	n, err := h.service.Update(c.Request.Context(), actor, id, &notificationService.UpdateInput{
		Title:       input.title,
		Content:     input.content,
		Type:        input.typ,
		GroupID:     input.groupID,
		IsImportant: input.isImportant,
		Image:       input.image,
	})
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(n))
}

func (h *Handler) ListNotifications(c *gin.Context) {
	actor, ok := handler.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	statusFilter := c.DefaultQuery("status", "active")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.service.List(c.Request.Context(), actor, statusFilter, page)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) ListArchive(c *gin.Context) {
	actor, ok := handler.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.service.ListArchive(c.Request.Context(), actor, page)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) ArchiveNotification(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req archiveRequest
	// Reason is optional; an empty body archives without one.
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Archive(c.Request.Context(), actor, id, req.Reason); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) RestoreNotification(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.Restore(c.Request.Context(), actor, id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), actor, id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) HardDeleteNotification(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.HardDelete(c.Request.Context(), actor, id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) MarkViewed(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.MarkViewed(c.Request.Context(), actor, id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) DownloadImage(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	rc, key, err := h.service.OpenImage(c.Request.Context(), actor, id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		c.Abort()
	}
}

func (h *Handler) RemoveImage(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.RemoveImage(c.Request.Context(), actor, id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) GetArchiveRecord(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	record, err := h.service.GetArchiveRecord(c.Request.Context(), actor, id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) actorAndID(c *gin.Context) (*model.User, uuid.UUID, bool) {
	actor, ok := handler.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid notification ID"))
		return nil, uuid.Nil, false
	}

	return actor, id, true
}

type boundForm struct {
	title       string
	content     string
	typ         model.NotificationType
	groupID     *uuid.UUID
	isImportant bool
	image       *notificationService.Attachment
}

// bindForm parses the multipart notification form including the optional
// image upload.
func bindForm(c *gin.Context) (*boundForm, string) {
	var form notificationForm
	if err := c.ShouldBind(&form); err != nil {
		return nil, err.Error()
	}

	out := &boundForm{
		title:       form.Title,
		content:     form.Content,
		typ:         model.NotificationType(form.Type),
		isImportant: form.IsImportant,
	}

	if form.GroupID != "" {
		groupID, err := uuid.Parse(form.GroupID)
		if err != nil {
			return nil, "invalid group ID"
		}
		out.groupID = &groupID
	}

	file, err := c.FormFile("image")
	if err == nil && file != nil {
		attachment, errMsg := openAttachment(file)
		if errMsg != "" {
			return nil, errMsg
		}
		out.image = attachment
	}

	return out, ""
}

func openAttachment(file *multipart.FileHeader) (*notificationService.Attachment, string) {
	src, err := file.Open()
	if err != nil {
		return nil, "failed to read uploaded image"
	}

	return &notificationService.Attachment{
		Filename: file.Filename,
		Size:     file.Size,
		Reader:   src,
	}, ""
}
