package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduboard/notice-api/internal/handler"
	"github.com/eduboard/notice-api/internal/model"
	notificationService "github.com/eduboard/notice-api/internal/service/notification"
	apperrors "github.com/eduboard/notice-api/pkg/errors"
)

// fakeServicer records the last call so tests can assert what the handler
// passed down.
type fakeServicer struct {
	lastCreate   *notificationService.CreateInput
	lastUpdate   *notificationService.UpdateInput
	lastID       uuid.UUID
	lastReason   string
	lastStatus   string
	lastPage     int
	notification *model.Notification
	err          error
}

func (f *fakeServicer) Create(_ context.Context, _ *model.User, input *notificationService.CreateInput) (*model.Notification, error) {
	f.lastCreate = input
	return f.notification, f.err
}

func (f *fakeServicer) Get(_ context.Context, _ *model.User, id uuid.UUID) (*model.Notification, error) {
	f.lastID = id
	return f.notification, f.err
}

func (f *fakeServicer) Update(_ context.Context, _ *model.User, id uuid.UUID, input *notificationService.UpdateInput) (*model.Notification, error) {
	f.lastID = id
	f.lastUpdate = input
	return f.notification, f.err
}

func (f *fakeServicer) Archive(_ context.Context, _ *model.User, id uuid.UUID, reason string) error {
	f.lastID = id
	f.lastReason = reason
	return f.err
}

func (f *fakeServicer) Restore(_ context.Context, _ *model.User, id uuid.UUID) error {
	f.lastID = id
	return f.err
}

func (f *fakeServicer) SoftDelete(_ context.Context, _ *model.User, id uuid.UUID) error {
	f.lastID = id
	return f.err
}

func (f *fakeServicer) HardDelete(_ context.Context, _ *model.User, id uuid.UUID) error {
	f.lastID = id
	return f.err
}

func (f *fakeServicer) List(_ context.Context, _ *model.User, statusFilter string, page int) (*model.NotificationPage, error) {
	f.lastStatus = statusFilter
	f.lastPage = page
	return &model.NotificationPage{}, f.err
}

func (f *fakeServicer) ListArchive(_ context.Context, _ *model.User, page int) (*model.NotificationPage, error) {
	f.lastPage = page
	return &model.NotificationPage{}, f.err
}

func (f *fakeServicer) MarkViewed(_ context.Context, _ *model.User, id uuid.UUID) error {
	f.lastID = id
	return f.err
}

func (f *fakeServicer) OpenImage(_ context.Context, _ *model.User, id uuid.UUID) (io.ReadCloser, string, error) {
	f.lastID = id
	if f.err != nil {
		return nil, "", f.err
	}
	return io.NopCloser(bytes.NewReader([]byte("image-bytes"))), "notifications/x/pic.png", nil
}

func (f *fakeServicer) RemoveImage(_ context.Context, _ *model.User, id uuid.UUID) error {
	f.lastID = id
	return f.err
}

func (f *fakeServicer) GetArchiveRecord(_ context.Context, _ *model.User, id uuid.UUID) (*model.ArchiveRecord, error) {
	f.lastID = id
	return &model.ArchiveRecord{NotificationID: id}, f.err
}

func setupRouter(svc notificationService.Servicer, actor *model.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(handler.ContextUserKey, actor)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreateNotificationMultipart(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleMember}
	svc := &fakeServicer{notification: &model.Notification{ID: uuid.New(), Title: "Hello"}}
	engine := setupRouter(svc, actor)

	body, contentType := multipartBody(t, map[string]string{
		"title":             "Hello",
		"content":           "World",
		"notification_type": "general",
		"is_important":      "true",
	}, "image", "board photo.png", []byte("png-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.lastCreate)
	assert.Equal(t, "Hello", svc.lastCreate.Title)
	assert.Equal(t, model.NotificationTypeGeneral, svc.lastCreate.Type)
	assert.True(t, svc.lastCreate.IsImportant)
	require.NotNil(t, svc.lastCreate.Image)
	assert.Equal(t, "board photo.png", svc.lastCreate.Image.Filename)

	data, err := io.ReadAll(svc.lastCreate.Image.Reader)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestCreateNotificationMissingFields(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleMember}
	svc := &fakeServicer{}
	engine := setupRouter(svc, actor)

	body, contentType := multipartBody(t, map[string]string{
		"title": "No content",
	}, "", "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.lastCreate)
}

func TestGetNotificationIncludesPermissions(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleMember}
	n := &model.Notification{
		ID:        uuid.New(),
		Title:     "Mine",
		Type:      model.NotificationTypeGeneral,
		Status:    model.NotificationStatusActive,
		CreatedBy: actor.ID,
	}
	svc := &fakeServicer{notification: n}
	engine := setupRouter(svc, actor)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/"+n.ID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Permissions struct {
				CanEdit    bool `json:"can_edit"`
				CanRestore bool `json:"can_restore"`
			} `json:"permissions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Permissions.CanEdit, "creator may edit")
	assert.False(t, resp.Data.Permissions.CanRestore, "nothing to restore on an active row")
}

func TestArchivePassesReason(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	svc := &fakeServicer{}
	engine := setupRouter(svc, actor)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+id.String()+"/archive",
		bytes.NewBufferString(`{"reason":"end of term"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, svc.lastID)
	assert.Equal(t, "end of term", svc.lastReason)
}

func TestArchiveWithoutBody(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	svc := &fakeServicer{}
	engine := setupRouter(svc, actor)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+id.String()+"/archive", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, svc.lastReason)
}

func TestInvalidIDRejected(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleMember}
	svc := &fakeServicer{}
	engine := setupRouter(svc, actor)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/not-a-uuid", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleMember}
	svc := &fakeServicer{err: apperrors.Forbidden("nope", nil)}
	engine := setupRouter(svc, actor)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+uuid.NewString()+"/restore", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDownloadImage(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleMember}
	svc := &fakeServicer{}
	engine := setupRouter(svc, actor)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/"+uuid.NewString()+"/image", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "image-bytes", w.Body.String())
}

func TestListQueryParams(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleMember}
	svc := &fakeServicer{}
	engine := setupRouter(svc, actor)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?status=archived&page=3", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "archived", svc.lastStatus)
	assert.Equal(t, 3, svc.lastPage)

	// Defaults apply when the parameters are absent.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "active", svc.lastStatus)
	assert.Equal(t, 1, svc.lastPage)
}
