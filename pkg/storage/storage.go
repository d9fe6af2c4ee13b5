package storage

import (
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// BlobStore persists image attachments outside the database. Delete is
// best-effort: callers are expected to log and swallow its errors.
type BlobStore interface {
	Save(key string, r io.Reader) (string, error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
}

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9-]+`)
	slugCollapse = regexp.MustCompile(`-{2,}`)
)

// Slugify lowercases the name and collapses anything outside [a-z0-9-]
// into single dashes, keeping the extension intact.
func Slugify(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := strings.TrimSuffix(filename, path.Ext(filename))

	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = slugStrip.ReplaceAllString(name, "-")
	name = slugCollapse.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "image"
	}

	return name + ext
}

// NotificationImagePath derives the attachment key for a notification.
// The id is known before persistence, so the path never changes.
func NotificationImagePath(id uuid.UUID, filename string) string {
	return fmt.Sprintf("notifications/%s/%s", id, Slugify(filename))
}
