package backend

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
)

const (
	uploadsPrefix = "uploads/"
	storageRoute  = "/storage/"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MaxUploadSize caps uploaded images.
const MaxUploadSize = 5 << 20

// Bucket stores site images in PocketBase's filesystem (local disk or the
// S3 bucket configured in the PocketBase settings).
type Bucket struct {
	app     core.App
	baseURL string
}

func NewBucket(app core.App, baseURL string) *Bucket {
	return &Bucket{app: app, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload stores file under a fresh key and returns it.
func (b *Bucket) Upload(file *filesystem.File) (string, error) {
	if file.Size > MaxUploadSize {
		return "", fmt.Errorf("upload %s: file larger than %d bytes", file.OriginalName, MaxUploadSize)
	}

	key := uploadsPrefix + uuid.New().String() + strings.ToLower(path.Ext(file.OriginalName))

	fsys, err := b.app.NewFilesystem()
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer fsys.Close()

	if err := fsys.UploadFile(file, key); err != nil {
		return "", fmt.Errorf("upload %s: %w", file.OriginalName, err)
	}
	return key, nil
}

func (b *Bucket) PublicURL(key string) string {
	return b.baseURL + storageRoute + key
}

// KeyFromURL returns the key of a URL produced by PublicURL, or "" when the
// URL points somewhere else.
func (b *Bucket) KeyFromURL(url string) string {
	prefix := b.baseURL + storageRoute
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	key := strings.TrimPrefix(url, prefix)
	if !ValidKey(key) {
		return ""
	}
	return key
}

func (b *Bucket) Delete(key string) error {
	fsys, err := b.app.NewFilesystem()
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	defer fsys.Close()

	if err := fsys.Delete(key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Serve handles GET /storage/{key...}.
func (b *Bucket) Serve(e *core.RequestEvent) error {
	key := e.Request.PathValue("key")
	if !ValidKey(key) {
		return e.NotFoundError("", nil)
	}

	fsys, err := b.app.NewFilesystem()
	if err != nil {
		return e.InternalServerError("", err)
	}
	defer fsys.Close()

	e.Response.Header().Set("Cache-Control", "public, max-age=604800")
	if err := fsys.Serve(e.Response, e.Request, key, path.Base(key)); err != nil {
		return e.NotFoundError("", err)
	}
	return nil
}

// ValidKey accepts only keys created by Upload.
func ValidKey(key string) bool {
	if !strings.HasPrefix(key, uploadsPrefix) {
		return false
	}
	name := strings.TrimPrefix(key, uploadsPrefix)
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return false
	}
	return true
}

// IsImage reports whether the uploaded file looks like a supported image.
func IsImage(file *filesystem.File) bool {
	r, err := file.Reader.Open()
	if err != nil {
		return false
	}
	defer r.Close()

	head := make([]byte, 512)
	n, _ := r.Read(head)
	return allowedImageTypes[http.DetectContentType(head[:n])]
}
