// Package storage persists uploaded images and resolves them back from the
// URLs stored on cars and blog posts.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
)

const (
	FolderCars = "cars"
	FolderBlog = "blog"
)

// ImageStore saves uploaded files and removes them by the URL Save returned.
type ImageStore interface {
	Save(ctx context.Context, folder string, file *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, url string) error
}

// IsImage reports whether the part was sent with an image/* content type.
func IsImage(file *multipart.FileHeader) bool {
	return strings.HasPrefix(file.Header.Get("Content-Type"), "image/")
}

// FileName builds "<field>-<unix millis>-<random><ext>" for an upload.
func FileName(field, original string) string {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%s-%d%s", field, time.Now().UnixNano(), ext(original))
	}
	return fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixMilli(), hex.EncodeToString(suffix), ext(original))
}

func ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
