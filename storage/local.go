package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// URLPrefix is where local uploads are served from.
const URLPrefix = "/uploads/"

// LocalStore writes uploads below a directory on disk.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(ctx context.Context, folder string, file *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", folder, err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := FileName(fieldName(folder), file.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return path.Join(URLPrefix, folder, name), nil
}

// Remove deletes the file behind url. URLs that are not local uploads, and
// files that no longer exist, are ignored.
func (s *LocalStore) Remove(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, ok := s.Path(url)
	if !ok {
		return nil
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", url, err)
	}
	return nil
}

// Path maps an upload URL to its file path. It reports false for URLs
// outside URLPrefix or paths that would escape the upload directory.
func (s *LocalStore) Path(url string) (string, bool) {
	if !strings.HasPrefix(url, URLPrefix) {
		return "", false
	}

	rel := strings.TrimPrefix(url, URLPrefix)
	p := filepath.Join(s.root, filepath.FromSlash(rel))

	r, err := filepath.Rel(s.root, p)
	if err != nil || r == "." || strings.HasPrefix(r, "..") {
		return "", false
	}
	return p, true
}

// URL maps a file below the upload directory to its public URL.
func (s *LocalStore) URL(p string) (string, bool) {
	r, err := filepath.Rel(s.root, p)
	if err != nil || strings.HasPrefix(r, "..") {
		return "", false
	}
	return path.Join(URLPrefix, filepath.ToSlash(r)), true
}

func fieldName(folder string) string {
	if folder == FolderBlog {
		return "featuredImage"
	}
	return "images"
}
