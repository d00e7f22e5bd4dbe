package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, field, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File[field][0]
}

func TestFileName(t *testing.T) {
	name := FileName("images", "Photo.JPG")
	assert.Regexp(t, regexp.MustCompile(`^images-\d+-[0-9a-f]{12}\.jpg$`), name)
	assert.NotEqual(t, name, FileName("images", "Photo.JPG"))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage(fileHeader(t, "images", "a.png", "image/png", []byte("png"))))
	assert.False(t, IsImage(fileHeader(t, "images", "a.pdf", "application/pdf", []byte("pdf"))))
}

func TestLocalStoreSaveAndRemove(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url, err := store.Save(ctx, FolderCars, fileHeader(t, "images", "car.jpg", "image/jpeg", []byte("jpeg-bytes")))
	require.NoError(t, err)
	assert.Regexp(t, `^/uploads/cars/images-\d+-[0-9a-f]+\.jpg$`, url)

	p, ok := store.Path(url)
	require.True(t, ok)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	require.NoError(t, store.Remove(ctx, url))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, store.Remove(ctx, url))
}

func TestLocalStoreBlogFolder(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url, err := store.Save(context.Background(), FolderBlog, fileHeader(t, "featuredImage", "cover.png", "image/png", []byte("png")))
	require.NoError(t, err)
	assert.Regexp(t, `^/uploads/blog/featuredImage-\d+-[0-9a-f]+\.png$`, url)
}

func TestLocalStoreIgnoresForeignURLs(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(root), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	t.Cleanup(func() { os.Remove(outside) })

	tests := []string{
		"https://images.unsplash.com/photo-1.jpg",
		"/uploads/../keep.txt",
		"/uploads/",
		"",
	}
	for _, url := range tests {
		_, ok := store.Path(url)
		assert.False(t, ok, url)
		assert.NoError(t, store.Remove(context.Background(), url))
	}

	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestLocalStoreURL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url, ok := store.URL(filepath.Join(store.Root(), "cars", "a.jpg"))
	require.True(t, ok)
	assert.Equal(t, "/uploads/cars/a.jpg", url)
}

func TestMinioStoreKey(t *testing.T) {
	s := &MinioStore{bucket: "safetravels", publicURL: "https://cdn.example.com"}

	url := s.objectURL("cars/images-1-abc.jpg")
	assert.Equal(t, "https://cdn.example.com/safetravels/cars/images-1-abc.jpg", url)

	key, ok := s.key(url)
	require.True(t, ok)
	assert.Equal(t, "cars/images-1-abc.jpg", key)

	_, ok = s.key("/uploads/cars/a.jpg")
	assert.False(t, ok)
	_, ok = s.key("https://cdn.example.com/safetravels/../secret")
	assert.False(t, ok)
}
