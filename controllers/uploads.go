package controllers

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"safetravels-api/errs"
	"safetravels-api/storage"
)

const maxCarImages = 10

// uploader stores the image parts of a multipart request. Parts that are
// not images are skipped.
type uploader struct {
	store   storage.ImageStore
	maxSize int64
	log     zerolog.Logger
}

// formFiles returns the parts sent under field; nil for non-multipart bodies.
func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	if c.Request.MultipartForm == nil {
		return nil
	}
	return c.Request.MultipartForm.File[field]
}

func (u *uploader) check(field string, files []*multipart.FileHeader, max int) error {
	if len(files) > max {
		return errs.NewValidation("Too many files", []errs.FieldError{
			{Field: field, Message: fmt.Sprintf("must not exceed %d files", max)},
		})
	}
	for _, f := range files {
		if f.Size > u.maxSize {
			return errs.NewValidation("File too large", []errs.FieldError{
				{Field: field, Message: fmt.Sprintf("%s exceeds the %d byte limit", f.Filename, u.maxSize)},
			})
		}
	}
	return nil
}

// saveAll stores every image in files under folder. If one fails, the ones
// already stored are removed again.
func (u *uploader) saveAll(ctx context.Context, folder string, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		if !storage.IsImage(f) {
			continue
		}

		url, err := u.store.Save(ctx, folder, f)
		if err != nil {
			u.removeAll(ctx, urls)
			return nil, errs.NewInternal(fmt.Errorf("save upload %s: %w", f.Filename, err))
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// removeAll deletes stored images, logging failures.
func (u *uploader) removeAll(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := u.store.Remove(ctx, url); err != nil {
			u.log.Warn().Err(err).Str("url", url).Msg("failed to remove image")
		}
	}
}
