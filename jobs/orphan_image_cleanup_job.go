package jobs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"safetravels-api/storage"
)

// ImageReferences lists the upload URLs still referenced by stored rows.
type ImageReferences interface {
	ImageURLs(ctx context.Context) ([]string, error)
}

// OrphanImageCleanupJob periodically deletes uploaded images that no car or
// blog post refers to any more.
type OrphanImageCleanupJob struct {
	store   *storage.LocalStore
	sources []ImageReferences
	grace   time.Duration
	log     zerolog.Logger
	ticker  *time.Ticker
	done    chan struct{}
	now     func() time.Time
}

// NewOrphanImageCleanupJob creates a job that runs every interval. Files
// younger than grace are left alone so uploads of in-flight requests are
// not collected.
func NewOrphanImageCleanupJob(store *storage.LocalStore, sources []ImageReferences, interval, grace time.Duration, log zerolog.Logger) *OrphanImageCleanupJob {
	return &OrphanImageCleanupJob{
		store:   store,
		sources: sources,
		grace:   grace,
		log:     log.With().Str("job", "orphan_image_cleanup").Logger(),
		ticker:  time.NewTicker(interval),
		done:    make(chan struct{}),
		now:     time.Now,
	}
}

// Start begins the cleanup job
func (j *OrphanImageCleanupJob) Start() {
	j.log.Info().Msg("cleanup job started")

	go func() {
		// Run immediately on start
		j.cleanup()

		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				j.log.Info().Msg("cleanup job stopped")
				return
			}
		}
	}()
}

// Stop stops the cleanup job
func (j *OrphanImageCleanupJob) Stop() {
	j.ticker.Stop()
	close(j.done)
}

func (j *OrphanImageCleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := j.Run(ctx)
	if err != nil {
		j.log.Error().Err(err).Int("removed", removed).Msg("cleanup failed")
		return
	}
	j.log.Info().Int("removed", removed).Msg("cleanup completed")
}

// Run performs a single pass and returns how many files it deleted.
func (j *OrphanImageCleanupJob) Run(ctx context.Context) (int, error) {
	referenced := map[string]struct{}{}
	for _, src := range j.sources {
		urls, err := src.ImageURLs(ctx)
		if err != nil {
			return 0, fmt.Errorf("load referenced images: %w", err)
		}
		for _, u := range urls {
			referenced[u] = struct{}{}
		}
	}

	cutoff := j.now().Add(-j.grace)
	removed := 0

	for _, folder := range []string{storage.FolderCars, storage.FolderBlog} {
		dir := filepath.Join(j.store.Root(), folder)
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("read %s: %w", folder, err)
		}

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return removed, err
			}
			if !e.Type().IsRegular() {
				continue
			}

			info, err := e.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}

			p := filepath.Join(dir, e.Name())
			url, ok := j.store.URL(p)
			if !ok {
				continue
			}
			if _, used := referenced[url]; used {
				continue
			}

			if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
				j.log.Warn().Err(err).Str("url", url).Msg("failed to remove orphaned image")
				continue
			}
			j.log.Debug().Str("url", url).Msg("removed orphaned image")
			removed++
		}
	}

	return removed, nil
}
