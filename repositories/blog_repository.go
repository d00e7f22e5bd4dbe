package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"safetravels-api/models"
)

type BlogFilter struct {
	// Published restricts the listing to one state; nil lists every post.
	Published *bool
}

type BlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

// List returns posts newest first without their content.
func (r *BlogRepository) List(ctx context.Context, filter BlogFilter, page models.PageRequest) ([]models.BlogPost, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Published != nil {
			db = db.Where(eq("published", *filter.Published))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.BlogPost{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := make([]models.BlogPost, 0, page.Limit)
	err := r.db.WithContext(ctx).
		Omit("content").
		Scopes(scope, orderBy(NewestFirst), paginate(page)).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *BlogRepository) FindByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).Where(eq("slug", slug)).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// SlugTaken reports whether another post (not excludeID) uses slug. Pass 0
// to check against every post.
func (r *BlogRepository) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where(eq("slug", slug))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BlogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *BlogRepository) Update(ctx context.Context, post *models.BlogPost, updates map[string]interface{}) error {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(post).Updates(updates).Error; err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).First(post, post.ID).Error
}

// SetPublished publishes (stamping publishedAt with at) or unpublishes
// (clearing publishedAt) a post.
func (r *BlogRepository) SetPublished(ctx context.Context, post *models.BlogPost, published bool, at time.Time) error {
	updates := map[string]interface{}{
		"published":    published,
		"published_at": nil,
	}
	if published {
		updates["published_at"] = at
	}
	return r.Update(ctx, post, updates)
}

func (r *BlogRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.BlogPost{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ImageURLs returns every featured image URL in use.
func (r *BlogRepository) ImageURLs(ctx context.Context) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Model(&models.BlogPost{}).
		Where("featured_image IS NOT NULL").
		Pluck("featured_image", &urls).Error
	return urls, err
}
