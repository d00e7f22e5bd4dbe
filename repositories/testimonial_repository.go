package repositories

import (
	"context"

	"gorm.io/gorm"
	"safetravels-api/models"
)

type TestimonialFilter struct {
	Approved *bool
}

type TestimonialRepository struct {
	db *gorm.DB
}

func NewTestimonialRepository(db *gorm.DB) *TestimonialRepository {
	return &TestimonialRepository{db: db}
}

func preloadCar(db *gorm.DB) *gorm.DB {
	return db.Preload("Car", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "make", "model", "year")
	})
}

func (r *TestimonialRepository) List(ctx context.Context, filter TestimonialFilter, page models.PageRequest) ([]models.Testimonial, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Approved != nil {
			db = db.Where(eq("is_approved", *filter.Approved))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Testimonial{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	testimonials := make([]models.Testimonial, 0, page.Limit)
	err := r.db.WithContext(ctx).
		Scopes(preloadCar, scope, orderBy(NewestFirst), paginate(page)).
		Find(&testimonials).Error
	if err != nil {
		return nil, 0, err
	}

	return testimonials, total, nil
}

func (r *TestimonialRepository) FindByID(ctx context.Context, id uint) (*models.Testimonial, error) {
	var t models.Testimonial
	if err := r.db.WithContext(ctx).Scopes(preloadCar).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts t and loads its car summary.
func (r *TestimonialRepository) Create(ctx context.Context, t *models.Testimonial) error {
	if err := r.db.WithContext(ctx).Omit("Car").Create(t).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Scopes(preloadCar).First(t, t.ID).Error
}

func (r *TestimonialRepository) Update(ctx context.Context, t *models.Testimonial, updates map[string]interface{}) error {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Testimonial{ID: t.ID}).Updates(updates).Error; err != nil {
			return err
		}
	}
	t.Car = nil
	return r.db.WithContext(ctx).Scopes(preloadCar).First(t, t.ID).Error
}

func (r *TestimonialRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Testimonial{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
