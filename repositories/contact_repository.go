package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"safetravels-api/models"
)

type InquiryFilter struct {
	UnreadOnly bool
}

type SubscriptionFilter struct {
	Active *bool
}

// ContactRepository stores contact inquiries and newsletter subscriptions.
type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) ListInquiries(ctx context.Context, filter InquiryFilter, page models.PageRequest) ([]models.ContactInquiry, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.UnreadOnly {
			db = db.Where(eq("is_read", false))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ContactInquiry{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	inquiries := make([]models.ContactInquiry, 0, page.Limit)
	err := r.db.WithContext(ctx).
		Scopes(scope, orderBy(NewestFirst), paginate(page)).
		Find(&inquiries).Error
	if err != nil {
		return nil, 0, err
	}

	return inquiries, total, nil
}

// InquiriesForCar returns every inquiry about one car, newest first.
func (r *ContactRepository) InquiriesForCar(ctx context.Context, carID uint) ([]models.ContactInquiry, error) {
	inquiries := make([]models.ContactInquiry, 0)
	err := r.db.WithContext(ctx).
		Where(eq("car_id", carID)).
		Scopes(orderBy(NewestFirst)).
		Find(&inquiries).Error
	return inquiries, err
}

func (r *ContactRepository) FindInquiry(ctx context.Context, id uint) (*models.ContactInquiry, error) {
	var inquiry models.ContactInquiry
	if err := r.db.WithContext(ctx).First(&inquiry, id).Error; err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *ContactRepository) CreateInquiry(ctx context.Context, inquiry *models.ContactInquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

func (r *ContactRepository) MarkInquiryRead(ctx context.Context, inquiry *models.ContactInquiry) error {
	if err := r.db.WithContext(ctx).Model(inquiry).Update("is_read", true).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).First(inquiry, inquiry.ID).Error
}

func (r *ContactRepository) DeleteInquiry(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.ContactInquiry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindSubscription returns the subscription for email, or nil when there
// is none.
func (r *ContactRepository) FindSubscription(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	var sub models.NewsletterSubscription
	err := r.db.WithContext(ctx).Where(eq("email", email)).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *ContactRepository) CreateSubscription(ctx context.Context, sub *models.NewsletterSubscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *ContactRepository) SetSubscriptionActive(ctx context.Context, sub *models.NewsletterSubscription, active bool) error {
	if err := r.db.WithContext(ctx).Model(sub).Update("is_active", active).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).First(sub, sub.ID).Error
}

func (r *ContactRepository) ListSubscriptions(ctx context.Context, filter SubscriptionFilter, page models.PageRequest) ([]models.NewsletterSubscription, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Active != nil {
			db = db.Where(eq("is_active", *filter.Active))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.NewsletterSubscription{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	subs := make([]models.NewsletterSubscription, 0, page.Limit)
	err := r.db.WithContext(ctx).
		Scopes(scope, orderBy(NewestFirst), paginate(page)).
		Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}
