package controllers

import (
	"context"
	"time"

	"safetravels-api/models"
	"safetravels-api/repositories"
)

// The stores below are satisfied by the gorm repositories; handlers depend
// on them so they can be exercised against in-memory fakes.

type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User, updates map[string]interface{}) error
}

type CarStore interface {
	List(ctx context.Context, filter repositories.CarFilter, sort repositories.Sort, page models.PageRequest) ([]models.Car, int64, error)
	Search(ctx context.Context, q string, filter repositories.CarFilter, page models.PageRequest) ([]models.Car, int64, error)
	Featured(ctx context.Context) ([]models.Car, error)
	FindByID(ctx context.Context, id uint) (*models.Car, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, car *models.Car) error
	Update(ctx context.Context, car *models.Car, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type BlogStore interface {
	List(ctx context.Context, filter repositories.BlogFilter, page models.PageRequest) ([]models.BlogPost, int64, error)
	FindByID(ctx context.Context, id uint) (*models.BlogPost, error)
	FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error)
	Create(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, post *models.BlogPost, updates map[string]interface{}) error
	SetPublished(ctx context.Context, post *models.BlogPost, published bool, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

type TestimonialStore interface {
	List(ctx context.Context, filter repositories.TestimonialFilter, page models.PageRequest) ([]models.Testimonial, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Testimonial, error)
	Create(ctx context.Context, t *models.Testimonial) error
	Update(ctx context.Context, t *models.Testimonial, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type ContactStore interface {
	ListInquiries(ctx context.Context, filter repositories.InquiryFilter, page models.PageRequest) ([]models.ContactInquiry, int64, error)
	InquiriesForCar(ctx context.Context, carID uint) ([]models.ContactInquiry, error)
	FindInquiry(ctx context.Context, id uint) (*models.ContactInquiry, error)
	CreateInquiry(ctx context.Context, inquiry *models.ContactInquiry) error
	MarkInquiryRead(ctx context.Context, inquiry *models.ContactInquiry) error
	DeleteInquiry(ctx context.Context, id uint) error
	FindSubscription(ctx context.Context, email string) (*models.NewsletterSubscription, error)
	CreateSubscription(ctx context.Context, sub *models.NewsletterSubscription) error
	SetSubscriptionActive(ctx context.Context, sub *models.NewsletterSubscription, active bool) error
	ListSubscriptions(ctx context.Context, filter repositories.SubscriptionFilter, page models.PageRequest) ([]models.NewsletterSubscription, int64, error)
}

type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

// Notifier sends emails in the background; it never reports failures.
type Notifier interface {
	NotifyInquiry(inquiry models.ContactInquiry)
	SendNewsletterWelcome(email string, reactivated bool)
}
