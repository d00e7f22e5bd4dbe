package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"safetravels-api/errs"
	"safetravels-api/middleware"
	"safetravels-api/models"
	"safetravels-api/repositories"
	"safetravels-api/utils"
)

const (
	defaultInquiryLimit      = 20
	defaultSubscriptionLimit = 50
)

type ContactController struct {
	contacts ContactStore
	notifier Notifier
	log      zerolog.Logger
}

func NewContactController(contacts ContactStore, notifier Notifier, log zerolog.Logger) *ContactController {
	return &ContactController{
		contacts: contacts,
		notifier: notifier,
		log:      log,
	}
}

type ContactInquiryRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=100"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone" validate:"omitempty,phone"`
	Subject string  `json:"subject" validate:"required,min=5,max=200"`
	Message string  `json:"message" validate:"required,min=10,max=2000"`
}

func (r *ContactInquiryRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	r.Phone = trimPtr(r.Phone)
	if r.Phone != nil && *r.Phone == "" {
		r.Phone = nil
	}
	r.Subject = strings.TrimSpace(r.Subject)
	r.Message = strings.TrimSpace(r.Message)
}

type NewsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *NewsletterRequest) normalize() {
	r.Email = normalizeEmail(r.Email)
}

func (cc *ContactController) CreateInquiry(c *gin.Context) {
	var req ContactInquiryRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	inquiry := &models.ContactInquiry{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		IsRead:  false,
	}
	if err := cc.contacts.CreateInquiry(c.Request.Context(), inquiry); err != nil {
		middleware.Fail(c, err)
		return
	}

	cc.notifier.NotifyInquiry(*inquiry)
	utils.SendCreated(c, "Your message has been sent successfully. We will get back to you soon!", gin.H{"inquiry": inquiry})
}

func (cc *ContactController) GetInquiries(c *gin.Context) {
	q := newQuery(c)
	page := q.Page(defaultInquiryLimit)
	unread := q.Bool("unread")
	if err := q.Err(); err != nil {
		middleware.Fail(c, err)
		return
	}

	filter := repositories.InquiryFilter{UnreadOnly: unread != nil && *unread}
	inquiries, total, err := cc.contacts.ListInquiries(c.Request.Context(), filter, page)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendPaginated(c, "inquiries", inquiries, models.NewPagination(page, total))
}

func (cc *ContactController) GetInquiry(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	inquiry, err := cc.contacts.FindInquiry(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Contact inquiry not found"))
		return
	}

	utils.SendSuccess(c, "", gin.H{"inquiry": inquiry})
}

func (cc *ContactController) MarkInquiryRead(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	inquiry, err := cc.contacts.FindInquiry(ctx, id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Contact inquiry not found"))
		return
	}

	if err := cc.contacts.MarkInquiryRead(ctx, inquiry); err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendSuccess(c, "Inquiry marked as read", gin.H{"inquiry": inquiry})
}

func (cc *ContactController) DeleteInquiry(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := cc.contacts.DeleteInquiry(c.Request.Context(), id); err != nil {
		middleware.Fail(c, notFoundAs(err, "Contact inquiry not found"))
		return
	}

	utils.SendSuccess(c, "Contact inquiry deleted successfully", nil)
}

// Subscribe creates a subscription (201), reactivates an inactive one
// (200) or rejects an active one (409).
func (cc *ContactController) Subscribe(c *gin.Context) {
	var req NewsletterRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	sub, err := cc.contacts.FindSubscription(ctx, req.Email)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if sub != nil {
		if sub.IsActive {
			middleware.Fail(c, errs.NewConflict("Email is already subscribed to our newsletter"))
			return
		}

		if err := cc.contacts.SetSubscriptionActive(ctx, sub, true); err != nil {
			middleware.Fail(c, err)
			return
		}

		cc.notifier.SendNewsletterWelcome(sub.Email, true)
		utils.SendSuccess(c, "Welcome back! Your newsletter subscription has been reactivated.", gin.H{"subscription": sub})
		return
	}

	sub = &models.NewsletterSubscription{Email: req.Email, IsActive: true}
	if err := cc.contacts.CreateSubscription(ctx, sub); err != nil {
		if errs.IsDuplicateKey(err) {
			err = errs.NewConflict("Email is already subscribed to our newsletter")
		}
		middleware.Fail(c, err)
		return
	}

	cc.notifier.SendNewsletterWelcome(sub.Email, false)
	utils.SendCreated(c, "Thank you for subscribing to our newsletter!", gin.H{"subscription": sub})
}

func (cc *ContactController) Unsubscribe(c *gin.Context) {
	var req NewsletterRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	sub, err := cc.contacts.FindSubscription(ctx, req.Email)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if sub == nil || !sub.IsActive {
		middleware.Fail(c, errs.NewNotFound("Subscription not found"))
		return
	}

	if err := cc.contacts.SetSubscriptionActive(ctx, sub, false); err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendSuccess(c, "You have been unsubscribed from our newsletter", gin.H{"subscription": sub})
}

func (cc *ContactController) GetSubscriptions(c *gin.Context) {
	q := newQuery(c)
	page := q.Page(defaultSubscriptionLimit)
	active := q.Bool("active")
	if err := q.Err(); err != nil {
		middleware.Fail(c, err)
		return
	}

	subs, total, err := cc.contacts.ListSubscriptions(c.Request.Context(), repositories.SubscriptionFilter{Active: active}, page)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendPaginated(c, "subscriptions", subs, models.NewPagination(page, total))
}
