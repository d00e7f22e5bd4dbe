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
	defaultApprovedTestimonialLimit = 10
	defaultTestimonialLimit         = 20
)

type TestimonialController struct {
	testimonials TestimonialStore
	cars         CarStore
	log          zerolog.Logger
}

func NewTestimonialController(testimonials TestimonialStore, cars CarStore, log zerolog.Logger) *TestimonialController {
	return &TestimonialController{
		testimonials: testimonials,
		cars:         cars,
		log:          log,
	}
}

type CreateTestimonialRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=100"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Content string  `json:"content" validate:"required,min=10,max=1000"`
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	CarID   *uint   `json:"carId" validate:"omitempty,gte=1"`
}

func (r *CreateTestimonialRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Content = strings.TrimSpace(r.Content)
	if r.Email != nil {
		v := normalizeEmail(*r.Email)
		r.Email = &v
		if v == "" {
			r.Email = nil
		}
	}
}

type UpdateTestimonialRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Content    *string `json:"content" validate:"omitempty,min=10,max=1000"`
	Rating     *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	IsApproved *bool   `json:"isApproved"`
}

func (r *UpdateTestimonialRequest) normalize() {
	r.Name = trimPtr(r.Name)
	r.Content = trimPtr(r.Content)
	if r.Email != nil {
		v := normalizeEmail(*r.Email)
		r.Email = &v
		if v == "" {
			r.Email = nil
		}
	}
}

func (r *UpdateTestimonialRequest) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if r.Name != nil {
		u["name"] = *r.Name
	}
	if r.Email != nil {
		u["email"] = *r.Email
	}
	if r.Content != nil {
		u["content"] = *r.Content
	}
	if r.Rating != nil {
		u["rating"] = *r.Rating
	}
	if r.IsApproved != nil {
		u["is_approved"] = *r.IsApproved
	}
	return u
}

func (tc *TestimonialController) GetApprovedTestimonials(c *gin.Context) {
	q := newQuery(c)
	page := q.Page(defaultApprovedTestimonialLimit)
	if err := q.Err(); err != nil {
		middleware.Fail(c, err)
		return
	}

	approved := true
	testimonials, total, err := tc.testimonials.List(c.Request.Context(), repositories.TestimonialFilter{Approved: &approved}, page)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendPaginated(c, "testimonials", testimonials, models.NewPagination(page, total))
}

func (tc *TestimonialController) GetAllTestimonials(c *gin.Context) {
	q := newQuery(c)
	page := q.Page(defaultTestimonialLimit)
	approved := q.Bool("approved")
	if err := q.Err(); err != nil {
		middleware.Fail(c, err)
		return
	}

	testimonials, total, err := tc.testimonials.List(c.Request.Context(), repositories.TestimonialFilter{Approved: approved}, page)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendPaginated(c, "testimonials", testimonials, models.NewPagination(page, total))
}

func (tc *TestimonialController) GetTestimonial(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	t, err := tc.testimonials.FindByID(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Testimonial not found"))
		return
	}

	utils.SendSuccess(c, "", gin.H{"testimonial": t})
}

// CreateTestimonial stores a submission for review. A referenced car must
// exist at this point.
func (tc *TestimonialController) CreateTestimonial(c *gin.Context) {
	var req CreateTestimonialRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.CarID != nil {
		exists, err := tc.cars.Exists(ctx, *req.CarID)
		if err != nil {
			middleware.Fail(c, err)
			return
		}
		if !exists {
			middleware.Fail(c, errs.NewNotFound("Car not found"))
			return
		}
	}

	rating := models.DefaultRating
	if req.Rating != nil {
		rating = *req.Rating
	}

	t := &models.Testimonial{
		Name:       req.Name,
		Email:      req.Email,
		Content:    req.Content,
		Rating:     rating,
		CarID:      req.CarID,
		IsApproved: false,
	}
	if err := tc.testimonials.Create(ctx, t); err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendCreated(c, "Testimonial submitted successfully. It will be reviewed before being published.", gin.H{"testimonial": t})
}

func (tc *TestimonialController) UpdateTestimonial(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	var req UpdateTestimonialRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	t, err := tc.testimonials.FindByID(ctx, id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Testimonial not found"))
		return
	}

	if err := tc.testimonials.Update(ctx, t, req.updates()); err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendSuccess(c, "Testimonial updated successfully", gin.H{"testimonial": t})
}

func (tc *TestimonialController) DeleteTestimonial(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := tc.testimonials.Delete(c.Request.Context(), id); err != nil {
		middleware.Fail(c, notFoundAs(err, "Testimonial not found"))
		return
	}

	utils.SendSuccess(c, "Testimonial deleted successfully", nil)
}

func (tc *TestimonialController) ApproveTestimonial(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	t, err := tc.testimonials.FindByID(ctx, id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Testimonial not found"))
		return
	}

	if err := tc.testimonials.Update(ctx, t, map[string]interface{}{"is_approved": true}); err != nil {
		middleware.Fail(c, err)
		return
	}

	tc.log.Info().Uint("testimonial_id", t.ID).Msg("testimonial approved")
	utils.SendSuccess(c, "Testimonial approved successfully", gin.H{"testimonial": t})
}
