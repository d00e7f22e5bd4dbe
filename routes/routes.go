package routes

import (
	"context"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"safetravels-api/config"
	"safetravels-api/controllers"
	"safetravels-api/database"
	"safetravels-api/middleware"
	"safetravels-api/models"
	"safetravels-api/repositories"
	"safetravels-api/services"
	"safetravels-api/storage"
	"safetravels-api/utils"
)

// Deps holds the handlers and the token/user lookups behind the auth gate.
type Deps struct {
	Tokens middleware.TokenParser
	Users  middleware.UserFinder

	Auth         *controllers.AuthController
	Cars         *controllers.CarController
	Blog         *controllers.BlogController
	Testimonials *controllers.TestimonialController
	Contact      *controllers.ContactController
	Health       *controllers.HealthController
}

// NewDeps builds the repositories and controllers on top of db.
func NewDeps(db *gorm.DB, cfg *config.Config, images storage.ImageStore, emailService *services.EmailService, log zerolog.Logger) Deps {
	userRepo := repositories.NewUserRepository(db)
	carRepo := repositories.NewCarRepository(db)
	blogRepo := repositories.NewBlogRepository(db)
	testimonialRepo := repositories.NewTestimonialRepository(db)
	contactRepo := repositories.NewContactRepository(db)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)

	return Deps{
		Tokens:       tokens,
		Users:        userRepo,
		Auth:         controllers.NewAuthController(userRepo, tokens, log),
		Cars:         controllers.NewCarController(carRepo, contactRepo, emailService, images, cfg.MaxFileSize, log),
		Blog:         controllers.NewBlogController(blogRepo, images, cfg.MaxFileSize, log),
		Testimonials: controllers.NewTestimonialController(testimonialRepo, carRepo, log),
		Contact:      controllers.NewContactController(contactRepo, emailService, log),
		Health: controllers.NewHealthController(cfg.Environment, func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}),
	}
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, d Deps, log zerolog.Logger) {
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.FrontendURL),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.RateLimit(cfg.RateLimitWindow, cfg.RateLimitMaxRequests),
		middleware.ErrorHandler(log, cfg.IsDevelopment()),
	)

	authRequired := middleware.Authenticate(d.Tokens, d.Users)
	authOptional := middleware.OptionalAuthenticate(d.Tokens, d.Users)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	r.GET("/health", d.Health.Health)
	if cfg.StorageDriver == "local" {
		r.Static("/uploads", cfg.UploadDir)
	}

	api := r.Group("/api")
	api.GET("", d.Health.Index)

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/login", d.Auth.Login)
		if cfg.AllowPublicRegistration {
			auth.POST("/register", d.Auth.Register)
		}
		auth.POST("/admin/register", authRequired, adminOnly, d.Auth.Register)
		auth.GET("/profile", authRequired, d.Auth.GetProfile)
		auth.PUT("/profile", authRequired, d.Auth.UpdateProfile)
		auth.PUT("/change-password", authRequired, d.Auth.ChangePassword)
	}

	// Car routes
	cars := api.Group("/cars")
	{
		cars.GET("", d.Cars.GetCars)
		cars.GET("/featured", d.Cars.GetFeaturedCars)
		cars.GET("/search", d.Cars.SearchCars)
		cars.GET("/:id", d.Cars.GetCar)
		cars.POST("/:id/inquiry", d.Cars.CreateCarInquiry)

		admin := cars.Group("", authRequired, adminOnly)
		admin.GET("/:id/inquiries", d.Cars.GetCarInquiries)
		admin.POST("", d.Cars.CreateCar)
		admin.PUT("/:id", d.Cars.UpdateCar)
		admin.DELETE("/:id", d.Cars.DeleteCar)
	}

	// Blog routes. Reads resolve the caller when a token is sent so that
	// administrators can see drafts.
	blog := api.Group("/blog")
	{
		blog.GET("", authOptional, d.Blog.GetBlogPosts)
		blog.GET("/:slug", authOptional, d.Blog.GetBlogPostBySlug)

		admin := blog.Group("", authRequired, adminOnly)
		admin.POST("", d.Blog.CreateBlogPost)
		admin.PUT("/:id", d.Blog.UpdateBlogPost)
		admin.DELETE("/:id", d.Blog.DeleteBlogPost)
		admin.PATCH("/:id/publish", d.Blog.PublishBlogPost)
		admin.PATCH("/:id/unpublish", d.Blog.UnpublishBlogPost)
	}

	// Testimonial routes
	testimonials := api.Group("/testimonials")
	{
		testimonials.GET("/approved", d.Testimonials.GetApprovedTestimonials)
		testimonials.POST("", d.Testimonials.CreateTestimonial)

		admin := testimonials.Group("", authRequired, adminOnly)
		admin.GET("", d.Testimonials.GetAllTestimonials)
		admin.GET("/:id", d.Testimonials.GetTestimonial)
		admin.PUT("/:id", d.Testimonials.UpdateTestimonial)
		admin.DELETE("/:id", d.Testimonials.DeleteTestimonial)
		admin.PATCH("/:id/approve", d.Testimonials.ApproveTestimonial)
	}

	// Contact routes
	contact := api.Group("/contact")
	{
		contact.POST("/inquiry", d.Contact.CreateInquiry)
		contact.POST("/newsletter", d.Contact.Subscribe)
		contact.POST("/newsletter/unsubscribe", d.Contact.Unsubscribe)

		admin := contact.Group("", authRequired, adminOnly)
		admin.GET("/inquiries", d.Contact.GetInquiries)
		admin.GET("/inquiries/:id", d.Contact.GetInquiry)
		admin.PATCH("/inquiries/:id/read", d.Contact.MarkInquiryRead)
		admin.DELETE("/inquiries/:id", d.Contact.DeleteInquiry)
		admin.GET("/newsletter", d.Contact.GetSubscriptions)
	}

	r.NoRoute(notFound)
}

func notFound(c *gin.Context) {
	available := gin.H{"health": "/health"}
	for k, v := range controllers.Sections {
		available[k] = v
	}
	utils.SendError(c, http.StatusNotFound, "Route "+c.Request.URL.RequestURI()+" not found", gin.H{"availableRoutes": available})
}
