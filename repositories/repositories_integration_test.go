//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"safetravels-api/database"
	"safetravels-api/errs"
	"safetravels-api/models"
	"safetravels-api/utils"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("safetravels"),
		postgres.WithUsername("safetravels"),
		postgres.WithPassword("safetravels"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Initialize(database.DriverPostgres, dsn, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, zerolog.Nop()))

	return db
}

func newCar(brand, model string, year int, price float64, mileage int) *models.Car {
	return &models.Car{
		Make:         brand,
		Model:        model,
		Year:         year,
		Mileage:      mileage,
		Price:        price,
		BodyType:     "Sedan",
		Transmission: "Automatic",
		Condition:    "Used",
		FuelType:     "Petrol",
		EngineSize:   "2.0L",
		Doors:        4,
		Cylinders:    4,
		Description:  brand + " " + model + " in great shape",
		IsAvailable:  true,
	}
}

func TestRepositoriesIntegration(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	t.Run("car filters and pagination", func(t *testing.T) {
		repo := NewCarRepository(db)

		for _, c := range []*models.Car{
			newCar("Toyota", "Camry", 2022, 25000, 15000),
			newCar("Toyota", "Corolla", 2019, 15000, 60000),
			newCar("Honda", "CR-V", 2021, 28000, 25000),
			newCar("BMW", "3 Series", 2023, 45000, 5000),
		} {
			require.NoError(t, repo.Create(ctx, c))
		}

		cars, total, err := repo.List(ctx, CarFilter{Make: "toy"}, Sort{Column: "price"}, models.PageRequest{Page: 1, Limit: 12})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, cars, 2)
		assert.Equal(t, "Corolla", cars[0].Model)

		cars, total, err = repo.List(ctx, CarFilter{MinPrice: ptr(20000.0), MaxYear: ptr(2022)}, NewestFirst, models.PageRequest{Page: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, cars, 1)

		cars, total, err = repo.List(ctx, CarFilter{}, NewestFirst, models.PageRequest{Page: 5, Limit: 12})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Empty(t, cars)

		cars, _, err = repo.Search(ctx, "series", CarFilter{}, models.PageRequest{Page: 1, Limit: 12})
		require.NoError(t, err)
		require.Len(t, cars, 1)
		assert.Equal(t, "BMW", cars[0].Make)

		_, total, err = repo.Search(ctx, "100%", CarFilter{}, models.PageRequest{Page: 1, Limit: 12})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("car images round trip", func(t *testing.T) {
		repo := NewCarRepository(db)

		car := newCar("Mazda", "CX-5", 2020, 22000, 40000)
		car.Images = models.StringSlice{"/uploads/cars/a.jpg", "/uploads/cars/b.jpg"}
		require.NoError(t, repo.Create(ctx, car))

		got, err := repo.FindByID(ctx, car.ID)
		require.NoError(t, err)
		assert.Equal(t, car.Images, got.Images)

		urls, err := repo.ImageURLs(ctx)
		require.NoError(t, err)
		assert.Contains(t, urls, "/uploads/cars/b.jpg")

		require.NoError(t, repo.Delete(ctx, car.ID))
		_, err = repo.FindByID(ctx, car.ID)
		assert.Equal(t, errs.KindNotFound, errs.From(err).Kind)
	})

	t.Run("blog slug probe", func(t *testing.T) {
		repo := NewBlogRepository(db)
		taken := func(excludeID uint) func(string) (bool, error) {
			return func(s string) (bool, error) { return repo.SlugTaken(ctx, s, excludeID) }
		}

		var ids []uint
		for i := 0; i < 3; i++ {
			slug, err := utils.UniqueSlug("hello-world", taken(0))
			require.NoError(t, err)

			post := &models.BlogPost{Title: "Hello World", Slug: slug, Content: "content", Author: "Admin"}
			require.NoError(t, repo.Create(ctx, post))
			ids = append(ids, post.ID)
		}

		first, err := repo.FindByID(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, "hello-world", first.Slug)

		third, err := repo.FindByID(ctx, ids[2])
		require.NoError(t, err)
		assert.Equal(t, "hello-world-2", third.Slug)

		// a post keeps its own slug when re-derived
		slug, err := utils.UniqueSlug("hello-world-1", taken(ids[1]))
		require.NoError(t, err)
		assert.Equal(t, "hello-world-1", slug)

		err = repo.Create(ctx, &models.BlogPost{Title: "dup", Slug: "hello-world", Content: "c", Author: "a"})
		assert.Equal(t, errs.KindConflict, errs.From(err).Kind)
	})

	t.Run("blog publish state", func(t *testing.T) {
		repo := NewBlogRepository(db)

		post := &models.BlogPost{Title: "Draft", Slug: "draft", Content: "body", Author: "Admin"}
		require.NoError(t, repo.Create(ctx, post))

		now := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, repo.SetPublished(ctx, post, true, now))
		assert.True(t, post.Published)
		require.NotNil(t, post.PublishedAt)

		published := true
		posts, _, err := repo.List(ctx, BlogFilter{Published: &published}, models.PageRequest{Page: 1, Limit: 10})
		require.NoError(t, err)
		require.NotEmpty(t, posts)
		assert.Empty(t, posts[0].Content)

		require.NoError(t, repo.SetPublished(ctx, post, false, now))
		assert.False(t, post.Published)
		assert.Nil(t, post.PublishedAt)
	})

	t.Run("testimonial car summary", func(t *testing.T) {
		cars := NewCarRepository(db)
		repo := NewTestimonialRepository(db)

		car := newCar("Kia", "Sportage", 2021, 24000, 30000)
		require.NoError(t, cars.Create(ctx, car))

		tm := &models.Testimonial{Name: "Jane", Content: "Great service all round", Rating: 5, CarID: &car.ID}
		require.NoError(t, repo.Create(ctx, tm))
		require.NotNil(t, tm.Car)
		assert.Equal(t, "Sportage", tm.Car.Model)

		approved := true
		list, total, err := repo.List(ctx, TestimonialFilter{Approved: &approved}, models.PageRequest{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, list)

		require.NoError(t, repo.Update(ctx, tm, map[string]interface{}{"is_approved": true}))
		assert.True(t, tm.IsApproved)

		_, total, err = repo.List(ctx, TestimonialFilter{Approved: &approved}, models.PageRequest{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("newsletter subscriptions", func(t *testing.T) {
		repo := NewContactRepository(db)

		sub, err := repo.FindSubscription(ctx, "reader@example.com")
		require.NoError(t, err)
		assert.Nil(t, sub)

		require.NoError(t, repo.CreateSubscription(ctx, &models.NewsletterSubscription{Email: "reader@example.com", IsActive: true}))

		sub, err = repo.FindSubscription(ctx, "reader@example.com")
		require.NoError(t, err)
		require.NotNil(t, sub)

		require.NoError(t, repo.SetSubscriptionActive(ctx, sub, false))
		assert.False(t, sub.IsActive)

		err = repo.CreateSubscription(ctx, &models.NewsletterSubscription{Email: "reader@example.com", IsActive: true})
		assert.True(t, errs.IsDuplicateKey(err))
	})

	t.Run("users", func(t *testing.T) {
		repo := NewUserRepository(db)

		user := &models.User{Username: "editor", Email: "editor@example.com", Password: "hash", Role: models.RoleAdmin}
		require.NoError(t, repo.Create(ctx, user))

		found, err := repo.FindByLogin(ctx, "editor@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		taken, err := repo.UsernameTaken(ctx, "editor", 0)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.UsernameTaken(ctx, "editor", user.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})
}
