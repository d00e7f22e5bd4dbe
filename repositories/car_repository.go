package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"safetravels-api/models"
)

// CarFilter holds the optional inventory filters. Zero values mean
// "not filtered"; ranges are inclusive.
type CarFilter struct {
	Make         string
	Model        string
	MinPrice     *float64
	MaxPrice     *float64
	MinYear      *int
	MaxYear      *int
	MaxMileage   *int
	FuelType     string
	Transmission string
	BodyType     string
	Condition    string
}

// CarSortColumns maps the accepted sortBy values onto columns.
var CarSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"price":     "price",
	"year":      "year",
	"mileage":   "mileage",
	"make":      "make",
	"model":     "model",
}

const featuredCarsLimit = 6

type CarRepository struct {
	db *gorm.DB
}

func NewCarRepository(db *gorm.DB) *CarRepository {
	return &CarRepository{db: db}
}

func (r *CarRepository) List(ctx context.Context, filter CarFilter, sort Sort, page models.PageRequest) ([]models.Car, int64, error) {
	return r.find(ctx, carFilterScope(filter), sort, page)
}

// Search matches q against make, model or description and applies the
// numeric and drivetrain filters. Make, model and condition filters are
// not used; results are newest first.
func (r *CarRepository) Search(ctx context.Context, q string, filter CarFilter, page models.PageRequest) ([]models.Car, int64, error) {
	return r.find(ctx, carSearchScope(q, filter), NewestFirst, page)
}

func (r *CarRepository) find(ctx context.Context, scope func(*gorm.DB) *gorm.DB, sort Sort, page models.PageRequest) ([]models.Car, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Car{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	cars := make([]models.Car, 0, page.Limit)
	err := r.db.WithContext(ctx).
		Scopes(scope, orderBy(sort), paginate(page)).
		Find(&cars).Error
	if err != nil {
		return nil, 0, err
	}

	return cars, total, nil
}

// Featured returns the newest featured cars that are still available.
func (r *CarRepository) Featured(ctx context.Context) ([]models.Car, error) {
	cars := make([]models.Car, 0, featuredCarsLimit)
	err := r.db.WithContext(ctx).
		Where(eq("is_featured", true)).
		Where(eq("is_available", true)).
		Scopes(orderBy(NewestFirst)).
		Limit(featuredCarsLimit).
		Find(&cars).Error
	return cars, err
}

func (r *CarRepository) FindByID(ctx context.Context, id uint) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, id).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *CarRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var car models.Car
	err := r.db.WithContext(ctx).Select("id").First(&car, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *CarRepository) Create(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

// Update applies the given column values and reloads the row.
func (r *CarRepository) Update(ctx context.Context, car *models.Car, updates map[string]interface{}) error {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(car).Updates(updates).Error; err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).First(car, car.ID).Error
}

func (r *CarRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Car{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ImageURLs returns every image URL referenced by any car.
func (r *CarRepository) ImageURLs(ctx context.Context) ([]string, error) {
	var lists []models.StringSlice
	err := r.db.WithContext(ctx).Model(&models.Car{}).
		Where("images IS NOT NULL").
		Pluck("images", &lists).Error
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, l := range lists {
		urls = append(urls, l...)
	}
	return urls, nil
}

func carFilterScope(f CarFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Make != "" {
			db = db.Where(containsFold("make", f.Make))
		}
		if f.Model != "" {
			db = db.Where(containsFold("model", f.Model))
		}
		if f.Condition != "" {
			db = db.Where(eq("condition", f.Condition))
		}
		return carRangeScope(f)(db)
	}
}

func carSearchScope(q string, f CarFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q != "" {
			pattern := containsPattern(q)
			db = db.Where(clause.Expr{
				SQL: "(LOWER(?) LIKE ? OR LOWER(?) LIKE ? OR LOWER(?) LIKE ?)",
				Vars: []interface{}{
					clause.Column{Name: "make"}, pattern,
					clause.Column{Name: "model"}, pattern,
					clause.Column{Name: "description"}, pattern,
				},
			})
		}
		return carRangeScope(f)(db)
	}
}

// carRangeScope covers the filters shared by listing and search.
func carRangeScope(f CarFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.MinPrice != nil {
			db = db.Where(gte("price", *f.MinPrice))
		}
		if f.MaxPrice != nil {
			db = db.Where(lte("price", *f.MaxPrice))
		}
		if f.MinYear != nil {
			db = db.Where(gte("year", *f.MinYear))
		}
		if f.MaxYear != nil {
			db = db.Where(lte("year", *f.MaxYear))
		}
		if f.MaxMileage != nil {
			db = db.Where(lte("mileage", *f.MaxMileage))
		}
		if f.FuelType != "" {
			db = db.Where(eq("fuel_type", f.FuelType))
		}
		if f.Transmission != "" {
			db = db.Where(eq("transmission", f.Transmission))
		}
		if f.BodyType != "" {
			db = db.Where(eq("body_type", f.BodyType))
		}
		return db
	}
}
