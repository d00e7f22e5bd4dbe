package controllers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"safetravels-api/errs"
	"safetravels-api/middleware"
	"safetravels-api/models"
	"safetravels-api/repositories"
	"safetravels-api/storage"
	"safetravels-api/utils"
)

const defaultCarLimit = 12

type CarController struct {
	cars     CarStore
	contacts ContactStore
	notifier Notifier
	uploads  *uploader
	log      zerolog.Logger
}

func NewCarController(cars CarStore, contacts ContactStore, notifier Notifier, images storage.ImageStore, maxFileSize int64, log zerolog.Logger) *CarController {
	return &CarController{
		cars:     cars,
		contacts: contacts,
		notifier: notifier,
		uploads:  &uploader{store: images, maxSize: maxFileSize, log: log},
		log:      log,
	}
}

// CreateCarRequest is sent as multipart form data alongside the images
// parts, or as JSON when there are no images.
type CreateCarRequest struct {
	Make         string   `json:"make" form:"make" validate:"required,max=100"`
	Model        string   `json:"model" form:"model" validate:"required,max=100"`
	Year         *int     `json:"year" form:"year" validate:"required,gte=1886,lte=2100"`
	Mileage      *int     `json:"mileage" form:"mileage" validate:"required,gte=0"`
	Price        *float64 `json:"price" form:"price" validate:"required,gt=0"`
	BodyType     string   `json:"bodyType" form:"bodyType" validate:"required,max=50"`
	Transmission string   `json:"transmission" form:"transmission" validate:"required,max=50"`
	Condition    string   `json:"condition" form:"condition" validate:"required,max=50"`
	FuelType     string   `json:"fuelType" form:"fuelType" validate:"required,max=50"`
	EngineSize   string   `json:"engineSize" form:"engineSize" validate:"required,max=50"`
	Doors        *int     `json:"doors" form:"doors" validate:"required,gte=1,lte=9"`
	Cylinders    *int     `json:"cylinders" form:"cylinders" validate:"required,gte=0,lte=16"`
	Description  string   `json:"description" form:"description" validate:"max=5000"`
	IsFeatured   *bool    `json:"isFeatured" form:"isFeatured"`
}

func (r *CreateCarRequest) normalize() {
	for _, s := range []*string{&r.Make, &r.Model, &r.BodyType, &r.Transmission, &r.Condition, &r.FuelType, &r.EngineSize, &r.Description} {
		*s = strings.TrimSpace(*s)
	}
}

// UpdateCarRequest sets only the fields present in the request.
type UpdateCarRequest struct {
	Make         *string  `json:"make" form:"make" validate:"omitempty,min=1,max=100"`
	Model        *string  `json:"model" form:"model" validate:"omitempty,min=1,max=100"`
	Year         *int     `json:"year" form:"year" validate:"omitempty,gte=1886,lte=2100"`
	Mileage      *int     `json:"mileage" form:"mileage" validate:"omitempty,gte=0"`
	Price        *float64 `json:"price" form:"price" validate:"omitempty,gt=0"`
	BodyType     *string  `json:"bodyType" form:"bodyType" validate:"omitempty,min=1,max=50"`
	Transmission *string  `json:"transmission" form:"transmission" validate:"omitempty,min=1,max=50"`
	Condition    *string  `json:"condition" form:"condition" validate:"omitempty,min=1,max=50"`
	FuelType     *string  `json:"fuelType" form:"fuelType" validate:"omitempty,min=1,max=50"`
	EngineSize   *string  `json:"engineSize" form:"engineSize" validate:"omitempty,min=1,max=50"`
	Doors        *int     `json:"doors" form:"doors" validate:"omitempty,gte=1,lte=9"`
	Cylinders    *int     `json:"cylinders" form:"cylinders" validate:"omitempty,gte=0,lte=16"`
	Description  *string  `json:"description" form:"description" validate:"omitempty,max=5000"`
	IsFeatured   *bool    `json:"isFeatured" form:"isFeatured"`
	IsAvailable  *bool    `json:"isAvailable" form:"isAvailable"`
}

func (r *UpdateCarRequest) normalize() {
	for _, s := range []**string{&r.Make, &r.Model, &r.BodyType, &r.Transmission, &r.Condition, &r.FuelType, &r.EngineSize, &r.Description} {
		*s = trimPtr(*s)
	}
}

// updates maps the present fields onto column values.
func (r *UpdateCarRequest) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if r.Make != nil {
		u["make"] = *r.Make
	}
	if r.Model != nil {
		u["model"] = *r.Model
	}
	if r.Year != nil {
		u["year"] = *r.Year
	}
	if r.Mileage != nil {
		u["mileage"] = *r.Mileage
	}
	if r.Price != nil {
		u["price"] = *r.Price
	}
	if r.BodyType != nil {
		u["body_type"] = *r.BodyType
	}
	if r.Transmission != nil {
		u["transmission"] = *r.Transmission
	}
	if r.Condition != nil {
		u["condition"] = *r.Condition
	}
	if r.FuelType != nil {
		u["fuel_type"] = *r.FuelType
	}
	if r.EngineSize != nil {
		u["engine_size"] = *r.EngineSize
	}
	if r.Doors != nil {
		u["doors"] = *r.Doors
	}
	if r.Cylinders != nil {
		u["cylinders"] = *r.Cylinders
	}
	if r.Description != nil {
		u["description"] = *r.Description
	}
	if r.IsFeatured != nil {
		u["is_featured"] = *r.IsFeatured
	}
	if r.IsAvailable != nil {
		u["is_available"] = *r.IsAvailable
	}
	return u
}

// CarInquiryRequest is a contact inquiry about one car; the subject is
// derived from the car.
type CarInquiryRequest struct {
	Name    string  `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email   string  `json:"email" form:"email" validate:"required,email"`
	Phone   *string `json:"phone" form:"phone" validate:"omitempty,phone"`
	Message string  `json:"message" form:"message" validate:"required,min=10,max=2000"`
}

func (r *CarInquiryRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	r.Phone = trimPtr(r.Phone)
	if r.Phone != nil && *r.Phone == "" {
		r.Phone = nil
	}
	r.Message = strings.TrimSpace(r.Message)
}

// carFilter reads the inventory filters. brand is accepted as an alias of
// make.
func carFilter(q *queryParser) repositories.CarFilter {
	f := repositories.CarFilter{
		Make:         q.String("make"),
		Model:        q.String("model"),
		MinPrice:     q.Float("minPrice"),
		MaxPrice:     q.Float("maxPrice"),
		MinYear:      q.Int("minYear"),
		MaxYear:      q.Int("maxYear"),
		MaxMileage:   q.Int("maxMileage"),
		FuelType:     q.String("fuelType"),
		Transmission: q.String("transmission"),
		BodyType:     q.String("bodyType"),
		Condition:    q.String("condition"),
	}
	if f.Make == "" {
		f.Make = q.String("brand")
	}
	return f
}

func notFoundAs(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFound(message)
	}
	return err
}

func (cc *CarController) GetCars(c *gin.Context) {
	q := newQuery(c)
	page := q.Page(defaultCarLimit)
	sort := q.Sort(repositories.CarSortColumns)
	filter := carFilter(q)
	if err := q.Err(); err != nil {
		middleware.Fail(c, err)
		return
	}

	cars, total, err := cc.cars.List(c.Request.Context(), filter, sort, page)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendPaginated(c, "cars", cars, models.NewPagination(page, total))
}

func (cc *CarController) GetFeaturedCars(c *gin.Context) {
	cars, err := cc.cars.Featured(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendSuccess(c, "", gin.H{"cars": cars})
}

func (cc *CarController) SearchCars(c *gin.Context) {
	q := newQuery(c)
	page := q.Page(defaultCarLimit)
	filter := carFilter(q)
	text := q.String("q")
	if err := q.Err(); err != nil {
		middleware.Fail(c, err)
		return
	}

	cars, total, err := cc.cars.Search(c.Request.Context(), text, filter, page)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendPaginated(c, "cars", cars, models.NewPagination(page, total))
}

func (cc *CarController) GetCar(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	car, err := cc.cars.FindByID(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Car not found"))
		return
	}

	utils.SendSuccess(c, "", gin.H{"car": car})
}

func (cc *CarController) CreateCar(c *gin.Context) {
	var req CreateCarRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	files := formFiles(c, "images")
	if err := cc.uploads.check("images", files, maxCarImages); err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	images, err := cc.uploads.saveAll(ctx, storage.FolderCars, files)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	car := &models.Car{
		Make:         req.Make,
		Model:        req.Model,
		Year:         *req.Year,
		Mileage:      *req.Mileage,
		Price:        *req.Price,
		BodyType:     req.BodyType,
		Transmission: req.Transmission,
		Condition:    req.Condition,
		FuelType:     req.FuelType,
		EngineSize:   req.EngineSize,
		Doors:        *req.Doors,
		Cylinders:    *req.Cylinders,
		Description:  req.Description,
		Images:       models.StringSlice(images),
		IsFeatured:   req.IsFeatured != nil && *req.IsFeatured,
		IsAvailable:  true,
	}

	if err := cc.cars.Create(ctx, car); err != nil {
		cc.uploads.removeAll(ctx, images)
		middleware.Fail(c, err)
		return
	}

	cc.log.Info().Uint("car_id", car.ID).Int("images", len(images)).Msg("car created")
	utils.SendCreated(c, "Car created successfully", gin.H{"car": car})
}

// UpdateCar applies the present fields; uploaded images are appended to
// the existing list.
func (cc *CarController) UpdateCar(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	var req UpdateCarRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	files := formFiles(c, "images")
	if err := cc.uploads.check("images", files, maxCarImages); err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	car, err := cc.cars.FindByID(ctx, id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Car not found"))
		return
	}

	added, err := cc.uploads.saveAll(ctx, storage.FolderCars, files)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	updates := req.updates()
	if len(added) > 0 {
		images := make(models.StringSlice, 0, len(car.Images)+len(added))
		images = append(images, car.Images...)
		images = append(images, added...)
		updates["images"] = images
	}

	if err := cc.cars.Update(ctx, car, updates); err != nil {
		cc.uploads.removeAll(ctx, added)
		middleware.Fail(c, err)
		return
	}

	utils.SendSuccess(c, "Car updated successfully", gin.H{"car": car})
}

// DeleteCar removes the car's images before the row. Image removal is
// best-effort.
func (cc *CarController) DeleteCar(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	car, err := cc.cars.FindByID(ctx, id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Car not found"))
		return
	}

	if len(car.Images) > 0 {
		cc.uploads.removeAll(ctx, car.Images)
	}

	if err := cc.cars.Delete(ctx, id); err != nil {
		middleware.Fail(c, notFoundAs(err, "Car not found"))
		return
	}

	cc.log.Info().Uint("car_id", id).Msg("car deleted")
	utils.SendSuccess(c, "Car deleted successfully", nil)
}

func (cc *CarController) CreateCarInquiry(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	var req CarInquiryRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	car, err := cc.cars.FindByID(ctx, id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Car not found"))
		return
	}

	inquiry := &models.ContactInquiry{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: "Inquiry about " + car.Title(),
		Message: req.Message,
		CarID:   &car.ID,
	}
	if err := cc.contacts.CreateInquiry(ctx, inquiry); err != nil {
		middleware.Fail(c, err)
		return
	}

	cc.notifier.NotifyInquiry(*inquiry)
	utils.SendCreated(c, "Your inquiry has been sent successfully. We will get back to you soon!", gin.H{"inquiry": inquiry})
}

func (cc *CarController) GetCarInquiries(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	exists, err := cc.cars.Exists(ctx, id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if !exists {
		middleware.Fail(c, errs.NewNotFound("Car not found"))
		return
	}

	inquiries, err := cc.contacts.InquiriesForCar(ctx, id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendSuccess(c, "", gin.H{"inquiries": inquiries})
}
