package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"safetravels-api/middleware"
	"safetravels-api/models"
	"safetravels-api/repositories"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	adminPrincipal = models.Principal{ID: 1, Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin}
	guestPrincipal = models.Principal{ID: 2, Username: "guest", Email: "guest@example.com", Role: "USER"}
)

// testEngine wires the error translator and lets a test act as a principal
// through the X-Test-As header ("admin" or "guest").
func testEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(zerolog.Nop(), false))
	r.Use(func(c *gin.Context) {
		switch c.GetHeader("X-Test-As") {
		case "admin":
			c.Request = c.Request.WithContext(middleware.WithPrincipal(c.Request.Context(), adminPrincipal))
		case "guest":
			c.Request = c.Request.WithContext(middleware.WithPrincipal(c.Request.Context(), guestPrincipal))
		}
		c.Next()
	})
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

type response struct {
	Code int
	Body envelope
	Raw  *httptest.ResponseRecorder
}

// data decodes the envelope's data.<key> into v.
func (r response) data(t *testing.T, key string, v interface{}) {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(r.Body.Data, &m))
	raw, ok := m[key]
	require.True(t, ok, "data has no %q: %s", key, string(r.Body.Data))
	require.NoError(t, json.Unmarshal(raw, v))
}

func (r response) fields(t *testing.T) []string {
	t.Helper()
	var details []struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(r.Body.Details, &details))
	out := make([]string, 0, len(details))
	for _, d := range details {
		out = append(out, d.Field)
	}
	sort.Strings(out)
	return out
}

func do(t *testing.T, r *gin.Engine, method, path, as string, body interface{}) response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(t, r, req, as)
}

type upload struct {
	field, name, contentType string
	size                     int
}

func doMultipart(t *testing.T, r *gin.Engine, method, path, as string, fields map[string]string, files ...upload) response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte("x"), f.size))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return serve(t, r, req, as)
}

func serve(t *testing.T, r *gin.Engine, req *http.Request, as string) response {
	t.Helper()
	if as != "" {
		req.Header.Set("X-Test-As", as)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return response{Code: w.Code, Body: env, Raw: w}
}

type fakeTokens struct{}

func (fakeTokens) Issue(userID uint) (string, error) {
	return fmt.Sprintf("token-%d", userID), nil
}

type fakeUsers struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[uint]*models.User{}, nextID: 1}
	for _, u := range users {
		f.users[u.ID] = u
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
	}
	return f
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByLogin(_ context.Context, login string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == login || u.Email == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) UsernameTaken(_ context.Context, username string, excludeID uint) (bool, error) {
	for _, u := range f.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) EmailTaken(_ context.Context, email string, excludeID uint) (bool, error) {
	for _, u := range f.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) Update(_ context.Context, user *models.User, updates map[string]interface{}) error {
	stored := f.users[user.ID]
	for k, v := range updates {
		switch k {
		case "username":
			stored.Username = v.(string)
		case "email":
			stored.Email = v.(string)
		case "password":
			stored.Password = v.(string)
		}
	}
	*user = *stored
	return nil
}

type fakeCars struct {
	cars       map[uint]*models.Car
	nextID     uint
	lastFilter repositories.CarFilter
	lastSort   repositories.Sort
	lastPage   models.PageRequest
	lastQuery  string
}

func newFakeCars(cars ...*models.Car) *fakeCars {
	f := &fakeCars{cars: map[uint]*models.Car{}, nextID: 1}
	for _, c := range cars {
		f.cars[c.ID] = c
		if c.ID >= f.nextID {
			f.nextID = c.ID + 1
		}
	}
	return f
}

func (f *fakeCars) all() []models.Car {
	out := make([]models.Car, 0, len(f.cars))
	for _, c := range f.cars {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeCars) List(_ context.Context, filter repositories.CarFilter, s repositories.Sort, page models.PageRequest) ([]models.Car, int64, error) {
	f.lastFilter, f.lastSort, f.lastPage = filter, s, page
	all := f.all()
	return all, int64(len(all)), nil
}

func (f *fakeCars) Search(_ context.Context, q string, filter repositories.CarFilter, page models.PageRequest) ([]models.Car, int64, error) {
	f.lastQuery, f.lastFilter, f.lastPage = q, filter, page
	all := f.all()
	return all, int64(len(all)), nil
}

func (f *fakeCars) Featured(context.Context) ([]models.Car, error) {
	var out []models.Car
	for _, c := range f.all() {
		if c.IsFeatured && c.IsAvailable {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCars) FindByID(_ context.Context, id uint) (*models.Car, error) {
	c, ok := f.cars[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCars) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := f.cars[id]
	return ok, nil
}

func (f *fakeCars) Create(_ context.Context, car *models.Car) error {
	car.ID = f.nextID
	f.nextID++
	cp := *car
	f.cars[car.ID] = &cp
	return nil
}

func (f *fakeCars) Update(_ context.Context, car *models.Car, updates map[string]interface{}) error {
	stored := f.cars[car.ID]
	for k, v := range updates {
		switch k {
		case "make":
			stored.Make = v.(string)
		case "model":
			stored.Model = v.(string)
		case "mileage":
			stored.Mileage = v.(int)
		case "price":
			stored.Price = v.(float64)
		case "is_featured":
			stored.IsFeatured = v.(bool)
		case "is_available":
			stored.IsAvailable = v.(bool)
		case "images":
			stored.Images = v.(models.StringSlice)
		}
	}
	*car = *stored
	return nil
}

func (f *fakeCars) Delete(_ context.Context, id uint) error {
	if _, ok := f.cars[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.cars, id)
	return nil
}

type fakeBlog struct {
	posts      map[uint]*models.BlogPost
	nextID     uint
	lastFilter repositories.BlogFilter
	probes     []string
}

func newFakeBlog(posts ...*models.BlogPost) *fakeBlog {
	f := &fakeBlog{posts: map[uint]*models.BlogPost{}, nextID: 1}
	for _, p := range posts {
		f.posts[p.ID] = p
		if p.ID >= f.nextID {
			f.nextID = p.ID + 1
		}
	}
	return f
}

func (f *fakeBlog) List(_ context.Context, filter repositories.BlogFilter, _ models.PageRequest) ([]models.BlogPost, int64, error) {
	f.lastFilter = filter
	var out []models.BlogPost
	for _, p := range f.posts {
		if filter.Published != nil && p.Published != *filter.Published {
			continue
		}
		cp := *p
		cp.Content = ""
		out = append(out, cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeBlog) FindByID(_ context.Context, id uint) (*models.BlogPost, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeBlog) FindBySlug(_ context.Context, slug string) (*models.BlogPost, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBlog) SlugTaken(_ context.Context, slug string, excludeID uint) (bool, error) {
	f.probes = append(f.probes, slug)
	for _, p := range f.posts {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBlog) Create(_ context.Context, post *models.BlogPost) error {
	post.ID = f.nextID
	f.nextID++
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakeBlog) Update(_ context.Context, post *models.BlogPost, updates map[string]interface{}) error {
	stored := f.posts[post.ID]
	for k, v := range updates {
		switch k {
		case "title":
			stored.Title = v.(string)
		case "slug":
			stored.Slug = v.(string)
		case "content":
			stored.Content = v.(string)
		case "excerpt":
			stored.Excerpt = v.(string)
		case "author":
			stored.Author = v.(string)
		case "featured_image":
			s := v.(string)
			stored.FeaturedImage = &s
		}
	}
	*post = *stored
	return nil
}

func (f *fakeBlog) SetPublished(_ context.Context, post *models.BlogPost, published bool, at time.Time) error {
	stored := f.posts[post.ID]
	stored.Published = published
	stored.PublishedAt = nil
	if published {
		stored.PublishedAt = &at
	}
	*post = *stored
	return nil
}

func (f *fakeBlog) Delete(_ context.Context, id uint) error {
	if _, ok := f.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.posts, id)
	return nil
}

type fakeTestimonials struct {
	items      map[uint]*models.Testimonial
	nextID     uint
	lastFilter  repositories.TestimonialFilter
	lastPage    models.PageRequest
	lastUpdates map[string]interface{}
}

func newFakeTestimonials(items ...*models.Testimonial) *fakeTestimonials {
	f := &fakeTestimonials{items: map[uint]*models.Testimonial{}, nextID: 1}
	for _, t := range items {
		f.items[t.ID] = t
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
	}
	return f
}

func (f *fakeTestimonials) List(_ context.Context, filter repositories.TestimonialFilter, page models.PageRequest) ([]models.Testimonial, int64, error) {
	f.lastFilter, f.lastPage = filter, page
	var out []models.Testimonial
	for _, t := range f.items {
		if filter.Approved != nil && t.IsApproved != *filter.Approved {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (f *fakeTestimonials) FindByID(_ context.Context, id uint) (*models.Testimonial, error) {
	t, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTestimonials) Create(_ context.Context, t *models.Testimonial) error {
	t.ID = f.nextID
	f.nextID++
	cp := *t
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTestimonials) Update(_ context.Context, t *models.Testimonial, updates map[string]interface{}) error {
	f.lastUpdates = updates
	stored := f.items[t.ID]
	for k, v := range updates {
		switch k {
		case "name":
			stored.Name = v.(string)
		case "email":
			email := v.(string)
			stored.Email = &email
		case "content":
			stored.Content = v.(string)
		case "rating":
			stored.Rating = v.(int)
		case "is_approved":
			stored.IsApproved = v.(bool)
		}
	}
	*t = *stored
	return nil
}

func (f *fakeTestimonials) Delete(_ context.Context, id uint) error {
	if _, ok := f.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeContacts struct {
	inquiries map[uint]*models.ContactInquiry
	subs      map[string]*models.NewsletterSubscription
	nextID    uint
	lastPage  models.PageRequest
	lastInq   repositories.InquiryFilter
	lastSub   repositories.SubscriptionFilter
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{
		inquiries: map[uint]*models.ContactInquiry{},
		subs:      map[string]*models.NewsletterSubscription{},
		nextID:    1,
	}
}

func (f *fakeContacts) ListInquiries(_ context.Context, filter repositories.InquiryFilter, page models.PageRequest) ([]models.ContactInquiry, int64, error) {
	f.lastInq, f.lastPage = filter, page
	var out []models.ContactInquiry
	for _, i := range f.inquiries {
		if filter.UnreadOnly && i.IsRead {
			continue
		}
		out = append(out, *i)
	}
	return out, int64(len(out)), nil
}

func (f *fakeContacts) InquiriesForCar(_ context.Context, carID uint) ([]models.ContactInquiry, error) {
	var out []models.ContactInquiry
	for _, i := range f.inquiries {
		if i.CarID != nil && *i.CarID == carID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (f *fakeContacts) FindInquiry(_ context.Context, id uint) (*models.ContactInquiry, error) {
	i, ok := f.inquiries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeContacts) CreateInquiry(_ context.Context, inquiry *models.ContactInquiry) error {
	inquiry.ID = f.nextID
	f.nextID++
	cp := *inquiry
	f.inquiries[inquiry.ID] = &cp
	return nil
}

func (f *fakeContacts) MarkInquiryRead(_ context.Context, inquiry *models.ContactInquiry) error {
	f.inquiries[inquiry.ID].IsRead = true
	inquiry.IsRead = true
	return nil
}

func (f *fakeContacts) DeleteInquiry(_ context.Context, id uint) error {
	if _, ok := f.inquiries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.inquiries, id)
	return nil
}

func (f *fakeContacts) FindSubscription(_ context.Context, email string) (*models.NewsletterSubscription, error) {
	s, ok := f.subs[email]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeContacts) CreateSubscription(_ context.Context, sub *models.NewsletterSubscription) error {
	if _, ok := f.subs[sub.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	sub.ID = f.nextID
	f.nextID++
	cp := *sub
	f.subs[sub.Email] = &cp
	return nil
}

func (f *fakeContacts) SetSubscriptionActive(_ context.Context, sub *models.NewsletterSubscription, active bool) error {
	f.subs[sub.Email].IsActive = active
	sub.IsActive = active
	return nil
}

func (f *fakeContacts) ListSubscriptions(_ context.Context, filter repositories.SubscriptionFilter, page models.PageRequest) ([]models.NewsletterSubscription, int64, error) {
	f.lastSub, f.lastPage = filter, page
	var out []models.NewsletterSubscription
	for _, s := range f.subs {
		if filter.Active != nil && s.IsActive != *filter.Active {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	inquiries []models.ContactInquiry
	welcomes  map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{welcomes: map[string]bool{}}
}

func (f *fakeNotifier) NotifyInquiry(inquiry models.ContactInquiry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inquiries = append(f.inquiries, inquiry)
}

func (f *fakeNotifier) SendNewsletterWelcome(email string, reactivated bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes[email] = reactivated
}

type fakeImages struct {
	saved   []string
	removed []string
}

func (f *fakeImages) Save(_ context.Context, folder string, file *multipart.FileHeader) (string, error) {
	url := fmt.Sprintf("/uploads/%s/%d-%s", folder, len(f.saved), file.Filename)
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeImages) Remove(_ context.Context, url string) error {
	f.removed = append(f.removed, url)
	return nil
}
