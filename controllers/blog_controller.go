package controllers

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"safetravels-api/errs"
	"safetravels-api/middleware"
	"safetravels-api/models"
	"safetravels-api/repositories"
	"safetravels-api/storage"
	"safetravels-api/utils"
)

const (
	defaultBlogLimit = 10
	excerptLength    = 200
)

type BlogController struct {
	posts   BlogStore
	uploads *uploader
	log     zerolog.Logger
	now     func() time.Time
}

func NewBlogController(posts BlogStore, images storage.ImageStore, maxFileSize int64, log zerolog.Logger) *BlogController {
	return &BlogController{
		posts:   posts,
		uploads: &uploader{store: images, maxSize: maxFileSize, log: log},
		log:     log,
		now:     time.Now,
	}
}

type CreateBlogPostRequest struct {
	Title   string  `json:"title" form:"title" validate:"required,min=5,max=200"`
	Content string  `json:"content" form:"content" validate:"required,min=100"`
	Excerpt *string `json:"excerpt" form:"excerpt" validate:"omitempty,max=500"`
	Author  string  `json:"author" form:"author" validate:"required,min=2,max=100"`
}

func (r *CreateBlogPostRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	r.Excerpt = trimPtr(r.Excerpt)
	r.Author = strings.TrimSpace(r.Author)
}

type UpdateBlogPostRequest struct {
	Title   *string `json:"title" form:"title" validate:"omitempty,min=5,max=200"`
	Content *string `json:"content" form:"content" validate:"omitempty,min=100"`
	Excerpt *string `json:"excerpt" form:"excerpt" validate:"omitempty,max=500"`
	Author  *string `json:"author" form:"author" validate:"omitempty,min=2,max=100"`
}

func (r *UpdateBlogPostRequest) normalize() {
	r.Title = trimPtr(r.Title)
	r.Content = trimPtr(r.Content)
	r.Excerpt = trimPtr(r.Excerpt)
	r.Author = trimPtr(r.Author)
}

// defaultExcerpt is the first 200 characters of content followed by "...".
func defaultExcerpt(content string) string {
	if utf8.RuneCountInString(content) <= excerptLength {
		return content + "..."
	}
	return string([]rune(content)[:excerptLength]) + "..."
}

func (bc *BlogController) uniqueSlug(ctx context.Context, title string, excludeID uint) (string, error) {
	return utils.UniqueSlug(utils.Slugify(title), func(candidate string) (bool, error) {
		return bc.posts.SlugTaken(ctx, candidate, excludeID)
	})
}

// featuredImage stores the optional featuredImage part.
func (bc *BlogController) featuredImage(c *gin.Context) (*string, error) {
	files := formFiles(c, "featuredImage")
	if err := bc.uploads.check("featuredImage", files, 1); err != nil {
		return nil, err
	}

	urls, err := bc.uploads.saveAll(c.Request.Context(), storage.FolderBlog, files)
	if err != nil || len(urls) == 0 {
		return nil, err
	}
	return &urls[0], nil
}

// GetBlogPosts lists published posts. Administrators may pass
// published=false to list drafts as well.
func (bc *BlogController) GetBlogPosts(c *gin.Context) {
	q := newQuery(c)
	page := q.Page(defaultBlogLimit)
	published := q.Bool("published")
	if err := q.Err(); err != nil {
		middleware.Fail(c, err)
		return
	}

	filter := repositories.BlogFilter{}
	p, ok := middleware.PrincipalFrom(c.Request.Context())
	if published != nil && !*published && ok && p.IsAdmin() {
		filter.Published = nil
	} else {
		onlyPublished := true
		filter.Published = &onlyPublished
	}

	posts, total, err := bc.posts.List(c.Request.Context(), filter, page)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendPaginated(c, "posts", posts, models.NewPagination(page, total))
}

func (bc *BlogController) GetBlogPostBySlug(c *gin.Context) {
	post, err := bc.posts.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Blog post not found"))
		return
	}

	if !post.Published {
		if p, ok := middleware.PrincipalFrom(c.Request.Context()); !ok || !p.IsAdmin() {
			middleware.Fail(c, errs.NewNotFound("Blog post not found"))
			return
		}
	}

	utils.SendSuccess(c, "", gin.H{"post": post})
}

// CreateBlogPost stores a new draft under a unique slug derived from its
// title.
func (bc *BlogController) CreateBlogPost(c *gin.Context) {
	var req CreateBlogPostRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	slug, err := bc.uniqueSlug(ctx, req.Title, 0)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	image, err := bc.featuredImage(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	excerpt := defaultExcerpt(req.Content)
	if req.Excerpt != nil && *req.Excerpt != "" {
		excerpt = *req.Excerpt
	}

	post := &models.BlogPost{
		Title:         req.Title,
		Slug:          slug,
		Content:       req.Content,
		Excerpt:       excerpt,
		FeaturedImage: image,
		Author:        req.Author,
		Published:     false,
	}
	if err := bc.posts.Create(ctx, post); err != nil {
		if image != nil {
			bc.uploads.removeAll(ctx, []string{*image})
		}
		middleware.Fail(c, err)
		return
	}

	bc.log.Info().Uint("post_id", post.ID).Str("slug", post.Slug).Msg("blog post created")
	utils.SendCreated(c, "Blog post created successfully", gin.H{"post": post})
}

// UpdateBlogPost re-derives the slug when the title changes. A new
// featured image replaces the old one.
func (bc *BlogController) UpdateBlogPost(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	var req UpdateBlogPostRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	post, err := bc.posts.FindByID(ctx, id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Blog post not found"))
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil && *req.Title != post.Title {
		slug, err := bc.uniqueSlug(ctx, *req.Title, post.ID)
		if err != nil {
			middleware.Fail(c, err)
			return
		}
		updates["title"] = *req.Title
		updates["slug"] = slug
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Excerpt != nil {
		updates["excerpt"] = *req.Excerpt
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}

	image, err := bc.featuredImage(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	previous := post.FeaturedImage
	if image != nil {
		updates["featured_image"] = *image
	}

	if err := bc.posts.Update(ctx, post, updates); err != nil {
		if image != nil {
			bc.uploads.removeAll(ctx, []string{*image})
		}
		middleware.Fail(c, err)
		return
	}

	if image != nil && previous != nil {
		bc.uploads.removeAll(ctx, []string{*previous})
	}

	utils.SendSuccess(c, "Blog post updated successfully", gin.H{"post": post})
}

func (bc *BlogController) DeleteBlogPost(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	post, err := bc.posts.FindByID(ctx, id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Blog post not found"))
		return
	}

	if err := bc.posts.Delete(ctx, id); err != nil {
		middleware.Fail(c, notFoundAs(err, "Blog post not found"))
		return
	}

	if post.FeaturedImage != nil {
		bc.uploads.removeAll(ctx, []string{*post.FeaturedImage})
	}

	utils.SendSuccess(c, "Blog post deleted successfully", nil)
}

func (bc *BlogController) PublishBlogPost(c *gin.Context) {
	bc.setPublished(c, true, "Blog post published successfully")
}

func (bc *BlogController) UnpublishBlogPost(c *gin.Context) {
	bc.setPublished(c, false, "Blog post unpublished successfully")
}

func (bc *BlogController) setPublished(c *gin.Context, published bool, message string) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	post, err := bc.posts.FindByID(ctx, id)
	if err != nil {
		middleware.Fail(c, notFoundAs(err, "Blog post not found"))
		return
	}

	if err := bc.posts.SetPublished(ctx, post, published, bc.now()); err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendSuccess(c, message, gin.H{"post": post})
}
