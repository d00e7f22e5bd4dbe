package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"safetravels-api/errs"
	"safetravels-api/models"
)

// TokenParser verifies an access token and returns its user id.
type TokenParser interface {
	Parse(token string) (uint, error)
}

// UserFinder loads the user a token refers to.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)
	return p, ok
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func resolve(ctx context.Context, tokens TokenParser, users UserFinder, token string) (models.Principal, error) {
	userID, err := tokens.Parse(token)
	if err != nil {
		return models.Principal{}, errs.NewForbidden("Invalid or expired token")
	}

	user, err := users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Principal{}, errs.NewUnauthorized("User not found")
		}
		return models.Principal{}, err
	}

	return user.Principal(), nil
}

// Authenticate requires a valid bearer token for an existing user.
func Authenticate(tokens TokenParser, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			Fail(c, errs.NewUnauthorized("Access token required"))
			return
		}

		p, err := resolve(c.Request.Context(), tokens, users, token)
		if err != nil {
			Fail(c, err)
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// OptionalAuthenticate attaches the principal when the token checks out and
// otherwise carries on anonymously.
func OptionalAuthenticate(tokens TokenParser, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if p, err := resolve(c.Request.Context(), tokens, users, token); err == nil {
				c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
			}
		}
		c.Next()
	}
}

// RequireRole lets through principals with the given role only.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c.Request.Context())
		if !ok {
			Fail(c, errs.NewUnauthorized("Authentication required"))
			return
		}
		if p.Role != role {
			Fail(c, errs.NewForbidden("Admin access required"))
			return
		}
		c.Next()
	}
}
