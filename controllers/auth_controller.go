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
	"safetravels-api/utils"
)

type AuthController struct {
	users  UserStore
	tokens TokenIssuer
	log    zerolog.Logger
}

func NewAuthController(users UserStore, tokens TokenIssuer, log zerolog.Logger) *AuthController {
	return &AuthController{
		users:  users,
		tokens: tokens,
		log:    log,
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,strongpassword"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50,username"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (r *RegisterRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = normalizeEmail(r.Email)
}

func (r *UpdateProfileRequest) normalize() {
	r.Username = trimPtr(r.Username)
	if r.Email != nil {
		v := normalizeEmail(*r.Email)
		r.Email = &v
	}
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	user, err := ac.users.FindByLogin(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = errs.NewUnauthorized("Invalid credentials")
		}
		middleware.Fail(c, err)
		return
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		middleware.Fail(c, errs.NewUnauthorized("Invalid credentials"))
		return
	}

	token, err := ac.tokens.Issue(user.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendSuccess(c, "Login successful", AuthResponse{User: user, Token: token})
}

// Register creates an administrator account.
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()

	usernameTaken, err := ac.users.UsernameTaken(ctx, req.Username, 0)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	emailTaken, err := ac.users.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if usernameTaken || emailTaken {
		middleware.Fail(c, errs.NewConflict("Username or email already exists"))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := ac.users.Create(ctx, user); err != nil {
		middleware.Fail(c, err)
		return
	}

	token, err := ac.tokens.Issue(user.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	ac.log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	utils.SendCreated(c, "User registered successfully", AuthResponse{User: user, Token: token})
}

func (ac *AuthController) currentUser(c *gin.Context) (*models.User, error) {
	p, ok := middleware.PrincipalFrom(c.Request.Context())
	if !ok {
		return nil, errs.NewUnauthorized("User not authenticated")
	}

	user, err := ac.users.FindByID(c.Request.Context(), p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	user, err := ac.currentUser(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendSuccess(c, "", gin.H{"user": user})
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	user, err := ac.currentUser(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	updates := map[string]interface{}{}

	if req.Username != nil && *req.Username != user.Username {
		taken, err := ac.users.UsernameTaken(ctx, *req.Username, user.ID)
		if err != nil {
			middleware.Fail(c, err)
			return
		}
		if taken {
			middleware.Fail(c, errs.NewConflict("Username already taken"))
			return
		}
		updates["username"] = *req.Username
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := ac.users.EmailTaken(ctx, *req.Email, user.ID)
		if err != nil {
			middleware.Fail(c, err)
			return
		}
		if taken {
			middleware.Fail(c, errs.NewConflict("Email already taken"))
			return
		}
		updates["email"] = *req.Email
	}

	if len(updates) == 0 {
		utils.SendSuccess(c, "No changes to update", gin.H{"user": user})
		return
	}

	if err := ac.users.Update(ctx, user, updates); err != nil {
		middleware.Fail(c, err)
		return
	}

	utils.SendSuccess(c, "Profile updated successfully", gin.H{"user": user})
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	user, err := ac.currentUser(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if !utils.CheckPassword(user.Password, req.CurrentPassword) {
		middleware.Fail(c, errs.NewUnauthorized("Current password is incorrect"))
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := ac.users.Update(c.Request.Context(), user, map[string]interface{}{"password": hash}); err != nil {
		middleware.Fail(c, err)
		return
	}

	ac.log.Info().Uint("user_id", user.ID).Msg("password changed")
	utils.SendSuccess(c, "Password changed successfully", nil)
}
