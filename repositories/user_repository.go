package repositories

import (
	"context"

	"gorm.io/gorm"
	"safetravels-api/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLogin looks a user up by username or email.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameTaken reports whether a user other than excludeID has username.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	return r.taken(ctx, "username", username, excludeID)
}

// EmailTaken reports whether a user other than excludeID has email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.taken(ctx, "email", email, excludeID)
}

func (r *UserRepository) taken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where(eq(column, value))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) Update(ctx context.Context, user *models.User, updates map[string]interface{}) error {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).First(user, user.ID).Error
}
