package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/account_service/internal/models"
)

// CreateUser persists a new user together with the default role. The
// role is created on first reference; a duplicate username returns
// ErrUserAlreadyExist and leaves the existing row untouched.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where(models.Role{Authority: models.DefaultAuthority}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
		u.Roles = []models.Role{role}

		res := tx.Where("username = ?", u.Username).FirstOrCreate(u)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserAlreadyExist
		}
		return nil
	})
}

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Roles").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SaveRefreshToken overwrites the user's single refresh-token slot,
// implicitly invalidating whatever token was stored before.
func (r *GormRepo) SaveRefreshToken(ctx context.Context, username, token string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Update("refresh_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
