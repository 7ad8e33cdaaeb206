// Package store is the record layer: thin per-entity access over gorm with
// no authorization logic, which lives in the service layer.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kahenya/sales-crm/apperr"
	"github.com/kahenya/sales-crm/models"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts the user, failing with Conflict when the email is taken.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("user")
	}
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
