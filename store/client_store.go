package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kahenya/sales-crm/apperr"
	"github.com/kahenya/sales-crm/models"
)

type ClientStore struct {
	db *gorm.DB
}

func NewClientStore(db *gorm.DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) List(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	if err := s.db.WithContext(ctx).Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *ClientStore) ListBySeller(ctx context.Context, sellerID uint) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).Where("seller_id = ?", sellerID).Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *ClientStore) GetByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).First(&client, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("client")
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Create inserts the client, failing with Conflict when the email is taken.
func (s *ClientStore) Create(ctx context.Context, client *models.Client) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("email = ?", client.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("client")
	}
	return s.db.WithContext(ctx).Create(client).Error
}

// Update replaces the editable fields of an existing client.
func (s *ClientStore) Update(ctx context.Context, client *models.Client) error {
	return s.db.WithContext(ctx).Model(client).
		Select("Name", "Surname", "Company", "Email", "Phone").
		Updates(client).Error
}

func (s *ClientStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Client{}, id).Error
}
