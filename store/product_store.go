package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kahenya/sales-crm/apperr"
	"github.com/kahenya/sales-crm/models"
)

// searchLimit caps full-text product search results.
const searchLimit = 20

type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Search matches product names against the query text.
func (s *ProductStore) Search(ctx context.Context, text string) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("name LIKE ?", "%"+text+"%").
		Limit(searchLimit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

// Update replaces name, stock and price of an existing product.
func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Model(product).
		Select("Name", "Stock", "Price").Updates(product).Error
}

func (s *ProductStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Product{}, id).Error
}
