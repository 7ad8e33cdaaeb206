package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kahenya/sales-crm/apperr"
	"github.com/kahenya/sales-crm/auth"
	"github.com/kahenya/sales-crm/models"
)

// LineItemInput is one requested (product, quantity) pair.
type LineItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// PlaceOrderInput creates a new order for a client of the acting seller.
type PlaceOrderInput struct {
	ClientID uint            `json:"client_id" binding:"required"`
	Items    []LineItemInput `json:"items" binding:"required,min=1,dive"`
}

// ReviseOrderInput replaces an order's fields. Nil Items keeps the existing
// line items and stock untouched; a non-nil slice re-runs the stock
// reservation for the new items.
type ReviseOrderInput struct {
	ClientID uint               `json:"client_id" binding:"required"`
	Items    []LineItemInput    `json:"items"`
	Status   models.OrderStatus `json:"status"`
}

// OrderService runs the order workflow. Each mutation executes inside one
// database transaction so a stock failure on any line item rolls back the
// decrements already applied for earlier items.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// Place validates the client and every line item, reserves stock, and
// persists the order as Pending with the caller as seller.
func (s *OrderService) Place(ctx context.Context, ident auth.Identity, input PlaceOrderInput) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := loadClient(tx, input.ClientID)
		if err != nil {
			return err
		}
		if err := AuthorizeClient(client, ident); err != nil {
			return err
		}

		items, total, err := reserveStock(tx, input.Items)
		if err != nil {
			return err
		}

		order = models.Order{
			Items:    items,
			Total:    total,
			ClientID: client.ID,
			SellerID: ident.ID,
			Status:   models.StatusPending,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Revise replaces an existing order. The ownership check runs against the
// client referenced by the input, and revised line items reserve stock anew
// without reconciling the order's previous reservation. Both behaviors are
// inherited from the production system; see DESIGN.md.
func (s *OrderService) Revise(ctx context.Context, ident auth.Identity, orderID uint, input ReviseOrderInput) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order")
			}
			return err
		}
		client, err := loadClient(tx, input.ClientID)
		if err != nil {
			return err
		}
		if err := AuthorizeClient(client, ident); err != nil {
			return err
		}

		if input.Items != nil {
			items, total, err := reserveStock(tx, input.Items)
			if err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			order.Items = items
			order.Total = total
		}
		order.ClientID = client.ID
		if input.Status != "" {
			order.Status = input.Status
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Cancel deletes the order after an ownership check. Reserved stock is not
// restored.
func (s *OrderService) Cancel(ctx context.Context, ident auth.Identity, orderID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order")
			}
			return err
		}
		if err := AuthorizeOrder(&order, ident); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}

func loadClient(tx *gorm.DB, id uint) (*models.Client, error) {
	var client models.Client
	if err := tx.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("client")
		}
		return nil, err
	}
	return &client, nil
}

// reserveStock walks the requested items in input order, decrementing each
// product's stock and snapshotting its name and price. The first product
// that cannot cover its requested quantity aborts the transaction.
func reserveStock(tx *gorm.DB, inputs []LineItemInput) ([]models.OrderItem, float64, error) {
	var items []models.OrderItem
	var total float64
	for _, in := range inputs {
		var product models.Product
		if err := tx.First(&product, in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, apperr.NotFound("product")
			}
			return nil, 0, err
		}
		if in.Quantity > product.Stock {
			return nil, 0, &apperr.InsufficientStockError{
				Product:   product.Name,
				Requested: in.Quantity,
				Available: product.Stock,
			}
		}
		product.Stock -= in.Quantity
		if err := tx.Save(&product).Error; err != nil {
			return nil, 0, err
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  in.Quantity,
			Name:      product.Name,
			Price:     product.Price,
		})
		total += product.Price * float64(in.Quantity)
	}
	return items, total, nil
}
