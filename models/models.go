package models

import "time"

// OrderStatus values match the lifecycle states an order moves through.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is one of the known order states.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// User is a seller account. Sellers own clients and the orders placed for
// them.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Surname      string    `gorm:"not null" json:"surname"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Stock     int       `gorm:"not null" json:"stock"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is a customer record owned by exactly one seller. Only the owning
// seller may read, update or delete it.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Surname   string    `gorm:"not null" json:"surname"`
	Company   string    `json:"company"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string    `json:"phone"`
	SellerID  uint      `gorm:"index;not null" json:"seller_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderItem snapshots a product at order time. Name and Price are copied
// from the product so later product edits do not rewrite order history.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	OrderID   uint    `gorm:"index;not null" json:"-"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total     float64     `json:"total"`
	ClientID  uint        `gorm:"index;not null" json:"client_id"`
	SellerID  uint        `gorm:"index;not null" json:"seller_id"`
	Status    OrderStatus `gorm:"default:Pending" json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
