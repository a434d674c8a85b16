// Package domain contains order types and the checkout contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	storedomain "github.com/colmadolabs/colmado/internal/store/domain"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// PaymentMethod is how the customer pays. Only fiado touches the credit
// ledger.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentFiado      PaymentMethod = "fiado"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentFiado:
		return true
	default:
		return false
	}
}

// Order is a placed order. Total is recomputed server-side from catalog
// prices before the order is created.
type Order struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	StoreID       snowflake.ID  `gorm:"column:store_id;not null;index" json:"store_id"`
	CustomerID    snowflake.ID  `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Status        Status        `gorm:"type:text;not null;default:'pending'" json:"status"`
	PaymentMethod PaymentMethod `gorm:"column:payment_method;type:text;not null" json:"payment_method"`
	Total         int64         `gorm:"not null" json:"total"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderItem is one priced line of an order.
type OrderItem struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID        snowflake.ID `gorm:"column:order_id;not null;index" json:"order_id"`
	StoreProductID snowflake.ID `gorm:"column:store_product_id;not null" json:"store_product_id"`
	Quantity       int64        `gorm:"not null" json:"quantity"`
	UnitPrice      int64        `gorm:"column:unit_price;not null" json:"unit_price"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }

// ProcessOrderRequest is a checkout submission. CustomerID names the account
// the order is for; the coordinator rejects it when it differs from the
// authenticated caller.
type ProcessOrderRequest struct {
	CustomerID    snowflake.ID                `json:"customer_id"`
	StoreID       snowflake.ID                `json:"store_id"`
	PaymentMethod PaymentMethod               `json:"payment_method"`
	Items         []storedomain.ItemSelection `json:"items"`
}
