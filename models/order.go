package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"   // awaiting payment slip
	OrderStatusPaid      OrderStatus = "Paid"      // slip uploaded
	OrderStatusShipped   OrderStatus = "Shipped"   // handed to the carrier
	OrderStatusDelivered OrderStatus = "Delivered" // terminal
	OrderStatusCancelled OrderStatus = "Cancelled" // terminal, inventory restored
)

type Order struct {
	ID             string      `gorm:"primaryKey" json:"id"`
	OrderNumber    string      `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerID     string      `gorm:"index;not null" json:"customer_id"`
	Customer       *User       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Status         OrderStatus `gorm:"type:VARCHAR(20);default:'Pending'" json:"status"`
	TotalAmount    float64     `json:"total_amount"`
	ShippingFee    float64     `json:"shipping_fee"`
	Address        string      `gorm:"not null" json:"address"`
	Phone          string      `gorm:"not null" json:"phone"`
	Note           string      `json:"note"`
	PaymentImage   string      `json:"payment_image"`
	PaymentAt      *time.Time  `json:"payment_at"`
	TrackingNumber string      `json:"tracking_number"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem freezes a cart line at checkout time so later product edits do
// not alter historical orders.
type OrderItem struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	OrderID      string  `gorm:"index" json:"order_id"`
	ProductID    string  `json:"product_id"` // for display only, never for pricing
	ProductTitle string  `gorm:"not null" json:"product_title"`
	ProductImage string  `json:"product_image"`
	Price        float64 `json:"price"` // unit price at order time
	Quantity     int     `json:"quantity"`
	TotalPrice   float64 `json:"total_price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
