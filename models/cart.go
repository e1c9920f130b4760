package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Cart struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"uniqueIndex;not null" json:"user_id"` // one cart per user
	CartTotal float64    `json:"cart_total"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ItemCount sums the quantities of all lines in the cart.
func (c *Cart) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Count
	}
	return total
}

type CartItem struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CartID    string    `gorm:"index:idx_cart_product,unique" json:"cart_id"`
	ProductID string    `gorm:"index:idx_cart_product,unique" json:"product_id"` // one line per product
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Count     int       `gorm:"not null" json:"count"`
	Price     float64   `gorm:"not null" json:"price"` // line total: count x unit price at write time
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
