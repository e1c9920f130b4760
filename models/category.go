package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "Active"
	CategoryStatusInactive CategoryStatus = "Inactive"
)

type Category struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	Status    CategoryStatus `gorm:"type:VARCHAR(10);default:'Active'" json:"status"`
	Products  []Product      `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
