package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string
type UserStatus string

const (
	UserRoleAdmin UserRole = "Admin"
	UserRoleUser  UserRole = "User"

	UserStatusActive UserStatus = "Active"
	UserStatusBanned UserStatus = "Banned"
)

type User struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	Name      string     `json:"name"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Picture   string     `json:"picture"`
	PictureID string     `json:"-"` // asset-store file id, needed to delete the old picture
	Tel       string     `json:"tel"`
	Address   string     `json:"address"`
	Role      UserRole   `gorm:"type:VARCHAR(10);default:'User'" json:"role"`
	Status    UserStatus `gorm:"type:VARCHAR(10);default:'Active'" json:"status"`
	Cart      *Cart      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cart,omitempty"`
	Orders    []Order    `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
