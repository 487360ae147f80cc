package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/enums"
)

// User is a storefront account, customer or admin.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string     `gorm:"column:name;not null"`
	Email        string     `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         enums.Role `gorm:"column:role;not null;default:customer"`
	Phone        *string    `gorm:"column:phone"`
	Bio          *string    `gorm:"column:bio"`
	City         *string    `gorm:"column:city"`
	Address      *string    `gorm:"column:address"`
	AvatarURL    *string    `gorm:"column:avatar_url"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
