package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/types"
)

// Cart is the single mutable basket a user owns.
type Cart struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []types.CartItem `gorm:"column:items;type:jsonb;serializer:json"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
