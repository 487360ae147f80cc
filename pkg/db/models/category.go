package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/types"
)

// Category groups products. At most one category is the default; deleting the
// default protects it instead of cascading.
type Category struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string              `gorm:"column:name;not null;uniqueIndex"`
	Slug          string              `gorm:"column:slug;not null;uniqueIndex"`
	Description   *string             `gorm:"column:description"`
	ImageURL      *string             `gorm:"column:image_url"`
	IsDefault     bool                `gorm:"column:is_default;not null;default:false"`
	IsActive      bool                `gorm:"column:is_active;not null;default:true"`
	SortOrder     int                 `gorm:"column:sort_order;not null;default:0"`
	Subcategories []types.Subcategory `gorm:"column:subcategories;type:jsonb;serializer:json"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
