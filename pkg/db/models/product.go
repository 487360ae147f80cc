package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/enums"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// Product is the canonical listing. Orders never reference products live;
// they snapshot the fields they need at creation time.
type Product struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string              `gorm:"column:name;not null"`
	Description       *string             `gorm:"column:description"`
	ShortDescription  *string             `gorm:"column:short_description"`
	Price             float64             `gorm:"column:price;not null"`
	CompareAtPrice    *float64            `gorm:"column:compare_at_price"`
	SKU               *string             `gorm:"column:sku"`
	Barcode           *string             `gorm:"column:barcode"`
	Images            []string            `gorm:"column:images;type:jsonb;serializer:json"`
	Stock             int                 `gorm:"column:stock;not null;default:0"`
	LowStockThreshold int                 `gorm:"column:low_stock_threshold;not null;default:5"`
	TrackQuantity     bool                `gorm:"column:track_quantity;not null;default:true"`
	AllowBackorder    bool                `gorm:"column:allow_backorder;not null;default:false"`
	Status            string              `gorm:"column:status;not null;default:active"`
	IsFeatured        bool                `gorm:"column:is_featured;not null;default:false"`
	Category          *string             `gorm:"column:category"`
	Subcategory       *string             `gorm:"column:subcategory"`
	Tags              []string            `gorm:"column:tags;type:jsonb;serializer:json"`
	Weight            float64             `gorm:"column:weight;not null;default:0"`
	Dimensions        types.Dimensions    `gorm:"column:dimensions;type:jsonb;serializer:json"`
	ShippingTier      *enums.ShippingTier `gorm:"column:shipping_tier"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
