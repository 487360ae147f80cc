package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	"github.com/boutique2v/commerce-backend/pkg/pagination"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	Name              string
	Description       *string
	ShortDescription  *string
	Price             float64
	CompareAtPrice    *float64
	SKU               *string
	Barcode           *string
	Images            []string
	Stock             int
	LowStockThreshold *int
	TrackQuantity     *bool
	AllowBackorder    *bool
	Status            *string
	IsFeatured        *bool
	Category          *string
	Subcategory       *string
	Tags              []string
	Weight            float64
	Dimensions        types.Dimensions
	ShippingTier      *enums.ShippingTier
}

// UpdateInput holds optional mutation values for a product.
type UpdateInput struct {
	Name              *string
	Description       *string
	ShortDescription  *string
	Price             *float64
	CompareAtPrice    *float64
	SKU               *string
	Barcode           *string
	Images            *[]string
	Stock             *int
	LowStockThreshold *int
	TrackQuantity     *bool
	AllowBackorder    *bool
	Status            *string
	IsFeatured        *bool
	Category          *string
	Subcategory       *string
	Tags              *[]string
	Weight            *float64
	Dimensions        *types.Dimensions
	ShippingTier      *enums.ShippingTier
}

// MetaInput is the admin-only patch for listing visibility.
type MetaInput struct {
	Status     *string
	IsFeatured *bool
}

// ListFilter narrows and orders the product listing.
type ListFilter struct {
	Category    string
	Subcategory string
	Status      string
	Featured    *bool
	Search      string
	MinPrice    *float64
	MaxPrice    *float64
	Sort        string
	Pagination  pagination.Params
}

// ListResult is a page of products with its metadata.
type ListResult struct {
	Products []ProductDTO    `json:"products"`
	Meta     pagination.Meta `json:"meta"`
}

// ProductDTO is the public product shape.
type ProductDTO struct {
	ID                uuid.UUID           `json:"id"`
	Name              string              `json:"name"`
	Description       *string             `json:"description,omitempty"`
	ShortDescription  *string             `json:"short_description,omitempty"`
	Price             float64             `json:"price"`
	CompareAtPrice    *float64            `json:"compare_at_price,omitempty"`
	SKU               *string             `json:"sku,omitempty"`
	Barcode           *string             `json:"barcode,omitempty"`
	Images            []string            `json:"images"`
	Stock             int                 `json:"stock"`
	LowStockThreshold int                 `json:"low_stock_threshold"`
	TrackQuantity     bool                `json:"track_quantity"`
	AllowBackorder    bool                `json:"allow_backorder"`
	Status            string              `json:"status"`
	IsFeatured        bool                `json:"is_featured"`
	Category          *string             `json:"category,omitempty"`
	Subcategory       *string             `json:"subcategory,omitempty"`
	Tags              []string            `json:"tags"`
	Weight            float64             `json:"weight"`
	Dimensions        types.Dimensions    `json:"dimensions"`
	ShippingTier      *enums.ShippingTier `json:"shipping_tier,omitempty"`
	LowStock          bool                `json:"low_stock"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func toDTO(p *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		ShortDescription:  p.ShortDescription,
		Price:             p.Price,
		CompareAtPrice:    p.CompareAtPrice,
		SKU:               p.SKU,
		Barcode:           p.Barcode,
		Images:            p.Images,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		TrackQuantity:     p.TrackQuantity,
		AllowBackorder:    p.AllowBackorder,
		Status:            p.Status,
		IsFeatured:        p.IsFeatured,
		Category:          p.Category,
		Subcategory:       p.Subcategory,
		Tags:              p.Tags,
		Weight:            p.Weight,
		Dimensions:        p.Dimensions,
		ShippingTier:      p.ShippingTier,
		LowStock:          p.TrackQuantity && p.Stock <= p.LowStockThreshold,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if dto.Images == nil {
		dto.Images = []string{}
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	return dto
}
