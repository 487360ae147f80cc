package types

import "github.com/google/uuid"

// Dimensions are the physical measurements used by the shipping heuristic
// when a product carries no tier.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OrderItem is the immutable snapshot of a purchased product. Orders keep
// these snapshots, not live product references.
type OrderItem struct {
	ProductID  *uuid.UUID `json:"product_id,omitempty"`
	Title      string     `json:"title"`
	Price      float64    `json:"price"`
	Quantity   int        `json:"quantity"`
	Image      string     `json:"image,omitempty"`
	Weight     float64    `json:"weight,omitempty"`
	Dimensions Dimensions `json:"dimensions,omitempty"`
}

// LineTotal is the snapshot price times the ordered quantity.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CartItem is the mutable in-cart counterpart of an OrderItem.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Image     string    `json:"image,omitempty"`
}

// WishlistEntry records a liked product with its display snapshot.
type WishlistEntry struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Image     string    `json:"image,omitempty"`
}

// Subcategory is embedded inside a category document.
type Subcategory struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// InvoiceLine is a row on a manually issued invoice.
type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}
