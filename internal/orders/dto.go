package orders

import (
	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	"github.com/boutique2v/commerce-backend/pkg/pagination"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// Actor identifies who is asking, for owner-or-admin checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// ItemInput references a live product plus the wanted quantity. Everything
// else is snapshotted from the catalog at creation time.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// QuoteInput carries the fields the calculator needs, nothing else.
type QuoteInput struct {
	Items          []ItemInput
	ShippingMethod string
	PaymentMethod  string
}

// CreateInput is the full checkout payload.
type CreateInput struct {
	Items           []ItemInput
	ShippingMethod  string
	PaymentMethod   string
	ShippingInfo    types.ShippingInfo
	PaymentIntentID *string
}

// ListFilter narrows the admin order listing.
type ListFilter struct {
	UserID     *uuid.UUID
	Status     string
	Pagination pagination.Params
}

// ListResult is a page of orders with its metadata.
type ListResult struct {
	Orders []models.Order  `json:"orders"`
	Meta   pagination.Meta `json:"meta"`
}

// StockAdjustment reports the outcome of one product's stock movement during
// a status transition.
type StockAdjustment struct {
	ProductID uuid.UUID `json:"product_id"`
	Delta     int       `json:"delta"`
	Applied   bool      `json:"applied"`
	Error     string    `json:"error,omitempty"`
}

// StatusUpdateResult is the full outcome of a status transition: the updated
// order plus every stock movement it triggered.
type StatusUpdateResult struct {
	Order            *models.Order     `json:"order"`
	StockAdjustments []StockAdjustment `json:"stock_adjustments,omitempty"`
	NoOp             bool              `json:"no_op,omitempty"`
}
