package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/enums"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// Order is the immutable record of a checkout. Item snapshots and totals are
// frozen at creation; only status, payment status and the invoice URL move.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Items           []types.OrderItem    `gorm:"column:items;type:jsonb;serializer:json"`
	Subtotal        float64              `gorm:"column:subtotal;not null"`
	ShippingCost    float64              `gorm:"column:shipping_cost;not null"`
	TaxPercent      float64              `gorm:"column:tax_percent;not null"`
	TaxAmount       float64              `gorm:"column:tax_amount;not null"`
	Amount          float64              `gorm:"column:amount;not null"`
	ShippingMethod  enums.ShippingMethod `gorm:"column:shipping_method;not null"`
	ShippingInfo    types.ShippingInfo   `gorm:"column:shipping_info;type:jsonb;serializer:json"`
	PaymentMethod   string               `gorm:"column:payment_method;not null"`
	PaymentStatus   enums.PaymentStatus  `gorm:"column:payment_status;not null;default:pending"`
	PaymentIntentID *string              `gorm:"column:payment_intent_id"`
	Status          enums.OrderStatus    `gorm:"column:status;not null;default:pending"`
	// User is the owning customer, loaded for invoice rendering. Excluded
	// from JSON so the credential columns never ride along with an order.
	User *User `gorm:"foreignKey:UserID;references:ID" json:"-"`
	InvoiceURL      *string              `gorm:"column:invoice_url"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
