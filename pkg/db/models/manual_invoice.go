package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/enums"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// ManualInvoice is an admin-authored invoice that lives outside the order
// flow but renders through the same PDF pipeline.
type ManualInvoice struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber string                `gorm:"column:invoice_number;not null;uniqueIndex"`
	Customer      types.InvoiceCustomer `gorm:"column:customer;type:jsonb;serializer:json"`
	Items         []types.InvoiceLine   `gorm:"column:items;type:jsonb;serializer:json"`
	Total         float64               `gorm:"column:total;not null"`
	Status        enums.InvoiceStatus   `gorm:"column:status;not null;default:draft"`
	DueDate       *time.Time            `gorm:"column:due_date"`
	PaidAt        *time.Time            `gorm:"column:paid_at"`
	Notes         *string               `gorm:"column:notes"`
	InvoiceURL    *string               `gorm:"column:invoice_url"`
	CreatedBy     uuid.UUID             `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
