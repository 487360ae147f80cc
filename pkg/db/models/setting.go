package models

import (
	"time"

	"github.com/google/uuid"
)

// Setting is the single store-wide configuration row. The settings service
// lazily inserts it with defaults on first read and treats it as a singleton.
type Setting struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreName        string    `gorm:"column:store_name;not null"`
	StoreEmail       string    `gorm:"column:store_email"`
	StorePhone       string    `gorm:"column:store_phone"`
	StoreAddress     string    `gorm:"column:store_address"`
	StoreCity        string    `gorm:"column:store_city"`
	StoreCountry     string    `gorm:"column:store_country"`
	TaxNumber        string    `gorm:"column:tax_number"`
	GlobalTaxPercent float64   `gorm:"column:global_tax_percent;not null;default:0"`
	Currency         string    `gorm:"column:currency;not null;default:USD"`
	AboutText        string    `gorm:"column:about_text"`
	FooterText       string    `gorm:"column:footer_text"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
