package invoices

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
)

// ErrNotFound signals a missing manual invoice row.
var ErrNotFound = errors.New("invoice not found")

// Repository wires manual invoice persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new manual invoice.
func (r *Repository) Create(ctx context.Context, invoice *models.ManualInvoice) (*models.ManualInvoice, error) {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// Save writes the full invoice row back.
func (r *Repository) Save(ctx context.Context, invoice *models.ManualInvoice) (*models.ManualInvoice, error) {
	if err := r.db.WithContext(ctx).Save(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// Delete removes an invoice row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ManualInvoice{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID loads a single invoice.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ManualInvoice, error) {
	var invoice models.ManualInvoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// List returns invoices newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.ManualInvoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ManualInvoice{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc")
	if filter.Pagination.Enabled() {
		query = query.Offset(filter.Pagination.Offset()).Limit(filter.Pagination.Normalize().Limit)
	}

	var rows []models.ManualInvoice
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// NextInvoiceNumber produces a sequential human-facing invoice number for
// the given year, e.g. INV-2026-00042.
func (r *Repository) NextInvoiceNumber(ctx context.Context, year int) (string, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ManualInvoice{}).
		Where("invoice_number LIKE ?", invoiceNumberPrefix(year)+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return formatInvoiceNumber(year, count+1), nil
}
