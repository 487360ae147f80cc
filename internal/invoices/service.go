package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/db"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/pagination"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// numberRetries bounds how often Create retries a colliding invoice number.
const numberRetries = 3

// Store is the persistence surface the invoice service needs.
type Store interface {
	Create(ctx context.Context, invoice *models.ManualInvoice) (*models.ManualInvoice, error)
	Save(ctx context.Context, invoice *models.ManualInvoice) (*models.ManualInvoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ManualInvoice, error)
	List(ctx context.Context, filter ListFilter) ([]models.ManualInvoice, int64, error)
	NextInvoiceNumber(ctx context.Context, year int) (string, error)
}

// PDFRenderer is the rendering surface for manual invoices.
type PDFRenderer interface {
	RenderManualInvoice(ctx context.Context, invoice *models.ManualInvoice) (string, error)
	ManualInvoiceAbsPath(invoiceID uuid.UUID) (string, error)
}

// CreateInput is the admin payload for issuing a manual invoice.
type CreateInput struct {
	Customer types.InvoiceCustomer
	Items    []types.InvoiceLine
	DueDate  *time.Time
	Notes    *string
}

// UpdateInput carries the mutable invoice fields; nil means keep.
type UpdateInput struct {
	Customer *types.InvoiceCustomer
	Items    *[]types.InvoiceLine
	Status   *enums.InvoiceStatus
	DueDate  *time.Time
	Notes    *string
}

// ListFilter narrows the invoice listing.
type ListFilter struct {
	Status     string
	Pagination pagination.Params
}

// ListResult is a page of invoices with its metadata.
type ListResult struct {
	Invoices []models.ManualInvoice `json:"invoices"`
	Meta     pagination.Meta        `json:"meta"`
}

// Service exposes the manual invoice operations.
type Service interface {
	Create(ctx context.Context, createdBy uuid.UUID, input CreateInput) (*models.ManualInvoice, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.ManualInvoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.ManualInvoice, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Render(ctx context.Context, id uuid.UUID) (*models.ManualInvoice, error)
	InvoiceFile(ctx context.Context, id uuid.UUID) (string, error)
}

// ServiceParams wires the invoice service dependencies.
type ServiceParams struct {
	Store    Store
	Renderer PDFRenderer
	Logger   *logger.Logger
}

type service struct {
	store    Store
	renderer PDFRenderer
	logg     *logger.Logger
}

// NewService constructs the manual invoice service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("invoice store required")
	}
	if params.Renderer == nil {
		return nil, fmt.Errorf("invoice renderer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:    params.Store,
		renderer: params.Renderer,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, createdBy uuid.UUID, input CreateInput) (*models.ManualInvoice, error) {
	if createdBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id is required")
	}
	if input.Customer.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	invoice := &models.ManualInvoice{
		Customer:  input.Customer,
		Items:     input.Items,
		Total:     itemsTotal(input.Items),
		Status:    enums.InvoiceStatusDraft,
		DueDate:   input.DueDate,
		Notes:     input.Notes,
		CreatedBy: createdBy,
	}

	year := time.Now().Year()
	var created *models.ManualInvoice
	for attempt := 0; attempt < numberRetries; attempt++ {
		number, err := s.store.NextInvoiceNumber(ctx, year)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocating invoice number")
		}
		invoice.InvoiceNumber = number
		invoice.ID = uuid.Nil

		created, err = s.store.Create(ctx, invoice)
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err, "") {
			continue
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating invoice")
	}
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique invoice number")
	}

	// same best-effort pattern as order checkout: the invoice row survives a
	// failed render and can be re-rendered later
	if url, err := s.renderer.RenderManualInvoice(ctx, created); err != nil {
		s.logg.Error(ctx, "manual invoice render failed", err)
	} else {
		created.InvoiceURL = &url
		var saveErr error
		if created, saveErr = s.store.Save(ctx, created); saveErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, saveErr, "saving invoice url")
		}
	}

	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.ManualInvoice, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid invoice status %q", *input.Status))
	}
	if input.Items != nil {
		if err := validateItems(*input.Items); err != nil {
			return nil, err
		}
		invoice.Items = *input.Items
		invoice.Total = itemsTotal(*input.Items)
	}
	if input.Customer != nil {
		invoice.Customer = *input.Customer
	}
	if input.Status != nil && *input.Status != invoice.Status {
		invoice.Status = *input.Status
		if *input.Status == enums.InvoiceStatusPaid {
			now := time.Now().UTC()
			invoice.PaidAt = &now
		}
	}
	if input.DueDate != nil {
		invoice.DueDate = input.DueDate
	}
	if input.Notes != nil {
		invoice.Notes = input.Notes
	}

	saved, err := s.store.Save(ctx, invoice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving invoice")
	}
	return saved, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting invoice")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ManualInvoice, error) {
	return s.findInvoice(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	rows, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing invoices")
	}
	return &ListResult{
		Invoices: rows,
		Meta:     pagination.NewMeta(filter.Pagination, total),
	}, nil
}

func (s *service) Render(ctx context.Context, id uuid.UUID) (*models.ManualInvoice, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.renderer.RenderManualInvoice(ctx, invoice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rendering invoice")
	}

	invoice.InvoiceURL = &url
	saved, err := s.store.Save(ctx, invoice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving invoice url")
	}
	return saved, nil
}

func (s *service) InvoiceFile(ctx context.Context, id uuid.UUID) (string, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return "", err
	}
	if invoice.InvoiceURL == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "invoice has not been rendered yet")
	}
	path, err := s.renderer.ManualInvoiceAbsPath(invoice.ID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving invoice file")
	}
	return path, nil
}

func (s *service) findInvoice(ctx context.Context, id uuid.UUID) (*models.ManualInvoice, error) {
	invoice, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading invoice")
	}
	return invoice, nil
}

func validateItems(items []types.InvoiceLine) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice must contain at least one line")
	}
	for _, item := range items {
		if item.Description == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "line description is required")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if item.Price < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line price cannot be negative")
		}
	}
	return nil
}

func itemsTotal(items []types.InvoiceLine) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func invoiceNumberPrefix(year int) string {
	return fmt.Sprintf("INV-%d-", year)
}

func formatInvoiceNumber(year int, sequence int64) string {
	return fmt.Sprintf("%s%05d", invoiceNumberPrefix(year), sequence)
}
