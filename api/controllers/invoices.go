package controllers

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/boutique2v/commerce-backend/api/responses"
	"github.com/boutique2v/commerce-backend/api/validators"
	invoicesvc "github.com/boutique2v/commerce-backend/internal/invoices"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/pagination"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// AdminCreateInvoice issues a manual invoice outside the order flow.
func AdminCreateInvoice(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		adminID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Create(r.Context(), adminID, invoicesvc.CreateInput{
			Customer: payload.Customer,
			Items:    payload.Items,
			DueDate:  payload.DueDate,
			Notes:    payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newInvoiceResponse(invoice))
	}
}

// AdminUpdateInvoice patches a manual invoice.
func AdminUpdateInvoice(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "invoiceID"), "invoice_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInvoiceResponse(invoice))
	}
}

// AdminDeleteInvoice removes a manual invoice.
func AdminDeleteInvoice(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "invoiceID"), "invoice_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminInvoiceDetail returns one manual invoice.
func AdminInvoiceDetail(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "invoiceID"), "invoice_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInvoiceResponse(invoice))
	}
}

// AdminInvoiceList pages through manual invoices.
func AdminInvoiceList(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), invoicesvc.ListFilter{
			Status:     validators.SanitizeString(r.URL.Query().Get("status"), 40),
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoiceListResponse{
			Invoices: lo.Map(result.Invoices, func(inv models.ManualInvoice, _ int) invoiceResponse {
				return newInvoiceResponse(&inv)
			}),
			Meta: result.Meta,
		})
	}
}

// AdminRenderInvoice re-renders a manual invoice PDF.
func AdminRenderInvoice(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "invoiceID"), "invoice_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Render(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInvoiceResponse(invoice))
	}
}

// AdminInvoiceDownload streams the rendered manual invoice PDF.
func AdminInvoiceDownload(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "invoiceID"), "invoice_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		absPath, err := svc.InvoiceFile(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(absPath)+`"`)
		http.ServeFile(w, r, absPath)
	}
}

type createInvoiceRequest struct {
	Customer types.InvoiceCustomer `json:"customer" validate:"required"`
	Items    []types.InvoiceLine   `json:"items" validate:"required,min=1,dive"`
	DueDate  *time.Time            `json:"due_date,omitempty"`
	Notes    *string               `json:"notes,omitempty"`
}

type updateInvoiceRequest struct {
	Customer *types.InvoiceCustomer `json:"customer,omitempty"`
	Items    *[]types.InvoiceLine   `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	Status   *string                `json:"status,omitempty"`
	DueDate  *time.Time             `json:"due_date,omitempty"`
	Notes    *string                `json:"notes,omitempty"`
}

func (r updateInvoiceRequest) toInput() (invoicesvc.UpdateInput, error) {
	input := invoicesvc.UpdateInput{
		Customer: r.Customer,
		Items:    r.Items,
		DueDate:  r.DueDate,
		Notes:    r.Notes,
	}
	if r.Status != nil {
		status, err := enums.ParseInvoiceStatus(*r.Status)
		if err != nil {
			return invoicesvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invoice status")
		}
		input.Status = &status
	}
	return input, nil
}

type invoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	Customer      types.InvoiceCustomer `json:"customer"`
	Items         []types.InvoiceLine   `json:"items"`
	Total         float64               `json:"total"`
	Status        string                `json:"status"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	Notes         *string               `json:"notes,omitempty"`
	InvoiceURL    *string               `json:"invoice_url,omitempty"`
	CreatedBy     uuid.UUID             `json:"created_by"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func newInvoiceResponse(inv *models.ManualInvoice) invoiceResponse {
	items := inv.Items
	if items == nil {
		items = []types.InvoiceLine{}
	}
	return invoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Customer:      inv.Customer,
		Items:         items,
		Total:         inv.Total,
		Status:        string(inv.Status),
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
		Notes:         inv.Notes,
		InvoiceURL:    inv.InvoiceURL,
		CreatedBy:     inv.CreatedBy,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

type invoiceListResponse struct {
	Invoices []invoiceResponse `json:"invoices"`
	Meta     pagination.Meta   `json:"meta"`
}
