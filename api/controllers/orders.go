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
	ordersvc "github.com/boutique2v/commerce-backend/internal/orders"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/pagination"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// OrderQuote prices a basket without persisting anything.
func OrderQuote(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		totals, err := svc.Quote(r.Context(), ordersvc.QuoteInput{
			Items:          toItemInputs(payload.Items),
			ShippingMethod: payload.ShippingMethod,
			PaymentMethod:  payload.PaymentMethod,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals)
	}
}

// OrderCreate runs checkout for the authenticated user.
func OrderCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), userID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// MyOrders lists the caller's own orders.
func MyOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), ordersvc.ListFilter{
			UserID:     &userID,
			Status:     validators.SanitizeString(r.URL.Query().Get("status"), 40),
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListResponse(result))
	}
}

// OrderDetail returns one order; customers only see their own.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderInvoiceDownload streams the rendered invoice PDF.
func OrderInvoiceDownload(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		absPath, err := svc.InvoiceFile(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(absPath)+`"`)
		http.ServeFile(w, r, absPath)
	}
}

// AdminOrderList is the full order listing with filters.
func AdminOrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := ordersvc.ListFilter{
			Status:     validators.SanitizeString(r.URL.Query().Get("status"), 40),
			Pagination: params,
		}
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			userID, parseErr := validators.ParsePathUUID(raw, "user_id")
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			filter.UserID = &userID
		}

		result, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListResponse(result))
	}
}

// AdminOrderStatus moves an order through the fulfilment state machine.
func AdminOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		result, err := svc.UpdateStatus(r.Context(), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newStatusUpdateResponse(result))
	}
}

// AdminRegenerateInvoice re-renders an order's invoice PDF.
func AdminRegenerateInvoice(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RegenerateInvoice(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type orderItemPayload struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type quoteRequest struct {
	Items          []orderItemPayload `json:"items" validate:"required,min=1,dive"`
	ShippingMethod string             `json:"shipping_method" validate:"required"`
	PaymentMethod  string             `json:"payment_method,omitempty"`
}

type createOrderRequest struct {
	Items           []orderItemPayload `json:"items" validate:"required,min=1,dive"`
	ShippingMethod  string             `json:"shipping_method" validate:"required"`
	PaymentMethod   string             `json:"payment_method" validate:"required"`
	ShippingInfo    types.ShippingInfo `json:"shipping_info"`
	PaymentIntentID *string            `json:"payment_intent_id,omitempty"`
}

func (r createOrderRequest) toInput() ordersvc.CreateInput {
	return ordersvc.CreateInput{
		Items:           toItemInputs(r.Items),
		ShippingMethod:  r.ShippingMethod,
		PaymentMethod:   r.PaymentMethod,
		ShippingInfo:    r.ShippingInfo,
		PaymentIntentID: r.PaymentIntentID,
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func toItemInputs(payloads []orderItemPayload) []ordersvc.ItemInput {
	return lo.Map(payloads, func(p orderItemPayload, _ int) ordersvc.ItemInput {
		return ordersvc.ItemInput{ProductID: p.ProductID, Quantity: p.Quantity}
	})
}

type orderResponse struct {
	ID              uuid.UUID          `json:"id"`
	UserID          uuid.UUID          `json:"user_id"`
	Items           []types.OrderItem  `json:"items"`
	Subtotal        float64            `json:"subtotal"`
	ShippingCost    float64            `json:"shipping_cost"`
	TaxPercent      float64            `json:"tax_percent"`
	TaxAmount       float64            `json:"tax_amount"`
	Amount          float64            `json:"amount"`
	ShippingMethod  string             `json:"shipping_method"`
	ShippingInfo    types.ShippingInfo `json:"shipping_info"`
	PaymentMethod   string             `json:"payment_method"`
	PaymentStatus   string             `json:"payment_status"`
	PaymentIntentID *string            `json:"payment_intent_id,omitempty"`
	Status          string             `json:"status"`
	InvoiceURL      *string            `json:"invoice_url,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := order.Items
	if items == nil {
		items = []types.OrderItem{}
	}
	return orderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Items:           items,
		Subtotal:        order.Subtotal,
		ShippingCost:    order.ShippingCost,
		TaxPercent:      order.TaxPercent,
		TaxAmount:       order.TaxAmount,
		Amount:          order.Amount,
		ShippingMethod:  string(order.ShippingMethod),
		ShippingInfo:    order.ShippingInfo,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   string(order.PaymentStatus),
		PaymentIntentID: order.PaymentIntentID,
		Status:          string(order.Status),
		InvoiceURL:      order.InvoiceURL,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Meta   pagination.Meta `json:"meta"`
}

func newOrderListResponse(result *ordersvc.ListResult) orderListResponse {
	return orderListResponse{
		Orders: lo.Map(result.Orders, func(o models.Order, _ int) orderResponse {
			return newOrderResponse(&o)
		}),
		Meta: result.Meta,
	}
}

type statusUpdateResponse struct {
	Order            orderResponse              `json:"order"`
	StockAdjustments []ordersvc.StockAdjustment `json:"stock_adjustments,omitempty"`
	NoOp             bool                       `json:"no_op,omitempty"`
}

func newStatusUpdateResponse(result *ordersvc.StatusUpdateResult) statusUpdateResponse {
	return statusUpdateResponse{
		Order:            newOrderResponse(result.Order),
		StockAdjustments: result.StockAdjustments,
		NoOp:             result.NoOp,
	}
}
