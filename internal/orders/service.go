package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/boutique2v/commerce-backend/internal/pricing"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/metrics"
	"github.com/boutique2v/commerce-backend/pkg/pagination"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// PaymentMethodCard marks card checkouts, which arrive already captured.
const PaymentMethodCard = "card"

// Store is the persistence surface the order service needs.
type Store interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
}

// ProductSource resolves catalog rows and applies stock movements.
type ProductSource interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error)
}

// TotalsComputer is the calculator surface the service depends on.
type TotalsComputer interface {
	ComputeTotals(ctx context.Context, items []types.OrderItem, shippingMethod, paymentMethod string) (pricing.OrderTotals, error)
}

// InvoiceRenderer produces the PDF artifact for an order and reports its
// public URL.
type InvoiceRenderer interface {
	RenderOrderInvoice(ctx context.Context, order *models.Order) (string, error)
	OrderInvoiceAbsPath(orderID uuid.UUID) (string, error)
}

// Service exposes the checkout and order management operations.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*pricing.OrderTotals, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*StatusUpdateResult, error)
	RegenerateInvoice(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	InvoiceFile(ctx context.Context, actor Actor, orderID uuid.UUID) (string, error)
}

// ServiceParams wires the order service dependencies.
type ServiceParams struct {
	Store      Store
	Products   ProductSource
	Calculator TotalsComputer
	Renderer   InvoiceRenderer
	Metrics    *metrics.OrderMetrics
	Logger     *logger.Logger
}

type service struct {
	store      Store
	products   ProductSource
	calculator TotalsComputer
	renderer   InvoiceRenderer
	metrics    *metrics.OrderMetrics
	logg       *logger.Logger
}

// NewService constructs the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("order store required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product source required")
	}
	if params.Calculator == nil {
		return nil, fmt.Errorf("totals calculator required")
	}
	if params.Renderer == nil {
		return nil, fmt.Errorf("invoice renderer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:      params.Store,
		products:   params.Products,
		calculator: params.Calculator,
		renderer:   params.Renderer,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*pricing.OrderTotals, error) {
	items, err := s.snapshotItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	totals, err := s.calculator.ComputeTotals(ctx, items, input.ShippingMethod, input.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	items, err := s.snapshotItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	totals, err := s.calculator.ComputeTotals(ctx, items, input.ShippingMethod, input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	paymentStatus := enums.PaymentStatusPending
	if input.PaymentMethod == PaymentMethodCard {
		paymentStatus = enums.PaymentStatusPaid
	}

	order := &models.Order{
		UserID:          userID,
		Items:           items,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		TaxPercent:      totals.TaxPercent,
		TaxAmount:       totals.TaxAmount,
		Amount:          totals.Amount,
		ShippingMethod:  totals.ShippingMethod,
		ShippingInfo:    input.ShippingInfo,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   paymentStatus,
		PaymentIntentID: input.PaymentIntentID,
		Status:          enums.OrderStatusPending,
	}

	created, err := s.store.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}
	s.metrics.IncCreated()

	ctx = s.logg.WithOrderID(ctx, created.ID.String())
	s.logg.Info(ctx, "order created")

	// invoice generation is best effort at checkout: a render failure must
	// never lose the order
	if url, renderErr := s.renderer.RenderOrderInvoice(ctx, created); renderErr != nil {
		s.metrics.IncInvoiceRender("failure")
		s.logg.Error(ctx, "invoice generation failed", renderErr)
	} else {
		s.metrics.IncInvoiceRender("success")
		created.InvoiceURL = &url
		if created, err = s.store.Save(ctx, created); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving invoice url")
		}
	}

	return created, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	rows, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return &ListResult{
		Orders: rows,
		Meta:   pagination.NewMeta(filter.Pagination, total),
	}, nil
}

// UpdateStatus drives the order through its lifecycle. Stock moves exactly
// once per boundary crossing of `completed`: decremented on entry, restored
// on exit, regardless of which side the transition ends on.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*StatusUpdateResult, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", next))
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	current := order.Status
	if current == next {
		return &StatusUpdateResult{Order: order, NoOp: true}, nil
	}
	if current.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s and cannot change status", current))
	}

	var adjustments []StockAdjustment
	switch {
	case next == enums.OrderStatusCompleted:
		adjustments = s.adjustStock(ctx, order, -1)
	case current == enums.OrderStatusCompleted:
		adjustments = s.adjustStock(ctx, order, +1)
	}

	order.Status = next
	saved, err := s.store.Save(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order status")
	}
	s.metrics.IncTransition(next.String())

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id": saved.ID.String(),
		"from":     current.String(),
		"to":       next.String(),
	})
	if err := combinedAdjustmentError(adjustments); err != nil {
		s.logg.Error(ctx, "stock adjustment incomplete", err)
	} else {
		s.logg.Info(ctx, "order status updated")
	}

	return &StatusUpdateResult{Order: saved, StockAdjustments: adjustments}, nil
}

func (s *service) RegenerateInvoice(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	url, err := s.renderer.RenderOrderInvoice(ctx, order)
	if err != nil {
		s.metrics.IncInvoiceRender("failure")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rendering invoice")
	}
	s.metrics.IncInvoiceRender("success")

	order.InvoiceURL = &url
	saved, err := s.store.Save(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving invoice url")
	}
	return saved, nil
}

func (s *service) InvoiceFile(ctx context.Context, actor Actor, orderID uuid.UUID) (string, error) {
	order, err := s.Get(ctx, actor, orderID)
	if err != nil {
		return "", err
	}
	if order.InvoiceURL == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "order has no invoice yet")
	}
	path, err := s.renderer.OrderInvoiceAbsPath(order.ID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving invoice file")
	}
	return path, nil
}

// snapshotItems resolves the referenced products and freezes the fields an
// order keeps. Live product rows are never referenced after this point.
func (s *service) snapshotItems(ctx context.Context, inputs []ItemInput) ([]types.OrderItem, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	ids := lo.Uniq(lo.Map(inputs, func(in ItemInput, _ int) uuid.UUID { return in.ProductID }))
	rows, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading products")
	}
	byID := lo.KeyBy(rows, func(p models.Product) uuid.UUID { return p.ID })

	items := make([]types.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		product, ok := byID[in.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s does not exist", in.ProductID))
		}
		productID := product.ID
		item := types.OrderItem{
			ProductID:  &productID,
			Title:      product.Name,
			Price:      product.Price,
			Quantity:   in.Quantity,
			Weight:     product.Weight,
			Dimensions: product.Dimensions,
		}
		if len(product.Images) > 0 {
			item.Image = product.Images[0]
		}
		items = append(items, item)
	}
	return items, nil
}

// adjustStock applies sign*quantity per line item and records every outcome.
// Failures are collected, never short-circuited: one failing product must not
// block the remaining movements.
func (s *service) adjustStock(ctx context.Context, order *models.Order, sign int) []StockAdjustment {
	adjustments := make([]StockAdjustment, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		delta := sign * item.Quantity
		adj := StockAdjustment{ProductID: *item.ProductID, Delta: delta}

		rows, err := s.products.AdjustStock(ctx, *item.ProductID, delta)
		switch {
		case err != nil:
			adj.Error = err.Error()
		case rows == 0:
			adj.Error = "product no longer exists"
		default:
			adj.Applied = true
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments
}

func combinedAdjustmentError(adjustments []StockAdjustment) error {
	var err error
	for _, adj := range adjustments {
		if !adj.Applied {
			err = multierr.Append(err, fmt.Errorf("product %s: %s", adj.ProductID, adj.Error))
		}
	}
	return err
}

func (s *service) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}
