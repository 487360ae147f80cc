package pricing

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/internal/settings"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// TierFinder resolves the shipping tier assigned to the referenced products.
// Unknown or tier-less products simply do not appear in the result map.
type TierFinder interface {
	FindShippingTiers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]enums.ShippingTier, error)
}

// OrderTotals is the frozen money breakdown stamped onto an order.
type OrderTotals struct {
	Subtotal       float64              `json:"subtotal"`
	ShippingCost   float64              `json:"shipping_cost"`
	TaxPercent     float64              `json:"tax_percent"`
	TaxAmount      float64              `json:"tax_amount"`
	Amount         float64              `json:"amount"`
	ShippingMethod enums.ShippingMethod `json:"shipping_method"`
}

// Calculator computes order totals from item snapshots and live settings.
// It never writes anything; the quote path and the order-creation path both
// run through here so a quote always matches the order it becomes.
type Calculator struct {
	settings settings.Provider
	tiers    TierFinder
}

// CalculatorParams wires the calculator dependencies.
type CalculatorParams struct {
	Settings settings.Provider
	Tiers    TierFinder
}

// NewCalculator constructs the totals calculator.
func NewCalculator(params CalculatorParams) (*Calculator, error) {
	if params.Settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if params.Tiers == nil {
		return nil, fmt.Errorf("tier finder required")
	}
	return &Calculator{settings: params.Settings, tiers: params.Tiers}, nil
}

// ComputeTotals derives subtotal, shipping, tax and the grand total for the
// given snapshots. Tax applies to subtotal plus shipping.
func (c *Calculator) ComputeTotals(ctx context.Context, items []types.OrderItem, shippingMethod, paymentMethod string) (OrderTotals, error) {
	method := enums.ResolveShippingMethod(shippingMethod, paymentMethod)

	subtotal := 0.0
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	subtotal = roundCents(subtotal)

	shippingCost, err := c.shippingCost(ctx, items, method)
	if err != nil {
		return OrderTotals{}, err
	}

	setting, err := c.settings.Current(ctx)
	if err != nil {
		return OrderTotals{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading tax settings")
	}

	taxPercent := setting.GlobalTaxPercent
	taxAmount := roundCents((subtotal + shippingCost) * taxPercent / 100)
	amount := roundCents(subtotal + shippingCost + taxAmount)

	return OrderTotals{
		Subtotal:       subtotal,
		ShippingCost:   shippingCost,
		TaxPercent:     taxPercent,
		TaxAmount:      taxAmount,
		Amount:         amount,
		ShippingMethod: method,
	}, nil
}

// shippingCost picks the single most expensive bracket across all items.
// Brackets never sum: one oversized item sets the price for the whole order.
func (c *Calculator) shippingCost(ctx context.Context, items []types.OrderItem, method enums.ShippingMethod) (float64, error) {
	if method == enums.ShippingMethodLocalPickup {
		return 0, nil
	}
	if len(items) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.ProductID != nil {
			ids = append(ids, *item.ProductID)
		}
	}

	tiersByID := map[uuid.UUID]enums.ShippingTier{}
	if len(ids) > 0 {
		found, err := c.tiers.FindShippingTiers(ctx, ids)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving shipping tiers")
		}
		if found != nil {
			tiersByID = found
		}
	}

	cost := 0.0
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		if tier, ok := tiersByID[*item.ProductID]; ok && tier.IsValid() {
			cost = math.Max(cost, tier.Cost())
		}
	}
	if cost > 0 {
		return cost, nil
	}

	// No item resolved a tier: estimate from the physical snapshots instead.
	for _, item := range items {
		cost = math.Max(cost, heuristicCost(item.Weight, item.Dimensions))
	}
	return cost, nil
}

// heuristicCost estimates a bracket from the physical snapshot when the
// product carries no tier.
func heuristicCost(weight float64, dims types.Dimensions) float64 {
	switch {
	case weight <= 2 && fitsWithin(dims, 30, 30, 20):
		return 15
	case weight <= 4 && fitsWithin(dims, 40, 40, 25):
		return 20
	case weight <= 6 && fitsWithin(dims, 40, 40, 25):
		return 25
	default:
		return 35
	}
}

func fitsWithin(dims types.Dimensions, length, width, height float64) bool {
	return dims.Length <= length && dims.Width <= width && dims.Height <= height
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
