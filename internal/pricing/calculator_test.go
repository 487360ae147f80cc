package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

type stubProvider struct {
	taxPercent float64
}

func (s *stubProvider) Current(ctx context.Context) (*models.Setting, error) {
	return &models.Setting{GlobalTaxPercent: s.taxPercent}, nil
}

func (s *stubProvider) Refresh(ctx context.Context) error { return nil }

type stubTierFinder struct {
	tiers map[uuid.UUID]enums.ShippingTier
	calls int
}

func (s *stubTierFinder) FindShippingTiers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]enums.ShippingTier, error) {
	s.calls++
	return s.tiers, nil
}

func newTestCalculator(t *testing.T, taxPercent float64, tiers map[uuid.UUID]enums.ShippingTier) *Calculator {
	t.Helper()
	calc, err := NewCalculator(CalculatorParams{
		Settings: &stubProvider{taxPercent: taxPercent},
		Tiers:    &stubTierFinder{tiers: tiers},
	})
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return calc
}

func itemWithTier(id uuid.UUID, price float64, qty int) types.OrderItem {
	return types.OrderItem{ProductID: &id, Title: "item", Price: price, Quantity: qty}
}

func TestComputeTotalsWorkedExample(t *testing.T) {
	// two units at 50 on a T4 product, card payment: 100 + 20 + 0 = 120
	id := uuid.New()
	calc := newTestCalculator(t, 0, map[uuid.UUID]enums.ShippingTier{id: enums.ShippingTierT4})

	totals, err := calc.ComputeTotals(context.Background(), []types.OrderItem{itemWithTier(id, 50, 2)}, "", "card")
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}

	if totals.Subtotal != 100 {
		t.Errorf("subtotal = %v, want 100", totals.Subtotal)
	}
	if totals.ShippingCost != 20 {
		t.Errorf("shipping = %v, want 20", totals.ShippingCost)
	}
	if totals.TaxAmount != 0 {
		t.Errorf("tax = %v, want 0", totals.TaxAmount)
	}
	if totals.Amount != 120 {
		t.Errorf("amount = %v, want 120", totals.Amount)
	}
	if totals.ShippingMethod != enums.ShippingMethodStandard {
		t.Errorf("method = %v, want standard", totals.ShippingMethod)
	}
}

func TestComputeTotalsTaxOnSubtotalPlusShipping(t *testing.T) {
	id := uuid.New()
	calc := newTestCalculator(t, 10, map[uuid.UUID]enums.ShippingTier{id: enums.ShippingTierT2})

	totals, err := calc.ComputeTotals(context.Background(), []types.OrderItem{itemWithTier(id, 100, 1)}, "standard", "card")
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}

	if totals.TaxAmount != 11.5 {
		t.Errorf("tax = %v, want 11.5 (10%% of 115)", totals.TaxAmount)
	}
	if totals.Amount != 126.5 {
		t.Errorf("amount = %v, want 126.5", totals.Amount)
	}
}

func TestComputeTotalsLocalPickupShipsFree(t *testing.T) {
	id := uuid.New()
	calc := newTestCalculator(t, 10, map[uuid.UUID]enums.ShippingTier{id: enums.ShippingTierT8Plus})

	tests := []struct {
		name           string
		shippingMethod string
		paymentMethod  string
	}{
		{"explicit pickup", "local_pickup", "card"},
		{"pickup implied by payment", "", "local_pickup"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			totals, err := calc.ComputeTotals(context.Background(), []types.OrderItem{itemWithTier(id, 100, 1)}, tc.shippingMethod, tc.paymentMethod)
			if err != nil {
				t.Fatalf("ComputeTotals: %v", err)
			}
			if totals.ShippingCost != 0 {
				t.Errorf("shipping = %v, want 0", totals.ShippingCost)
			}
			if totals.ShippingMethod != enums.ShippingMethodLocalPickup {
				t.Errorf("method = %v, want local_pickup", totals.ShippingMethod)
			}
			if totals.TaxAmount != 10 {
				t.Errorf("tax = %v, want 10", totals.TaxAmount)
			}
		})
	}
}

func TestComputeTotalsTakesMaxTierNotSum(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	calc := newTestCalculator(t, 0, map[uuid.UUID]enums.ShippingTier{
		a: enums.ShippingTierT2,
		b: enums.ShippingTierT6,
		c: enums.ShippingTierT4,
	})

	items := []types.OrderItem{
		itemWithTier(a, 10, 1),
		itemWithTier(b, 10, 1),
		itemWithTier(c, 10, 1),
	}
	totals, err := calc.ComputeTotals(context.Background(), items, "standard", "card")
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if totals.ShippingCost != 25 {
		t.Errorf("shipping = %v, want max tier 25, never 60", totals.ShippingCost)
	}
}

func TestComputeTotalsHeuristicFallback(t *testing.T) {
	calc := newTestCalculator(t, 0, nil)

	tests := []struct {
		name string
		item types.OrderItem
		want float64
	}{
		{
			"small parcel",
			types.OrderItem{Title: "x", Price: 10, Quantity: 1, Weight: 1.5, Dimensions: types.Dimensions{Length: 20, Width: 20, Height: 10}},
			15,
		},
		{
			"medium weight",
			types.OrderItem{Title: "x", Price: 10, Quantity: 1, Weight: 3.5, Dimensions: types.Dimensions{Length: 35, Width: 35, Height: 20}},
			20,
		},
		{
			"heavier same box",
			types.OrderItem{Title: "x", Price: 10, Quantity: 1, Weight: 5.5, Dimensions: types.Dimensions{Length: 35, Width: 35, Height: 20}},
			25,
		},
		{
			"oversized",
			types.OrderItem{Title: "x", Price: 10, Quantity: 1, Weight: 1, Dimensions: types.Dimensions{Length: 80, Width: 20, Height: 10}},
			35,
		},
		{
			"overweight",
			types.OrderItem{Title: "x", Price: 10, Quantity: 1, Weight: 12},
			35,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			totals, err := calc.ComputeTotals(context.Background(), []types.OrderItem{tc.item}, "standard", "card")
			if err != nil {
				t.Fatalf("ComputeTotals: %v", err)
			}
			if totals.ShippingCost != tc.want {
				t.Errorf("shipping = %v, want %v", totals.ShippingCost, tc.want)
			}
		})
	}
}

func TestComputeTotalsTierBeatsHeuristic(t *testing.T) {
	// a tiny T8PLUS item must still ship at the tier price
	id := uuid.New()
	calc := newTestCalculator(t, 0, map[uuid.UUID]enums.ShippingTier{id: enums.ShippingTierT8Plus})

	item := itemWithTier(id, 10, 1)
	item.Weight = 0.5

	totals, err := calc.ComputeTotals(context.Background(), []types.OrderItem{item}, "standard", "card")
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if totals.ShippingCost != 35 {
		t.Errorf("shipping = %v, want tier cost 35", totals.ShippingCost)
	}
}

func TestComputeTotalsResolvedTierWinsOverUntieredItem(t *testing.T) {
	// an untiered heavy item never bumps shipping past the resolved max
	id := uuid.New()
	calc := newTestCalculator(t, 0, map[uuid.UUID]enums.ShippingTier{id: enums.ShippingTierT2})

	heavy := uuid.New()
	untiered := itemWithTier(heavy, 10, 1)
	untiered.Weight = 12

	totals, err := calc.ComputeTotals(context.Background(), []types.OrderItem{itemWithTier(id, 10, 1), untiered}, "standard", "card")
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if totals.ShippingCost != 15 {
		t.Errorf("shipping = %v, want resolved tier 15, not heuristic 35", totals.ShippingCost)
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	id := uuid.New()
	calc := newTestCalculator(t, 8.25, map[uuid.UUID]enums.ShippingTier{id: enums.ShippingTierT4})
	items := []types.OrderItem{itemWithTier(id, 19.99, 3)}

	first, err := calc.ComputeTotals(context.Background(), items, "standard", "card")
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := calc.ComputeTotals(context.Background(), items, "standard", "card")
		if err != nil {
			t.Fatalf("ComputeTotals: %v", err)
		}
		if again != first {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestComputeTotalsNonPositiveQuantityPassesThrough(t *testing.T) {
	id := uuid.New()
	calc := newTestCalculator(t, 0, map[uuid.UUID]enums.ShippingTier{id: enums.ShippingTierT2})

	totals, err := calc.ComputeTotals(context.Background(), []types.OrderItem{itemWithTier(id, 50, 0)}, "standard", "card")
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if totals.Subtotal != 0 {
		t.Errorf("subtotal = %v, want 0 for zero quantity", totals.Subtotal)
	}
	if totals.ShippingCost != 15 {
		t.Errorf("shipping = %v, want 15 (item still counts for shipping)", totals.ShippingCost)
	}
}

func TestComputeTotalsEmptyItems(t *testing.T) {
	calc := newTestCalculator(t, 10, nil)

	totals, err := calc.ComputeTotals(context.Background(), nil, "standard", "card")
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if totals.Subtotal != 0 || totals.ShippingCost != 0 || totals.TaxAmount != 0 || totals.Amount != 0 {
		t.Fatalf("expected all-zero totals, got %+v", totals)
	}
}

func TestComputeTotalsInvariantAmount(t *testing.T) {
	id := uuid.New()
	calc := newTestCalculator(t, 8.25, map[uuid.UUID]enums.ShippingTier{id: enums.ShippingTierT6})

	totals, err := calc.ComputeTotals(context.Background(), []types.OrderItem{itemWithTier(id, 33.33, 3)}, "standard", "card")
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	sum := totals.Subtotal + totals.ShippingCost + totals.TaxAmount
	if diff := totals.Amount - sum; diff > 0.005 || diff < -0.005 {
		t.Fatalf("amount %v != subtotal+shipping+tax %v", totals.Amount, sum)
	}
}
