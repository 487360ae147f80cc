package orders

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/internal/pricing"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

type stubStore struct {
	orders map[uuid.UUID]*models.Order
	saves  int
}

func newStubStore() *stubStore {
	return &stubStore{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubStore) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	clone := *order
	s.orders[order.ID] = &clone
	return order, nil
}

func (s *stubStore) Save(_ context.Context, order *models.Order) (*models.Order, error) {
	s.saves++
	clone := *order
	s.orders[order.ID] = &clone
	return order, nil
}

func (s *stubStore) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (s *stubStore) List(_ context.Context, _ ListFilter) ([]models.Order, int64, error) {
	out := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

type stubProducts struct {
	rows        map[uuid.UUID]models.Product
	adjustments map[uuid.UUID]int
	failFor     map[uuid.UUID]error
}

func newStubProducts(rows ...models.Product) *stubProducts {
	s := &stubProducts{
		rows:        map[uuid.UUID]models.Product{},
		adjustments: map[uuid.UUID]int{},
		failFor:     map[uuid.UUID]error{},
	}
	for _, row := range rows {
		s.rows[row.ID] = row
	}
	return s
}

func (s *stubProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if row, ok := s.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubProducts) AdjustStock(_ context.Context, id uuid.UUID, delta int) (int64, error) {
	if err, ok := s.failFor[id]; ok {
		return 0, err
	}
	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	s.adjustments[id] += delta
	return 1, nil
}

type stubCalculator struct{}

func (stubCalculator) ComputeTotals(_ context.Context, items []types.OrderItem, shippingMethod, paymentMethod string) (pricing.OrderTotals, error) {
	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	return pricing.OrderTotals{
		Subtotal:       subtotal,
		ShippingCost:   15,
		Amount:         subtotal + 15,
		ShippingMethod: enums.ResolveShippingMethod(shippingMethod, paymentMethod),
	}, nil
}

type stubRenderer struct {
	fail    bool
	renders int
}

func (s *stubRenderer) RenderOrderInvoice(_ context.Context, order *models.Order) (string, error) {
	if s.fail {
		return "", fmt.Errorf("pdf backend unavailable")
	}
	s.renders++
	return "/uploads/invoices/" + order.ID.String() + ".pdf", nil
}

func (s *stubRenderer) OrderInvoiceAbsPath(orderID uuid.UUID) (string, error) {
	return "/data/invoices/" + orderID.String() + ".pdf", nil
}

func newTestService(t *testing.T, store *stubStore, products *stubProducts, renderer *stubRenderer) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "orders-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Store:      store,
		Products:   products,
		Calculator: stubCalculator{},
		Renderer:   renderer,
		Logger:     logg,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func testProduct(price float64, stock int) models.Product {
	return models.Product{
		ID:            uuid.New(),
		Name:          "Walnut Board",
		Price:         price,
		Stock:         stock,
		TrackQuantity: true,
		Status:        "active",
		Images:        []string{"/uploads/board.jpg"},
	}
}

func TestCreateSnapshotsItemsAndTotals(t *testing.T) {
	product := testProduct(50, 10)
	store := newStubStore()
	svc := newTestService(t, store, newStubProducts(product), &stubRenderer{})

	order, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 2}},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.Subtotal != 100 || order.Amount != 115 {
		t.Fatalf("totals = %f / %f, want 100 / 115", order.Subtotal, order.Amount)
	}
	if len(order.Items) != 1 || order.Items[0].Title != "Walnut Board" || order.Items[0].Price != 50 {
		t.Fatalf("unexpected snapshot: %+v", order.Items)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("status = %s, want pending", order.Status)
	}
	if order.InvoiceURL == nil || *order.InvoiceURL == "" {
		t.Fatal("expected invoice url on successful render")
	}
}

func TestCreatePaymentStatusFollowsMethod(t *testing.T) {
	tests := []struct {
		method string
		want   enums.PaymentStatus
	}{
		{"card", enums.PaymentStatusPaid},
		{"cash_on_delivery", enums.PaymentStatusPending},
		{"local_pickup", enums.PaymentStatusPending},
	}
	for _, tc := range tests {
		t.Run(tc.method, func(t *testing.T) {
			product := testProduct(20, 5)
			svc := newTestService(t, newStubStore(), newStubProducts(product), &stubRenderer{})

			order, err := svc.Create(context.Background(), uuid.New(), CreateInput{
				Items:         []ItemInput{{ProductID: product.ID, Quantity: 1}},
				PaymentMethod: tc.method,
			})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if order.PaymentStatus != tc.want {
				t.Fatalf("payment status = %s, want %s", order.PaymentStatus, tc.want)
			}
		})
	}
}

func TestCreateSurvivesInvoiceFailure(t *testing.T) {
	product := testProduct(30, 5)
	store := newStubStore()
	svc := newTestService(t, store, newStubProducts(product), &stubRenderer{fail: true})

	order, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.InvoiceURL != nil {
		t.Fatalf("invoice url = %v, want nil after failed render", *order.InvoiceURL)
	}
	if _, ok := store.orders[order.ID]; !ok {
		t.Fatal("order was not persisted")
	}
}

func TestCreateRejectsUnknownProductAndBadQuantity(t *testing.T) {
	svc := newTestService(t, newStubStore(), newStubProducts(), &stubRenderer{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		Items:         []ItemInput{{ProductID: uuid.New(), Quantity: 1}},
		PaymentMethod: "card",
	})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unknown product: got %v, want validation error", err)
	}

	_, err = svc.Create(context.Background(), uuid.New(), CreateInput{
		Items:         []ItemInput{{ProductID: uuid.New(), Quantity: 0}},
		PaymentMethod: "card",
	})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("zero quantity: got %v, want validation error", err)
	}
}

func TestQuoteRequiresItems(t *testing.T) {
	svc := newTestService(t, newStubStore(), newStubProducts(), &stubRenderer{})

	_, err := svc.Quote(context.Background(), QuoteInput{PaymentMethod: "card"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestQuoteMatchesCreateTotals(t *testing.T) {
	product := testProduct(42.5, 9)
	products := newStubProducts(product)
	svc := newTestService(t, newStubStore(), products, &stubRenderer{})
	ctx := context.Background()
	items := []ItemInput{{ProductID: product.ID, Quantity: 2}}

	quote, err := svc.Quote(ctx, QuoteInput{Items: items, PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	order, err := svc.Create(ctx, uuid.New(), CreateInput{Items: items, PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if quote.Amount != order.Amount || quote.Subtotal != order.Subtotal {
		t.Fatalf("quote %v != order totals %f/%f", quote, order.Subtotal, order.Amount)
	}
}

func createCompletableOrder(t *testing.T, svc Service, product models.Product) *models.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 3}},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return order
}

func TestUpdateStatusDecrementsStockOnceOnCompletion(t *testing.T) {
	product := testProduct(10, 20)
	products := newStubProducts(product)
	svc := newTestService(t, newStubStore(), products, &stubRenderer{})
	order := createCompletableOrder(t, svc, product)
	ctx := context.Background()

	result, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got := products.adjustments[product.ID]; got != -3 {
		t.Fatalf("stock delta = %d, want -3", got)
	}
	if len(result.StockAdjustments) != 1 || !result.StockAdjustments[0].Applied {
		t.Fatalf("adjustments = %+v", result.StockAdjustments)
	}

	// repeating the same status is a no-op and must not move stock again
	result, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("repeat UpdateStatus: %v", err)
	}
	if !result.NoOp {
		t.Fatal("expected NoOp on identical status")
	}
	if got := products.adjustments[product.ID]; got != -3 {
		t.Fatalf("stock delta after no-op = %d, want -3", got)
	}
}

func TestUpdateStatusRestoresStockOnLeavingCompleted(t *testing.T) {
	tests := []struct {
		name string
		to   enums.OrderStatus
	}{
		{"back to processing", enums.OrderStatusProcessing},
		{"cancelled after completion", enums.OrderStatusCancelled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			product := testProduct(10, 20)
			products := newStubProducts(product)
			svc := newTestService(t, newStubStore(), products, &stubRenderer{})
			order := createCompletableOrder(t, svc, product)
			ctx := context.Background()

			if _, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCompleted); err != nil {
				t.Fatalf("complete: %v", err)
			}
			if _, err := svc.UpdateStatus(ctx, order.ID, tc.to); err != nil {
				t.Fatalf("leave completed: %v", err)
			}
			if got := products.adjustments[product.ID]; got != 0 {
				t.Fatalf("net stock delta = %d, want 0", got)
			}
		})
	}
}

func TestUpdateStatusCancelledIsTerminal(t *testing.T) {
	product := testProduct(10, 20)
	svc := newTestService(t, newStubStore(), newStubProducts(product), &stubRenderer{})
	order := createCompletableOrder(t, svc, product)
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusProcessing)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("got %v, want state conflict", err)
	}
}

func TestUpdateStatusSurfacesPartialStockFailures(t *testing.T) {
	good := testProduct(10, 20)
	bad := testProduct(5, 20)
	products := newStubProducts(good, bad)
	products.failFor[bad.ID] = fmt.Errorf("deadlock detected")
	svc := newTestService(t, newStubStore(), products, &stubRenderer{})

	order, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		Items: []ItemInput{
			{ProductID: good.ID, Quantity: 1},
			{ProductID: bad.ID, Quantity: 2},
		},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if result.Order.Status != enums.OrderStatusCompleted {
		t.Fatalf("status = %s, transition must still commit", result.Order.Status)
	}
	if len(result.StockAdjustments) != 2 {
		t.Fatalf("adjustments = %+v", result.StockAdjustments)
	}
	if !result.StockAdjustments[0].Applied || result.StockAdjustments[1].Applied {
		t.Fatalf("adjustments = %+v", result.StockAdjustments)
	}
	if result.StockAdjustments[1].Error == "" {
		t.Fatal("expected per-item error message")
	}
	if got := products.adjustments[good.ID]; got != -1 {
		t.Fatalf("surviving product delta = %d, want -1", got)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(t, newStubStore(), newStubProducts(), &stubRenderer{})

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatus("archived"))
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	product := testProduct(10, 5)
	store := newStubStore()
	svc := newTestService(t, store, newStubProducts(product), &stubRenderer{})
	owner := uuid.New()

	order, err := svc.Create(context.Background(), owner, CreateInput{
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(context.Background(), Actor{UserID: owner, Role: enums.RoleCustomer}, order.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.RoleAdmin}, order.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	_, err = svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.RoleCustomer}, order.ID)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("stranger get: %v, want forbidden", err)
	}
}

func TestRegenerateInvoiceFailureIsFatal(t *testing.T) {
	product := testProduct(10, 5)
	store := newStubStore()
	renderer := &stubRenderer{}
	svc := newTestService(t, store, newStubProducts(product), renderer)
	order := createCompletableOrder(t, svc, product)

	renderer.fail = true
	_, err := svc.RegenerateInvoice(context.Background(), order.ID)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("got %v, want dependency error", err)
	}

	renderer.fail = false
	updated, err := svc.RegenerateInvoice(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("RegenerateInvoice: %v", err)
	}
	if updated.InvoiceURL == nil {
		t.Fatal("expected invoice url after regeneration")
	}
}
