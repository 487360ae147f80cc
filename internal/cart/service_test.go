package cart

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/internal/products"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

type stubStore struct {
	carts map[uuid.UUID]*models.Cart
}

func newStubStore() *stubStore {
	return &stubStore{carts: map[uuid.UUID]*models.Cart{}}
}

func (s *stubStore) FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if cart, ok := s.carts[userID]; ok {
		copied := *cart
		copied.Items = append([]types.CartItem(nil), cart.Items...)
		return &copied, nil
	}
	cart := &models.Cart{ID: uuid.New(), UserID: userID, Items: []types.CartItem{}}
	s.carts[userID] = cart
	copied := *cart
	return &copied, nil
}

func (s *stubStore) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	s.carts[cart.UserID] = cart
	copied := *cart
	return &copied, nil
}

type stubProducts struct {
	byID map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, products.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func activeProduct(stock int) *models.Product {
	return &models.Product{
		ID:            uuid.New(),
		Name:          "Mug",
		Price:         12.5,
		Stock:         stock,
		TrackQuantity: true,
		Status:        "active",
		Images:        []string{"/uploads/products/mug.jpg"},
	}
}

func newTestService(t *testing.T, store Store, reader ProductReader) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Store:    store,
		Products: reader,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGetCreatesEmptyCart(t *testing.T) {
	svc := newTestService(t, newStubStore(), &stubProducts{byID: map[uuid.UUID]*models.Product{}})

	cart, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}
}

func TestAddItemSnapshotsProduct(t *testing.T) {
	ctx := context.Background()
	product := activeProduct(10)
	svc := newTestService(t, newStubStore(), &stubProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	userID := uuid.New()
	cart, err := svc.AddItem(ctx, userID, product.ID, 2)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	item := cart.Items[0]
	if item.Title != "Mug" || item.Price != 12.5 || item.Quantity != 2 || item.Image == "" {
		t.Fatalf("unexpected snapshot %+v", item)
	}

	// adding again merges quantities
	cart, err = svc.AddItem(ctx, userID, product.ID, 3)
	if err != nil {
		t.Fatalf("AddItem merge: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %+v", cart.Items)
	}
}

func TestAddItemStockChecks(t *testing.T) {
	ctx := context.Background()
	product := activeProduct(3)
	svc := newTestService(t, newStubStore(), &stubProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})
	userID := uuid.New()

	if _, err := svc.AddItem(ctx, userID, product.ID, 4); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected stock conflict, got %v", err)
	}

	if _, err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("AddItem within stock: %v", err)
	}
	// merged total 2+2 exceeds stock 3
	if _, err := svc.AddItem(ctx, userID, product.ID, 2); pkgerrors.As(err) == nil {
		t.Fatal("expected merged quantity to fail the stock check")
	}
}

func TestAddItemBackorderSkipsStockCheck(t *testing.T) {
	ctx := context.Background()
	product := activeProduct(0)
	product.AllowBackorder = true
	svc := newTestService(t, newStubStore(), &stubProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	if _, err := svc.AddItem(ctx, uuid.New(), product.ID, 5); err != nil {
		t.Fatalf("expected backorder to be allowed, got %v", err)
	}
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	ctx := context.Background()
	product := activeProduct(10)
	product.Status = "archived"
	svc := newTestService(t, newStubStore(), &stubProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	_, err := svc.AddItem(ctx, uuid.New(), product.ID, 1)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	product := activeProduct(10)
	svc := newTestService(t, newStubStore(), &stubProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})
	userID := uuid.New()

	if _, err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	cart, err := svc.UpdateItem(ctx, userID, product.ID, 7)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if cart.Items[0].Quantity != 7 {
		t.Fatalf("quantity = %d, want 7", cart.Items[0].Quantity)
	}

	// zero quantity removes the line
	cart, err = svc.UpdateItem(ctx, userID, product.ID, 0)
	if err != nil {
		t.Fatalf("UpdateItem to zero: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}
}

func TestUpdateMissingItem(t *testing.T) {
	product := activeProduct(10)
	svc := newTestService(t, newStubStore(), &stubProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	_, err := svc.UpdateItem(context.Background(), uuid.New(), product.ID, 2)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	product := activeProduct(10)
	other := activeProduct(10)
	other.ID = uuid.New()
	svc := newTestService(t, newStubStore(), &stubProducts{byID: map[uuid.UUID]*models.Product{
		product.ID: product,
		other.ID:   other,
	}})
	userID := uuid.New()

	if _, err := svc.AddItem(ctx, userID, product.ID, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.AddItem(ctx, userID, other.ID, 1); err != nil {
		t.Fatalf("AddItem other: %v", err)
	}

	cart, err := svc.RemoveItem(ctx, userID, product.ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != other.ID {
		t.Fatalf("unexpected items %+v", cart.Items)
	}

	if _, err := svc.RemoveItem(ctx, userID, product.ID); pkgerrors.As(err) == nil {
		t.Fatal("expected removing absent item to fail")
	}

	cart, err = svc.Clear(ctx, userID)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected cleared cart, got %+v", cart.Items)
	}
}
