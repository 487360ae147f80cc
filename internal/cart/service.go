package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/boutique2v/commerce-backend/internal/products"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// Store is the persistence surface the cart service needs.
type Store interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) (*models.Cart, error)
}

// ProductReader resolves live products for stock and snapshot data.
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the per-user basket operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

// ServiceParams wires the cart service dependencies.
type ServiceParams struct {
	Store    Store
	Products ProductReader
	Logger   *logger.Logger
}

type service struct {
	store    Store
	products ProductReader
	logg     *logger.Logger
}

// NewService constructs the cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: params.Store, products: params.Products, logg: params.Logger}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.store.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return cart, nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadSellable(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	requested := quantity
	if _, idx, found := lo.FindIndexOf(cart.Items, func(it types.CartItem) bool {
		return it.ProductID == productID
	}); found {
		requested += cart.Items[idx].Quantity
		if err := checkStock(product, requested); err != nil {
			return nil, err
		}
		cart.Items[idx].Quantity = requested
		cart.Items[idx].Price = product.Price
	} else {
		if err := checkStock(product, requested); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, snapshotItem(product, quantity))
	}

	saved, err := s.store.Save(ctx, cart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart")
	}
	return saved, nil
}

func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	_, idx, found := lo.FindIndexOf(cart.Items, func(it types.CartItem) bool {
		return it.ProductID == productID
	})
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	}

	product, err := s.loadSellable(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := checkStock(product, quantity); err != nil {
		return nil, err
	}

	cart.Items[idx].Quantity = quantity
	cart.Items[idx].Price = product.Price

	saved, err := s.store.Save(ctx, cart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart")
	}
	return saved, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	before := len(cart.Items)
	cart.Items = lo.Reject(cart.Items, func(it types.CartItem, _ int) bool {
		return it.ProductID == productID
	})
	if len(cart.Items) == before {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	}

	saved, err := s.store.Save(ctx, cart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart")
	}
	return saved, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Items = []types.CartItem{}

	saved, err := s.store.Save(ctx, cart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart")
	}
	return saved, nil
}

func (s *service) loadSellable(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product.Status != "active" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available")
	}
	return product, nil
}

// checkStock is a read-time sufficiency check only; the authoritative stock
// movement happens on the order status boundary.
func checkStock(product *models.Product, requested int) error {
	if !product.TrackQuantity || product.AllowBackorder {
		return nil
	}
	if requested > product.Stock {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("only %d of %q in stock", product.Stock, product.Name))
	}
	return nil
}

func snapshotItem(product *models.Product, quantity int) types.CartItem {
	item := types.CartItem{
		ProductID: product.ID,
		Title:     product.Name,
		Price:     product.Price,
		Quantity:  quantity,
	}
	if len(product.Images) > 0 {
		item.Image = product.Images[0]
	}
	return item
}
