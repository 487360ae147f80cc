package wishlist

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

// Store is the persistence surface the wishlist service needs.
type Store interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error)
	Save(ctx context.Context, list *models.Wishlist) (*models.Wishlist, error)
}

// ProductReader resolves products for display snapshots.
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the saved-for-later list.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) (*models.Wishlist, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Wishlist, error)
}

// ServiceParams wires the wishlist service dependencies.
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

// NewService constructs the wishlist service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("wishlist store required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: params.Store, products: params.Products, logg: params.Logger}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	list, err := s.store.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wishlist")
	}
	return list, nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (*models.Wishlist, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	list, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	// liking twice is a no-op
	if lo.ContainsBy(list.Items, func(it types.WishlistEntry) bool { return it.ProductID == productID }) {
		return list, nil
	}

	entry := types.WishlistEntry{
		ProductID: product.ID,
		Title:     product.Name,
		Price:     product.Price,
	}
	if len(product.Images) > 0 {
		entry.Image = product.Images[0]
	}
	list.Items = append(list.Items, entry)

	saved, err := s.store.Save(ctx, list)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving wishlist")
	}
	return saved, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Wishlist, error) {
	list, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	before := len(list.Items)
	list.Items = lo.Reject(list.Items, func(it types.WishlistEntry, _ int) bool {
		return it.ProductID == productID
	})
	if len(list.Items) == before {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the wishlist")
	}

	saved, err := s.store.Save(ctx, list)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving wishlist")
	}
	return saved, nil
}
