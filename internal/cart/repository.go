package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// Repository persists one cart row per user.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindOrCreate returns the user's cart, creating an empty one on first use.
func (r *Repository) FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items:  []types.CartItem{},
	}
	if createErr := r.db.WithContext(ctx).Create(&cart).Error; createErr != nil {
		// lost the insert race with a concurrent first request
		var existing models.Cart
		if refetchErr := r.db.WithContext(ctx).First(&existing, "user_id = ?", userID).Error; refetchErr == nil {
			return &existing, nil
		}
		return nil, createErr
	}
	return &cart, nil
}

// Save writes the full cart row back.
func (r *Repository) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}
