package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// Repository persists one wishlist row per user.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOrCreate returns the user's wishlist, creating an empty one on first use.
func (r *Repository) FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	var list models.Wishlist
	err := r.db.WithContext(ctx).First(&list, "user_id = ?", userID).Error
	if err == nil {
		return &list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	list = models.Wishlist{
		ID:     uuid.New(),
		UserID: userID,
		Items:  []types.WishlistEntry{},
	}
	if createErr := r.db.WithContext(ctx).Create(&list).Error; createErr != nil {
		var existing models.Wishlist
		if refetchErr := r.db.WithContext(ctx).First(&existing, "user_id = ?", userID).Error; refetchErr == nil {
			return &existing, nil
		}
		return nil, createErr
	}
	return &list, nil
}

// Save writes the full wishlist row back.
func (r *Repository) Save(ctx context.Context, list *models.Wishlist) (*models.Wishlist, error) {
	if err := r.db.WithContext(ctx).Save(list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
