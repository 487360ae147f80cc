package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
)

// DefaultStoreName seeds the lazily created settings row.
const DefaultStoreName = "My Store"

// Repository persists the singleton settings row.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the settings row, inserting the default one when the table is
// still empty.
func (r *Repository) Get(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).Order("created_at asc").First(&setting).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seed := defaultSetting()
	if createErr := r.db.WithContext(ctx).Create(seed).Error; createErr != nil {
		// lost the insert race: another request seeded it first
		if refetchErr := r.db.WithContext(ctx).Order("created_at asc").First(&setting).Error; refetchErr == nil {
			return &setting, nil
		}
		return nil, createErr
	}
	return seed, nil
}

// Save writes the full settings row back.
func (r *Repository) Save(ctx context.Context, setting *models.Setting) (*models.Setting, error) {
	if err := r.db.WithContext(ctx).Save(setting).Error; err != nil {
		return nil, err
	}
	return setting, nil
}

func defaultSetting() *models.Setting {
	return &models.Setting{
		ID:               uuid.New(),
		StoreName:        DefaultStoreName,
		GlobalTaxPercent: 0,
		Currency:         "USD",
	}
}
