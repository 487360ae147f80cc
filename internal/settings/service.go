package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// Store is the persistence surface the settings service needs.
type Store interface {
	Get(ctx context.Context) (*models.Setting, error)
	Save(ctx context.Context, setting *models.Setting) (*models.Setting, error)
}

// Provider exposes cached read access to the live settings. The pricing
// calculator and the invoice renderer read through this instead of hitting
// the table on every computation.
type Provider interface {
	Current(ctx context.Context) (*models.Setting, error)
	Refresh(ctx context.Context) error
}

// UpdateInput carries the enumerated updatable fields. Absent pointers leave
// the stored value untouched; unknown fields never reach this struct.
type UpdateInput struct {
	StoreName        *string
	StoreEmail       *string
	StorePhone       *string
	StoreAddress     *string
	StoreCity        *string
	StoreCountry     *string
	TaxNumber        *string
	GlobalTaxPercent *float64
	Currency         *string
	AboutText        *string
	FooterText       *string
}

// Service exposes settings reads and admin updates.
type Service interface {
	Get(ctx context.Context) (*models.Setting, error)
	Update(ctx context.Context, input UpdateInput) (*models.Setting, error)
	Provider() Provider
}

// ServiceParams wires the settings service dependencies.
type ServiceParams struct {
	Store  Store
	Logger *logger.Logger
}

type service struct {
	store Store
	logg  *logger.Logger

	mu     sync.RWMutex
	cached *models.Setting
}

// NewService constructs the settings service with its read-through cache.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("settings store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: params.Store, logg: params.Logger}, nil
}

func (s *service) Get(ctx context.Context) (*models.Setting, error) {
	return s.Current(ctx)
}

// Current returns the cached settings, loading them on first use.
func (s *service) Current(ctx context.Context) (*models.Setting, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		copied := *cached
		return &copied, nil
	}

	return s.load(ctx)
}

// Refresh drops the cache and reloads from the store.
func (s *service) Refresh(ctx context.Context) error {
	_, err := s.load(ctx)
	return err
}

func (s *service) load(ctx context.Context) (*models.Setting, error) {
	setting, err := s.store.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading settings")
	}

	s.mu.Lock()
	s.cached = setting
	s.mu.Unlock()

	copied := *setting
	return &copied, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Setting, error) {
	if input.GlobalTaxPercent != nil {
		pct := *input.GlobalTaxPercent
		if pct < 0 || pct > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "global tax percent must be between 0 and 100")
		}
	}

	current, err := s.store.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading settings")
	}

	applyUpdate(current, input)

	saved, err := s.store.Save(ctx, current)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving settings")
	}

	// refresh-on-write keeps readers on the new values immediately
	s.mu.Lock()
	s.cached = saved
	s.mu.Unlock()

	s.logg.Info(ctx, "store settings updated")

	copied := *saved
	return &copied, nil
}

func (s *service) Provider() Provider {
	return s
}

func applyUpdate(setting *models.Setting, input UpdateInput) {
	if input.StoreName != nil {
		setting.StoreName = *input.StoreName
	}
	if input.StoreEmail != nil {
		setting.StoreEmail = *input.StoreEmail
	}
	if input.StorePhone != nil {
		setting.StorePhone = *input.StorePhone
	}
	if input.StoreAddress != nil {
		setting.StoreAddress = *input.StoreAddress
	}
	if input.StoreCity != nil {
		setting.StoreCity = *input.StoreCity
	}
	if input.StoreCountry != nil {
		setting.StoreCountry = *input.StoreCountry
	}
	if input.TaxNumber != nil {
		setting.TaxNumber = *input.TaxNumber
	}
	if input.GlobalTaxPercent != nil {
		setting.GlobalTaxPercent = *input.GlobalTaxPercent
	}
	if input.Currency != nil {
		setting.Currency = *input.Currency
	}
	if input.AboutText != nil {
		setting.AboutText = *input.AboutText
	}
	if input.FooterText != nil {
		setting.FooterText = *input.FooterText
	}
}
