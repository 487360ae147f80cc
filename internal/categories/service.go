package categories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/boutique2v/commerce-backend/pkg/db"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// Store is the persistence surface the category service needs.
type Store interface {
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Save(ctx context.Context, category *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
	ClearDefault(ctx context.Context, except uuid.UUID) error
}

// CreateInput holds the validated payload to create a category.
type CreateInput struct {
	Name          string
	Slug          *string
	Description   *string
	ImageURL      *string
	IsDefault     bool
	IsActive      *bool
	SortOrder     int
	Subcategories []SubcategoryInput
}

// UpdateInput holds optional mutation values for a category.
type UpdateInput struct {
	Name          *string
	Slug          *string
	Description   *string
	ImageURL      *string
	IsDefault     *bool
	IsActive      *bool
	SortOrder     *int
	Subcategories *[]SubcategoryInput
}

// SubcategoryInput is one embedded subcategory.
type SubcategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// Service exposes category management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
}

// ServiceParams wires the category service dependencies.
type ServiceParams struct {
	Store  Store
	Logger *logger.Logger
}

type service struct {
	store Store
	logg  *logger.Logger
}

// NewService constructs the category service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("category store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: params.Store, logg: params.Logger}, nil
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a display name into a URL-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	slug := Slugify(name)
	if input.Slug != nil && strings.TrimSpace(*input.Slug) != "" {
		slug = Slugify(*input.Slug)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}

	category := &models.Category{
		Name:          name,
		Slug:          slug,
		Description:   input.Description,
		ImageURL:      input.ImageURL,
		IsDefault:     input.IsDefault,
		IsActive:      true,
		SortOrder:     input.SortOrder,
		Subcategories: buildSubcategories(input.Subcategories),
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	created, err := s.store.Create(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with that name or slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}

	if created.IsDefault {
		if err := s.store.ClearDefault(ctx, created.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing previous default category")
		}
	}

	s.logg.Info(s.logg.WithField(ctx, "category_id", created.ID.String()), "category created")
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error) {
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name cannot be empty")
		}
		category.Name = name
	}
	if input.Slug != nil {
		slug := Slugify(*input.Slug)
		if slug == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug cannot be empty")
		}
		category.Slug = slug
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.ImageURL != nil {
		category.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	if input.Subcategories != nil {
		category.Subcategories = buildSubcategories(*input.Subcategories)
	}
	if input.IsDefault != nil {
		category.IsDefault = *input.IsDefault
	}

	saved, err := s.store.Save(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with that name or slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating category")
	}

	if saved.IsDefault {
		if err := s.store.ClearDefault(ctx, saved.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing previous default category")
		}
	}
	return saved, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "the default category cannot be deleted")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting category")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findCategory(ctx, id)
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	rows, err := s.store.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return rows, nil
}

func (s *service) findCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading category")
	}
	return category, nil
}

func buildSubcategories(inputs []SubcategoryInput) []types.Subcategory {
	return lo.Map(inputs, func(in SubcategoryInput, _ int) types.Subcategory {
		sub := types.Subcategory{
			Name:        strings.TrimSpace(in.Name),
			Slug:        Slugify(in.Name),
			Description: in.Description,
			IsActive:    true,
		}
		if in.IsActive != nil {
			sub.IsActive = *in.IsActive
		}
		return sub
	})
}
