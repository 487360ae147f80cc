package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/boutique2v/commerce-backend/api/responses"
	"github.com/boutique2v/commerce-backend/api/validators"
	categorysvc "github.com/boutique2v/commerce-backend/internal/categories"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// CategoryList is the public category listing. Non-admin callers only ever
// see active categories.
func CategoryList(svc categorysvc.Service, activeOnly bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categories, err := svc.List(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lo.Map(categories, func(c models.Category, _ int) categoryResponse {
			return newCategoryResponse(&c)
		}))
	}
}

// CategoryDetail returns one category by id.
func CategoryDetail(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "categoryID"), "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCategoryResponse(category))
	}
}

// AdminCreateCategory adds a category.
func AdminCreateCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCategoryResponse(category))
	}
}

// AdminUpdateCategory applies a partial category mutation.
func AdminUpdateCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "categoryID"), "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCategoryResponse(category))
	}
}

// AdminDeleteCategory removes a category; the default category is protected.
func AdminDeleteCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "categoryID"), "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createCategoryRequest struct {
	Name          string               `json:"name" validate:"required"`
	Slug          *string              `json:"slug,omitempty"`
	Description   *string              `json:"description,omitempty"`
	ImageURL      *string              `json:"image_url,omitempty"`
	IsDefault     bool                 `json:"is_default"`
	IsActive      *bool                `json:"is_active,omitempty"`
	SortOrder     int                  `json:"sort_order"`
	Subcategories []subcategoryPayload `json:"subcategories,omitempty" validate:"omitempty,dive"`
}

type subcategoryPayload struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (r createCategoryRequest) toInput() categorysvc.CreateInput {
	return categorysvc.CreateInput{
		Name:          r.Name,
		Slug:          r.Slug,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		IsDefault:     r.IsDefault,
		IsActive:      r.IsActive,
		SortOrder:     r.SortOrder,
		Subcategories: toSubcategoryInputs(r.Subcategories),
	}
}

type updateCategoryRequest struct {
	Name          *string               `json:"name,omitempty"`
	Slug          *string               `json:"slug,omitempty"`
	Description   *string               `json:"description,omitempty"`
	ImageURL      *string               `json:"image_url,omitempty"`
	IsDefault     *bool                 `json:"is_default,omitempty"`
	IsActive      *bool                 `json:"is_active,omitempty"`
	SortOrder     *int                  `json:"sort_order,omitempty"`
	Subcategories *[]subcategoryPayload `json:"subcategories,omitempty" validate:"omitempty,dive"`
}

func (r updateCategoryRequest) toInput() categorysvc.UpdateInput {
	input := categorysvc.UpdateInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		IsDefault:   r.IsDefault,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
	if r.Subcategories != nil {
		subs := toSubcategoryInputs(*r.Subcategories)
		input.Subcategories = &subs
	}
	return input
}

func toSubcategoryInputs(payloads []subcategoryPayload) []categorysvc.SubcategoryInput {
	return lo.Map(payloads, func(p subcategoryPayload, _ int) categorysvc.SubcategoryInput {
		return categorysvc.SubcategoryInput{
			Name:        p.Name,
			Description: p.Description,
			IsActive:    p.IsActive,
		}
	})
}

type categoryResponse struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Description   *string             `json:"description,omitempty"`
	ImageURL      *string             `json:"image_url,omitempty"`
	IsDefault     bool                `json:"is_default"`
	IsActive      bool                `json:"is_active"`
	SortOrder     int                 `json:"sort_order"`
	Subcategories []types.Subcategory `json:"subcategories"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func newCategoryResponse(c *models.Category) categoryResponse {
	subs := c.Subcategories
	if subs == nil {
		subs = []types.Subcategory{}
	}
	return categoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		Description:   c.Description,
		ImageURL:      c.ImageURL,
		IsDefault:     c.IsDefault,
		IsActive:      c.IsActive,
		SortOrder:     c.SortOrder,
		Subcategories: subs,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
