package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/boutique2v/commerce-backend/api/responses"
	"github.com/boutique2v/commerce-backend/api/validators"
	productsvc "github.com/boutique2v/commerce-backend/internal/products"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

// ProductList is the public catalog listing with filters and pagination.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filter, err := parseProductFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductDetail returns one product by id.
func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminCreateProduct handles catalog additions.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial product mutation.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminUpdateProductMeta patches listing visibility only.
func AdminUpdateProductMeta(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload metaProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateMeta(r.Context(), id, productsvc.MetaInput{
			Status:     payload.Status,
			IsFeatured: payload.IsFeatured,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product from the catalog.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "product_id")
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

func parseProductFilter(r *http.Request) (productsvc.ListFilter, error) {
	params, err := validators.ParsePagination(r)
	if err != nil {
		return productsvc.ListFilter{}, err
	}
	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return productsvc.ListFilter{}, err
	}
	minPrice, err := validators.ParseQueryFloat(r, "min_price")
	if err != nil {
		return productsvc.ListFilter{}, err
	}
	maxPrice, err := validators.ParseQueryFloat(r, "max_price")
	if err != nil {
		return productsvc.ListFilter{}, err
	}

	q := r.URL.Query()
	return productsvc.ListFilter{
		Category:    validators.SanitizeString(q.Get("category"), 120),
		Subcategory: validators.SanitizeString(q.Get("subcategory"), 120),
		Status:      validators.SanitizeString(q.Get("status"), 40),
		Featured:    featured,
		Search:      validators.SanitizeString(q.Get("search"), 200),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		Sort:        validators.SanitizeString(q.Get("sort"), 40),
		Pagination:  params,
	}, nil
}

type createProductRequest struct {
	Name              string                 `json:"name" validate:"required"`
	Description       *string                `json:"description,omitempty"`
	ShortDescription  *string                `json:"short_description,omitempty"`
	Price             float64                `json:"price" validate:"gte=0"`
	CompareAtPrice    *float64               `json:"compare_at_price,omitempty" validate:"omitempty,gte=0"`
	SKU               *string                `json:"sku,omitempty"`
	Barcode           *string                `json:"barcode,omitempty"`
	Images            []string               `json:"images,omitempty"`
	Stock             int                    `json:"stock" validate:"gte=0"`
	LowStockThreshold *int                   `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
	TrackQuantity     *bool                  `json:"track_quantity,omitempty"`
	AllowBackorder    *bool                  `json:"allow_backorder,omitempty"`
	Status            *string                `json:"status,omitempty"`
	IsFeatured        *bool                  `json:"is_featured,omitempty"`
	Category          *string                `json:"category,omitempty"`
	Subcategory       *string                `json:"subcategory,omitempty"`
	Tags              []string               `json:"tags,omitempty"`
	Weight            float64                `json:"weight" validate:"gte=0"`
	Dimensions        productDimensionsBlock `json:"dimensions"`
	ShippingTier      *string                `json:"shipping_tier,omitempty"`
}

type productDimensionsBlock struct {
	Length float64 `json:"length" validate:"gte=0"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateInput, error) {
	tier, err := parseShippingTier(r.ShippingTier)
	if err != nil {
		return productsvc.CreateInput{}, err
	}
	return productsvc.CreateInput{
		Name:              r.Name,
		Description:       r.Description,
		ShortDescription:  r.ShortDescription,
		Price:             r.Price,
		CompareAtPrice:    r.CompareAtPrice,
		SKU:               r.SKU,
		Barcode:           r.Barcode,
		Images:            r.Images,
		Stock:             r.Stock,
		LowStockThreshold: r.LowStockThreshold,
		TrackQuantity:     r.TrackQuantity,
		AllowBackorder:    r.AllowBackorder,
		Status:            r.Status,
		IsFeatured:        r.IsFeatured,
		Category:          r.Category,
		Subcategory:       r.Subcategory,
		Tags:              r.Tags,
		Weight:            r.Weight,
		Dimensions: types.Dimensions{
			Length: r.Dimensions.Length,
			Width:  r.Dimensions.Width,
			Height: r.Dimensions.Height,
		},
		ShippingTier: tier,
	}, nil
}

type updateProductRequest struct {
	Name              *string                 `json:"name,omitempty"`
	Description       *string                 `json:"description,omitempty"`
	ShortDescription  *string                 `json:"short_description,omitempty"`
	Price             *float64                `json:"price,omitempty" validate:"omitempty,gte=0"`
	CompareAtPrice    *float64                `json:"compare_at_price,omitempty" validate:"omitempty,gte=0"`
	SKU               *string                 `json:"sku,omitempty"`
	Barcode           *string                 `json:"barcode,omitempty"`
	Images            *[]string               `json:"images,omitempty"`
	Stock             *int                    `json:"stock,omitempty" validate:"omitempty,gte=0"`
	LowStockThreshold *int                    `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
	TrackQuantity     *bool                   `json:"track_quantity,omitempty"`
	AllowBackorder    *bool                   `json:"allow_backorder,omitempty"`
	Status            *string                 `json:"status,omitempty"`
	IsFeatured        *bool                   `json:"is_featured,omitempty"`
	Category          *string                 `json:"category,omitempty"`
	Subcategory       *string                 `json:"subcategory,omitempty"`
	Tags              *[]string               `json:"tags,omitempty"`
	Weight            *float64                `json:"weight,omitempty" validate:"omitempty,gte=0"`
	Dimensions        *productDimensionsBlock `json:"dimensions,omitempty"`
	ShippingTier      *string                 `json:"shipping_tier,omitempty"`
}

func (r updateProductRequest) toUpdateInput() (productsvc.UpdateInput, error) {
	tier, err := parseShippingTier(r.ShippingTier)
	if err != nil {
		return productsvc.UpdateInput{}, err
	}
	input := productsvc.UpdateInput{
		Name:              r.Name,
		Description:       r.Description,
		ShortDescription:  r.ShortDescription,
		Price:             r.Price,
		CompareAtPrice:    r.CompareAtPrice,
		SKU:               r.SKU,
		Barcode:           r.Barcode,
		Images:            r.Images,
		Stock:             r.Stock,
		LowStockThreshold: r.LowStockThreshold,
		TrackQuantity:     r.TrackQuantity,
		AllowBackorder:    r.AllowBackorder,
		Status:            r.Status,
		IsFeatured:        r.IsFeatured,
		Category:          r.Category,
		Subcategory:       r.Subcategory,
		Tags:              r.Tags,
		Weight:            r.Weight,
		ShippingTier:      tier,
	}
	if r.Dimensions != nil {
		input.Dimensions = &types.Dimensions{
			Length: r.Dimensions.Length,
			Width:  r.Dimensions.Width,
			Height: r.Dimensions.Height,
		}
	}
	return input, nil
}

type metaProductRequest struct {
	Status     *string `json:"status,omitempty"`
	IsFeatured *bool   `json:"is_featured,omitempty"`
}

func parseShippingTier(raw *string) (*enums.ShippingTier, error) {
	if raw == nil {
		return nil, nil
	}
	tier, err := enums.ParseShippingTier(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping tier")
	}
	return &tier, nil
}
