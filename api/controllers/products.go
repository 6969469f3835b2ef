package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/api/responses"
	"github.com/littlemija/littlemija-backend/api/validators"
	productsvc "github.com/littlemija/littlemija-backend/internal/products"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
)

// PublicListProducts lists the catalog without cost. ?category= and ?in_stock= narrow it.
func PublicListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, false)
}

// AdminListProducts lists the catalog including cost.
func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, true)
}

func listProducts(svc productsvc.Service, logg *logger.Logger, includeCost bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "product")
			return
		}

		filter, err := parseProductFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListProducts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productsvc.ToDTOs(list, includeCost))
	}
}

func PublicGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "product")
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productsvc.ToDTO(*product, false))
	}
}

func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "product")
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

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, productsvc.ToDTO(*product, true))
	}
}

func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "product")
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
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

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productsvc.ToDTO(*product, true))
	}
}

func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "product")
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": true, "id": productID})
	}
}

// Longer descriptions are truncated rather than rejected.
const maxDescriptionLen = 2000

type createProductRequest struct {
	Name             string          `json:"name" validate:"required,max=200"`
	Category         string          `json:"category" validate:"required"`
	Price            decimal.Decimal `json:"price" validate:"gt=0,money"`
	Cost             decimal.Decimal `json:"cost" validate:"gt=0,money"`
	Stock            int             `json:"stock" validate:"min=0"`
	Image            string          `json:"image,omitempty" validate:"omitempty,max=2048"`
	Description      string          `json:"description,omitempty"`
	EstimatedArrival *time.Time      `json:"estimated_arrival,omitempty"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	return productsvc.CreateProductInput{
		Name:             r.Name,
		Category:         category,
		Price:            r.Price,
		Cost:             r.Cost,
		Stock:            r.Stock,
		Image:            r.Image,
		Description:      validators.SanitizeString(r.Description, maxDescriptionLen),
		EstimatedArrival: r.EstimatedArrival,
	}, nil
}

// updateProductRequest carries only the fields being changed. A null estimated_arrival with
// clear_estimated_arrival set removes the date.
type updateProductRequest struct {
	Name                  *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Category              *string          `json:"category,omitempty"`
	Price                 *decimal.Decimal `json:"price,omitempty"`
	Cost                  *decimal.Decimal `json:"cost,omitempty"`
	Stock                 *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	Image                 *string          `json:"image,omitempty" validate:"omitempty,max=2048"`
	Description           *string          `json:"description,omitempty"`
	EstimatedArrival      *time.Time       `json:"estimated_arrival,omitempty"`
	ClearEstimatedArrival bool             `json:"clear_estimated_arrival,omitempty"`
}

func (r updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:             r.Name,
		Price:            r.Price,
		Cost:             r.Cost,
		Stock:            r.Stock,
		Image:            r.Image,
		Description:      r.Description,
		EstimatedArrival: r.EstimatedArrival,
		ClearArrival:     r.ClearEstimatedArrival,
	}
	if r.Description != nil {
		trimmed := validators.SanitizeString(*r.Description, maxDescriptionLen)
		input.Description = &trimmed
	}
	if r.Category != nil {
		category, err := enums.ParseProductCategory(strings.TrimSpace(*r.Category))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	return input, nil
}

func parseProductFilter(r *http.Request) (productsvc.ListFilter, error) {
	var filter productsvc.ListFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category").WithDetails(map[string]any{"field": "category"})
		}
		filter.Category = &category
	}
	inStock, err := validators.ParseQueryBool(r, "in_stock")
	if err != nil {
		return filter, err
	}
	filter.InStock = inStock
	return filter, nil
}
