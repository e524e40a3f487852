package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hendrawijaya/shopfront-backend/api/responses"
	"github.com/hendrawijaya/shopfront-backend/api/validators"
	"github.com/hendrawijaya/shopfront-backend/internal/catalog"
	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
	"github.com/hendrawijaya/shopfront-backend/pkg/pagination"
)

// AdminCatalogService is the admin-facing slice of the catalog service.
type AdminCatalogService interface {
	ListAllProducts(ctx context.Context, query catalog.ListQuery) ([]models.Product, pagination.Meta, error)
	CreateProduct(ctx context.Context, input catalog.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input catalog.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)
	CreateCategory(ctx context.Context, input catalog.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input catalog.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type productRequest struct {
	CategoryID    uuid.UUID `json:"categoryId" validate:"required"`
	Slug          string    `json:"slug" validate:"required,min=2,max=120"`
	Name          string    `json:"name" validate:"required,min=2,max=255"`
	Description   *string   `json:"description,omitempty"`
	Price         string    `json:"price" validate:"required"`
	SalePrice     *string   `json:"salePrice,omitempty"`
	StockQuantity int       `json:"stockQuantity" validate:"min=0"`
	Images        []string  `json:"images,omitempty"`
	IsActive      bool      `json:"isActive"`
	IsFeatured    bool      `json:"isFeatured"`
}

func (p productRequest) toInput() (catalog.ProductInput, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return catalog.ProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price").
			WithDetails(map[string]string{"price": "must be a decimal amount"})
	}
	input := catalog.ProductInput{
		CategoryID:    p.CategoryID,
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		Price:         price,
		StockQuantity: p.StockQuantity,
		Images:        p.Images,
		IsActive:      p.IsActive,
		IsFeatured:    p.IsFeatured,
	}
	if p.SalePrice != nil {
		sale, err := decimal.NewFromString(*p.SalePrice)
		if err != nil {
			return catalog.ProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale price").
				WithDetails(map[string]string{"salePrice": "must be a decimal amount"})
		}
		input.SalePrice = &sale
	}
	return input, nil
}

// AdminProductList serves all products, inactive ones included.
func AdminProductList(svc AdminCatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := catalog.ListQuery{
			CategorySlug: r.URL.Query().Get("category"),
			Search:       r.URL.Query().Get("q"),
			Page:         pagination.FromQuery(r.URL.Query()),
		}

		products, meta, err := svc.ListAllProducts(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]productResponse, 0, len(products))
		for _, product := range products {
			out = append(out, newProductResponse(product))
		}
		responses.WriteSuccessMeta(w, out, meta)
	}
}

// AdminProductCreate inserts a catalog product.
func AdminProductCreate(svc AdminCatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(*product))
	}
}

// AdminProductUpdate replaces a product's writable fields.
func AdminProductUpdate(svc AdminCatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

// AdminProductDelete removes a product.
func AdminProductDelete(svc AdminCatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
