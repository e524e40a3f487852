package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hendrawijaya/shopfront-backend/api/responses"
	"github.com/hendrawijaya/shopfront-backend/internal/catalog"
	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
	"github.com/hendrawijaya/shopfront-backend/pkg/pagination"
)

// CatalogBrowser is the storefront-facing slice of the catalog service.
type CatalogBrowser interface {
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, query catalog.ListQuery) ([]models.Product, pagination.Meta, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)
}

type productResponse struct {
	ID            uuid.UUID `json:"id"`
	CategoryID    uuid.UUID `json:"categoryId"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Price         string    `json:"price"`
	SalePrice     *string   `json:"salePrice,omitempty"`
	CurrentPrice  string    `json:"currentPrice"`
	StockQuantity int       `json:"stockQuantity"`
	Images        []string  `json:"images,omitempty"`
	IsActive      bool      `json:"isActive"`
	IsFeatured    bool      `json:"isFeatured"`
	CreatedAt     time.Time `json:"createdAt"`
}

type categoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
}

func newProductResponse(product models.Product) productResponse {
	resp := productResponse{
		ID:            product.ID,
		CategoryID:    product.CategoryID,
		Slug:          product.Slug,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price.StringFixed(2),
		CurrentPrice:  product.CurrentPrice().StringFixed(2),
		StockQuantity: product.StockQuantity,
		Images:        product.Images,
		IsActive:      product.IsActive,
		IsFeatured:    product.IsFeatured,
		CreatedAt:     product.CreatedAt,
	}
	if product.SalePrice != nil {
		sale := product.SalePrice.StringFixed(2)
		resp.SalePrice = &sale
	}
	return resp
}

func newCategoryResponse(category models.Category) categoryResponse {
	return categoryResponse{
		ID:          category.ID,
		Slug:        category.Slug,
		Name:        category.Name,
		Description: category.Description,
		IsActive:    category.IsActive,
	}
}

// ProductList serves the paginated storefront catalog.
func ProductList(svc CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		query := catalog.ListQuery{
			CategorySlug: r.URL.Query().Get("category"),
			Search:       r.URL.Query().Get("q"),
			FeaturedOnly: r.URL.Query().Get("featured") == "true",
			Page:         pagination.FromQuery(r.URL.Query()),
		}

		products, meta, err := svc.ListProducts(r.Context(), query)
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

// ProductDetail serves one active product by slug.
func ProductDetail(svc CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		product, err := svc.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

// CategoryList serves the active categories for storefront navigation.
func CategoryList(svc CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]categoryResponse, 0, len(categories))
		for _, category := range categories {
			out = append(out, newCategoryResponse(category))
		}
		responses.WriteSuccess(w, out)
	}
}
