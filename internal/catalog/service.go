package catalog

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hendrawijaya/shopfront-backend/pkg/db"
	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/pagination"
)

// ProductInput carries the writable product fields for admin mutations.
type ProductInput struct {
	CategoryID    uuid.UUID
	Slug          string
	Name          string
	Description   *string
	Price         decimal.Decimal
	SalePrice     *decimal.Decimal
	StockQuantity int
	Images        []string
	IsActive      bool
	IsFeatured    bool
}

// CategoryInput carries the writable category fields for admin mutations.
type CategoryInput struct {
	Slug        string
	Name        string
	Description *string
	IsActive    bool
}

// ListQuery narrows storefront product listings.
type ListQuery struct {
	CategorySlug string
	Search       string
	FeaturedOnly bool
	Page         pagination.Params
}

// Service owns catalog reads for the storefront and product/category
// management for admins.
type Service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &Service{repo: repo}, nil
}

// GetProduct returns a product by id regardless of its active flag. Intended
// for internal callers that hold an id already; storefront lookups go through
// GetProductBySlug.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching product")
	}
	return product, nil
}

// GetProductBySlug returns an active product for the storefront. Inactive
// products are indistinguishable from missing ones.
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// ListProducts returns active products for the storefront with pagination
// metadata.
func (s *Service) ListProducts(ctx context.Context, query ListQuery) ([]models.Product, pagination.Meta, error) {
	filter := ProductFilter{
		CategorySlug: query.CategorySlug,
		Search:       query.Search,
		FeaturedOnly: query.FeaturedOnly,
		ActiveOnly:   true,
	}
	products, total, err := s.repo.ListProducts(ctx, filter, query.Page)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return products, pagination.NewMeta(pagination.Normalize(query.Page), total), nil
}

// ListAllProducts returns products without the active filter, for admins.
func (s *Service) ListAllProducts(ctx context.Context, query ListQuery) ([]models.Product, pagination.Meta, error) {
	filter := ProductFilter{
		CategorySlug: query.CategorySlug,
		Search:       query.Search,
		FeaturedOnly: query.FeaturedOnly,
	}
	products, total, err := s.repo.ListProducts(ctx, filter, query.Page)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return products, pagination.NewMeta(pagination.Normalize(query.Page), total), nil
}

// ListCategories returns categories, optionally restricted to active ones.
func (s *Service) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return categories, nil
}

// CreateProduct inserts a new product. Slug collisions surface as conflicts.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	if _, err := s.mustCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:    input.CategoryID,
		Slug:          input.Slug,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		SalePrice:     input.SalePrice,
		StockQuantity: input.StockQuantity,
		Images:        input.Images,
		IsActive:      input.IsActive,
		IsFeatured:    input.IsFeatured,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "products_slug_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return created, nil
}

// UpdateProduct replaces the writable fields of an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.CategoryID != input.CategoryID {
		if _, err := s.mustCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	product.CategoryID = input.CategoryID
	product.Slug = input.Slug
	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.SalePrice = input.SalePrice
	product.StockQuantity = input.StockQuantity
	product.Images = input.Images
	product.IsActive = input.IsActive
	product.IsFeatured = input.IsFeatured

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "products_slug_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return updated, nil
}

// DeleteProduct removes a product. Past order lines keep their own copies of
// product data, so deletion does not rewrite history.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

// CreateCategory inserts a new category.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	category := &models.Category{
		Slug:        input.Slug,
		Name:        input.Name,
		Description: input.Description,
		IsActive:    input.IsActive,
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "categories_slug_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	return created, nil
}

// UpdateCategory replaces the writable fields of an existing category.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	category, err := s.mustCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Slug = input.Slug
	category.Name = input.Name
	category.Description = input.Description
	category.IsActive = input.IsActive

	updated, err := s.repo.UpdateCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "categories_slug_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating category")
	}
	return updated, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.mustCategory(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting category")
	}
	return nil
}

// StockOf returns the live stock quantity for a product.
func (s *Service) StockOf(ctx context.Context, id uuid.UUID) (int, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return 0, err
	}
	return product.StockQuantity, nil
}

// PriceOf returns the effective price for a product, honoring any sale price.
func (s *Service) PriceOf(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return product.CurrentPrice(), nil
}

func (s *Service) mustCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching category")
	}
	return category, nil
}

func validateProductInput(input ProductInput) error {
	details := map[string]string{}
	if input.CategoryID == uuid.Nil {
		details["categoryId"] = "category id is required"
	}
	if input.Slug == "" {
		details["slug"] = "slug is required"
	}
	if input.Name == "" {
		details["name"] = "name is required"
	}
	if input.Price.IsNegative() {
		details["price"] = "price cannot be negative"
	}
	if input.SalePrice != nil && input.SalePrice.IsNegative() {
		details["salePrice"] = "sale price cannot be negative"
	}
	if input.StockQuantity < 0 {
		details["stockQuantity"] = "stock quantity cannot be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product input").WithDetails(details)
	}
	return nil
}

func validateCategoryInput(input CategoryInput) error {
	details := map[string]string{}
	if input.Slug == "" {
		details["slug"] = "slug is required"
	}
	if input.Name == "" {
		details["name"] = "name is required"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid category input").WithDetails(details)
	}
	return nil
}
