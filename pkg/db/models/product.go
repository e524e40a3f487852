package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. Price and stock here are the live,
// authoritative values; carts capture snapshots of them at add time.
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID    uuid.UUID        `gorm:"column:category_id;type:uuid;not null"`
	Slug          string           `gorm:"column:slug;not null;uniqueIndex"`
	Name          string           `gorm:"column:name;not null"`
	Description   *string          `gorm:"column:description"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	SalePrice     *decimal.Decimal `gorm:"column:sale_price;type:numeric(10,2)"`
	StockQuantity int              `gorm:"column:stock_quantity;not null;default:0"`
	Images        pq.StringArray   `gorm:"column:images;type:text[]"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured    bool             `gorm:"column:is_featured;not null;default:false"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// CurrentPrice returns the sale price when one is set, otherwise the list price.
func (p Product) CurrentPrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.IsPositive() {
		return *p.SalePrice
	}
	return p.Price
}

// FeaturedImage returns the first image reference, if any.
func (p Product) FeaturedImage() *string {
	if len(p.Images) == 0 {
		return nil
	}
	img := p.Images[0]
	return &img
}

// InStock reports whether the requested quantity can be fulfilled.
func (p Product) InStock(qty int) bool {
	return qty > 0 && qty <= p.StockQuantity
}
