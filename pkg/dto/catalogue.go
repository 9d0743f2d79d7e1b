package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory is the detailed view of a product category.
type ProductCategory struct {
	ID          int       `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDeleted   bool      `json:"is_deleted"`
	LastUpdated time.Time `json:"last_updated"`
}

// ProductCategoryListItem is a row of the category list.
type ProductCategoryListItem struct {
	ID           int    `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	IsDeleted    bool   `json:"is_deleted"`
	ProductCount int    `json:"product_count"`
}

// UpdateProductCategoryRequest carries the mutable category fields.
type UpdateProductCategoryRequest struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Product is the detailed view of a catalogue product.
type Product struct {
	ID               int             `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	ManufacturerCode string          `json:"manufacturer_code"`
	CategoryID       int             `json:"category_id"`
	Price            decimal.Decimal `json:"price"`
	IsDeleted        bool            `json:"is_deleted"`
	LastUpdated      time.Time       `json:"last_updated"`
}

// ProductListItem is a row of a product list.
type ProductListItem struct {
	ID         int             `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	CategoryID int             `json:"category_id"`
	Price      decimal.Decimal `json:"price"`
	IsDeleted  bool            `json:"is_deleted"`
}

// UpdateProductRequest carries the mutable product fields.
type UpdateProductRequest struct {
	Code             string          `json:"code" yaml:"code"`
	Name             string          `json:"name" yaml:"name"`
	Description      string          `json:"description" yaml:"description"`
	ManufacturerCode string          `json:"manufacturer_code" yaml:"manufacturer_code"`
	CategoryID       int             `json:"category_id" yaml:"category_id"`
	Price            decimal.Decimal `json:"price" yaml:"price"`
}
