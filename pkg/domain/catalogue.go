package domain

import "github.com/shopspring/decimal"

// ProductCategory groups catalogue products.
type ProductCategory struct {
	Base
	Description string `json:"description"`
}

// CatalogueProduct is a product offered in the catalogue.
type CatalogueProduct struct {
	Base
	Description      string          `json:"description"`
	ManufacturerCode string          `json:"manufacturer_code"`
	CategoryID       int             `json:"category_id"`
	Price            decimal.Decimal `json:"price"`
}

// CloneCategory returns a detached copy.
func CloneCategory(c *ProductCategory) *ProductCategory {
	cp := *c
	return &cp
}

// CloneProduct returns a detached copy.
func CloneProduct(p *CatalogueProduct) *CatalogueProduct {
	cp := *p
	return &cp
}
