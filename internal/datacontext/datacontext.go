// Package datacontext declares the data-access abstraction domain services are
// written against. Implementations expose live entity sets and serialize each
// logical operation.
package datacontext

import (
	"context"

	"hivecore/pkg/domain"
	"hivecore/pkg/entityset"
)

// Unit is a logical operation executed by a context.
type Unit func(ctx context.Context) error

// Runner provides exclusion for one logical operation. Run executes a
// mutating unit and makes its effects durable when the backend supports it;
// a unit that fails leaves every set as it was before Run. View executes a
// read-only unit.
type Runner interface {
	Run(ctx context.Context, fn Unit) error
	View(ctx context.Context, fn Unit) error
}

// HiveContext exposes store hives and their sections.
type HiveContext interface {
	Runner
	Hives() *entityset.Set[*domain.StoreHive]
	Sections() *entityset.Set[*domain.StoreHiveSection]
}

// CatalogueContext exposes catalogue products and their categories.
type CatalogueContext interface {
	Runner
	Products() *entityset.Set[*domain.CatalogueProduct]
	Categories() *entityset.Set[*domain.ProductCategory]
}
