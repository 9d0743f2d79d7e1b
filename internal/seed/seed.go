// Package seed loads YAML fixtures and applies them through the domain
// services, so seeded rows obey the same rules as any other write.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"hivecore/internal/service"
	"hivecore/pkg/dto"
)

// Fixture is the document root.
type Fixture struct {
	Hives      []Hive     `yaml:"hives"`
	Categories []Category `yaml:"categories"`
}

// Hive is a hive with its sections.
type Hive struct {
	dto.UpdateHiveRequest `yaml:",inline"`
	Sections              []Section `yaml:"sections"`
}

// Section is a hive section; its hive is the enclosing entry.
type Section struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Category is a product category with its products.
type Category struct {
	dto.UpdateProductCategoryRequest `yaml:",inline"`
	Products                         []Product `yaml:"products"`
}

// Product is a catalogue product; its category is the enclosing entry.
type Product struct {
	Code             string `yaml:"code"`
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	ManufacturerCode string `yaml:"manufacturer_code"`
	Price            string `yaml:"price"`
}

// Counts reports how many rows Apply created.
type Counts struct {
	Hives      int
	Sections   int
	Categories int
	Products   int
}

// Services are the write paths a fixture is applied through.
type Services struct {
	Hives      *service.HiveService
	Sections   *service.HiveSectionService
	Categories *service.ProductCategoryService
	Products   *service.ProductCatalogueService
}

// Load decodes a fixture, rejecting unknown keys.
func Load(r io.Reader) (Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return fx, nil
}

// LoadFile reads and decodes the fixture at path.
func LoadFile(path string) (Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return Load(bytes.NewReader(raw))
}

// Apply creates every row of fx in document order and stops at the first
// failure. Rows created before the failure stay in place.
func Apply(ctx context.Context, fx Fixture, svc Services) (Counts, error) {
	var counts Counts
	for _, h := range fx.Hives {
		hive, err := svc.Hives.CreateHive(ctx, h.UpdateHiveRequest)
		if err != nil {
			return counts, fmt.Errorf("seed hive %q: %w", h.Code, err)
		}
		counts.Hives++
		for _, s := range h.Sections {
			req := dto.UpdateHiveSectionRequest{Code: s.Code, Name: s.Name, StoreHiveID: hive.ID}
			if _, err := svc.Sections.CreateHiveSection(ctx, req); err != nil {
				return counts, fmt.Errorf("seed section %q of hive %q: %w", s.Code, h.Code, err)
			}
			counts.Sections++
		}
	}
	for _, c := range fx.Categories {
		category, err := svc.Categories.CreateCategory(ctx, c.UpdateProductCategoryRequest)
		if err != nil {
			return counts, fmt.Errorf("seed category %q: %w", c.Code, err)
		}
		counts.Categories++
		for _, p := range c.Products {
			price := decimal.Zero
			if p.Price != "" {
				if price, err = decimal.NewFromString(p.Price); err != nil {
					return counts, fmt.Errorf("seed product %q: price: %w", p.Code, err)
				}
			}
			req := dto.UpdateProductRequest{
				Code:             p.Code,
				Name:             p.Name,
				Description:      p.Description,
				ManufacturerCode: p.ManufacturerCode,
				CategoryID:       category.ID,
				Price:            price,
			}
			if _, err := svc.Products.CreateProduct(ctx, req); err != nil {
				return counts, fmt.Errorf("seed product %q of category %q: %w", p.Code, c.Code, err)
			}
			counts.Products++
		}
	}
	return counts, nil
}
