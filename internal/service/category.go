package service

import (
	"context"

	"hivecore/internal/datacontext"
	"hivecore/internal/events"
	"hivecore/internal/mapping"
	"hivecore/pkg/domain"
	"hivecore/pkg/dto"
	"hivecore/pkg/entityset"
)

// ProductCategoryService manages product categories.
type ProductCategoryService struct {
	instrumentation
	data datacontext.CatalogueContext
}

// NewProductCategoryService builds a category service over data.
func NewProductCategoryService(data datacontext.CatalogueContext, mapper *mapping.Registry, opts ...Option) *ProductCategoryService {
	return &ProductCategoryService{instrumentation: newInstrumentation(domain.EntityCategory, mapper, opts), data: data}
}

// ListCategories returns one page of categories ordered by id, each with the
// number of products it holds.
func (s *ProductCategoryService) ListCategories(ctx context.Context, start, amount int) (items []dto.ProductCategoryListItem, err error) {
	ctx, done := s.begin(ctx, domain.EntityCategory, opList, 0)
	defer done(&err)
	if err = checkPage(start, amount); err != nil {
		return nil, err
	}
	err = s.data.View(ctx, func(ctx context.Context) error {
		counts, err := productCounts(ctx, s.data.Products())
		if err != nil {
			return err
		}
		categories, err := byID(s.data.Categories()).Skip(start).Take(amount).ToList(ctx)
		if err != nil {
			return err
		}
		if items, err = mapping.MapAll[*domain.ProductCategory, dto.ProductCategoryListItem](s.mapper, categories); err != nil {
			return err
		}
		for n := range items {
			items[n].ProductCount = counts[items[n].ID]
		}
		return nil
	})
	return items, err
}

// GetCategory returns a category that exists and is not soft-deleted.
func (s *ProductCategoryService) GetCategory(ctx context.Context, id int) (view dto.ProductCategory, err error) {
	ctx, done := s.begin(ctx, domain.EntityCategory, opGet, id)
	defer done(&err)
	err = s.data.View(ctx, func(ctx context.Context) error {
		c, err := findActive(ctx, s.data.Categories(), domain.EntityCategory, id)
		if err != nil {
			return err
		}
		view, err = mapping.Map[*domain.ProductCategory, dto.ProductCategory](s.mapper, c)
		return err
	})
	return view, err
}

// CreateCategory adds a category.
func (s *ProductCategoryService) CreateCategory(ctx context.Context, req dto.UpdateProductCategoryRequest) (view dto.ProductCategory, err error) {
	ctx, done := s.begin(ctx, domain.EntityCategory, opCreate, 0)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		c, err := insert(ctx, &s.instrumentation, s.data.Categories(), domain.EntityCategory, req, req.Code, func(id int) *domain.ProductCategory {
			return &domain.ProductCategory{Base: domain.Base{ID: id}}
		})
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityCategory, events.ActionCreated, c, c.UpdatedAt)
		view, err = mapping.Map[*domain.ProductCategory, dto.ProductCategory](s.mapper, c)
		return err
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return view, err
}

// UpdateCategory overwrites the mutable fields of category id.
func (s *ProductCategoryService) UpdateCategory(ctx context.Context, id int, req dto.UpdateProductCategoryRequest) (view dto.ProductCategory, err error) {
	ctx, done := s.begin(ctx, domain.EntityCategory, opUpdate, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		c, err := modify(ctx, &s.instrumentation, s.data.Categories(), domain.EntityCategory, id, req, req.Code)
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityCategory, events.ActionUpdated, c, c.UpdatedAt)
		view, err = mapping.Map[*domain.ProductCategory, dto.ProductCategory](s.mapper, c)
		return err
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return view, err
}

// SetStatus sets or clears the soft-delete flag of category id.
func (s *ProductCategoryService) SetStatus(ctx context.Context, id int, deleted bool) (err error) {
	ctx, done := s.begin(ctx, domain.EntityCategory, opSetStatus, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		c, err := changeStatus(ctx, &s.instrumentation, s.data.Categories(), domain.EntityCategory, id, deleted)
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityCategory, events.ActionStatusChanged, c, s.now())
		return nil
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return err
}

// DeleteCategory purges a soft-deleted category that holds no products.
func (s *ProductCategoryService) DeleteCategory(ctx context.Context, id int) (err error) {
	ctx, done := s.begin(ctx, domain.EntityCategory, opDelete, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		c, err := purge(ctx, s.data.Categories(), domain.EntityCategory, id, func(c *domain.ProductCategory) error {
			n, err := s.data.Products().Query().
				Where(func(p *domain.CatalogueProduct) bool { return p.CategoryID == c.ID }).
				Count(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.ConflictError{Entity: domain.EntityCategory, ID: c.ID, Reason: "category still has products"}
			}
			return nil
		})
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityCategory, events.ActionPurged, c, s.now())
		return nil
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return err
}

func productCounts(ctx context.Context, products *entityset.Set[*domain.CatalogueProduct]) (map[int]int, error) {
	owners, err := entityset.Select(products.Query(), func(p *domain.CatalogueProduct) int { return p.CategoryID }).ToList(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int, len(owners))
	for _, id := range owners {
		counts[id]++
	}
	return counts, nil
}
