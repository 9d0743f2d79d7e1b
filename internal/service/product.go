package service

import (
	"context"
	"fmt"

	"hivecore/internal/datacontext"
	"hivecore/internal/events"
	"hivecore/internal/mapping"
	"hivecore/pkg/domain"
	"hivecore/pkg/dto"
)

// ProductCatalogueService manages catalogue products.
type ProductCatalogueService struct {
	instrumentation
	data datacontext.CatalogueContext
}

// NewProductCatalogueService builds a product service over data.
func NewProductCatalogueService(data datacontext.CatalogueContext, mapper *mapping.Registry, opts ...Option) *ProductCatalogueService {
	return &ProductCatalogueService{instrumentation: newInstrumentation(domain.EntityProduct, mapper, opts), data: data}
}

// ListProducts returns one page of products ordered by id. start and amount
// must not be negative.
func (s *ProductCatalogueService) ListProducts(ctx context.Context, start, amount int) (items []dto.ProductListItem, err error) {
	ctx, done := s.begin(ctx, domain.EntityProduct, opList, 0)
	defer done(&err)
	if err = checkPage(start, amount); err != nil {
		return nil, err
	}
	err = s.data.View(ctx, func(ctx context.Context) error {
		products, err := byID(s.data.Products()).Skip(start).Take(amount).ToList(ctx)
		if err != nil {
			return err
		}
		items, err = mapping.MapAll[*domain.CatalogueProduct, dto.ProductListItem](s.mapper, products)
		return err
	})
	return items, err
}

// GetProduct returns a product that exists and is not soft-deleted.
func (s *ProductCatalogueService) GetProduct(ctx context.Context, id int) (view dto.Product, err error) {
	ctx, done := s.begin(ctx, domain.EntityProduct, opGet, id)
	defer done(&err)
	err = s.data.View(ctx, func(ctx context.Context) error {
		p, err := findActive(ctx, s.data.Products(), domain.EntityProduct, id)
		if err != nil {
			return err
		}
		view, err = mapping.Map[*domain.CatalogueProduct, dto.Product](s.mapper, p)
		return err
	})
	return view, err
}

// ListCategoryProducts returns the products of an existing category ordered by id.
func (s *ProductCatalogueService) ListCategoryProducts(ctx context.Context, categoryID int) (items []dto.ProductListItem, err error) {
	ctx, done := s.begin(ctx, domain.EntityProduct, opChildren, categoryID)
	defer done(&err)
	err = s.data.View(ctx, func(ctx context.Context) error {
		if _, err := findExisting(ctx, s.data.Categories(), domain.EntityCategory, categoryID); err != nil {
			return err
		}
		products, err := byID(s.data.Products()).
			Where(func(p *domain.CatalogueProduct) bool { return p.CategoryID == categoryID }).
			ToList(ctx)
		if err != nil {
			return err
		}
		items, err = mapping.MapAll[*domain.CatalogueProduct, dto.ProductListItem](s.mapper, products)
		return err
	})
	return items, err
}

// CreateProduct adds a product to an active category.
func (s *ProductCatalogueService) CreateProduct(ctx context.Context, req dto.UpdateProductRequest) (view dto.Product, err error) {
	ctx, done := s.begin(ctx, domain.EntityProduct, opCreate, 0)
	defer done(&err)
	if err := validPrice(req); err != nil {
		return view, err
	}
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		if err := ownerExists(ctx, s.data.Categories(), domain.EntityCategory, req.CategoryID); err != nil {
			return err
		}
		p, err := insert(ctx, &s.instrumentation, s.data.Products(), domain.EntityProduct, req, req.Code, func(id int) *domain.CatalogueProduct {
			return &domain.CatalogueProduct{Base: domain.Base{ID: id}}
		})
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityProduct, events.ActionCreated, p, p.UpdatedAt)
		view, err = mapping.Map[*domain.CatalogueProduct, dto.Product](s.mapper, p)
		return err
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return view, err
}

// UpdateProduct overwrites the mutable fields of product id.
func (s *ProductCatalogueService) UpdateProduct(ctx context.Context, id int, req dto.UpdateProductRequest) (view dto.Product, err error) {
	ctx, done := s.begin(ctx, domain.EntityProduct, opUpdate, id)
	defer done(&err)
	if err := validPrice(req); err != nil {
		return view, err
	}
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		if _, err := findExisting(ctx, s.data.Products(), domain.EntityProduct, id); err != nil {
			return err
		}
		if err := ownerExists(ctx, s.data.Categories(), domain.EntityCategory, req.CategoryID); err != nil {
			return err
		}
		p, err := modify(ctx, &s.instrumentation, s.data.Products(), domain.EntityProduct, id, req, req.Code)
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityProduct, events.ActionUpdated, p, p.UpdatedAt)
		view, err = mapping.Map[*domain.CatalogueProduct, dto.Product](s.mapper, p)
		return err
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return view, err
}

// SetStatus sets or clears the soft-delete flag of product id.
func (s *ProductCatalogueService) SetStatus(ctx context.Context, id int, deleted bool) (err error) {
	ctx, done := s.begin(ctx, domain.EntityProduct, opSetStatus, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		p, err := changeStatus(ctx, &s.instrumentation, s.data.Products(), domain.EntityProduct, id, deleted)
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityProduct, events.ActionStatusChanged, p, s.now())
		return nil
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return err
}

// DeleteProduct purges a soft-deleted product.
func (s *ProductCatalogueService) DeleteProduct(ctx context.Context, id int) (err error) {
	ctx, done := s.begin(ctx, domain.EntityProduct, opDelete, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		p, err := purge(ctx, s.data.Products(), domain.EntityProduct, id, nil)
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityProduct, events.ActionPurged, p, s.now())
		return nil
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return err
}

func validPrice(req dto.UpdateProductRequest) error {
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: negative price %s", domain.ErrInvalidArgument, req.Price)
	}
	return nil
}
