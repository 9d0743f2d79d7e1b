package mapping

import (
	"hivecore/pkg/domain"
	"hivecore/pkg/dto"
)

// Default builds a registry holding every entity <-> DTO mapping used by the
// domain services. Each call returns a fresh registry.
func Default() *Registry {
	r := NewRegistry()
	registerHives(r)
	registerSections(r)
	registerCategories(r)
	registerProducts(r)
	return r
}

func registerHives(r *Registry) {
	Register(r, func(h *domain.StoreHive) dto.Hive {
		return dto.Hive{ID: h.ID, Code: h.Code, Name: h.Name, Address: h.Address, IsDeleted: h.IsDeleted, LastUpdated: h.UpdatedAt}
	})
	Register(r, func(h *domain.StoreHive) dto.HiveListItem {
		return dto.HiveListItem{ID: h.ID, Code: h.Code, Name: h.Name, IsDeleted: h.IsDeleted}
	})
	Register(r, func(h *domain.StoreHive) dto.UpdateHiveRequest {
		return dto.UpdateHiveRequest{Code: h.Code, Name: h.Name, Address: h.Address}
	})
	RegisterApply(r, func(req dto.UpdateHiveRequest, h *domain.StoreHive) {
		h.Code, h.Name, h.Address = req.Code, req.Name, req.Address
	})
}

func registerSections(r *Registry) {
	Register(r, func(s *domain.StoreHiveSection) dto.HiveSection {
		return dto.HiveSection{ID: s.ID, Code: s.Code, Name: s.Name, StoreHiveID: s.StoreHiveID, IsDeleted: s.IsDeleted, LastUpdated: s.UpdatedAt}
	})
	Register(r, func(s *domain.StoreHiveSection) dto.HiveSectionListItem {
		return dto.HiveSectionListItem{ID: s.ID, Code: s.Code, Name: s.Name, StoreHiveID: s.StoreHiveID, IsDeleted: s.IsDeleted}
	})
	Register(r, func(s *domain.StoreHiveSection) dto.UpdateHiveSectionRequest {
		return dto.UpdateHiveSectionRequest{Code: s.Code, Name: s.Name, StoreHiveID: s.StoreHiveID}
	})
	RegisterApply(r, func(req dto.UpdateHiveSectionRequest, s *domain.StoreHiveSection) {
		s.Code, s.Name, s.StoreHiveID = req.Code, req.Name, req.StoreHiveID
	})
}

func registerCategories(r *Registry) {
	Register(r, func(c *domain.ProductCategory) dto.ProductCategory {
		return dto.ProductCategory{ID: c.ID, Code: c.Code, Name: c.Name, Description: c.Description, IsDeleted: c.IsDeleted, LastUpdated: c.UpdatedAt}
	})
	Register(r, func(c *domain.ProductCategory) dto.ProductCategoryListItem {
		return dto.ProductCategoryListItem{ID: c.ID, Code: c.Code, Name: c.Name, IsDeleted: c.IsDeleted}
	})
	Register(r, func(c *domain.ProductCategory) dto.UpdateProductCategoryRequest {
		return dto.UpdateProductCategoryRequest{Code: c.Code, Name: c.Name, Description: c.Description}
	})
	RegisterApply(r, func(req dto.UpdateProductCategoryRequest, c *domain.ProductCategory) {
		c.Code, c.Name, c.Description = req.Code, req.Name, req.Description
	})
}

func registerProducts(r *Registry) {
	Register(r, func(p *domain.CatalogueProduct) dto.Product {
		return dto.Product{
			ID:               p.ID,
			Code:             p.Code,
			Name:             p.Name,
			Description:      p.Description,
			ManufacturerCode: p.ManufacturerCode,
			CategoryID:       p.CategoryID,
			Price:            p.Price,
			IsDeleted:        p.IsDeleted,
			LastUpdated:      p.UpdatedAt,
		}
	})
	Register(r, func(p *domain.CatalogueProduct) dto.ProductListItem {
		return dto.ProductListItem{ID: p.ID, Code: p.Code, Name: p.Name, CategoryID: p.CategoryID, Price: p.Price, IsDeleted: p.IsDeleted}
	})
	Register(r, func(p *domain.CatalogueProduct) dto.UpdateProductRequest {
		return dto.UpdateProductRequest{
			Code:             p.Code,
			Name:             p.Name,
			Description:      p.Description,
			ManufacturerCode: p.ManufacturerCode,
			CategoryID:       p.CategoryID,
			Price:            p.Price,
		}
	})
	RegisterApply(r, func(req dto.UpdateProductRequest, p *domain.CatalogueProduct) {
		p.Code = req.Code
		p.Name = req.Name
		p.Description = req.Description
		p.ManufacturerCode = req.ManufacturerCode
		p.CategoryID = req.CategoryID
		p.Price = req.Price
	})
}
