package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"hivecore/pkg/domain"
	"hivecore/pkg/dto"
)

func productRequest(code string, categoryID int, price string) dto.UpdateProductRequest {
	return dto.UpdateProductRequest{
		Code:             code,
		Name:             "Product " + code,
		Description:      "about " + code,
		ManufacturerCode: "M-" + code,
		CategoryID:       categoryID,
		Price:            decimal.RequireFromString(price),
	}
}

func TestProductRequiresCategoryAndPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.products.CreateProduct(ctx, productRequest("P1", 3, "1.00"))
	expectErr(t, err, domain.ErrNotFound)

	c := f.category(t, "C1")
	_, err = f.products.CreateProduct(ctx, productRequest("P1", c.ID, "-0.01"))
	expectErr(t, err, domain.ErrInvalidArgument)

	p, err := f.products.CreateProduct(ctx, productRequest("P1", c.ID, "19.99"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != 1 || p.CategoryID != c.ID || !p.Price.Equal(decimal.RequireFromString("19.99")) || p.ManufacturerCode != "M-P1" {
		t.Fatalf("unexpected product %+v", p)
	}

	_, err = f.products.UpdateProduct(ctx, p.ID, productRequest("P1", c.ID, "-5"))
	expectErr(t, err, domain.ErrInvalidArgument)
	_, err = f.products.UpdateProduct(ctx, p.ID, productRequest("P1", 404, "5"))
	expectErr(t, err, domain.ErrNotFound)
}

func TestProductCrud(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.category(t, "C1")
	c2 := f.category(t, "C2")
	p1, err := f.products.CreateProduct(ctx, productRequest("P1", c1.ID, "1"))
	if err != nil {
		t.Fatalf("create p1: %v", err)
	}
	p2, err := f.products.CreateProduct(ctx, productRequest("P2", c1.ID, "2"))
	if err != nil {
		t.Fatalf("create p2: %v", err)
	}
	_, err = f.products.CreateProduct(ctx, productRequest("P2", c2.ID, "3"))
	expectErr(t, err, domain.ErrConflict)

	updated, err := f.products.UpdateProduct(ctx, p2.ID, productRequest("P2x", c2.ID, "2.50"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != p2.ID || updated.CategoryID != c2.ID || updated.Code != "P2x" {
		t.Fatalf("unexpected update %+v", updated)
	}
	_, err = f.products.UpdateProduct(ctx, p2.ID, productRequest("P1", c2.ID, "2.50"))
	expectErr(t, err, domain.ErrConflict)

	got, err := f.products.GetProduct(ctx, p1.ID)
	if err != nil || got.Code != "P1" || got.Description != "about P1" {
		t.Fatalf("get: %+v err=%v", got, err)
	}

	inC1, err := f.products.ListCategoryProducts(ctx, c1.ID)
	if err != nil || len(inC1) != 1 || inC1[0].ID != p1.ID {
		t.Fatalf("category products: %+v err=%v", inC1, err)
	}
	_, err = f.products.ListCategoryProducts(ctx, 99)
	expectErr(t, err, domain.ErrNotFound)

	expectErr(t, f.products.DeleteProduct(ctx, p1.ID), domain.ErrConflict)
	if err := f.products.SetStatus(ctx, p1.ID, true); err != nil {
		t.Fatalf("set status: %v", err)
	}
	_, err = f.products.GetProduct(ctx, p1.ID)
	expectErr(t, err, domain.ErrNotFound)
	if err := f.products.DeleteProduct(ctx, p1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	expectErr(t, f.products.DeleteProduct(ctx, p1.ID), domain.ErrNotFound)
	expectErr(t, f.products.SetStatus(ctx, p1.ID, false), domain.ErrNotFound)
}

func TestProductPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t, "C")
	for _, code := range []string{"A", "B", "C", "D", "E"} {
		if _, err := f.products.CreateProduct(ctx, productRequest(code, c.ID, "1")); err != nil {
			t.Fatalf("create %s: %v", code, err)
		}
	}
	if err := f.products.SetStatus(ctx, 2, true); err != nil {
		t.Fatalf("set status: %v", err)
	}

	cases := []struct {
		name          string
		start, amount int
		want          []int
	}{
		{"first page", 0, 2, []int{1, 2}},
		{"second page", 2, 2, []int{3, 4}},
		{"partial tail", 4, 10, []int{5}},
		{"past end", 10, 2, nil},
		{"zero amount", 0, 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := f.products.ListProducts(ctx, tc.start, tc.amount)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(items) != len(tc.want) {
				t.Fatalf("expected %v, got %+v", tc.want, items)
			}
			for n, id := range tc.want {
				if items[n].ID != id {
					t.Fatalf("expected %v, got %+v", tc.want, items)
				}
			}
		})
	}

	page, _ := f.products.ListProducts(ctx, 1, 1)
	if !page[0].IsDeleted {
		t.Fatalf("soft-deleted product should be listed with its flag")
	}
	_, err := f.products.ListProducts(ctx, -1, 2)
	expectErr(t, err, domain.ErrInvalidArgument)
	_, err = f.products.ListProducts(ctx, 0, -2)
	expectErr(t, err, domain.ErrInvalidArgument)
}

func TestCategoryCrudAndCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.category(t, "C1")
	c2 := f.category(t, "C2")
	for _, code := range []string{"P1", "P2"} {
		if _, err := f.products.CreateProduct(ctx, productRequest(code, c1.ID, "1")); err != nil {
			t.Fatalf("create %s: %v", code, err)
		}
	}

	_, err := f.categories.CreateCategory(ctx, dto.UpdateProductCategoryRequest{Code: "C1"})
	expectErr(t, err, domain.ErrConflict)

	list, err := f.categories.ListCategories(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ProductCount != 2 || list[1].ProductCount != 0 {
		t.Fatalf("unexpected counts %+v", list)
	}
	_, err = f.categories.ListCategories(ctx, 0, -1)
	expectErr(t, err, domain.ErrInvalidArgument)

	updated, err := f.categories.UpdateCategory(ctx, c2.ID, dto.UpdateProductCategoryRequest{Code: "C2", Name: "Second", Description: "desc"})
	if err != nil || updated.Description != "desc" || updated.ID != c2.ID {
		t.Fatalf("update: %+v err=%v", updated, err)
	}
	_, err = f.categories.UpdateCategory(ctx, c2.ID, dto.UpdateProductCategoryRequest{Code: "C1"})
	expectErr(t, err, domain.ErrConflict)
	_, err = f.categories.UpdateCategory(ctx, 50, dto.UpdateProductCategoryRequest{Code: "C9"})
	expectErr(t, err, domain.ErrNotFound)

	if got, err := f.categories.GetCategory(ctx, c1.ID); err != nil || got.Code != "C1" {
		t.Fatalf("get: %+v err=%v", got, err)
	}

	if err := f.categories.SetStatus(ctx, c1.ID, true); err != nil {
		t.Fatalf("set status: %v", err)
	}
	_, err = f.categories.GetCategory(ctx, c1.ID)
	expectErr(t, err, domain.ErrNotFound)
	expectErr(t, f.categories.DeleteCategory(ctx, c1.ID), domain.ErrConflict)

	_, err = f.products.CreateProduct(ctx, productRequest("P3", c1.ID, "1"))
	expectErr(t, err, domain.ErrNotFound)

	expectErr(t, f.categories.DeleteCategory(ctx, c2.ID), domain.ErrConflict)
	if err := f.categories.SetStatus(ctx, c2.ID, true); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := f.categories.DeleteCategory(ctx, c2.ID); err != nil {
		t.Fatalf("delete empty category: %v", err)
	}
	expectErr(t, f.categories.DeleteCategory(ctx, c2.ID), domain.ErrNotFound)
}
