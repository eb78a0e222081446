// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"shopcms/internal/catalog"
	"shopcms/internal/models"
)

func TestProductStoreCreateAndList(t *testing.T) {
	db := testDB(t)
	categories := NewCategoryStore(db, catalog.DefaultMaxDepth)
	products := NewProductStore(db)
	ctx := context.Background()

	suffix := uuid.NewString()[:8]
	catSlug := "test-prod-cat-" + suffix
	prodSlug := "test-prod-" + suffix
	t.Cleanup(func() {
		cleanProducts(t, db, prodSlug)
		cleanCategories(t, db, catSlug)
	})

	cat, err := categories.Create(ctx, testCategory(catSlug))
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	created, err := products.Create(ctx, &models.Product{
		Name: "Oak Table", Slug: prodSlug, CategoryID: &cat.ID, IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}

	found, err := products.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil || found.Slug != prodSlug {
		t.Error("expected product via id lookup")
	}

	items, err := products.ListByCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 product, got %d", len(items))
	}

	// A category with a product refuses deletion at the database level
	// too: the FK has no cascade.
	if err := categories.Delete(ctx, cat.ID); err == nil {
		t.Error("expected FK violation deleting a category with products")
	}

	if err := products.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete product: %v", err)
	}
	found, _ = products.FindByID(ctx, created.ID)
	if found != nil {
		t.Error("expected nil after delete")
	}
}
