// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"shopcms/internal/models"
)

// ProductStore gives the category service its minimal view of products:
// enough to seed data, count per category, and back the deletion guard.
// Product management itself lives in a separate service.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, slug, category_id, is_active, created_at, updated_at`

// FindByID retrieves a product by ID. Returns nil if not found.
func (s *ProductStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.CategoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return &p, nil
}

// Create inserts a new product and returns it. Used by seeding and tests.
func (s *ProductStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, slug, category_id, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+productColumns,
		p.Name, p.Slug, p.CategoryID, p.IsActive,
	)

	var created models.Product
	err := row.Scan(&created.ID, &created.Name, &created.Slug, &created.CategoryID,
		&created.IsActive, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &created, nil
}

// ListByCategory returns all products attached to a category.
func (s *ProductStore) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE category_id = $1 ORDER BY name`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.CategoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// Delete removes a product by ID. Used by tests to release guard state.
func (s *ProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
