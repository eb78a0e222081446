// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the persistence layer over PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"shopcms/internal/catalog"
	"shopcms/internal/models"
)

// CategoryStore manages categories in the database. It satisfies the
// engine's catalog.Store contract.
type CategoryStore struct {
	db       *sql.DB
	maxDepth int
}

// NewCategoryStore returns a new CategoryStore. maxDepth is needed for
// the in-transaction ancestor re-check on reparenting updates.
func NewCategoryStore(db *sql.DB, maxDepth int) *CategoryStore {
	return &CategoryStore{db: db, maxDepth: maxDepth}
}

const categoryColumns = `id, name, slug, type, parent_id, sort_order, is_active, is_featured,
	image, icon, description, meta_title, meta_description, meta_keywords, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Type, &c.ParentID, &c.SortOrder, &c.IsActive, &c.IsFeatured,
		&c.Image, &c.Icon, &c.Description, &c.MetaTitle, &c.MetaDescription, &c.MetaKeywords,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// filterClause builds the WHERE conditions for a catalog.Filter.
// Columns are referenced through the alias "c".
func filterClause(f catalog.Filter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Type != nil {
		add("c.type = $%d", *f.Type)
	}
	if f.IsActive != nil {
		add("c.is_active = $%d", *f.IsActive)
	}
	if f.IsFeatured != nil {
		add("c.is_featured = $%d", *f.IsFeatured)
	}
	if f.RootsOnly {
		conds = append(conds, "c.parent_id IS NULL")
	} else if f.ParentID != nil {
		add("c.parent_id = $%d", *f.ParentID)
	}
	if f.Search != "" {
		add("c.name ILIKE '%%' || $%d || '%%'", f.Search)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns categories matching the filter, ordered by sort_order
// then name, with product counts.
func (s *CategoryStore) List(ctx context.Context, f catalog.Filter) ([]models.Category, error) {
	where, args := filterClause(f)

	query := `
		SELECT c.id, c.name, c.slug, c.type, c.parent_id, c.sort_order, c.is_active, c.is_featured,
		       c.image, c.icon, c.description, c.meta_title, c.meta_description, c.meta_keywords,
		       c.created_at, c.updated_at,
		       COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id` + where + `
		GROUP BY c.id
		ORDER BY c.sort_order, c.name`

	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		args = append(args, f.PerPage, (page-1)*f.PerPage)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Type, &c.ParentID, &c.SortOrder, &c.IsActive, &c.IsFeatured,
			&c.Image, &c.Icon, &c.Description, &c.MetaTitle, &c.MetaDescription, &c.MetaKeywords,
			&c.CreatedAt, &c.UpdatedAt,
			&c.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Count returns the number of categories matching the filter,
// ignoring pagination.
func (s *CategoryStore) Count(ctx context.Context, f catalog.Filter) (int, error) {
	where, args := filterClause(f)

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories c`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, type, parent_id, sort_order, is_active, is_featured,
			image, icon, description, meta_title, meta_description, meta_keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Type, c.ParentID, c.SortOrder, c.IsActive, c.IsFeatured,
		c.Image, c.Icon, c.Description, c.MetaTitle, c.MetaDescription, c.MetaKeywords,
	)
	result, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, catalog.ErrSlugTaken
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category inside a SERIALIZABLE
// transaction. When the write reparents the category, the new ancestor
// chain is re-walked inside the same transaction: this is the
// authoritative guard that two concurrent reparents validated against
// the same pre-mutation snapshot cannot commit a cycle or a depth
// violation together.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("update category: begin tx: %w", err)
	}
	defer tx.Rollback()

	var oldParent *uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT parent_id FROM categories WHERE id = $1`, c.ID).Scan(&oldParent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, type = $3, parent_id = $4, sort_order = $5,
			is_active = $6, is_featured = $7, image = $8, icon = $9, description = $10,
			meta_title = $11, meta_description = $12, meta_keywords = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Type, c.ParentID, c.SortOrder,
		c.IsActive, c.IsFeatured, c.Image, c.Icon, c.Description,
		c.MetaTitle, c.MetaDescription, c.MetaKeywords, c.ID,
	)
	updated, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, catalog.ErrSlugTaken
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	if reparented(oldParent, updated.ParentID) && updated.ParentID != nil {
		if err := s.recheckChain(ctx, tx, updated.ID, *updated.ParentID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update category: commit: %w", err)
	}
	return updated, nil
}

// recheckChain re-walks the post-image ancestor chain of a freshly
// reparented category inside the update transaction. The walk is
// bounded so a pre-existing undetected cycle surfaces as
// ErrTreeCorrupted instead of looping.
func (s *CategoryStore) recheckChain(ctx context.Context, tx *sql.Tx, id, parentID uuid.UUID) error {
	ceiling := s.maxDepth + 2

	next := &parentID
	depth := 0
	for next != nil {
		depth++
		if depth > ceiling {
			return fmt.Errorf("ancestor re-check exceeded %d steps: %w", ceiling, catalog.ErrTreeCorrupted)
		}
		if *next == id {
			return catalog.ErrCircularReference
		}

		var parent *uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT parent_id FROM categories WHERE id = $1`, *next).Scan(&parent)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("dangling parent reference %s: %w", *next, catalog.ErrTreeCorrupted)
		}
		if err != nil {
			return fmt.Errorf("ancestor re-check: %w", err)
		}
		next = parent
	}

	// depth now counts the ancestors of id; its own depth equals that
	// count and must stay below maxDepth.
	if depth >= s.maxDepth {
		return catalog.ErrMaxDepthExceeded
	}
	return nil
}

func reparented(before, after *uuid.UUID) bool {
	if before == nil && after == nil {
		return false
	}
	if before == nil || after == nil {
		return true
	}
	return *before != *after
}

// Delete removes a category by ID. The engine checks the deletion
// guards before calling; the FK constraints are the final backstop.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Reorder updates sort_order for multiple categories in one
// transaction — either every update lands or none do.
func (s *CategoryStore) Reorder(ctx context.Context, items []catalog.ReorderItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE categories SET sort_order = $1, updated_at = $2
		WHERE id = $3`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.Order, now, item.ID); err != nil {
			return fmt.Errorf("reorder category %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// NextOrder returns one past the maximum sort_order across all
// categories. Deliberately global rather than per-sibling so default
// orders stay monotonically increasing table-wide.
func (s *CategoryStore) NextOrder(ctx context.Context) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM categories`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next order: %w", err)
	}
	return next, nil
}

// CountChildren returns the number of direct children of a category.
func (s *CategoryStore) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return n, nil
}

// CountProducts returns the number of products attached to a category.
func (s *CategoryStore) CountProducts(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// CountWithProducts returns how many categories have at least one product.
func (s *CategoryStore) CountWithProducts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT category_id) FROM products WHERE category_id IS NOT NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories with products: %w", err)
	}
	return n, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
