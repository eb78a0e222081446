package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with initial development data: a small
// kitchens/bedrooms category tree and a couple of products, so the tree
// endpoints return something meaningful out of the box.
func Seed(db *sql.DB) error {
	// Check if any categories exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	insert := func(name, slug, typ string, parentSlug string, order int, featured bool) error {
		var parent any
		if parentSlug != "" {
			parent = parentSlug
			_, err := tx.Exec(`
				INSERT INTO categories (name, slug, type, parent_id, sort_order, is_featured)
				VALUES ($1, $2, $3, (SELECT id FROM categories WHERE slug = $4), $5, $6)
			`, name, slug, typ, parent, order, featured)
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO categories (name, slug, type, sort_order, is_featured)
			VALUES ($1, $2, $3, $4, $5)
		`, name, slug, typ, order, featured)
		return err
	}

	seedRows := []struct {
		name, slug, typ, parent string
		order                   int
		featured                bool
	}{
		{"Kitchens", "kitchens", "KITCHEN", "", 1, true},
		{"Modern Kitchens", "modern-kitchens", "KITCHEN", "kitchens", 2, false},
		{"Modern White Kitchens", "modern-white-kitchens", "KITCHEN", "modern-kitchens", 3, false},
		{"Classic Kitchens", "classic-kitchens", "KITCHEN", "kitchens", 4, false},
		{"Bedrooms", "bedrooms", "BEDROOM", "", 5, true},
		{"Wardrobes", "wardrobes", "BEDROOM", "bedrooms", 6, false},
	}
	for _, row := range seedRows {
		if err := insert(row.name, row.slug, row.typ, row.parent, row.order, row.featured); err != nil {
			return fmt.Errorf("seed insert category %s: %w", row.slug, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO products (name, slug, category_id)
		VALUES
			('Oslo Matte White Kitchen', 'oslo-matte-white-kitchen',
				(SELECT id FROM categories WHERE slug = 'modern-white-kitchens')),
			('Sliding Door Wardrobe', 'sliding-door-wardrobe',
				(SELECT id FROM categories WHERE slug = 'wardrobes'))
	`)
	if err != nil {
		return fmt.Errorf("seed insert products: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo categories", "categories", len(seedRows))
	return nil
}
