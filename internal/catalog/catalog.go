// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog implements the category hierarchy integrity engine:
// validated structural mutations over a bounded-depth category tree,
// plus the read-side tree projections (hierarchy, breadcrumb, menu).
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"shopcms/internal/models"
)

// DefaultMaxDepth allows three levels: root, child, grandchild
// (zero-indexed depth 0..2).
const DefaultMaxDepth = 3

// Config carries the structural limits the engine enforces. It is passed
// in at construction so the limits are explicit, not ambient globals.
type Config struct {
	// MaxDepth is the number of tree levels allowed.
	MaxDepth int

	// MaxNameLen / MaxSlugLen bound the display name and slug.
	MaxNameLen int
	MaxSlugLen int
}

// DefaultConfig returns the limits the service ships with.
func DefaultConfig() Config {
	return Config{
		MaxDepth:   DefaultMaxDepth,
		MaxNameLen: 100,
		MaxSlugLen: 100,
	}
}

// walkCeiling is the hard iteration bound for ancestor walks. It sits
// above MaxDepth so a walk that exceeds it can only mean pre-existing
// data corruption (an undetected cycle), never a legal tree.
func (c Config) walkCeiling() int {
	return c.MaxDepth + 2
}

// Filter narrows List and Count store queries. Nil pointer fields are
// ignored. RootsOnly selects categories with no parent and wins over
// ParentID. Page/PerPage apply to List only.
type Filter struct {
	Type       *models.CategoryType
	IsActive   *bool
	IsFeatured *bool
	ParentID   *uuid.UUID
	RootsOnly  bool
	Search     string
	Page       int
	PerPage    int
}

// ReorderItem is one (id, order) pair of an atomic reorder request.
type ReorderItem struct {
	ID    uuid.UUID `json:"id"`
	Order int       `json:"order"`
}

// Store is the persistence contract the engine runs against. Lookup
// methods return (nil, nil) when the record does not exist. Reorder
// must apply all items in a single transaction. Update must re-check
// the ancestor chain transactionally when parent_id changes (the
// authoritative guard against concurrent reparent races).
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context, f Filter) ([]models.Category, error)
	Count(ctx context.Context, f Filter) (int, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, items []ReorderItem) error
	NextOrder(ctx context.Context) (int, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
	CountProducts(ctx context.Context, id uuid.UUID) (int, error)
	CountWithProducts(ctx context.Context) (int, error)
}

// Notifier receives best-effort structural-change notifications after a
// successful mutation. Implementations must not block the caller and
// must not fail the mutation; delivery is not required for correctness.
type Notifier interface {
	Notify(ctx context.Context, event string, categoryID uuid.UUID)
}

// Event names passed to the Notifier.
const (
	EventCreated     = "category.created"
	EventUpdated     = "category.updated"
	EventDeleted     = "category.deleted"
	EventReordered   = "category.reordered"
	EventActiveFlip  = "category.active_toggled"
	EventFeatureFlip = "category.featured_toggled"
)

// ancestorPath walks the parent chain starting at id (inclusive) and
// returns it leaf-first. The walk is iterative and bounded by the
// config ceiling: if the ceiling is hit, or a parent reference points
// at a missing row, the persisted tree is corrupt and ErrTreeCorrupted
// is returned instead of looping forever.
func ancestorPath(ctx context.Context, store Store, cfg Config, id uuid.UUID) ([]models.Category, error) {
	var path []models.Category

	next := &id
	for steps := 0; next != nil; steps++ {
		if steps >= cfg.walkCeiling() {
			return nil, fmt.Errorf("ancestor walk exceeded %d steps at %s: %w", cfg.walkCeiling(), id, ErrTreeCorrupted)
		}

		cat, err := store.FindByID(ctx, *next)
		if err != nil {
			return nil, fmt.Errorf("ancestor walk: %w", err)
		}
		if cat == nil {
			if steps == 0 {
				return nil, ErrNotFound
			}
			// A mid-chain dangling parent reference is data corruption.
			return nil, fmt.Errorf("dangling parent reference %s: %w", *next, ErrTreeCorrupted)
		}

		path = append(path, *cat)
		next = cat.ParentID
	}

	return path, nil
}
