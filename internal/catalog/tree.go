// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"shopcms/internal/models"
)

// Projector assembles flat category records into the tree-shaped read
// views: nested hierarchy, breadcrumb path, menu items, admin tree.
// The nested walks recurse freely — they are bounded by the MaxDepth
// invariant the engine enforces on every write — while ancestor walks
// stay iterative with a hard ceiling.
type Projector struct {
	store Store
	cfg   Config
}

// NewProjector returns a projector reading from the given store.
func NewProjector(store Store, cfg Config) *Projector {
	return &Projector{store: store, cfg: cfg}
}

// HierarchyNode is one node of the public nested hierarchy view.
type HierarchyNode struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	Slug         string              `json:"slug"`
	Type         models.CategoryType `json:"type"`
	Image        *string             `json:"image,omitempty"`
	Order        int                 `json:"order"`
	ProductCount int                 `json:"product_count"`
	Children     []HierarchyNode     `json:"children"`
}

// Hierarchy returns the nested tree of active categories. Inactive
// branches are pruned whole: an inactive parent hides its entire
// subtree, active descendants included.
func (p *Projector) Hierarchy(ctx context.Context) ([]HierarchyNode, error) {
	flat, err := p.activeCategories(ctx)
	if err != nil {
		return nil, err
	}
	return buildHierarchy(flat, nil), nil
}

func buildHierarchy(flat []models.Category, parentID *uuid.UUID) []HierarchyNode {
	nodes := []HierarchyNode{}
	for _, c := range flat {
		if !sameParent(c.ParentID, parentID) {
			continue
		}
		nodes = append(nodes, HierarchyNode{
			ID:           c.ID,
			Name:         c.Name,
			Slug:         c.Slug,
			Type:         c.Type,
			Image:        c.Image,
			Order:        c.SortOrder,
			ProductCount: c.ProductCount,
			Children:     buildHierarchy(flat, &c.ID),
		})
	}
	return nodes
}

// BreadcrumbItem is one step of a root-first breadcrumb path.
type BreadcrumbItem struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
	URL  string    `json:"url"`
}

// Breadcrumb walks from the given category up to its root and returns
// the path root-first.
func (p *Projector) Breadcrumb(ctx context.Context, id uuid.UUID) ([]BreadcrumbItem, error) {
	chain, err := p.Path(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]BreadcrumbItem, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		items = append(items, BreadcrumbItem{
			ID:   c.ID,
			Name: c.Name,
			Slug: c.Slug,
			URL:  fmt.Sprintf("/categories/%s", c.Slug),
		})
	}
	return items, nil
}

// Path returns the raw ancestor chain of a category, leaf-first. The
// hierarchy validator shares this primitive for its cycle and depth
// checks.
func (p *Projector) Path(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	return ancestorPath(ctx, p.store, p.cfg, id)
}

// MenuItem is the navigation-shaped view of an active category.
type MenuItem struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	URL      string     `json:"url"`
	Children []MenuItem `json:"children,omitempty"`
}

// Menu returns active categories shaped for site navigation.
func (p *Projector) Menu(ctx context.Context) ([]MenuItem, error) {
	flat, err := p.activeCategories(ctx)
	if err != nil {
		return nil, err
	}
	return buildMenu(flat, nil), nil
}

func buildMenu(flat []models.Category, parentID *uuid.UUID) []MenuItem {
	var items []MenuItem
	for _, c := range flat {
		if !sameParent(c.ParentID, parentID) {
			continue
		}
		items = append(items, MenuItem{
			ID:       c.ID,
			Name:     c.Name,
			Slug:     c.Slug,
			URL:      fmt.Sprintf("/categories/%s", c.Slug),
			Children: buildMenu(flat, &c.ID),
		})
	}
	return items
}

// TreeNode is the admin tree view: all categories, inactive ones
// included, annotated with their depth (0 for roots).
type TreeNode struct {
	ID         uuid.UUID           `json:"id"`
	Name       string              `json:"name"`
	Slug       string              `json:"slug"`
	Type       models.CategoryType `json:"type"`
	Depth      int                 `json:"depth"`
	Order      int                 `json:"order"`
	IsActive   bool                `json:"is_active"`
	IsFeatured bool                `json:"is_featured"`
	Children   []TreeNode          `json:"children"`
}

// TreeNodes returns the full depth-annotated tree for the admin view.
func (p *Projector) TreeNodes(ctx context.Context) ([]TreeNode, error) {
	flat, err := p.store.List(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("project tree: %w", err)
	}
	return buildTreeNodes(flat, nil, 0), nil
}

func buildTreeNodes(flat []models.Category, parentID *uuid.UUID, depth int) []TreeNode {
	nodes := []TreeNode{}
	for _, c := range flat {
		if !sameParent(c.ParentID, parentID) {
			continue
		}
		nodes = append(nodes, TreeNode{
			ID:         c.ID,
			Name:       c.Name,
			Slug:       c.Slug,
			Type:       c.Type,
			Depth:      depth,
			Order:      c.SortOrder,
			IsActive:   c.IsActive,
			IsFeatured: c.IsFeatured,
			Children:   buildTreeNodes(flat, &c.ID, depth+1),
		})
	}
	return nodes
}

func (p *Projector) activeCategories(ctx context.Context) ([]models.Category, error) {
	active := true
	flat, err := p.store.List(ctx, Filter{IsActive: &active})
	if err != nil {
		return nil, fmt.Errorf("project hierarchy: %w", err)
	}
	return flat, nil
}

// sameParent compares two parent references (both nil or same value).
func sameParent(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
