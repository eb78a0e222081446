// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"shopcms/internal/models"
	"shopcms/internal/slug"
)

// Engine orchestrates validated category mutations. Every write either
// fully succeeds leaving the tree valid, or is rejected before commit;
// no intermediate structural state is ever persisted.
type Engine struct {
	store     Store
	validator *Validator
	cfg       Config
	notifier  Notifier
}

// NewEngine returns an engine over the given store. notifier may be nil
// when no event consumer is wired.
func NewEngine(store Store, cfg Config, notifier Notifier) *Engine {
	return &Engine{
		store:     store,
		validator: NewValidator(store, cfg),
		cfg:       cfg,
		notifier:  notifier,
	}
}

// Validator exposes the engine's hierarchy validator, sharing its
// bounded ancestor-walk primitive with callers.
func (e *Engine) Validator() *Validator {
	return e.validator
}

// CreateInput carries the fields accepted when creating a category.
// Slug is derived from Name when empty. Order defaults to one past the
// current global maximum. IsActive defaults to true.
type CreateInput struct {
	Name            string
	Slug            string
	Type            models.CategoryType
	ParentID        *uuid.UUID
	Order           *int
	IsActive        *bool
	IsFeatured      bool
	Image           *string
	Icon            *string
	Description     *string
	MetaTitle       *string
	MetaDescription *string
	MetaKeywords    *string
}

// Create inserts a new category after checking slug uniqueness and,
// when a parent is given, the structural invariants. The returned
// record has its relations resolved (parent, empty children, zero
// product count).
func (e *Engine) Create(ctx context.Context, in CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if err := e.checkName(name); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("unknown category type %q: %w", in.Type, ErrInvalidInput)
	}

	s := in.Slug
	if s == "" {
		s = slug.Generate(name)
	}
	if err := e.checkSlug(s); err != nil {
		return nil, err
	}
	existing, err := e.store.FindBySlug(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}

	if in.ParentID != nil {
		parent, err := e.store.FindByID(ctx, *in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
		// Self-parent and cycle checks are vacuous for a record that
		// does not exist yet, but running the full set keeps one code
		// path for every parent assignment.
		if err := e.validator.ValidateParent(ctx, uuid.Nil, *in.ParentID); err != nil {
			return nil, err
		}
	}

	order := 0
	if in.Order != nil {
		if *in.Order < 0 {
			return nil, fmt.Errorf("order must be non-negative: %w", ErrInvalidInput)
		}
		order = *in.Order
	} else {
		// Deliberately global, not per-sibling: defaults stay
		// monotonically increasing across the whole table so callers
		// can rely on them for tie-breaking.
		order, err = e.store.NextOrder(ctx)
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	created, err := e.store.Create(ctx, &models.Category{
		Name:            name,
		Slug:            s,
		Type:            in.Type,
		ParentID:        in.ParentID,
		SortOrder:       order,
		IsActive:        active,
		IsFeatured:      in.IsFeatured,
		Image:           in.Image,
		Icon:            in.Icon,
		Description:     in.Description,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		MetaKeywords:    in.MetaKeywords,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := e.resolveRelations(ctx, created); err != nil {
		return nil, err
	}
	e.notify(ctx, EventCreated, created.ID)
	return created, nil
}

// ParentPatch marks that parent_id is present in an update. A nil ID
// makes the category a root.
type ParentPatch struct {
	ID *uuid.UUID
}

// UpdateInput is a partial update: nil fields are left untouched.
type UpdateInput struct {
	Name            *string
	Slug            *string
	Type            *models.CategoryType
	Parent          *ParentPatch
	Order           *int
	IsActive        *bool
	IsFeatured      *bool
	Image           *string
	Icon            *string
	Description     *string
	MetaTitle       *string
	MetaDescription *string
	MetaKeywords    *string
}

// Update applies a patch to an existing category. A changed slug is
// checked for uniqueness against other records; a changed parent is
// validated against the pre-mutation tree, and the store re-checks the
// chain inside its own transaction when committing.
func (e *Engine) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.Category, error) {
	current, err := e.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := e.checkName(name); err != nil {
			return nil, err
		}
		current.Name = name
	}

	if in.Slug != nil && *in.Slug != current.Slug {
		if err := e.checkSlug(*in.Slug); err != nil {
			return nil, err
		}
		other, err := e.store.FindBySlug(ctx, *in.Slug)
		if err != nil {
			return nil, fmt.Errorf("update category: %w", err)
		}
		if other != nil && other.ID != id {
			return nil, ErrSlugTaken
		}
		current.Slug = *in.Slug
	}

	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, fmt.Errorf("unknown category type %q: %w", *in.Type, ErrInvalidInput)
		}
		current.Type = *in.Type
	}

	if in.Parent != nil {
		if in.Parent.ID != nil {
			newParent := *in.Parent.ID
			if newParent == id {
				return nil, ErrSelfParent
			}
			parent, err := e.store.FindByID(ctx, newParent)
			if err != nil {
				return nil, fmt.Errorf("update category: %w", err)
			}
			if parent == nil {
				return nil, ErrParentNotFound
			}
			// Validated against the pre-mutation tree; the store's
			// serializable re-check closes the concurrent-reparent race.
			if err := e.validator.ValidateNoCycle(ctx, id, newParent); err != nil {
				return nil, err
			}
			if err := e.validator.ValidateDepth(ctx, newParent); err != nil {
				return nil, err
			}
		}
		current.ParentID = in.Parent.ID
	}

	if in.Order != nil {
		if *in.Order < 0 {
			return nil, fmt.Errorf("order must be non-negative: %w", ErrInvalidInput)
		}
		current.SortOrder = *in.Order
	}
	if in.IsActive != nil {
		current.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		current.IsFeatured = *in.IsFeatured
	}
	if in.Image != nil {
		current.Image = in.Image
	}
	if in.Icon != nil {
		current.Icon = in.Icon
	}
	if in.Description != nil {
		current.Description = in.Description
	}
	if in.MetaTitle != nil {
		current.MetaTitle = in.MetaTitle
	}
	if in.MetaDescription != nil {
		current.MetaDescription = in.MetaDescription
	}
	if in.MetaKeywords != nil {
		current.MetaKeywords = in.MetaKeywords
	}

	updated, err := e.store.Update(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	if err := e.resolveRelations(ctx, updated); err != nil {
		return nil, err
	}
	e.notify(ctx, EventUpdated, updated.ID)
	return updated, nil
}

// Delete removes a category. Both deletion guards are evaluated before
// deciding: a category with associated products or child categories is
// never deleted, not even partially.
func (e *Engine) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := e.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if current == nil {
		return ErrNotFound
	}

	products, err := e.store.CountProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	children, err := e.store.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if products > 0 {
		return ErrHasProducts
	}
	if children > 0 {
		return ErrHasChildren
	}

	if err := e.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	e.notify(ctx, EventDeleted, id)
	return nil
}

// BulkDeleteFailure records why one id of a batch could not be deleted.
type BulkDeleteFailure struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// BulkDeleteResult reports the per-id outcome of a bulk delete.
type BulkDeleteResult struct {
	Succeeded    []uuid.UUID         `json:"succeeded"`
	Failed       []BulkDeleteFailure `json:"failed"`
	SuccessCount int                 `json:"success_count"`
	FailCount    int                 `json:"fail_count"`
}

// BulkDelete runs the single-delete path for each id independently.
// The batch is intentionally not atomic: one guarded id does not block
// the rest, and partial success is the documented behavior.
func (e *Engine) BulkDelete(ctx context.Context, ids []uuid.UUID) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("bulk delete needs at least one id: %w", ErrInvalidInput)
	}

	res := &BulkDeleteResult{}
	for _, id := range ids {
		if err := e.Delete(ctx, id); err != nil {
			res.Failed = append(res.Failed, BulkDeleteFailure{ID: id, Reason: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	res.SuccessCount = len(res.Succeeded)
	res.FailCount = len(res.Failed)
	return res, nil
}

// Reorder applies all (id, order) pairs as one atomic transaction:
// either every order lands or none do. Reorder never touches parent_id
// and therefore never triggers hierarchy validation.
func (e *Engine) Reorder(ctx context.Context, items []ReorderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("reorder needs at least one item: %w", ErrInvalidInput)
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			return fmt.Errorf("reorder item without id: %w", ErrInvalidInput)
		}
		if item.Order < 0 {
			return fmt.Errorf("order must be non-negative for %s: %w", item.ID, ErrInvalidInput)
		}
	}

	if err := e.store.Reorder(ctx, items); err != nil {
		return fmt.Errorf("reorder categories: %w", err)
	}
	e.notify(ctx, EventReordered, uuid.Nil)
	return nil
}

// ToggleActive flips the is_active flag. Toggles never touch parent_id
// and bypass all structural checks.
func (e *Engine) ToggleActive(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return e.toggle(ctx, id, EventActiveFlip, func(c *models.Category) {
		c.IsActive = !c.IsActive
	})
}

// ToggleFeatured flips the is_featured flag.
func (e *Engine) ToggleFeatured(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return e.toggle(ctx, id, EventFeatureFlip, func(c *models.Category) {
		c.IsFeatured = !c.IsFeatured
	})
}

func (e *Engine) toggle(ctx context.Context, id uuid.UUID, event string, flip func(*models.Category)) (*models.Category, error) {
	current, err := e.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggle category: %w", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}

	flip(current)
	updated, err := e.store.Update(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("toggle category: %w", err)
	}
	e.notify(ctx, event, id)
	return updated, nil
}

// Get returns one category with parent, direct children and product
// count resolved.
func (e *Engine) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := e.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if err := e.resolveRelations(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetBySlug returns one category by its slug, relations resolved.
func (e *Engine) GetBySlug(ctx context.Context, s string) (*models.Category, error) {
	c, err := e.store.FindBySlug(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if err := e.resolveRelations(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListResult is a filtered page of categories plus the unpaged total.
type ListResult struct {
	Items []models.Category `json:"items"`
	Total int               `json:"total"`
}

// List returns categories matching the filter with product counts, and
// the total match count for pagination.
func (e *Engine) List(ctx context.Context, f Filter) (*ListResult, error) {
	items, err := e.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	total, err := e.store.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	return &ListResult{Items: items, Total: total}, nil
}

// Featured returns active featured categories. Featured read paths are
// always additionally filtered to active records.
func (e *Engine) Featured(ctx context.Context) ([]models.Category, error) {
	active, featured := true, true
	items, err := e.store.List(ctx, Filter{IsActive: &active, IsFeatured: &featured})
	if err != nil {
		return nil, fmt.Errorf("list featured categories: %w", err)
	}
	return items, nil
}

// Statistics is the dashboard aggregate. Each sub-count is an
// independent query; the snapshot is not transactionally consistent
// across them.
type Statistics struct {
	Total        int                         `json:"total"`
	Active       int                         `json:"active"`
	Featured     int                         `json:"featured"`
	WithProducts int                         `json:"with_products"`
	ByType       map[models.CategoryType]int `json:"by_type"`
}

// Statistics computes the category dashboard counts.
func (e *Engine) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{ByType: make(map[models.CategoryType]int)}

	var err error
	if stats.Total, err = e.store.Count(ctx, Filter{}); err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}

	active := true
	if stats.Active, err = e.store.Count(ctx, Filter{IsActive: &active}); err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}

	featured := true
	if stats.Featured, err = e.store.Count(ctx, Filter{IsFeatured: &featured}); err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}

	for _, t := range []models.CategoryType{models.CategoryTypeKitchen, models.CategoryTypeBedroom} {
		t := t
		n, err := e.store.Count(ctx, Filter{Type: &t})
		if err != nil {
			return nil, fmt.Errorf("statistics: %w", err)
		}
		stats.ByType[t] = n
	}

	if stats.WithProducts, err = e.store.CountWithProducts(ctx); err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return stats, nil
}

// resolveRelations fills the virtual fields of a single category:
// parent record, direct children, product count.
func (e *Engine) resolveRelations(ctx context.Context, c *models.Category) error {
	if c.ParentID != nil {
		parent, err := e.store.FindByID(ctx, *c.ParentID)
		if err != nil {
			return fmt.Errorf("resolve parent: %w", err)
		}
		c.Parent = parent
	}

	children, err := e.store.List(ctx, Filter{ParentID: &c.ID})
	if err != nil {
		return fmt.Errorf("resolve children: %w", err)
	}
	c.Children = children

	count, err := e.store.CountProducts(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("resolve product count: %w", err)
	}
	c.ProductCount = count
	return nil
}

func (e *Engine) checkName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required: %w", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > e.cfg.MaxNameLen {
		return fmt.Errorf("name is too long (max %d characters): %w", e.cfg.MaxNameLen, ErrInvalidInput)
	}
	return nil
}

func (e *Engine) checkSlug(s string) error {
	if s == "" {
		return fmt.Errorf("slug is required: %w", ErrInvalidInput)
	}
	if len(s) > e.cfg.MaxSlugLen {
		return fmt.Errorf("slug is too long (max %d characters): %w", e.cfg.MaxSlugLen, ErrInvalidInput)
	}
	if !slug.Valid(s) {
		return fmt.Errorf("slug must match [a-z0-9-]+: %w", ErrInvalidInput)
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, event string, id uuid.UUID) {
	if e.notifier != nil {
		e.notifier.Notify(ctx, event, id)
	}
}
