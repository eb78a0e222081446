// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"shopcms/internal/cache"
	"shopcms/internal/catalog"
	"shopcms/internal/models"
)

// Categories bundles the category API endpoints.
type Categories struct {
	engine    *catalog.Engine
	projector *catalog.Projector
	treeCache *cache.TreeCache
	validate  *validator.Validate
}

// NewCategories returns the category handler set. treeCache may be nil
// when no cache is wired (tests).
func NewCategories(engine *catalog.Engine, projector *catalog.Projector, treeCache *cache.TreeCache) *Categories {
	return &Categories{
		engine:    engine,
		projector: projector,
		treeCache: treeCache,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// --- Requests ---

type createCategoryRequest struct {
	Name            string     `json:"name" validate:"required,max=100"`
	Slug            string     `json:"slug" validate:"omitempty,max=100"`
	Type            string     `json:"type" validate:"required,oneof=KITCHEN BEDROOM"`
	ParentID        *uuid.UUID `json:"parent_id"`
	Order           *int       `json:"order" validate:"omitempty,min=0"`
	IsActive        *bool      `json:"is_active"`
	IsFeatured      bool       `json:"is_featured"`
	Image           *string    `json:"image"`
	Icon            *string    `json:"icon"`
	Description     *string    `json:"description"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	MetaKeywords    *string    `json:"meta_keywords"`
}

type updateCategoryRequest struct {
	Name *string `json:"name" validate:"omitempty,max=100"`
	Slug *string `json:"slug" validate:"omitempty,max=100"`
	Type *string `json:"type" validate:"omitempty,oneof=KITCHEN BEDROOM"`
	// ParentID distinguishes absent (leave unchanged) from explicit
	// null (make the category a root).
	ParentID        json.RawMessage `json:"parent_id"`
	Order           *int            `json:"order" validate:"omitempty,min=0"`
	IsActive        *bool           `json:"is_active"`
	IsFeatured      *bool           `json:"is_featured"`
	Image           *string         `json:"image"`
	Icon            *string         `json:"icon"`
	Description     *string         `json:"description"`
	MetaTitle       *string         `json:"meta_title"`
	MetaDescription *string         `json:"meta_description"`
	MetaKeywords    *string         `json:"meta_keywords"`
}

type reorderRequest struct {
	Items []catalog.ReorderItem `json:"items" validate:"required,min=1"`
}

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// --- Write endpoints ---

// Create handles POST /api/categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	created, err := h.engine.Create(r.Context(), catalog.CreateInput{
		Name:            req.Name,
		Slug:            req.Slug,
		Type:            models.CategoryType(req.Type),
		ParentID:        req.ParentID,
		Order:           req.Order,
		IsActive:        req.IsActive,
		IsFeatured:      req.IsFeatured,
		Image:           req.Image,
		Icon:            req.Icon,
		Description:     req.Description,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
	})
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	h.invalidateTree(r)
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/categories/{id}.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category id"})
		return
	}

	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	in := catalog.UpdateInput{
		Name:            req.Name,
		Slug:            req.Slug,
		Order:           req.Order,
		IsActive:        req.IsActive,
		IsFeatured:      req.IsFeatured,
		Image:           req.Image,
		Icon:            req.Icon,
		Description:     req.Description,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
	}
	if req.Type != nil {
		t := models.CategoryType(*req.Type)
		in.Type = &t
	}
	if len(req.ParentID) > 0 {
		patch, err := parseParentPatch(req.ParentID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid parent_id"})
			return
		}
		in.Parent = patch
	}

	updated, err := h.engine.Update(r.Context(), id, in)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	h.invalidateTree(r)
	writeJSON(w, http.StatusOK, updated)
}

// parseParentPatch interprets a present parent_id field: JSON null
// makes the category a root, a UUID string reparents it.
func parseParentPatch(raw json.RawMessage) (*catalog.ParentPatch, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return &catalog.ParentPatch{}, nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, err
	}
	return &catalog.ParentPatch{ID: &id}, nil
}

// Delete handles DELETE /api/categories/{id}.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category id"})
		return
	}

	if err := h.engine.Delete(r.Context(), id); err != nil {
		writeEngineError(w, r, err)
		return
	}

	h.invalidateTree(r)
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete handles POST /api/categories/bulk-delete. Partial success
// is the documented behavior: the response lists per-id outcomes.
func (h *Categories) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.engine.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	h.invalidateTree(r)
	writeJSON(w, http.StatusOK, result)
}

// Reorder handles POST /api/categories/reorder.
func (h *Categories) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := h.engine.Reorder(r.Context(), req.Items); err != nil {
		writeEngineError(w, r, err)
		return
	}

	h.invalidateTree(r)
	w.WriteHeader(http.StatusNoContent)
}

// ToggleActive handles POST /api/categories/{id}/toggle-active.
func (h *Categories) ToggleActive(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.engine.ToggleActive)
}

// ToggleFeatured handles POST /api/categories/{id}/toggle-featured.
func (h *Categories) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.engine.ToggleFeatured)
}

func (h *Categories) toggle(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (*models.Category, error)) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category id"})
		return
	}

	updated, err := op(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	h.invalidateTree(r)
	writeJSON(w, http.StatusOK, updated)
}

// --- Read endpoints ---

// List handles GET /api/categories with optional filters: type, active,
// featured, parent (a UUID or the literal "root"), search, page, per_page.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	f, err := listFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.engine.List(r.Context(), f)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// listFilter parses the List query parameters into a catalog.Filter.
func listFilter(r *http.Request) (catalog.Filter, error) {
	var f catalog.Filter
	q := r.URL.Query()

	if v := q.Get("type"); v != "" {
		t := models.CategoryType(v)
		if !t.Valid() {
			return f, fmt.Errorf("unknown type %q", v)
		}
		f.Type = &t
	}
	if v := q.Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("active must be a boolean")
		}
		f.IsActive = &b
	}
	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("featured must be a boolean")
		}
		f.IsFeatured = &b
	}
	if v := q.Get("parent"); v != "" {
		if v == "root" {
			f.RootsOnly = true
		} else {
			id, err := uuid.Parse(v)
			if err != nil {
				return f, fmt.Errorf("parent must be a UUID or \"root\"")
			}
			f.ParentID = &id
		}
	}
	f.Search = q.Get("search")

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, fmt.Errorf("page must be a positive integer")
		}
		f.Page = n
	}
	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, fmt.Errorf("per_page must be a positive integer")
		}
		f.PerPage = n
	}
	return f, nil
}

// Get handles GET /api/categories/{id}.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category id"})
		return
	}

	c, err := h.engine.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetBySlug handles GET /api/categories/slug/{slug}.
func (h *Categories) GetBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.engine.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Featured handles GET /api/categories/featured.
func (h *Categories) Featured(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.Featured(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Statistics handles GET /api/categories/statistics.
func (h *Categories) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Statistics(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Hierarchy handles GET /api/categories/hierarchy: the nested tree of
// active categories, served from the Valkey cache when warm.
func (h *Categories) Hierarchy(w http.ResponseWriter, r *http.Request) {
	h.cachedProjection(w, r, cache.HierarchyKey, func() (any, error) {
		return h.projector.Hierarchy(r.Context())
	})
}

// Menu handles GET /api/categories/menu: the navigation-shaped view.
func (h *Categories) Menu(w http.ResponseWriter, r *http.Request) {
	h.cachedProjection(w, r, cache.MenuKey, func() (any, error) {
		return h.projector.Menu(r.Context())
	})
}

// cachedProjection serves an encoded projection from the tree cache,
// falling back to projecting and repopulating the cache on a miss.
func (h *Categories) cachedProjection(w http.ResponseWriter, r *http.Request, key string, project func() (any, error)) {
	if h.treeCache != nil {
		if data, ok := h.treeCache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(data)
			return
		}
	}

	v, err := project()
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	if h.treeCache != nil {
		h.treeCache.Set(r.Context(), key, data)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Tree handles GET /api/categories/tree: the depth-annotated admin
// view, inactive categories included. Not cached — admin-only traffic.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.projector.TreeNodes(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// Breadcrumb handles GET /api/categories/{id}/breadcrumb: the
// root-first ancestor path of a category.
func (h *Categories) Breadcrumb(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category id"})
		return
	}

	items, err := h.projector.Breadcrumb(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// invalidateTree drops the cached projections after a successful write.
func (h *Categories) invalidateTree(r *http.Request) {
	if h.treeCache != nil {
		h.treeCache.Invalidate(r.Context())
	}
}
