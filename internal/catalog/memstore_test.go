// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// memstore_test.go provides an in-memory catalog.Store used by the
// engine, validator and projector unit tests. It honors the same
// contract as the PostgreSQL store: nil results for missing records,
// all-or-nothing reorder, ordering by (sort_order, name).
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopcms/internal/models"
)

type memStore struct {
	mu       sync.Mutex
	cats     map[uuid.UUID]*models.Category
	products map[uuid.UUID]int // products attached per category

	// reorderErr, when set, makes Reorder fail before applying
	// anything — used to assert atomicity.
	reorderErr error
}

func newMemStore() *memStore {
	return &memStore{
		cats:     make(map[uuid.UUID]*models.Category),
		products: make(map[uuid.UUID]int),
	}
}

// put inserts a category directly, bypassing the engine. Tests use it
// to build fixtures, including deliberately corrupt ones.
func (m *memStore) put(c *models.Category) *models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	m.cats[c.ID] = &cp
	return c
}

func (m *memStore) attachProducts(id uuid.UUID, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[id] = n
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cats[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cats {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) List(_ context.Context, f Filter) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []models.Category
	for _, c := range m.cats {
		if !m.matches(c, f) {
			continue
		}
		cp := *c
		cp.ProductCount = m.products[c.ID]
		items = append(items, cp)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].Name < items[j].Name
	})

	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PerPage
		if start >= len(items) {
			return nil, nil
		}
		end := start + f.PerPage
		if end > len(items) {
			end = len(items)
		}
		items = items[start:end]
	}
	return items, nil
}

func (m *memStore) matches(c *models.Category, f Filter) bool {
	if f.Type != nil && c.Type != *f.Type {
		return false
	}
	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}
	if f.IsFeatured != nil && c.IsFeatured != *f.IsFeatured {
		return false
	}
	if f.RootsOnly {
		if c.ParentID != nil {
			return false
		}
	} else if f.ParentID != nil {
		if c.ParentID == nil || *c.ParentID != *f.ParentID {
			return false
		}
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func (m *memStore) Count(ctx context.Context, f Filter) (int, error) {
	f.Page, f.PerPage = 0, 0
	items, err := m.List(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (m *memStore) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *c
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.cats[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (m *memStore) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cats[c.ID]; !ok {
		return nil, ErrNotFound
	}
	cp := *c
	cp.UpdatedAt = time.Now()
	m.cats[c.ID] = &cp

	out := cp
	return &out, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cats, id)
	return nil
}

func (m *memStore) Reorder(_ context.Context, items []ReorderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reorderErr != nil {
		return m.reorderErr
	}

	// Stage first so an unknown id leaves the store untouched.
	staged := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if _, ok := m.cats[item.ID]; !ok {
			return fmt.Errorf("reorder category %s: not found", item.ID)
		}
		staged[item.ID] = item.Order
	}
	now := time.Now()
	for id, order := range staged {
		m.cats[id].SortOrder = order
		m.cats[id].UpdatedAt = now
	}
	return nil
}

func (m *memStore) NextOrder(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, c := range m.cats {
		if c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return max + 1, nil
}

func (m *memStore) CountChildren(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.cats {
		if c.ParentID != nil && *c.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountProducts(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id], nil
}

func (m *memStore) CountWithProducts(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, count := range m.products {
		if _, ok := m.cats[id]; ok && count > 0 {
			n++
		}
	}
	return n, nil
}

// recorder captures notifier calls for assertions.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Notify(_ context.Context, event string, _ uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}
