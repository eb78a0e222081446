// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Validator holds the structural invariant checks for parent
// assignments. All checks are pure apart from reads against the store.
type Validator struct {
	store Store
	cfg   Config
}

// NewValidator returns a validator bound to the given store and limits.
func NewValidator(store Store, cfg Config) *Validator {
	return &Validator{store: store, cfg: cfg}
}

// ValidateNotSelfParent rejects parentID == categoryID. It is the
// cheapest check and runs first, before any store I/O.
func (v *Validator) ValidateNotSelfParent(categoryID, parentID uuid.UUID) error {
	if categoryID == parentID {
		return ErrSelfParent
	}
	return nil
}

// ValidateNoCycle rejects a parent assignment that would make the
// category its own ancestor: if categoryID appears anywhere in the
// ancestor chain of parentID (including parentID itself), the move
// would close a cycle.
func (v *Validator) ValidateNoCycle(ctx context.Context, categoryID, parentID uuid.UUID) error {
	chain, err := ancestorPath(ctx, v.store, v.cfg, parentID)
	if err != nil {
		return err
	}
	for _, ancestor := range chain {
		if ancestor.ID == categoryID {
			return ErrCircularReference
		}
	}
	return nil
}

// ValidateDepth rejects a parent under which a new child would sit at
// depth >= MaxDepth. The chain length of the parent (parent inclusive,
// up to its root) equals the depth the new child would take.
func (v *Validator) ValidateDepth(ctx context.Context, parentID uuid.UUID) error {
	chain, err := ancestorPath(ctx, v.store, v.cfg, parentID)
	if err != nil {
		return err
	}
	if len(chain) >= v.cfg.MaxDepth {
		return ErrMaxDepthExceeded
	}
	return nil
}

// ValidateParent runs the three structural checks in cost order
// (self-parent, cycle, depth), short-circuiting on the first failure.
// It is invoked whenever parent_id is being set to a non-null value.
func (v *Validator) ValidateParent(ctx context.Context, categoryID, parentID uuid.UUID) error {
	if err := v.ValidateNotSelfParent(categoryID, parentID); err != nil {
		return err
	}
	if err := v.ValidateNoCycle(ctx, categoryID, parentID); err != nil {
		return err
	}
	return v.ValidateDepth(ctx, parentID)
}
