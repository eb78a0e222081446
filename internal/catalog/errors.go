// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "errors"

// Error kinds surfaced by the category engine. The API layer maps these
// to HTTP statuses with errors.Is; the engine never swallows a
// structural violation.
var (
	// ErrNotFound — the requested category id does not exist.
	ErrNotFound = errors.New("category not found")

	// ErrSlugTaken — another category already uses the requested slug.
	ErrSlugTaken = errors.New("category slug already in use")

	// ErrParentNotFound — the referenced parent_id does not exist.
	ErrParentNotFound = errors.New("parent category not found")

	// ErrSelfParent — a category cannot be its own parent.
	ErrSelfParent = errors.New("category cannot be its own parent")

	// ErrCircularReference — the proposed parent is a descendant of the
	// category being moved.
	ErrCircularReference = errors.New("parent assignment would create a cycle")

	// ErrMaxDepthExceeded — the proposed placement would exceed the
	// configured maximum tree depth.
	ErrMaxDepthExceeded = errors.New("maximum category depth exceeded")

	// ErrHasChildren / ErrHasProducts — deletion guards.
	ErrHasChildren = errors.New("category has child categories")
	ErrHasProducts = errors.New("category has associated products")

	// ErrInvalidInput — malformed reorder or bulk-delete payload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTreeCorrupted — a bounded ancestor walk exceeded its iteration
	// ceiling, which means the persisted tree already contains a cycle
	// or a dangling parent reference.
	ErrTreeCorrupted = errors.New("category tree is corrupted")
)
