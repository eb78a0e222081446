// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CategoryType is the flat product-line classification of a category,
// orthogonal to its position in the tree.
type CategoryType string

const (
	CategoryTypeKitchen CategoryType = "KITCHEN"
	CategoryTypeBedroom CategoryType = "BEDROOM"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeKitchen || t == CategoryTypeBedroom
}

// Category represents one node of the product category tree.
// A nil ParentID marks a root category. SortOrder sorts siblings and is
// not required to be contiguous or unique.
type Category struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	Slug            string       `json:"slug"`
	Type            CategoryType `json:"type"`
	ParentID        *uuid.UUID   `json:"parent_id"`
	SortOrder       int          `json:"sort_order"`
	IsActive        bool         `json:"is_active"`
	IsFeatured      bool         `json:"is_featured"`
	Image           *string      `json:"image,omitempty"`
	Icon            *string      `json:"icon,omitempty"`
	Description     *string      `json:"description,omitempty"`
	MetaTitle       *string      `json:"meta_title,omitempty"`
	MetaDescription *string      `json:"meta_description,omitempty"`
	MetaKeywords    *string      `json:"meta_keywords,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	// Virtual fields populated by store and engine methods, never stored.
	Parent       *Category  `json:"parent,omitempty"`
	Children     []Category `json:"children,omitempty"`
	ProductCount int        `json:"product_count"`
}

// IsRoot reports whether the category sits at the top of the tree.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
