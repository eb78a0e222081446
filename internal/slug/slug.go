// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation and validation
// for category identifiers.
package slug

import (
	"regexp"

	gslug "github.com/gosimple/slug"
)

// pattern is the only shape a stored slug may take.
var pattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Generate creates a URL-friendly slug from the given string.
// Example: "Modern White Kitchens" → "modern-white-kitchens"
func Generate(s string) string {
	return gslug.Make(s)
}

// Valid reports whether s matches [a-z0-9-]+.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
