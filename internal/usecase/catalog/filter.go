package catalog

import (
	"strings"

	domproduct "example.com/storefront/internal/domain/product"
)

// CategoryAll is the selector sentinel meaning "no category filter".
const CategoryAll = "all"

// Apply projects a product set through the search term and category
// selector. It is a pure function: the result is a stable subsequence of
// the input, and identical inputs always produce identical output.
//
// Matching is a case-insensitive substring test against name or
// description using a simple lowercase fold ("Lámpara" matches "lámpara";
// no accent stripping or locale tailoring).
func Apply(products []domproduct.Product, searchTerm, selectedCategory string) []domproduct.Product {
	term := strings.ToLower(searchTerm)
	filtered := make([]domproduct.Product, 0, len(products))
	for _, p := range products {
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		if selectedCategory != CategoryAll && !matchesCategory(p, selectedCategory) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func matchesTerm(p domproduct.Product, term string) bool {
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), term)
}

func matchesCategory(p domproduct.Product, selected string) bool {
	return p.Category != nil && *p.Category == selected
}
