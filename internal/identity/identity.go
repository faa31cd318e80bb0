// Package identity normalizes driver identifiers. Stored roster IDs are
// free-form (mixed case, stray whitespace from badge scanners), so every
// comparison in the system goes through Normalize.
package identity

import "strings"

// Normalize trims surrounding whitespace and lowercases an identifier.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Same reports whether two identifiers refer to the same driver.
func Same(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
