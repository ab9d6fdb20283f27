// Package slug derives filename-safe keys from person names.
package slug

import "strings"

var replacer = strings.NewReplacer(" ", "-", ".", "-", "/", "-", "\\", "-")

// Make lower-cases the identity and replaces spaces, periods and path
// separators with hyphens, so the result is always a single path element.
// Surrounding whitespace is trimmed first, so "  Jane Doe " and "Jane Doe"
// map to the same output file.
func Make(identity string) string {
	return replacer.Replace(strings.ToLower(strings.TrimSpace(identity)))
}
