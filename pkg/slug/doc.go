// Package slug turns arbitrary text into URL-safe identifiers.
//
// Latin diacritics fold to their ASCII base characters, everything else
// non-alphanumeric collapses into the separator:
//
//	slug.Make("Café & Restaurant") // "cafe-restaurant"
//
// Options cover case handling, separators, length bounds, character
// stripping, custom substitutions, and random suffixes for uniqueness:
//
//	slug.Make("Long Article Title",
//		slug.MaxLength(20),
//		slug.WithSuffix(6),
//	)
//	// "long-article-x3k7f9"
//
// ReservedSlugs guards routing-sensitive names by suffixing collisions:
//
//	slug.Make("admin", slug.ReservedSlugs("admin", "api")) // "admin-k7x2m4"
//
// Non-Latin scripts (Cyrillic, CJK, emoji) are not transliterated; those
// characters are treated as word boundaries and dropped.
package slug
