package breedcache

import "strings"

// NormalizeKey returns the cache key for a breed name.
// Surrounding whitespace is trimmed and the name is lowercased,
// so "Hound", " hound " and "HOUND" share a key.
// Blank names normalize to the empty key, which is never cached.
func NormalizeKey(breed string) string {
	return strings.ToLower(strings.TrimSpace(breed))
}
