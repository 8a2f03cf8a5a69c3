package util

import (
	"cmp"
	"sort"
)

// SortedKeys returns the keys of m in ascending order, for deterministic
// iteration over set-shaped maps.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
