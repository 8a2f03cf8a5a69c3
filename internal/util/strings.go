package util

import "strings"

// UpperSnake converts an identifier to upper snake case, inserting
// underscores at lower-to-upper case boundaries: LedState -> LED_STATE,
// brightness -> BRIGHTNESS.
func UpperSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	prevLower := false
	for _, r := range s {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper && prevLower {
			b.WriteByte('_')
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
		prevLower = !isUpper && r != '_'
	}

	return b.String()
}
