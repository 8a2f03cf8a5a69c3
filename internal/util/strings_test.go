package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpperSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LedState", "LED_STATE"},
		{"brightness", "BRIGHTNESS"},
		{"ColorMode2", "COLOR_MODE2"},
		{"ALREADY_UPPER", "ALREADY_UPPER"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, UpperSnake(tt.in), "input %q", tt.in)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"c": 3, "a": 1, "b": 2}
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[int]string{}))
}
