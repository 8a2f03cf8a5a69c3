package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionTracker(t *testing.T) {
	tr := NewPositionTracker()
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, tr.Position())

	tr.Advance("abc")
	assert.Equal(t, Position{Line: 1, Column: 4, Offset: 3}, tr.Position())

	tr.Advance("\n")
	assert.Equal(t, Position{Line: 2, Column: 1, Offset: 4}, tr.Position())

	tr.Advance("x\ny")
	assert.Equal(t, Position{Line: 3, Column: 2, Offset: 7}, tr.Position())
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "3:7", Position{Line: 3, Column: 7}.String())
}

func TestSourceLine(t *testing.T) {
	src := "first\nsecond\r\n\nfourth"

	assert.Equal(t, "first", sourceLine(src, 1))
	assert.Equal(t, "second", sourceLine(src, 2))
	assert.Equal(t, "", sourceLine(src, 3))
	assert.Equal(t, "fourth", sourceLine(src, 4))
	assert.Equal(t, "", sourceLine(src, 9))
}
