package parser

import "fmt"

// Position is a location in a source file. Lines and columns are 1-based,
// the way compilers report them; Offset is the 0-based byte offset.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a source span from Start up to but not including End.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// PositionTracker maintains line/column/offset state while the lexer
// consumes source text.
type PositionTracker struct {
	line   int
	column int
	offset int
}

// NewPositionTracker returns a tracker at the start of a file.
func NewPositionTracker() *PositionTracker {
	return &PositionTracker{line: 1, column: 1}
}

// Advance moves the tracker past text, resetting the column at newlines.
func (t *PositionTracker) Advance(text string) {
	for _, r := range text {
		if r == '\n' {
			t.line++
			t.column = 1
		} else {
			t.column++
		}
	}
	t.offset += len(text)
}

// Position returns the current location snapshot.
func (t *PositionTracker) Position() Position {
	return Position{Line: t.line, Column: t.column, Offset: t.offset}
}
