// Package emitter provides the indentation-aware writer that all code
// generators emit through.
//
// The emitter tracks an indent depth and an optional line prefix. Both are
// written lazily: nothing is emitted for a line until its first character
// arrives, so indentation changed mid-stream takes effect at the next line
// start and blank lines stay truly blank.
package emitter

import (
	"fmt"
	"io"
	"strings"
)

// indentWidth is the number of spaces per indent level.
const indentWidth = 4

// Emitter writes generated text to a sink it owns. The zero value is an
// invalid emitter; writes to it are discarded.
type Emitter struct {
	sink        io.WriteCloser
	indentDepth int
	linePrefix  string
	space       string
	atLineStart bool
	err         error
}

// New returns an emitter writing to sink. The emitter owns the sink and
// closes it in Close.
func New(sink io.WriteCloser) *Emitter {
	return &Emitter{sink: sink, atLineStart: true}
}

// Invalid returns an emitter without a sink. It reports Valid() == false
// and silently discards writes, so generators can run unconditionally and
// let the caller decide whether missing output is an error.
func Invalid() *Emitter {
	return &Emitter{atLineStart: true}
}

// Valid reports whether the emitter has a sink to write to.
func (e *Emitter) Valid() bool {
	return e != nil && e.sink != nil
}

// Emit writes s verbatim, applying indentation at each line start.
func (e *Emitter) Emit(s string) *Emitter {
	e.write(s)
	return e
}

// Emitf formats like fmt.Sprintf and writes the result.
func (e *Emitter) Emitf(format string, args ...any) *Emitter {
	e.write(fmt.Sprintf(format, args...))
	return e
}

// Indent increases the indent depth by level.
func (e *Emitter) Indent(level int) {
	e.indentDepth += level
}

// Unindent decreases the indent depth by level. Unbalancing the depth
// below zero is a bug in the caller and panics rather than clamping.
func (e *Emitter) Unindent(level int) {
	if e.indentDepth < level {
		panic(fmt.Sprintf("emitter: unindent(%d) below zero depth %d", level, e.indentDepth))
	}
	e.indentDepth -= level
}

// Indented runs fn with the indent depth one level deeper.
func (e *Emitter) Indented(fn func()) *Emitter {
	return e.IndentedBy(1, fn)
}

// IndentedBy runs fn with the indent depth deepened by level.
func (e *Emitter) IndentedBy(level int, fn func()) *Emitter {
	e.Indent(level)
	defer e.Unindent(level)
	fn()
	return e
}

// Block writes "{", runs fn one level deeper, then writes the matching
// "}". No newline follows the closing brace so callers can append ";" or
// similar.
func (e *Emitter) Block(fn func()) *Emitter {
	e.Emit("{\n")
	e.Indented(fn)
	return e.Emit("}")
}

// SetLinePrefix prepends prefix to every subsequent line, before the
// indentation. Used for comment blocks.
func (e *Emitter) SetLinePrefix(prefix string) {
	e.linePrefix = prefix
}

// UnsetLinePrefix removes the line prefix.
func (e *Emitter) UnsetLinePrefix() {
	e.linePrefix = ""
}

// SetNamespace declares the namespace the emitted code lives in. Every
// occurrence of space in subsequently written text is dropped, so
// generators can always write fully-rooted names and let the emitter
// shorten the local ones. SetNamespace("") restores verbatim output.
func (e *Emitter) SetNamespace(space string) {
	e.space = space
}

// write splits s into lines and emits each with the prefix and current
// indentation, deferring the prefix until the line's first character.
func (e *Emitter) write(s string) {
	if !e.Valid() {
		return
	}

	for start, n := 0, len(s); start < n; {
		pos := strings.IndexByte(s[start:], '\n')
		if pos < 0 {
			e.beginLine()
			e.output(s[start:])
			break
		}
		pos += start

		if pos == start {
			// A blank line carries neither prefix nor indentation.
			e.raw("\n")
		} else {
			e.beginLine()
			e.output(s[start : pos+1])
		}
		e.atLineStart = true

		start = pos + 1
	}
}

func (e *Emitter) beginLine() {
	if !e.atLineStart {
		return
	}
	e.raw(e.linePrefix)
	e.raw(strings.Repeat(" ", indentWidth*e.indentDepth))
	e.atLineStart = false
}

func (e *Emitter) output(text string) {
	if e.space != "" {
		text = strings.ReplaceAll(text, e.space, "")
	}
	e.raw(text)
}

func (e *Emitter) raw(s string) {
	if s == "" {
		return
	}
	if _, err := io.WriteString(e.sink, s); err != nil && e.err == nil {
		e.err = err
	}
}

// Close closes the sink and returns the first error seen while writing.
func (e *Emitter) Close() error {
	if !e.Valid() {
		return nil
	}
	closeErr := e.sink.Close()
	e.sink = nil
	if e.err != nil {
		return e.err
	}
	return closeErr
}
