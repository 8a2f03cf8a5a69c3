package parser

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/openifc/idlgen/errors"
)

// ErrorKind categorizes parse failures for programmatic handling.
type ErrorKind string

const (
	ErrorKindSyntax   ErrorKind = "syntax"   // malformed source text
	ErrorKindSemantic ErrorKind = "semantic" // well-formed but meaningless
	ErrorKindPackage  ErrorKind = "package"  // declaration disagrees with the requested name
)

// ErrorContext selects how a ParseError renders.
type ErrorContext string

const (
	// ErrorContextTerminal renders with ANSI colors and a caret line.
	ErrorContextTerminal ErrorContext = "terminal"
	// ErrorContextPlain renders a single uncolored line for logs.
	ErrorContextPlain ErrorContext = "plain"
)

// ParseError is a structured diagnostic pointing into a source file. It is
// always marked with the parse failure class, so errors.IsParse matches it
// through any amount of wrapping.
type ParseError struct {
	Kind        ErrorKind
	Message     string
	File        string
	Pos         Position
	SourceLine  string // the offending line, "" when unavailable
	Suggestions []string
}

// Error renders the plain single-line form.
func (e *ParseError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// FormatError renders the diagnostic for the given display context.
func (e *ParseError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextTerminal {
		return e.formatTerminal()
	}
	return e.formatPlain()
}

func (e *ParseError) formatPlain() string {
	msg := fmt.Sprintf("%s:%s: %s", e.File, e.Pos, e.Message)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (suggestions: %s)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *ParseError) formatTerminal() string {
	var b strings.Builder
	b.WriteString(pterm.Gray(fmt.Sprintf("%s:%s: ", e.File, e.Pos)))
	b.WriteString(pterm.Red(e.Message))

	if e.SourceLine != "" {
		b.WriteString("\n    ")
		b.WriteString(e.SourceLine)
		b.WriteString("\n    ")
		b.WriteString(strings.Repeat(" ", max(e.Pos.Column-1, 0)))
		b.WriteString(pterm.Red("^"))
	}

	for _, s := range e.Suggestions {
		b.WriteString("\n  ")
		b.WriteString(pterm.LightCyan("hint: "))
		b.WriteString(s)
	}

	return b.String()
}

// WithSuggestion appends a fix suggestion.
func (e *ParseError) WithSuggestion(s string) *ParseError {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

// mark attaches the parse failure class for errors.IsParse.
func (e *ParseError) mark() error {
	return errors.Mark(e, errors.ErrParse)
}

// sourceLine extracts 1-based line n from src, without its newline.
func sourceLine(src string, n int) string {
	for line := 1; src != ""; line++ {
		rest := ""
		if i := strings.IndexByte(src, '\n'); i >= 0 {
			src, rest = src[:i], src[i+1:]
		}
		if line == n {
			return strings.TrimSuffix(src, "\r")
		}
		src = rest
	}
	return ""
}
