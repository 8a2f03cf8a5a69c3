package parser

import (
	"fmt"
	"strings"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokKeyword
	tokInt
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokIdent:
		return "identifier"
	case tokKeyword:
		return "keyword"
	case tokInt:
		return "integer"
	default:
		return "punctuation"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of file"
	}
	return "'" + t.text + "'"
}

var keywords = map[string]struct{}{
	"package":   {},
	"import":    {},
	"typedef":   {},
	"enum":      {},
	"struct":    {},
	"union":     {},
	"interface": {},
	"extends":   {},
	"oneway":    {},
	"generates": {},
}

// lexer scans source text into a token slice the parser indexes freely.
type lexer struct {
	filename string
	src      string
	tracker  *PositionTracker
	i        int
}

func lex(filename, src string) ([]token, error) {
	lx := &lexer{filename: filename, src: src, tracker: NewPositionTracker()}
	return lx.run()
}

func (lx *lexer) run() ([]token, error) {
	var toks []token

	for lx.i < len(lx.src) {
		c := lx.src[lx.i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.consume(1)

		case c == '/' && lx.peek(1) == '/':
			end := strings.IndexByte(lx.src[lx.i:], '\n')
			if end < 0 {
				end = len(lx.src) - lx.i
			}
			lx.consume(end)

		case c == '/' && lx.peek(1) == '*':
			end := strings.Index(lx.src[lx.i+2:], "*/")
			if end < 0 {
				return nil, lx.errorf("unterminated block comment")
			}
			lx.consume(end + 4)

		case isIdentStart(c):
			toks = append(toks, lx.scanIdent())

		case isDigit(c) || (c == '-' && isDigit(lx.peek(1))):
			toks = append(toks, lx.scanInt())

		default:
			tok, err := lx.scanPunct()
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: lx.tracker.Position()})
	return toks, nil
}

// peek returns the byte at offset ahead, or 0 past the end.
func (lx *lexer) peek(ahead int) byte {
	if lx.i+ahead >= len(lx.src) {
		return 0
	}
	return lx.src[lx.i+ahead]
}

func (lx *lexer) consume(n int) string {
	text := lx.src[lx.i : lx.i+n]
	lx.tracker.Advance(text)
	lx.i += n
	return text
}

func (lx *lexer) scanIdent() token {
	pos := lx.tracker.Position()
	n := 1
	for lx.i+n < len(lx.src) && isIdentPart(lx.src[lx.i+n]) {
		n++
	}
	text := lx.consume(n)

	kind := tokIdent
	if _, kw := keywords[text]; kw {
		kind = tokKeyword
	}
	return token{kind: kind, text: text, pos: pos}
}

func (lx *lexer) scanInt() token {
	pos := lx.tracker.Position()
	n := 0
	if lx.src[lx.i] == '-' {
		n++
	}
	if lx.peek(n) == '0' && (lx.peek(n+1) == 'x' || lx.peek(n+1) == 'X') {
		n += 2
		for isHexDigit(lx.peek(n)) {
			n++
		}
	} else {
		for isDigit(lx.peek(n)) {
			n++
		}
	}
	return token{kind: tokInt, text: lx.consume(n), pos: pos}
}

func (lx *lexer) scanPunct() (token, error) {
	pos := lx.tracker.Position()
	c := lx.src[lx.i]

	if c == ':' && lx.peek(1) == ':' {
		return token{kind: tokPunct, text: lx.consume(2), pos: pos}, nil
	}

	switch c {
	case '@', '.', ',', ';', ':', '{', '}', '(', ')', '<', '>', '=':
		return token{kind: tokPunct, text: lx.consume(1), pos: pos}, nil
	}

	return token{}, lx.errorf("unexpected character %q", rune(c))
}

func (lx *lexer) errorf(format string, args ...any) error {
	pos := lx.tracker.Position()
	pe := &ParseError{
		Kind:       ErrorKindSyntax,
		Message:    fmt.Sprintf(format, args...),
		File:       lx.filename,
		Pos:        pos,
		SourceLine: sourceLine(lx.src, pos.Line),
	}
	return pe.mark()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
