// Package parser turns interface-definition source text into an ast.AST.
//
// A unit file starts with a package declaration that must agree with the
// name it was resolved under, followed by imports, followed by type and
// interface declarations:
//
//	package com.acme.light@1.2;
//
//	import com.acme.common@1.0::types;
//
//	interface ILight extends runtime.base@1.0::IBase {
//	    setLevel(uint32 level) generates (bool ok);
//	};
//
// An explicit extends target counts as an import of that unit; the
// implicit root interface does not, it is ambient runtime.
//
// All failures come back as *ParseError marked with the parse failure
// class.
package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/fqname"
)

// Parse parses one unit's source text. want names the unit being resolved
// (pkg@major.minor::IFoo or ::types) and anchors both the package check
// and @-relative extends targets. filename is carried into diagnostics.
func Parse(filename string, src []byte, want fqname.FQName) (*ast.AST, error) {
	toks, err := lex(filename, string(src))
	if err != nil {
		return nil, err
	}

	p := &parser{
		filename: filename,
		src:      string(src),
		toks:     toks,
		want:     want,
		scope:    ast.NewScope(),
	}
	return p.parseUnit()
}

type parser struct {
	filename string
	src      string
	toks     []token
	idx      int
	want     fqname.FQName

	scope   *ast.Scope
	imports []fqname.FQName
	iface   *ast.Interface
}

func (p *parser) cur() token {
	return p.toks[p.idx]
}

func (p *parser) next() token {
	t := p.toks[p.idx]
	if t.kind != tokEOF {
		p.idx++
	}
	return t
}

func (p *parser) atPunct(text string) bool {
	t := p.cur()
	return t.kind == tokPunct && t.text == text
}

func (p *parser) atKeyword(text string) bool {
	t := p.cur()
	return t.kind == tokKeyword && t.text == text
}

func (p *parser) expectPunct(text string) (token, error) {
	if !p.atPunct(text) {
		return token{}, p.syntaxf(p.cur(), "expected '%s', found %s", text, p.cur().describe())
	}
	return p.next(), nil
}

func (p *parser) expectIdent() (token, error) {
	if p.cur().kind != tokIdent {
		return token{}, p.syntaxf(p.cur(), "expected identifier, found %s", p.cur().describe())
	}
	return p.next(), nil
}

func (p *parser) errorAt(kind ErrorKind, tok token, format string, args ...any) error {
	pe := &ParseError{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		File:       p.filename,
		Pos:        tok.pos,
		SourceLine: sourceLine(p.src, tok.pos.Line),
	}
	return pe.mark()
}

func (p *parser) syntaxf(tok token, format string, args ...any) error {
	return p.errorAt(ErrorKindSyntax, tok, format, args...)
}

func (p *parser) semanticf(tok token, format string, args ...any) error {
	return p.errorAt(ErrorKindSemantic, tok, format, args...)
}

func (p *parser) parseUnit() (*ast.AST, error) {
	if err := p.parsePackageDecl(); err != nil {
		return nil, err
	}

	for p.atKeyword("import") {
		if err := p.parseImport(); err != nil {
			return nil, err
		}
	}

	for p.cur().kind != tokEOF {
		if err := p.parseTopLevelDecl(); err != nil {
			return nil, err
		}
	}

	if p.want.IsInterface() && p.iface == nil {
		return nil, p.errorAt(ErrorKindPackage, p.cur(),
			"file does not declare interface %s", p.want.Name())
	}

	return ast.New(p.want, p.filename, p.imports, p.scope, p.iface), nil
}

func (p *parser) parsePackageDecl() error {
	if !p.atKeyword("package") {
		return p.syntaxf(p.cur(), "file must begin with a package declaration")
	}
	at := p.next()

	declared, err := p.parseQualifiedName(false)
	if err != nil {
		return err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return err
	}

	if declared.PackageOnly() != p.want.PackageOnly() {
		return p.errorAt(ErrorKindPackage, at,
			"package declaration %s does not match %s",
			declared.PackageOnly(), p.want.PackageOnly())
	}
	return nil
}

func (p *parser) parseImport() error {
	p.next()

	imp, err := p.parseQualifiedName(true)
	if err != nil {
		return err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return err
	}

	p.imports = append(p.imports, imp)
	return nil
}

// parseQualifiedName reads pkg@major.minor with an optional ::Unit suffix
// when allowUnit is set.
func (p *parser) parseQualifiedName(allowUnit bool) (fqname.FQName, error) {
	var pkgParts []string
	for {
		seg, err := p.expectIdent()
		if err != nil {
			return fqname.FQName{}, err
		}
		pkgParts = append(pkgParts, seg.text)
		if !p.atPunct(".") {
			break
		}
		p.next()
	}

	if _, err := p.expectPunct("@"); err != nil {
		return fqname.FQName{}, err
	}
	major, minor, err := p.parseVersion()
	if err != nil {
		return fqname.FQName{}, err
	}

	name := ""
	if allowUnit && p.atPunct("::") {
		p.next()
		unit, err := p.expectIdent()
		if err != nil {
			return fqname.FQName{}, err
		}
		name = unit.text
	}

	return fqname.New(strings.Join(pkgParts, "."), major, minor, name), nil
}

func (p *parser) parseVersion() (int, int, error) {
	major, err := p.parseSmallInt()
	if err != nil {
		return 0, 0, err
	}
	if _, err := p.expectPunct("."); err != nil {
		return 0, 0, err
	}
	minor, err := p.parseSmallInt()
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

func (p *parser) parseSmallInt() (int, error) {
	tok := p.cur()
	if tok.kind != tokInt {
		return 0, p.syntaxf(tok, "expected version number, found %s", tok.describe())
	}
	v, err := strconv.Atoi(tok.text)
	if err != nil || v < 0 {
		return 0, p.syntaxf(tok, "malformed version number %q", tok.text)
	}
	p.next()
	return v, nil
}

func (p *parser) parseTopLevelDecl() error {
	exported, err := p.parseAnnotations()
	if err != nil {
		return err
	}

	tok := p.cur()
	if tok.kind != tokKeyword {
		return p.syntaxf(tok, "expected declaration, found %s", tok.describe())
	}

	switch tok.text {
	case "typedef", "enum", "struct", "union":
		return p.parseTypeDecl(p.scope, exported)

	case "interface":
		if exported {
			return p.semanticf(tok, "@export applies only to enum declarations")
		}
		return p.parseInterface()

	case "import":
		return p.semanticf(tok, "imports must precede all declarations")

	default:
		return p.syntaxf(tok, "unexpected %s", tok.describe())
	}
}

// parseAnnotations consumes leading annotations. Only @export is known.
func (p *parser) parseAnnotations() (bool, error) {
	exported := false
	for p.atPunct("@") {
		at := p.next()
		name, err := p.expectIdent()
		if err != nil {
			return false, err
		}
		if name.text != "export" {
			return false, p.semanticf(at, "unknown annotation @%s", name.text)
		}
		exported = true
	}
	return exported, nil
}

func (p *parser) parseTypeDecl(scope *ast.Scope, exported bool) error {
	tok := p.cur()

	var decl ast.NamedType
	var err error
	switch {
	case tok.kind != tokKeyword:
		return p.syntaxf(tok, "expected type declaration, found %s", tok.describe())
	case exported && tok.text != "enum":
		return p.semanticf(tok, "@export applies only to enum declarations")
	case tok.text == "typedef":
		p.next()
		decl, err = p.parseTypedef()
	case tok.text == "enum":
		p.next()
		decl, err = p.parseEnum(exported)
	case tok.text == "struct" || tok.text == "union":
		p.next()
		decl, err = p.parseRecord(tok.text)
	default:
		return p.syntaxf(tok, "expected type declaration, found %s", tok.describe())
	}
	if err != nil {
		return err
	}

	if err := scope.Add(decl); err != nil {
		return p.semanticf(tok, "%s", err.Error())
	}
	return nil
}

func (p *parser) parseTypedef() (ast.NamedType, error) {
	target, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.Typedef{Name: name.text, Target: target}, nil
}

func (p *parser) parseEnum(exported bool) (ast.NamedType, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}

	storageTok := p.cur()
	storage, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !storage.Kind.IsInteger() {
		return nil, p.semanticf(storageTok, "enum storage must be an integer scalar, not %s", storage)
	}

	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	enum := &ast.Enum{Name: name.text, Storage: storage, Exported: exported}
	nextValue := int64(0)
	for !p.atPunct("}") {
		caseName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}

		value := nextValue
		if p.atPunct("=") {
			p.next()
			valTok := p.cur()
			if valTok.kind != tokInt {
				return nil, p.syntaxf(valTok, "expected integer value, found %s", valTok.describe())
			}
			value, err = strconv.ParseInt(valTok.text, 0, 64)
			if err != nil {
				return nil, p.syntaxf(valTok, "malformed integer %q", valTok.text)
			}
			p.next()
		}
		if !fitsStorage(value, storage.Kind) {
			return nil, p.semanticf(caseName,
				"enumerator %s value %d overflows %s storage", caseName.text, value, storage)
		}
		nextValue = value + 1

		enum.Cases = append(enum.Cases, ast.EnumCase{Name: caseName.text, Value: value})

		if p.atPunct(",") {
			p.next()
			continue
		}
		break
	}

	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return enum, nil
}

// fitsStorage reports whether an enumerator value is representable in the
// declared storage type. Values are carried as int64, so the unsigned
// 64-bit upper half is out of reach of source literals anyway.
func fitsStorage(value int64, storage ast.Kind) bool {
	switch storage {
	case ast.KindInt8:
		return value >= math.MinInt8 && value <= math.MaxInt8
	case ast.KindUInt8:
		return value >= 0 && value <= math.MaxUint8
	case ast.KindInt16:
		return value >= math.MinInt16 && value <= math.MaxInt16
	case ast.KindUInt16:
		return value >= 0 && value <= math.MaxUint16
	case ast.KindInt32:
		return value >= math.MinInt32 && value <= math.MaxInt32
	case ast.KindUInt32:
		return value >= 0 && value <= math.MaxUint32
	case ast.KindUInt64:
		return value >= 0
	default:
		return true
	}
}

func (p *parser) parseRecord(keyword string) (ast.NamedType, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	var fields []ast.Field
	seen := map[string]bool{}
	for !p.atPunct("}") {
		fieldType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fieldName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if seen[fieldName.text] {
			return nil, p.semanticf(fieldName, "field %q declared twice in %s %s",
				fieldName.text, keyword, name.text)
		}
		seen[fieldName.text] = true
		if _, err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		fields = append(fields, ast.Field{Name: fieldName.text, Type: fieldType})
	}

	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}

	if keyword == "union" {
		return &ast.Union{Name: name.text, Fields: fields}, nil
	}
	return &ast.Struct{Name: name.text, Fields: fields}, nil
}

func (p *parser) parseType() (ast.Type, error) {
	tok, err := p.expectIdent()
	if err != nil {
		return ast.Type{}, err
	}

	if tok.text == "vec" {
		if _, err := p.expectPunct("<"); err != nil {
			return ast.Type{}, err
		}
		elem, err := p.parseType()
		if err != nil {
			return ast.Type{}, err
		}
		if _, err := p.expectPunct(">"); err != nil {
			return ast.Type{}, err
		}
		return ast.VecOf(elem), nil
	}

	if kind, ok := ast.ScalarKind(tok.text); ok {
		return ast.Scalar(kind), nil
	}
	return ast.Named(tok.text), nil
}

func (p *parser) parseInterface() error {
	kw := p.next()

	if p.want.IsTypesUnit() {
		return p.semanticf(kw, "a types unit cannot declare an interface")
	}
	if p.iface != nil {
		return p.semanticf(kw, "a unit declares at most one interface")
	}

	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	if len(name.text) < 2 || name.text[0] != 'I' || name.text[1] < 'A' || name.text[1] > 'Z' {
		return p.semanticf(name, "interface names must begin with 'I': %s", name.text)
	}
	if name.text != p.want.Name() {
		return p.errorAt(ErrorKindPackage, name,
			"file declares interface %s, expected %s", name.text, p.want.Name())
	}

	extends := fqname.FQName{}
	if p.atKeyword("extends") {
		p.next()
		extends, err = p.parseExtendsTarget()
		if err != nil {
			return err
		}
		// The superinterface is a real dependency edge.
		p.imports = append(p.imports, extends)
	} else if p.want != fqname.Base {
		extends = fqname.Base
	}

	if _, err := p.expectPunct("{"); err != nil {
		return err
	}

	iface := &ast.Interface{Name: name.text, Extends: extends}
	methodNames := map[string]bool{}
	for !p.atPunct("}") {
		tok := p.cur()
		switch {
		case tok.kind == tokKeyword && (tok.text == "typedef" || tok.text == "enum" ||
			tok.text == "struct" || tok.text == "union"):
			if err := p.parseTypeDecl(p.scope, false); err != nil {
				return err
			}

		case p.atPunct("@"):
			exported, err := p.parseAnnotations()
			if err != nil {
				return err
			}
			if err := p.parseTypeDecl(p.scope, exported); err != nil {
				return err
			}

		default:
			m, err := p.parseMethod()
			if err != nil {
				return err
			}
			if methodNames[m.Name] {
				return p.semanticf(tok, "method %q declared twice", m.Name)
			}
			methodNames[m.Name] = true
			iface.Methods = append(iface.Methods, m)
		}
	}

	if _, err := p.expectPunct("}"); err != nil {
		return err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return err
	}

	p.iface = iface
	return nil
}

// parseExtendsTarget accepts a fully-qualified interface or the short
// @major.minor::IName form meaning the unit's own package.
func (p *parser) parseExtendsTarget() (fqname.FQName, error) {
	if p.atPunct("@") {
		p.next()
		major, minor, err := p.parseVersion()
		if err != nil {
			return fqname.FQName{}, err
		}
		if _, err := p.expectPunct("::"); err != nil {
			return fqname.FQName{}, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return fqname.FQName{}, err
		}
		return fqname.New(p.want.Package(), major, minor, name.text), nil
	}

	tok := p.cur()
	target, err := p.parseQualifiedName(true)
	if err != nil {
		return fqname.FQName{}, err
	}
	if !target.IsInterface() {
		return fqname.FQName{}, p.semanticf(tok, "extends target %s is not an interface", target)
	}
	return target, nil
}

func (p *parser) parseMethod() (*ast.Method, error) {
	oneway := false
	if p.atKeyword("oneway") {
		oneway = true
		p.next()
	}

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}

	var results []ast.Arg
	if p.atKeyword("generates") {
		genTok := p.next()
		if oneway {
			return nil, p.semanticf(genTok, "oneway method %q cannot generate results", name.text)
		}
		results, err = p.parseArgList()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}

	return &ast.Method{Name: name.text, Oneway: oneway, Args: args, Results: results}, nil
}

func (p *parser) parseArgList() ([]ast.Arg, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var args []ast.Arg
	for !p.atPunct(")") {
		argType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		argName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		args = append(args, ast.Arg{Name: argName.text, Type: argType})

		if p.atPunct(",") {
			p.next()
			continue
		}
		break
	}

	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}
