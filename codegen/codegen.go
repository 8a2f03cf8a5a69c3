// Package codegen emits the per-language artifact bodies: C++ headers,
// sources, implementation skeletons and version adapters, Java classes,
// exported-constant headers and the test-protocol descriptor. Each
// generator drives an Emitter obtained from the coordinator, so placement
// and truncation behave the same across languages.
package codegen

import (
	"strings"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/emitter"
	"github.com/openifc/idlgen/fqname"
)

// Banner opens every generated source file.
const Banner = "// Autogenerated by idlgen. Do not edit.\n"

// cppScalar maps built-in types to their C++ spellings. Strings, handles
// and vectors resolve to the runtime support library.
var cppScalar = map[ast.Kind]string{
	ast.KindBool:   "bool",
	ast.KindInt8:   "int8_t",
	ast.KindInt16:  "int16_t",
	ast.KindInt32:  "int32_t",
	ast.KindInt64:  "int64_t",
	ast.KindUInt8:  "uint8_t",
	ast.KindUInt16: "uint16_t",
	ast.KindUInt32: "uint32_t",
	ast.KindUInt64: "uint64_t",
	ast.KindFloat:  "float",
	ast.KindDouble: "double",
	ast.KindString: "::idlrt::string",
	ast.KindHandle: "::idlrt::handle",
}

// CppType returns the fully-rooted C++ spelling of a type use. Names
// declared inside an interface unit qualify through the interface class;
// anything else resolves to the package namespace, where the shared types
// unit places its declarations. Generators always emit the rooted form
// and rely on the emitter's namespace filter to shorten local names.
func CppType(unit *ast.AST, t ast.Type) string {
	switch t.Kind {
	case ast.KindVec:
		return "::idlrt::vec<" + CppType(unit, *t.Elem) + ">"
	case ast.KindNamed:
		fqn := unit.FQName()
		if unit.IsInterface() && unit.RootScope().Lookup(t.Name) != nil {
			return fqn.CppNamespace() + "::" + fqn.Name() + "::" + t.Name
		}
		return fqn.CppNamespace() + "::" + t.Name
	default:
		return cppScalar[t.Kind]
	}
}

// passByRef reports whether an argument of this type travels as a const
// reference. Scalars and enums go by value; everything sized or opaque
// goes by reference. Unresolved names are assumed to be records from the
// package's types unit.
func passByRef(unit *ast.AST, t ast.Type) bool {
	switch t.Kind {
	case ast.KindString, ast.KindVec, ast.KindHandle:
		return true
	case ast.KindNamed:
		switch decl := unit.RootScope().Lookup(t.Name).(type) {
		case *ast.Enum:
			return false
		case *ast.Typedef:
			return passByRef(unit, decl.Target)
		default:
			return true
		}
	}
	return false
}

// cppArgList renders a method's parameter list: in-arguments first, then
// one out-pointer per result. Every method returns ::idlrt::Status, so
// results never occupy the return slot.
func cppArgList(unit *ast.AST, m *ast.Method) string {
	parts := make([]string, 0, len(m.Args)+len(m.Results))
	for _, a := range m.Args {
		t := CppType(unit, a.Type)
		if passByRef(unit, a.Type) {
			parts = append(parts, "const "+t+"& "+a.Name)
		} else {
			parts = append(parts, t+" "+a.Name)
		}
	}
	for _, r := range m.Results {
		parts = append(parts, CppType(unit, r.Type)+"* "+r.Name)
	}
	return strings.Join(parts, ", ")
}

// openNamespaces writes one namespace line per package component plus the
// version namespace. closeNamespaces unwinds them in reverse.
func openNamespaces(e *emitter.Emitter, fqn fqname.FQName) {
	for _, ns := range namespaceComponents(fqn) {
		e.Emitf("namespace %s {\n", ns)
	}
}

func closeNamespaces(e *emitter.Emitter, fqn fqname.FQName) {
	components := namespaceComponents(fqn)
	for i := len(components) - 1; i >= 0; i-- {
		e.Emitf("}  // namespace %s\n", components[i])
	}
}

func namespaceComponents(fqn fqname.FQName) []string {
	return append(fqn.PackageComponents(), fqn.SanitizedVersion())
}

// includePath returns the angle-bracket include for a generated header of
// the named unit's package.
func includePath(fqn fqname.FQName, filename string) string {
	return "<" + fqn.PackagePath(false) + "/" + filename + ">"
}

// guardMacro derives the include-guard token for a generated header.
func guardMacro(fqn fqname.FQName, base string) string {
	return fqn.TokenName() + "_" + strings.ToUpper(base) + "_H"
}

// javaScalar maps built-in types to Java. The language has no unsigned
// integers, so unsigned widths share the signed spelling of the same
// size, matching how the wire format round-trips them.
var javaScalar = map[ast.Kind]string{
	ast.KindBool:   "boolean",
	ast.KindInt8:   "byte",
	ast.KindUInt8:  "byte",
	ast.KindInt16:  "short",
	ast.KindUInt16: "short",
	ast.KindInt32:  "int",
	ast.KindUInt32: "int",
	ast.KindInt64:  "long",
	ast.KindUInt64: "long",
	ast.KindFloat:  "float",
	ast.KindDouble: "double",
	ast.KindString: "String",
}

var javaBoxed = map[string]string{
	"boolean": "Boolean",
	"byte":    "Byte",
	"short":   "Short",
	"int":     "Integer",
	"long":    "Long",
	"float":   "Float",
	"double":  "Double",
}

// JavaType returns the Java spelling of a built-in type use. Callers must
// have checked Java compatibility first; handles have no representation
// here. Named and vector references go through the resolver, which knows
// the declaring scopes.
func JavaType(t ast.Type) string {
	switch t.Kind {
	case ast.KindHandle:
		panic("codegen: handle reached the Java generator")
	case ast.KindNamed:
		return t.Name
	default:
		return javaScalar[t.Kind]
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
