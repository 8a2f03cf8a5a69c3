package codegen

import (
	"fmt"
	"math"
	"strings"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/emitter"
	"github.com/openifc/idlgen/errors"
)

// Java writes the Java sources for one unit under the sanitized package
// directory. An interface unit becomes a single interface file with its
// local types nested; the shared types unit becomes one file per declared
// non-typedef type. A non-empty only restricts the types unit to the one
// named declaration. Units that cannot be expressed in Java are rejected
// before anything is written.
func Java(c *coordinator.Coordinator, outputPath string, unit *ast.AST, only string) error {
	if !unit.IsJavaCompatible() {
		return errors.Mark(
			errors.Newf("%s is not Java-compatible (unions, handles and unsigned 64-bit struct fields have no Java representation)", unit.FQName()),
			errors.ErrValidation)
	}

	res, err := newJavaResolver(c, unit)
	if err != nil {
		return err
	}

	if unit.IsInterface() {
		return javaInterfaceFile(c, outputPath, unit, res)
	}
	return javaTypesFiles(c, outputPath, unit, res, only)
}

// javaResolver resolves named type references for Java use sites. Names
// look up through the unit's own scope first, then through the package's
// shared types unit; the grammar cannot spell a reference into any other
// scope. Resolution matters here because an enum reference must dissolve
// into its storage type, the only value Java can carry for it.
type javaResolver struct {
	scopes []*ast.Scope
}

func newJavaResolver(c *coordinator.Coordinator, unit *ast.AST) (*javaResolver, error) {
	res := &javaResolver{scopes: []*ast.Scope{unit.RootScope()}}
	if !unit.IsInterface() {
		return res, nil
	}

	types := unit.FQName().TypesUnit()
	ok, err := c.HasUnit(types)
	if err != nil {
		return nil, err
	}
	if ok {
		shared, err := c.Parse(types)
		if err != nil {
			return nil, err
		}
		res.scopes = append(res.scopes, shared.RootScope())
	}
	return res, nil
}

func (r *javaResolver) lookup(name string) ast.NamedType {
	for _, scope := range r.scopes {
		if decl := scope.Lookup(name); decl != nil {
			return decl
		}
	}
	return nil
}

// typeOf follows declarations so enums dissolve into their storage type
// and typedefs into their targets, the only spellings Java use sites can
// carry. Unresolvable names are left as class references.
func (r *javaResolver) typeOf(t ast.Type) string {
	switch t.Kind {
	case ast.KindVec:
		return "java.util.ArrayList<" + r.boxedOf(*t.Elem) + ">"
	case ast.KindNamed:
		switch decl := r.lookup(t.Name).(type) {
		case *ast.Enum:
			return javaScalar[decl.Storage.Kind]
		case *ast.Typedef:
			return r.typeOf(decl.Target)
		default:
			return t.Name
		}
	default:
		return JavaType(t)
	}
}

func (r *javaResolver) boxedOf(t ast.Type) string {
	spelled := r.typeOf(t)
	if boxed, ok := javaBoxed[spelled]; ok {
		return boxed
	}
	return spelled
}

func (r *javaResolver) argList(m *ast.Method) string {
	parts := make([]string, 0, len(m.Args))
	for _, a := range m.Args {
		parts = append(parts, r.typeOf(a.Type)+" "+a.Name)
	}
	return strings.Join(parts, ", ")
}

func javaFilePrologue(e *emitter.Emitter, unit *ast.AST) {
	e.Emit(Banner)
	e.Emitf("\npackage %s;\n", unit.FQName().JavaPackage())
}

func javaInterfaceFile(c *coordinator.Coordinator, outputPath string, unit *ast.AST, res *javaResolver) error {
	fqn := unit.FQName()
	e, err := c.Emitter(outputPath, fqn, coordinator.LocationGenSanitized, fqn.Name()+".java")
	if err != nil {
		return err
	}

	javaFilePrologue(e, unit)

	iface := unit.Interface()
	extends := ""
	if !iface.IsRoot() {
		extends = fmt.Sprintf(" extends %s.%s", iface.Extends.JavaPackage(), iface.Extends.Name())
	}

	e.Emit("\n")
	e.Emitf("public interface %s%s ", fqn.Name(), extends).Block(func() {
		e.Emitf("String DESCRIPTOR = %q;\n", fqn.String())

		for _, decl := range unit.RootScope().Types() {
			if decl.IsTypedef() {
				continue
			}
			e.Emit("\n")
			javaTypeDecl(e, res, decl, false)
		}

		for _, m := range iface.Methods {
			e.Emit("\n")
			javaMethodDecl(e, res, m)
		}
	}).Emit("\n")

	return e.Close()
}

func javaMethodDecl(e *emitter.Emitter, res *javaResolver, m *ast.Method) {
	switch len(m.Results) {
	case 0:
		e.Emitf("void %s(%s);\n", m.Name, res.argList(m))
	case 1:
		e.Emitf("%s %s(%s);\n", res.typeOf(m.Results[0].Type), m.Name, res.argList(m))
	default:
		result := upperFirst(m.Name) + "Result"
		e.Emitf("%s %s(%s);\n\n", result, m.Name, res.argList(m))
		e.Emitf("final class %s ", result).Block(func() {
			for _, r := range m.Results {
				e.Emitf("public %s %s;\n", res.typeOf(r.Type), r.Name)
			}
		}).Emit("\n")
	}
}

func javaTypesFiles(c *coordinator.Coordinator, outputPath string, unit *ast.AST, res *javaResolver, only string) error {
	if only != "" {
		decl := unit.RootScope().Lookup(only)
		if decl == nil {
			return errors.Mark(
				errors.Newf("%s declares no type named %q", unit.FQName(), only),
				errors.ErrValidation)
		}
		if decl.IsTypedef() {
			return errors.Mark(
				errors.Newf("typedef %s.%s dissolves at use sites and has no Java file of its own", unit.FQName(), only),
				errors.ErrValidation)
		}
		return javaTypeFile(c, outputPath, unit, res, decl)
	}

	for _, decl := range unit.RootScope().Types() {
		if decl.IsTypedef() {
			continue
		}
		if err := javaTypeFile(c, outputPath, unit, res, decl); err != nil {
			return err
		}
	}
	return nil
}

func javaTypeFile(c *coordinator.Coordinator, outputPath string, unit *ast.AST, res *javaResolver, decl ast.NamedType) error {
	e, err := c.Emitter(outputPath, unit.FQName(), coordinator.LocationGenSanitized, decl.TypeName()+".java")
	if err != nil {
		return err
	}

	javaFilePrologue(e, unit)
	e.Emit("\n")
	javaTypeDecl(e, res, decl, true)
	return e.Close()
}

// javaTypeDecl writes one declared type. Enums become constant-holder
// classes over their storage type; structs become bags of public fields.
// Nested declarations inside an interface drop the public modifier, which
// interface members imply.
func javaTypeDecl(e *emitter.Emitter, res *javaResolver, decl ast.NamedType, topLevel bool) {
	modifier := ""
	if topLevel {
		modifier = "public "
	}

	switch d := decl.(type) {
	case *ast.Enum:
		storage := javaScalar[d.Storage.Kind]
		e.Emitf("%sfinal class %s ", modifier, d.Name).Block(func() {
			for _, cs := range d.Cases {
				e.Emitf("public static final %s %s = %s;\n", storage, cs.Name, javaLiteral(storage, cs.Value))
			}
			e.Emitf("\npublic static String toString(%s v) ", storage).Block(func() {
				for _, cs := range d.Cases {
					e.Emitf("if (v == %s) return %q;\n", cs.Name, cs.Name)
				}
				e.Emit("return \"(unknown)\";\n")
			}).Emit("\n")
			e.Emitf("\nprivate %s() {}\n", d.Name)
		}).Emit("\n")
	case *ast.Struct:
		e.Emitf("%sfinal class %s ", modifier, d.Name).Block(func() {
			for _, f := range d.Fields {
				e.Emitf("public %s %s;\n", res.typeOf(f.Type), f.Name)
			}
		}).Emit("\n")
	}
}

// javaLiteral renders an enumerator value for the given storage spelling.
// Unsigned source values can exceed the signed Java type of the same
// width, so out-of-range values get an explicit narrowing cast to keep
// the two's-complement wire value.
func javaLiteral(storage string, value int64) string {
	switch storage {
	case "long":
		return fmt.Sprintf("%dL", value)
	case "byte":
		if value < math.MinInt8 || value > math.MaxInt8 {
			return fmt.Sprintf("(byte) %d", value)
		}
	case "short":
		if value < math.MinInt16 || value > math.MaxInt16 {
			return fmt.Sprintf("(short) %d", value)
		}
	case "int":
		if value < math.MinInt32 || value > math.MaxInt32 {
			return fmt.Sprintf("(int) %dL", value)
		}
	}
	return fmt.Sprintf("%d", value)
}
