package codegen

import (
	"path"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/emitter"
	"github.com/openifc/idlgen/fqname"
	"github.com/openifc/idlgen/internal/util"
)

// exportedEnums gathers every @export enum across a package's members, in
// member order. Both constant generators skip silently when it is empty,
// so callers never create a file for a package exporting nothing.
func exportedEnums(members []*ast.AST) []*ast.Enum {
	var out []*ast.Enum
	for _, m := range members {
		out = append(out, m.RootScope().ExportedEnums()...)
	}
	return out
}

// constantName mangles an enumerator into the flat C and Java constant
// namespace: enum LedState { FAST_BLINK } becomes LED_STATE_FAST_BLINK.
func constantName(enum *ast.Enum, cs ast.EnumCase) string {
	return util.UpperSnake(enum.Name) + "_" + util.UpperSnake(cs.Name)
}

// ExportHeader writes the C header of a package's exported constants.
// outputPath names the header file itself rather than a directory. The
// header is plain C so trees that never touch the generated C++ can still
// share the constants.
func ExportHeader(c *coordinator.Coordinator, outputPath string, pkg fqname.FQName, members []*ast.AST) error {
	enums := exportedEnums(members)
	if len(enums) == 0 {
		return nil
	}

	e, err := c.Emitter(path.Dir(outputPath), pkg, coordinator.LocationDirect, path.Base(outputPath))
	if err != nil {
		return err
	}

	guard := "IDLGEN_EXPORTED_" + pkg.TokenName() + "_H"
	e.Emit(Banner)
	e.Emitf("// Exported constants of %s.\n", pkg)
	e.Emitf("\n#ifndef %s\n", guard)
	e.Emitf("#define %s\n\n", guard)
	e.Emit("#ifdef __cplusplus\n")
	e.Emit("extern \"C\" {\n")
	e.Emit("#endif\n")

	for _, enum := range enums {
		e.Emit("\n")
		e.Emit("enum ").Block(func() {
			for _, cs := range enum.Cases {
				e.Emitf("%s = %d,\n", constantName(enum, cs), cs.Value)
			}
		}).Emit(";\n")
	}

	e.Emit("\n#ifdef __cplusplus\n")
	e.Emit("}  // extern \"C\"\n")
	e.Emit("#endif\n")
	e.Emitf("\n#endif  // %s\n", guard)
	return e.Close()
}

// JavaConstants writes a package's exported constants as a single
// Constants class under the sanitized package directory.
func JavaConstants(c *coordinator.Coordinator, outputPath string, pkg fqname.FQName, members []*ast.AST) error {
	enums := exportedEnums(members)
	if len(enums) == 0 {
		return nil
	}

	e, err := c.Emitter(outputPath, pkg, coordinator.LocationGenSanitized, "Constants.java")
	if err != nil {
		return err
	}

	e.Emit(Banner)
	e.Emitf("\npackage %s;\n", pkg.JavaPackage())
	e.Emit("\n")
	e.Emit("public final class Constants ").Block(func() {
		for _, enum := range enums {
			javaConstantFields(e, enum)
		}
		e.Emit("\nprivate Constants() {}\n")
	}).Emit("\n")

	return e.Close()
}

func javaConstantFields(e *emitter.Emitter, enum *ast.Enum) {
	storage := javaScalar[enum.Storage.Kind]
	for _, cs := range enum.Cases {
		e.Emitf("public static final %s %s = %s;\n",
			storage, constantName(enum, cs), javaLiteral(storage, cs.Value))
	}
}
