package backend

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/codegen"
	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/fqname"
	"github.com/openifc/idlgen/hash"
)

// The per-unit generation functions adapt codegen's entry points to the
// fan-out's shape. Only the Java generator honors the types.Name
// restriction; everything else receives only == "".

func generateCpp(ctx *Context, unit *ast.AST, only string) error {
	if err := codegen.CppHeaders(ctx.Coord, ctx.OutputPath, unit); err != nil {
		return err
	}
	return codegen.CppSources(ctx.Coord, ctx.OutputPath, unit)
}

func generateCppHeaders(ctx *Context, unit *ast.AST, only string) error {
	return codegen.CppHeaders(ctx.Coord, ctx.OutputPath, unit)
}

func generateCppSources(ctx *Context, unit *ast.AST, only string) error {
	return codegen.CppSources(ctx.Coord, ctx.OutputPath, unit)
}

func generateCppImpl(ctx *Context, unit *ast.AST, only string) error {
	if err := codegen.CppImplHeader(ctx.Coord, ctx.OutputPath, unit); err != nil {
		return err
	}
	return codegen.CppImplSource(ctx.Coord, ctx.OutputPath, unit)
}

func generateCppImplHeaders(ctx *Context, unit *ast.AST, only string) error {
	return codegen.CppImplHeader(ctx.Coord, ctx.OutputPath, unit)
}

func generateCppImplSources(ctx *Context, unit *ast.AST, only string) error {
	return codegen.CppImplSource(ctx.Coord, ctx.OutputPath, unit)
}

func generateCppAdapter(ctx *Context, unit *ast.AST, only string) error {
	if err := codegen.CppAdapterHeader(ctx.Coord, ctx.OutputPath, unit); err != nil {
		return err
	}
	return codegen.CppAdapterSource(ctx.Coord, ctx.OutputPath, unit)
}

func generateCppAdapterHeaders(ctx *Context, unit *ast.AST, only string) error {
	return codegen.CppAdapterHeader(ctx.Coord, ctx.OutputPath, unit)
}

func generateCppAdapterSources(ctx *Context, unit *ast.AST, only string) error {
	return codegen.CppAdapterSource(ctx.Coord, ctx.OutputPath, unit)
}

func generateJava(ctx *Context, unit *ast.AST, only string) error {
	return codegen.Java(ctx.Coord, ctx.OutputPath, unit, only)
}

func generateTestspec(ctx *Context, unit *ast.AST, only string) error {
	return codegen.Testspec(ctx.Coord, ctx.OutputPath, unit)
}

// adapterMainBackend writes the package-level adapter executable, which
// needs every member at once to register them in a single main.
type adapterMainBackend struct{}

func (*adapterMainBackend) Key() string { return "c++-adapter-main" }
func (*adapterMainBackend) Description() string {
	return "Generates the adapter entry point registering a whole package."
}
func (*adapterMainBackend) Shape() Shape { return ShapeDirectory }

func (b *adapterMainBackend) Validate(fqn fqname.FQName) error {
	return validatePackageOnly(b.Key(), fqn)
}

func (b *adapterMainBackend) Generate(ctx *Context, pkg fqname.FQName) error {
	_, units, err := parsePackageUnits(ctx, pkg)
	if err != nil {
		return err
	}
	return codegen.CppAdapterMain(ctx.Coord, ctx.OutputPath, pkg, units)
}

// javaConstantsBackend emits a package's @export enums as a Java
// Constants class. A package exporting nothing produces no file.
type javaConstantsBackend struct{}

func (*javaConstantsBackend) Key() string { return "java-constants" }
func (*javaConstantsBackend) Description() string {
	return "Like export-header but for Java (also created by -Lmakefile when @export exists)."
}
func (*javaConstantsBackend) Shape() Shape { return ShapeDirectory }

func (b *javaConstantsBackend) Validate(fqn fqname.FQName) error {
	return validatePackageOnly(b.Key(), fqn)
}

func (b *javaConstantsBackend) Generate(ctx *Context, pkg fqname.FQName) error {
	_, units, err := parsePackageUnits(ctx, pkg)
	if err != nil {
		return err
	}
	return codegen.JavaConstants(ctx.Coord, ctx.OutputPath, pkg, units)
}

// exportHeaderBackend emits a package's @export enums as a C header so
// code that never touches the generated C++ can share the constants.
type exportHeaderBackend struct{}

func (*exportHeaderBackend) Key() string { return "export-header" }
func (*exportHeaderBackend) Description() string {
	return "Generates a C header of @export enumerations to keep legacy code in sync."
}
func (*exportHeaderBackend) Shape() Shape { return ShapeFile }

func (b *exportHeaderBackend) Validate(fqn fqname.FQName) error {
	return validatePackageOnly(b.Key(), fqn)
}

func (b *exportHeaderBackend) Generate(ctx *Context, pkg fqname.FQName) error {
	_, units, err := parsePackageUnits(ctx, pkg)
	if err != nil {
		return err
	}
	return codegen.ExportHeader(ctx.Coord, ctx.OutputPath, pkg, units)
}

// hashBackend prints one "<digest> <fqname>" line per unit. It parses
// with ledger enforcement suppressed, since reporting the current digests
// is exactly what updating the ledger requires.
type hashBackend struct{}

func (*hashBackend) Key() string { return "hash" }
func (*hashBackend) Description() string {
	return "Prints content hashes of the requested units in ledger format."
}
func (*hashBackend) Shape() Shape { return ShapeNone }

func (b *hashBackend) Validate(fqn fqname.FQName) error {
	return validateSource(b.Key(), false, fqn)
}

func (b *hashBackend) Generate(ctx *Context, fqn fqname.FQName) error {
	units := []fqname.FQName{fqn}
	if fqn.IsPackageOnly() {
		members, err := ctx.Coord.ListPackageMembers(fqn)
		if err != nil {
			return err
		}
		units = members
	}

	for _, unit := range units {
		if _, err := ctx.Coord.ParseEnforce(unit, coordinator.EnforceNone); err != nil {
			return err
		}
		filename, err := ctx.Coord.UnitPath(unit)
		if err != nil {
			return err
		}
		content, err := readSource(ctx, filename)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.HashOut, "%s %s\n", hash.Digest(content), unit)
	}
	return nil
}

func readSource(ctx *Context, filename string) ([]byte, error) {
	content, err := afero.ReadFile(ctx.Coord.Fs(), filename)
	if err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "reading %s", filename), errors.ErrParse)
	}
	return content, nil
}
