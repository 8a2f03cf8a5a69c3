package codegen

import (
	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/emitter"
)

// CppImplHeader writes the implementation skeleton header for an
// interface unit. Skeletons land directly under the output path and are
// meant to be edited, so they carry no autogeneration banner. Types units
// have nothing to implement and are skipped without output.
func CppImplHeader(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	if !unit.IsInterface() {
		return nil
	}
	fqn := unit.FQName()
	base := fqn.InterfaceBaseName()

	e, err := c.Emitter(outputPath, fqn, coordinator.LocationDirect, base+".h")
	if err != nil {
		return err
	}

	// Skeletons keep names fully rooted rather than letting the namespace
	// filter shorten them; implementors move this code around.
	guard := guardMacro(fqn, base)
	e.Emitf("#ifndef %s\n", guard)
	e.Emitf("#define %s\n\n", guard)
	e.Emitf("#include %s\n\n", includePath(fqn, fqn.Name()+".h"))
	openNamespaces(e, fqn)
	e.Emit("namespace implementation {\n")

	e.Emit("\n")
	e.Emitf("struct %s : public %s ", base, fqn.Name()).Block(func() {
		e.Emitf("// Methods from %s::%s follow.\n", fqn.CppNamespace(), fqn.Name())
		for _, m := range unit.Interface().Methods {
			e.Emitf("::idlrt::Status %s(%s) override;\n", m.Name, cppArgList(unit, m))
		}
	}).Emit(";\n")

	e.Emit("\n")
	e.Emit("}  // namespace implementation\n")
	closeNamespaces(e, fqn)
	e.Emitf("\n#endif  // %s\n", guard)
	return e.Close()
}

// CppImplSource writes the matching skeleton bodies. Every method returns
// success until the implementor fills it in.
func CppImplSource(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	if !unit.IsInterface() {
		return nil
	}
	fqn := unit.FQName()
	base := fqn.InterfaceBaseName()

	e, err := c.Emitter(outputPath, fqn, coordinator.LocationDirect, base+".cpp")
	if err != nil {
		return err
	}

	e.Emitf("#include %q\n\n", base+".h")
	openNamespaces(e, fqn)
	e.Emit("namespace implementation {\n")

	e.Emit("\n")
	e.Emitf("// Methods from %s::%s follow.\n", fqn.CppNamespace(), fqn.Name())
	for _, m := range unit.Interface().Methods {
		cppImplMethodBody(e, unit, base, m)
	}

	e.Emit("\n")
	e.Emit("}  // namespace implementation\n")
	closeNamespaces(e, fqn)
	return e.Close()
}

func cppImplMethodBody(e *emitter.Emitter, unit *ast.AST, base string, m *ast.Method) {
	e.Emit("\n")
	e.Emitf("::idlrt::Status %s::%s(%s) ", base, m.Name, cppArgList(unit, m)).Block(func() {
		for _, a := range m.Args {
			e.Emitf("(void)%s;\n", a.Name)
		}
		for _, r := range m.Results {
			e.Emitf("(void)%s;\n", r.Name)
		}
		e.Emit("// TODO implement\n")
		e.Emit("return ::idlrt::Status::ok();\n")
	}).Emit("\n")
}
