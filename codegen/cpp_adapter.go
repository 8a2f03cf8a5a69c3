package codegen

import (
	"strings"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/fqname"
)

// CppAdapterHeader writes the version-bridge wrapper header for an
// interface unit. The adapter implements the interface by forwarding every
// call to a wrapped instance, giving conformance tooling a seam between
// minor versions. Types units are skipped without output.
func CppAdapterHeader(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	if !unit.IsInterface() {
		return nil
	}
	fqn := unit.FQName()

	e, err := c.Emitter(outputPath, fqn, coordinator.LocationGenOutput, fqn.AdapterName()+".h")
	if err != nil {
		return err
	}

	guard := guardMacro(fqn, fqn.AdapterName())
	includes := []string{"<idlrt/runtime.h>", includePath(fqn, fqn.Name()+".h")}
	headerPrologue(e, fqn, guard, includes)

	e.Emit("\n")
	e.Emitf("struct %s : public %s ", fqn.AdapterName(), fqn.Name()).Block(func() {
		e.Emitf("explicit %s(const ::idlrt::sp<%s>& impl);\n\n", fqn.AdapterName(), fqn.Name())
		for _, m := range unit.Interface().Methods {
			e.Emitf("::idlrt::Status %s(%s) override;\n", m.Name, cppArgList(unit, m))
		}
		e.Emit("\nprivate:\n")
		e.Emitf("::idlrt::sp<%s> mImpl;\n", fqn.Name())
	}).Emit(";\n")

	headerEpilogue(e, fqn, guard)
	return e.Close()
}

// CppAdapterSource writes the forwarding bodies for the adapter.
func CppAdapterSource(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	if !unit.IsInterface() {
		return nil
	}
	fqn := unit.FQName()

	e, err := c.Emitter(outputPath, fqn, coordinator.LocationGenOutput, fqn.AdapterName()+".cpp")
	if err != nil {
		return err
	}

	e.Emit(Banner)
	e.Emitf("\n#include %s\n\n", includePath(fqn, fqn.AdapterName()+".h"))
	openNamespaces(e, fqn)
	e.SetNamespace(fqn.CppNamespace() + "::")

	e.Emit("\n")
	e.Emitf("%s::%s(const ::idlrt::sp<%s>& impl) : mImpl(impl) {}\n",
		fqn.AdapterName(), fqn.AdapterName(), fqn.Name())

	for _, m := range unit.Interface().Methods {
		forward := make([]string, 0, len(m.Args)+len(m.Results))
		for _, a := range m.Args {
			forward = append(forward, a.Name)
		}
		for _, r := range m.Results {
			forward = append(forward, r.Name)
		}

		e.Emit("\n")
		e.Emitf("::idlrt::Status %s::%s(%s) ", fqn.AdapterName(), m.Name, cppArgList(unit, m)).Block(func() {
			e.Emitf("return mImpl->%s(%s);\n", m.Name, strings.Join(forward, ", "))
		}).Emit("\n")
	}

	e.SetNamespace("")
	e.Emit("\n")
	closeNamespaces(e, fqn)
	return e.Close()
}

// CppAdapterMain writes the package-level adapter executable: a main that
// registers an adapter factory for every interface member. A package with
// no interfaces has nothing to adapt, which is a caller error.
func CppAdapterMain(c *coordinator.Coordinator, outputPath string, pkg fqname.FQName, members []*ast.AST) error {
	var ifaces []*ast.AST
	for _, m := range members {
		if m.IsInterface() {
			ifaces = append(ifaces, m)
		}
	}
	if len(ifaces) == 0 {
		return errors.Mark(
			errors.Newf("package %s declares no interfaces to adapt", pkg),
			errors.ErrValidation)
	}

	e, err := c.Emitter(outputPath, pkg, coordinator.LocationGenOutput, "main.cpp")
	if err != nil {
		return err
	}

	e.Emit(Banner)
	e.Emit("\n#include <idlrt/adapter.h>\n\n")
	for _, unit := range ifaces {
		e.Emitf("#include %s\n", includePath(unit.FQName(), unit.FQName().AdapterName()+".h"))
	}

	e.Emit("\n")
	e.Emit("int main(int argc, char** argv) ").Block(func() {
		e.Emit("::idlrt::AdapterFactory factory;\n")
		for _, unit := range ifaces {
			fqn := unit.FQName()
			qualified := fqn.CppNamespace() + "::"
			e.Emitf("factory.add(%q, [](const ::idlrt::sp<::idlrt::Interface>& base) -> ::idlrt::sp<::idlrt::Interface> ", fqn.String()).Block(func() {
				e.Emitf("return new %s%s(%s%s::cast(base));\n",
					qualified, fqn.AdapterName(), qualified, fqn.Name())
			}).Emit(");\n")
		}
		e.Emitf("return ::idlrt::adapterMain(%q, factory, argc, argv);\n", pkg.String())
	}).Emit("\n")

	return e.Close()
}
