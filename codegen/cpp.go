package codegen

import (
	"strings"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/emitter"
	"github.com/openifc/idlgen/fqname"
)

// CppHeaders writes the headers for one unit: types.h for the shared types
// unit, the interface header plus proxy and stub headers otherwise.
func CppHeaders(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	if !unit.IsInterface() {
		return cppTypesHeader(c, outputPath, unit)
	}
	if err := cppInterfaceHeader(c, outputPath, unit); err != nil {
		return err
	}
	if err := cppProxyHeader(c, outputPath, unit); err != nil {
		return err
	}
	return cppStubHeader(c, outputPath, unit)
}

// CppSources writes the .cpp bodies for one unit: types.cpp for the shared
// types unit, the combined proxy and stub translation unit otherwise.
func CppSources(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	if !unit.IsInterface() {
		return cppTypesSource(c, outputPath, unit)
	}
	return cppAllSource(c, outputPath, unit)
}

// headerIncludes collects the angle includes an interface unit needs: its
// superinterface first, then one header per declared import.
func headerIncludes(unit *ast.AST) []string {
	var includes []string
	seen := make(map[string]struct{})
	add := func(inc string) {
		if _, dup := seen[inc]; dup {
			return
		}
		seen[inc] = struct{}{}
		includes = append(includes, inc)
	}

	if iface := unit.Interface(); iface != nil && !iface.IsRoot() {
		add(includePath(iface.Extends, iface.Extends.Name()+".h"))
	}
	for _, imp := range unit.Imports() {
		filename := "types.h"
		if !imp.IsPackageOnly() && !imp.IsTypesUnit() {
			filename = imp.Name() + ".h"
		}
		add(includePath(imp, filename))
	}
	return includes
}

func headerPrologue(e *emitter.Emitter, fqn fqname.FQName, guard string, includes []string) {
	e.Emit(Banner)
	e.Emitf("\n#ifndef %s\n", guard)
	e.Emitf("#define %s\n\n", guard)
	for _, inc := range includes {
		e.Emitf("#include %s\n", inc)
	}
	e.Emit("\n")
	openNamespaces(e, fqn)
	e.SetNamespace(fqn.CppNamespace() + "::")
}

func headerEpilogue(e *emitter.Emitter, fqn fqname.FQName, guard string) {
	e.SetNamespace("")
	e.Emit("\n")
	closeNamespaces(e, fqn)
	e.Emitf("\n#endif  // %s\n", guard)
}

func cppTypesHeader(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	e, err := c.Emitter(outputPath, unit.FQName(), coordinator.LocationGenOutput, "types.h")
	if err != nil {
		return err
	}

	fqn := unit.FQName()
	guard := guardMacro(fqn, "types")
	headerPrologue(e, fqn, guard, []string{"<idlrt/types.h>"})

	for _, decl := range unit.RootScope().Types() {
		e.Emit("\n")
		cppTypeDecl(e, unit, decl)
	}

	headerEpilogue(e, fqn, guard)
	return e.Close()
}

func cppTypeDecl(e *emitter.Emitter, unit *ast.AST, decl ast.NamedType) {
	switch d := decl.(type) {
	case *ast.Typedef:
		e.Emitf("typedef %s %s;\n", CppType(unit, d.Target), d.Name)
	case *ast.Enum:
		e.Emitf("enum class %s : %s ", d.Name, CppType(unit, d.Storage)).Block(func() {
			for _, cs := range d.Cases {
				e.Emitf("%s = %d,\n", cs.Name, cs.Value)
			}
		}).Emit(";\n")
	case *ast.Struct:
		cppRecordDecl(e, unit, "struct", d.Name, d.Fields)
	case *ast.Union:
		cppRecordDecl(e, unit, "union", d.Name, d.Fields)
	}
}

func cppRecordDecl(e *emitter.Emitter, unit *ast.AST, keyword, name string, fields []ast.Field) {
	e.Emitf("%s %s ", keyword, name).Block(func() {
		for _, f := range fields {
			e.Emitf("%s %s;\n", CppType(unit, f.Type), f.Name)
		}
	}).Emit(";\n")
}

func cppInterfaceHeader(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	fqn := unit.FQName()
	e, err := c.Emitter(outputPath, fqn, coordinator.LocationGenOutput, fqn.Name()+".h")
	if err != nil {
		return err
	}

	guard := guardMacro(fqn, fqn.Name())
	includes := append([]string{"<idlrt/runtime.h>"}, headerIncludes(unit)...)
	headerPrologue(e, fqn, guard, includes)

	iface := unit.Interface()
	base := "::idlrt::Interface"
	if !iface.IsRoot() {
		base = iface.Extends.CppNamespace() + "::" + iface.Extends.Name()
	}

	e.Emit("\n")
	e.Emitf("struct %s : public %s ", fqn.Name(), base).Block(func() {
		for _, decl := range unit.RootScope().Types() {
			cppTypeDecl(e, unit, decl)
			e.Emit("\n")
		}

		e.Emitf("static constexpr const char* descriptor = %q;\n\n", fqn.String())

		for _, m := range iface.Methods {
			e.Emitf("virtual ::idlrt::Status %s(%s) = 0;\n", m.Name, cppArgList(unit, m))
		}

		e.Emitf("\nstatic ::idlrt::sp<%s> cast(const ::idlrt::sp<::idlrt::Interface>& base);\n",
			fqn.Name())
	}).Emit(";\n")

	headerEpilogue(e, fqn, guard)
	return e.Close()
}

func cppProxyHeader(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	fqn := unit.FQName()
	e, err := c.Emitter(outputPath, fqn, coordinator.LocationGenOutput, fqn.ProxyName()+".h")
	if err != nil {
		return err
	}

	guard := guardMacro(fqn, fqn.ProxyName())
	includes := []string{"<idlrt/runtime.h>", includePath(fqn, fqn.Name()+".h")}
	headerPrologue(e, fqn, guard, includes)

	e.Emit("\n")
	e.Emitf("struct %s : public %s ", fqn.ProxyName(), fqn.Name()).Block(func() {
		e.Emitf("explicit %s(::idlrt::Channel* channel);\n\n", fqn.ProxyName())
		for _, m := range unit.Interface().Methods {
			e.Emitf("::idlrt::Status %s(%s) override;\n", m.Name, cppArgList(unit, m))
		}
		e.Emit("\nprivate:\n")
		e.Emit("::idlrt::Channel* mChannel;\n")
	}).Emit(";\n")

	headerEpilogue(e, fqn, guard)
	return e.Close()
}

func cppStubHeader(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	fqn := unit.FQName()
	e, err := c.Emitter(outputPath, fqn, coordinator.LocationGenOutput, fqn.StubName()+".h")
	if err != nil {
		return err
	}

	guard := guardMacro(fqn, fqn.StubName())
	includes := []string{"<idlrt/runtime.h>", includePath(fqn, fqn.Name()+".h")}
	headerPrologue(e, fqn, guard, includes)

	e.Emit("\n")
	e.Emitf("struct %s : public ::idlrt::Stub ", fqn.StubName()).Block(func() {
		e.Emitf("explicit %s(const ::idlrt::sp<%s>& impl);\n\n", fqn.StubName(), fqn.Name())
		e.Emit("::idlrt::Status onTransact(uint32_t _idl_code, const ::idlrt::Parcel& _idl_request, ::idlrt::Parcel* _idl_reply) override;\n")
		e.Emit("\nprivate:\n")
		e.Emitf("::idlrt::sp<%s> mImpl;\n", fqn.Name())
	}).Emit(";\n")

	headerEpilogue(e, fqn, guard)
	return e.Close()
}

func cppTypesSource(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	fqn := unit.FQName()
	e, err := c.Emitter(outputPath, fqn, coordinator.LocationGenOutput, "types.cpp")
	if err != nil {
		return err
	}

	e.Emit(Banner)
	e.Emitf("\n#include %s\n\n", includePath(fqn, "types.h"))
	openNamespaces(e, fqn)
	e.SetNamespace(fqn.CppNamespace() + "::")

	cppScopeBodies(e, unit)

	e.SetNamespace("")
	e.Emit("\n")
	closeNamespaces(e, fqn)
	return e.Close()
}

// cppScopeBodies emits the out-of-line helpers for a scope's declarations:
// a toString per enum and equality operators per struct. Unions carry no
// helpers because their active member is not knowable here.
func cppScopeBodies(e *emitter.Emitter, unit *ast.AST) {
	for _, decl := range unit.RootScope().Types() {
		switch d := decl.(type) {
		case *ast.Enum:
			cppEnumToString(e, unit, d)
		case *ast.Struct:
			cppStructEquality(e, unit, d)
		}
	}
}

// cppEnumToString compares case by case instead of switching so that
// aliased enumerators (two names for one value) stay legal C++; the first
// declared name wins.
func cppEnumToString(e *emitter.Emitter, unit *ast.AST, d *ast.Enum) {
	owner := CppType(unit, ast.Named(d.Name))
	e.Emit("\n")
	e.Emitf("::idlrt::string toString(%s v) ", owner).Block(func() {
		for _, cs := range d.Cases {
			e.Emitf("if (v == %s::%s) return %q;\n", owner, cs.Name, cs.Name)
		}
		e.Emit("return \"(unknown)\";\n")
	}).Emit("\n")
}

func cppStructEquality(e *emitter.Emitter, unit *ast.AST, d *ast.Struct) {
	owner := CppType(unit, ast.Named(d.Name))
	e.Emit("\n")
	e.Emitf("bool operator==(const %s& lhs, const %s& rhs) ", owner, owner).Block(func() {
		for _, f := range d.Fields {
			e.Emitf("if (lhs.%s != rhs.%s) return false;\n", f.Name, f.Name)
		}
		e.Emit("return true;\n")
	}).Emit("\n")
	e.Emit("\n")
	e.Emitf("bool operator!=(const %s& lhs, const %s& rhs) ", owner, owner).Block(func() {
		e.Emit("return !(lhs == rhs);\n")
	}).Emit("\n")
}

func cppAllSource(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	fqn := unit.FQName()
	e, err := c.Emitter(outputPath, fqn, coordinator.LocationGenOutput, fqn.InterfaceBaseName()+"All.cpp")
	if err != nil {
		return err
	}

	e.Emit(Banner)
	e.Emit("\n")
	e.Emitf("#include %s\n", includePath(fqn, fqn.ProxyName()+".h"))
	e.Emitf("#include %s\n\n", includePath(fqn, fqn.StubName()+".h"))
	openNamespaces(e, fqn)
	e.SetNamespace(fqn.CppNamespace() + "::")

	e.Emit("\n")
	e.Emitf("::idlrt::sp<%s> %s::cast(const ::idlrt::sp<::idlrt::Interface>& base) ",
		fqn.Name(), fqn.Name()).Block(func() {
		e.Emitf("return ::idlrt::interface_cast<%s>(base);\n", fqn.Name())
	}).Emit("\n")

	cppScopeBodies(e, unit)

	methods := unit.Interface().Methods
	cppProxyBodies(e, unit, methods)
	cppStubBodies(e, unit, methods)

	e.SetNamespace("")
	e.Emit("\n")
	closeNamespaces(e, fqn)
	return e.Close()
}

func cppProxyBodies(e *emitter.Emitter, unit *ast.AST, methods []*ast.Method) {
	fqn := unit.FQName()

	e.Emit("\n")
	e.Emitf("%s::%s(::idlrt::Channel* channel) : mChannel(channel) {}\n",
		fqn.ProxyName(), fqn.ProxyName())

	for code, m := range methods {
		e.Emit("\n")
		e.Emitf("::idlrt::Status %s::%s(%s) ", fqn.ProxyName(), m.Name, cppArgList(unit, m)).Block(func() {
			e.Emit("::idlrt::Parcel _idl_request;\n")
			for _, a := range m.Args {
				e.Emitf("_idl_request.write(%s);\n", a.Name)
			}
			if m.Oneway {
				e.Emitf("return mChannel->transactOneway(%d /* %s */, _idl_request);\n",
					code+1, m.Name)
				return
			}
			e.Emit("::idlrt::Parcel _idl_reply;\n")
			e.Emitf("::idlrt::Status _idl_status = mChannel->transact(%d /* %s */, _idl_request, &_idl_reply);\n",
				code+1, m.Name)
			e.Emit("if (!_idl_status.ok()) ").Block(func() {
				e.Emit("return _idl_status;\n")
			}).Emit("\n")
			for _, r := range m.Results {
				e.Emitf("_idl_reply.read(%s);\n", r.Name)
			}
			e.Emit("return _idl_status;\n")
		}).Emit("\n")
	}
}

func cppStubBodies(e *emitter.Emitter, unit *ast.AST, methods []*ast.Method) {
	fqn := unit.FQName()

	e.Emit("\n")
	e.Emitf("%s::%s(const ::idlrt::sp<%s>& impl) : mImpl(impl) {}\n",
		fqn.StubName(), fqn.StubName(), fqn.Name())

	e.Emit("\n")
	e.Emitf("::idlrt::Status %s::onTransact(uint32_t _idl_code, const ::idlrt::Parcel& _idl_request, ::idlrt::Parcel* _idl_reply) ",
		fqn.StubName()).Block(func() {
		if len(methods) > 0 {
			e.Emit("switch (_idl_code) ").Block(func() {
				for code, m := range methods {
					e.Emitf("case %d /* %s */: ", code+1, m.Name).Block(func() {
						cppStubCase(e, unit, m)
					}).Emit("\n")
				}
			}).Emit("\n")
		}
		e.Emit("return ::idlrt::Status::unknownTransaction(_idl_code);\n")
	}).Emit("\n")
}

func cppStubCase(e *emitter.Emitter, unit *ast.AST, m *ast.Method) {
	for _, a := range m.Args {
		e.Emitf("%s %s;\n", CppType(unit, a.Type), a.Name)
		e.Emitf("_idl_request.read(&%s);\n", a.Name)
	}

	call := make([]string, 0, len(m.Args)+len(m.Results))
	for _, a := range m.Args {
		call = append(call, a.Name)
	}
	for _, r := range m.Results {
		call = append(call, "&"+r.Name)
	}

	if len(m.Results) == 0 {
		e.Emitf("return mImpl->%s(%s);\n", m.Name, strings.Join(call, ", "))
		return
	}

	for _, r := range m.Results {
		e.Emitf("%s %s;\n", CppType(unit, r.Type), r.Name)
	}
	e.Emitf("::idlrt::Status _idl_status = mImpl->%s(%s);\n", m.Name, strings.Join(call, ", "))
	e.Emit("if (!_idl_status.ok()) ").Block(func() {
		e.Emit("return _idl_status;\n")
	}).Emit("\n")
	for _, r := range m.Results {
		e.Emitf("_idl_reply->write(%s);\n", r.Name)
	}
	e.Emit("return _idl_status;\n")
}
