package backend

import (
	"github.com/kballard/go-shellquote"

	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/emitter"
	"github.com/openifc/idlgen/fqname"
)

// blueprintBackend writes the declarative build descriptor, modules.bp,
// next to the package sources: a filegroup of the sources, genrules
// reinvoking the tool for C++ headers and sources with every output
// enumerated, the package library with its dependency edges, and the
// adapter helper blocks for packages that declare interfaces.
type blueprintBackend struct{}

func (*blueprintBackend) Key() string { return "blueprint" }
func (*blueprintBackend) Description() string {
	return "Generates declarative build modules for -Lc++-headers and -Lc++-sources."
}
func (*blueprintBackend) Shape() Shape { return ShapeSourceTree }

func (b *blueprintBackend) Validate(fqn fqname.FQName) error {
	return validatePackageOnly(b.Key(), fqn)
}

func (b *blueprintBackend) Generate(ctx *Context, pkg fqname.FQName) error {
	members, _, err := parsePackageUnits(ctx, pkg)
	if err != nil {
		return err
	}

	closure, err := ctx.Graph.ImportedPackageClosure(pkg)
	if err != nil {
		return err
	}
	imported := withoutSelf(closure, pkg)

	opts, err := rootOptions(ctx, pkg, closure)
	if err != nil {
		return err
	}

	typesOnly, err := ctx.Graph.IsTypesOnlyPackage(pkg)
	if err != nil {
		return err
	}

	e, err := ctx.Coord.Emitter(ctx.OutputPath, pkg, coordinator.LocationPackageRoot, "modules.bp")
	if err != nil {
		return err
	}

	library := pkg.String()
	filegroup := library + "_idl"
	genSources := library + "_genc++"
	genHeaders := library + "_genc++_headers"
	pathPrefix := pkg.PackagePath(false) + "/"

	e.Emit("// Autogenerated by idlgen. Do not edit.\n\n")

	e.Emit("filegroup ").Block(func() {
		e.Emitf("name: %q,\n", filegroup)
		bpList(e, "srcs", func() {
			for _, member := range members {
				e.Emitf("%q,\n", member.Name()+coordinator.SourceExtension)
			}
		})
	}).Emit("\n\n")

	bpGenruleSection(e, pkg, filegroup, genSources, "c++-sources", opts, func() {
		for _, member := range members {
			if member.Name() == fqname.TypesName {
				e.Emitf("%q,\n", pathPrefix+"types.cpp")
			} else {
				e.Emitf("%q,\n", pathPrefix+member.InterfaceBaseName()+"All.cpp")
			}
		}
	})

	bpGenruleSection(e, pkg, filegroup, genHeaders, "c++-headers", opts, func() {
		for _, member := range members {
			e.Emitf("%q,\n", pathPrefix+member.Name()+".h")
			if member.Name() != fqname.TypesName {
				e.Emitf("%q,\n", pathPrefix+member.ProxyName()+".h")
				e.Emitf("%q,\n", pathPrefix+member.StubName()+".h")
			}
		}
	})

	bpLibrarySection(e, ctx, library, genSources, genHeaders, func() {
		for _, imp := range imported {
			e.Emitf("%q,\n", imp.String())
		}
	})

	if typesOnly {
		return e.Close()
	}

	// Adapter modules bridge this package's interfaces back one minor
	// version; conformance tooling builds them alongside the library.
	adapter := library + "-adapter"
	helper := adapter + "-helper"
	genAdapterSources := helper + "_genc++"
	genAdapterHeaders := helper + "_genc++_headers"
	genAdapterMain := adapter + "_genc++"

	e.Emit("\n")
	bpGenruleSection(e, pkg, filegroup, genAdapterSources, "c++-adapter-sources", opts, func() {
		for _, member := range members {
			if member.Name() != fqname.TypesName {
				e.Emitf("%q,\n", pathPrefix+member.AdapterName()+".cpp")
			}
		}
	})
	bpGenruleSection(e, pkg, filegroup, genAdapterHeaders, "c++-adapter-headers", opts, func() {
		for _, member := range members {
			if member.Name() != fqname.TypesName {
				e.Emitf("%q,\n", pathPrefix+member.AdapterName()+".h")
			}
		}
	})

	bpLibrarySection(e, ctx, helper, genAdapterSources, genAdapterHeaders, func() {
		e.Emit("\"libidlrt-adapter\",\n")
		e.Emitf("%q,\n", library)
		for _, imp := range imported {
			e.Emitf("%q,\n", imp.String())
		}
	})

	e.Emit("\ngenrule ").Block(func() {
		e.Emitf("name: %q,\n", genAdapterMain)
		e.Emit("tools: [\"idlgen\"],\n")
		e.Emitf("cmd: %q,\n", bpToolCommand("c++-adapter-main", opts, pkg))
		bpList(e, "srcs", func() {
			e.Emitf("%q,\n", ":"+filegroup)
		})
		e.Emit("out: [\"main.cpp\"],\n")
	}).Emit("\n\n")

	e.Emit("test ").Block(func() {
		e.Emitf("name: %q,\n", adapter)
		e.Emitf("generated_sources: [%q],\n", genAdapterMain)
		bpList(e, "deps", func() {
			e.Emit("\"libidlrt-adapter\",\n")
			e.Emitf("%q,\n", helper)
			e.Emitf("%q,\n", library)
			for _, imp := range imported {
				e.Emitf("%q,\n", imp.String())
			}
		})
	}).Emit("\n")

	return e.Close()
}

// bpList writes one list-valued field of a module block.
func bpList(e *emitter.Emitter, field string, fn func()) {
	e.Emitf("%s: [\n", field)
	e.Indented(fn)
	e.Emit("],\n")
}

// bpToolCommand renders the tool reinvocation a genrule runs, with the
// root registrations shell-quoted so paths with spaces survive the build
// system's shell.
func bpToolCommand(backendKey string, opts []string, pkg fqname.FQName) string {
	args := append([]string{"-o", "$(genDir)", "-L" + backendKey}, opts...)
	args = append(args, pkg.String())
	return "$(location idlgen) " + shellquote.Join(args...)
}

// bpGenruleSection writes one genrule block regenerating an artifact
// family, with outs enumerating every file the named backend produces.
func bpGenruleSection(e *emitter.Emitter, pkg fqname.FQName, filegroup, name, backendKey string, opts []string, outs func()) {
	e.Emit("genrule ").Block(func() {
		e.Emitf("name: %q,\n", name)
		e.Emit("tools: [\"idlgen\"],\n")
		e.Emitf("cmd: %q,\n", bpToolCommand(backendKey, opts, pkg))
		bpList(e, "srcs", func() {
			e.Emitf("%q,\n", ":"+filegroup)
		})
		bpList(e, "out", outs)
	}).Emit("\n\n")
}

// bpLibrarySection writes the library block tying generated sources and
// headers together. TestMode switches the placement the build system
// installs the library into.
func bpLibrarySection(e *emitter.Emitter, ctx *Context, name, genSources, genHeaders string, deps func()) {
	e.Emit("library ").Block(func() {
		e.Emitf("name: %q,\n", name)
		e.Emit("defaults: [\"idl-module-defaults\"],\n")
		e.Emitf("generated_sources: [%q],\n", genSources)
		e.Emitf("generated_headers: [%q],\n", genHeaders)
		e.Emitf("export_generated_headers: [%q],\n", genHeaders)
		if ctx.TestMode {
			e.Emit("placement: \"test\",\n")
		} else {
			e.Emit("placement: \"system\",\n")
		}
		bpList(e, "deps", func() {
			e.Emit("\"libidlrt\",\n")
			deps()
		})
	}).Emit("\n")
}

// blueprintImplBackend writes impl.bp, the starter build block for an
// implementation generated with -Lc++-impl. It links the package library
// plus the direct imports only; an implementor grows it by hand from
// there.
type blueprintImplBackend struct{}

func (*blueprintImplBackend) Key() string { return "blueprint-impl" }
func (*blueprintImplBackend) Description() string {
	return "Generates a starter build module for implementations created with -Lc++-impl."
}
func (*blueprintImplBackend) Shape() Shape { return ShapeDirectory }

func (b *blueprintImplBackend) Validate(fqn fqname.FQName) error {
	return validatePackageOnly(b.Key(), fqn)
}

func (b *blueprintImplBackend) Generate(ctx *Context, pkg fqname.FQName) error {
	members, _, err := parsePackageUnits(ctx, pkg)
	if err != nil {
		return err
	}

	imported, err := ctx.Graph.DirectImportedPackages(pkg)
	if err != nil {
		return err
	}

	e, err := ctx.Coord.Emitter(ctx.OutputPath, pkg, coordinator.LocationDirect, "impl.bp")
	if err != nil {
		return err
	}

	e.Emit("// Autogenerated by idlgen. Do not edit.\n\n")
	e.Emit("library ").Block(func() {
		e.Emitf("name: %q,\n", pkg.String()+"-impl")
		e.Emit("proprietary: true,\n")
		bpList(e, "srcs", func() {
			for _, member := range members {
				if member.Name() != fqname.TypesName {
					e.Emitf("%q,\n", member.InterfaceBaseName()+".cpp")
				}
			}
		})
		bpList(e, "deps", func() {
			e.Emit("\"libidlrt\",\n")
			e.Emitf("%q,\n", pkg.String())
			for _, imp := range imported {
				e.Emitf("%q,\n", imp.String())
			}
		})
	}).Emit("\n")

	return e.Close()
}
