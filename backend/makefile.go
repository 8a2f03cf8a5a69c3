package backend

import (
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/emitter"
	"github.com/openifc/idlgen/fqname"
	"github.com/openifc/idlgen/internal/util"
	"github.com/openifc/idlgen/logger"
)

// makefileBackend writes the line-oriented legacy build descriptor,
// modules.mk, next to the package sources. It describes how the build
// regenerates the package's Java artifacts: one rule per interface unit,
// one per non-typedef declaration of the types unit, and a constants rule
// when anything is exported. Output is a pure function of the resolved
// inputs, so rerunning after a mid-package failure rewrites the same
// bytes.
type makefileBackend struct{}

func (*makefileBackend) Key() string { return "makefile" }
func (*makefileBackend) Description() string {
	return "Generates legacy build fragments for -Ljava and -Ljava-constants."
}
func (*makefileBackend) Shape() Shape { return ShapeSourceTree }

func (b *makefileBackend) Validate(fqn fqname.FQName) error {
	return validatePackageOnly(b.Key(), fqn)
}

func (b *makefileBackend) Generate(ctx *Context, pkg fqname.FQName) error {
	members, units, err := parsePackageUnits(ctx, pkg)
	if err != nil {
		return err
	}

	haveConstants := false
	for _, unit := range units {
		if len(unit.RootScope().ExportedEnums()) > 0 {
			haveConstants = true
			break
		}
	}

	compatible, err := ctx.Graph.IsPackageJavaCompatible(pkg)
	if err != nil {
		return err
	}
	if !compatible && !haveConstants {
		logger.Warnf("%s is not Java-compatible, no build fragment created", pkg)
		return nil
	}

	needs, err := ctx.Graph.NeedsGeneratedCode(pkg)
	if err != nil {
		return err
	}
	if !needs {
		return nil
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

	e, err := ctx.Coord.Emitter(ctx.OutputPath, pkg, coordinator.LocationPackageRoot, "modules.mk")
	if err != nil {
		return err
	}

	e.Emit("# Autogenerated by idlgen. Do not edit.\n\n")
	e.Emit("LOCAL_PATH := $(call my-dir)\n")

	if compatible {
		e.Emit("\n" + mkDivider + "\n\n")
		e.Emit("include $(CLEAR_VARS)\n")
		e.Emitf("LOCAL_MODULE := %s-java\n", javaLibraryName(pkg))
		e.Emit("LOCAL_MODULE_CLASS := JAVA_LIBRARIES\n\n")
		e.Emit("intermediates := $(call generated-sources-dir)\n\n")
		e.Emit("IDLGEN := $(HOST_OUT)/idlgen")

		if len(imported) > 0 {
			e.Emit("\n\nLOCAL_JAVA_LIBRARIES := \\\n")
			e.Indented(func() {
				for _, imp := range imported {
					e.Emitf("%s-java \\\n", javaLibraryName(imp))
				}
			})
		}

		for i, member := range members {
			if member.Name() != fqname.TypesName {
				mkUnitSection(e, pkg, member, units[i], opts, "")
				continue
			}
			for _, decl := range sortedConcreteTypes(units[i]) {
				mkUnitSection(e, pkg, member, units[i], opts, decl.TypeName())
			}
		}

		e.Emit("\ninclude $(BUILD_JAVA_LIBRARY)\n")
	}

	if haveConstants {
		e.Emit("\n" + mkDivider + "\n\n")
		e.Emit("include $(CLEAR_VARS)\n")
		e.Emitf("LOCAL_MODULE := %s-java-constants\n", javaLibraryName(pkg))
		e.Emit("LOCAL_MODULE_CLASS := JAVA_LIBRARIES\n\n")
		e.Emit("intermediates := $(call generated-sources-dir)\n\n")
		e.Emit("IDLGEN := $(HOST_OUT)/idlgen\n")
		mkConstantsSection(e, pkg, members, opts)
		e.Emit("\ninclude $(BUILD_STATIC_JAVA_LIBRARY)\n")
	}

	return e.Close()
}

const mkDivider = "################################################################"

// mkUnitSection writes one generation rule. An empty typeName covers an
// interface unit; otherwise the rule regenerates the single named
// declaration of the types unit.
func mkUnitSection(e *emitter.Emitter, pkg, member fqname.FQName, unit *ast.AST, opts []string, typeName string) {
	target := member
	output := member.Name()
	if typeName != "" {
		target = member.WithName(fqname.TypesName + "." + typeName)
		output = typeName
	}

	e.Emit("\n\n#\n")
	e.Emitf("# Build %s%s", member.Name()+coordinator.SourceExtension, mkTypeSuffix(typeName))
	e.Emit("\n#\n")
	e.Emitf("GEN := $(intermediates)/%s/%s.java\n", pkg.PackagePath(true), output)
	e.Emit("$(GEN): $(IDLGEN)\n")
	e.Emit("$(GEN): PRIVATE_IDLGEN := $(IDLGEN)\n")
	e.Emitf("$(GEN): PRIVATE_DEPS := $(LOCAL_PATH)/%s%s\n", member.Name(), coordinator.SourceExtension)

	// Same-package imports are real file dependencies of this rule;
	// everything cross-package is covered by the library edges above.
	for _, dep := range unit.Imports() {
		if dep.Package() == pkg.Package() && dep.Version() == pkg.Version() && dep.IsFullyQualified() {
			e.Emitf("$(GEN): PRIVATE_DEPS += $(LOCAL_PATH)/%s%s\n", dep.Name(), coordinator.SourceExtension)
			e.Emitf("$(GEN): $(LOCAL_PATH)/%s%s\n", dep.Name(), coordinator.SourceExtension)
		}
	}

	e.Emit("$(GEN): PRIVATE_OUTPUT_DIR := $(intermediates)\n")
	e.Emit("$(GEN): PRIVATE_CUSTOM_TOOL = \\\n")
	e.IndentedBy(2, func() {
		e.Emit("$(PRIVATE_IDLGEN) -o $(PRIVATE_OUTPUT_DIR) \\\n")
		e.Emit("-Ljava \\\n")
		for _, opt := range opts {
			e.Emitf("%s \\\n", shellquote.Join(opt))
		}
		e.Emitf("%s\n", shellquote.Join(target.String()))
	})
	e.Emitf("$(GEN): $(LOCAL_PATH)/%s%s\n", member.Name(), coordinator.SourceExtension)
	e.Emit("\t$(transform-generated-source)\n")
	e.Emit("LOCAL_GENERATED_SOURCES += $(GEN)\n")
}

func mkTypeSuffix(typeName string) string {
	if typeName == "" {
		return ""
	}
	return " (" + typeName + ")"
}

// mkConstantsSection writes the rule regenerating Constants.java from
// every unit of the package.
func mkConstantsSection(e *emitter.Emitter, pkg fqname.FQName, members []fqname.FQName, opts []string) {
	e.Emit("\n#\n")
	e.Emitf("GEN := $(intermediates)/%s/Constants.java\n", pkg.PackagePath(true))
	e.Emit("$(GEN): $(IDLGEN)\n")
	for _, member := range members {
		e.Emitf("$(GEN): $(LOCAL_PATH)/%s%s\n", member.Name(), coordinator.SourceExtension)
	}
	e.Emit("$(GEN): PRIVATE_IDLGEN := $(IDLGEN)\n")
	e.Emit("$(GEN): PRIVATE_OUTPUT_DIR := $(intermediates)\n")
	e.Emit("$(GEN): PRIVATE_CUSTOM_TOOL = \\\n")
	e.IndentedBy(2, func() {
		e.Emit("$(PRIVATE_IDLGEN) -o $(PRIVATE_OUTPUT_DIR) \\\n")
		e.Emit("-Ljava-constants \\\n")
		for _, opt := range opts {
			e.Emitf("%s \\\n", shellquote.Join(opt))
		}
		e.Emitf("%s\n", shellquote.Join(pkg.String()))
	})
	e.Emit("$(GEN):\n")
	e.Emit("\t$(transform-generated-source)\n")
	e.Emit("LOCAL_GENERATED_SOURCES += $(GEN)\n")
}

// javaLibraryName is the module name of a package's generated Java
// library: com.acme.light-V1.2.
func javaLibraryName(pkg fqname.FQName) string {
	return pkg.Package() + "-V" + pkg.Version()
}

// rootOptions reproduces the -r registrations a recursive tool invocation
// needs: one per package in the closure plus the base interface's, as a
// sorted deduplicated list so descriptor output is byte-stable.
func rootOptions(ctx *Context, pkg fqname.FQName, closure []fqname.FQName) ([]string, error) {
	seen := map[string]struct{}{}
	add := func(fqn fqname.FQName) error {
		opt, err := ctx.Coord.RootOption(fqn)
		if err != nil {
			return err
		}
		seen[opt] = struct{}{}
		return nil
	}

	if err := add(pkg); err != nil {
		return nil, err
	}
	if err := add(fqname.Base); err != nil {
		return nil, err
	}
	for _, imp := range closure {
		if err := add(imp); err != nil {
			return nil, err
		}
	}

	return util.SortedKeys(seen), nil
}

// withoutSelf filters pkg out of a closure that includes it.
func withoutSelf(closure []fqname.FQName, pkg fqname.FQName) []fqname.FQName {
	self := pkg.PackageOnly()
	out := make([]fqname.FQName, 0, len(closure))
	for _, p := range closure {
		if p != self {
			out = append(out, p)
		}
	}
	return out
}

// sortedConcreteTypes returns the unit's non-typedef declarations ordered
// by name, the order their per-type build rules appear in.
func sortedConcreteTypes(unit *ast.AST) []ast.NamedType {
	var decls []ast.NamedType
	for _, decl := range unit.RootScope().Types() {
		if !decl.IsTypedef() {
			decls = append(decls, decl)
		}
	}
	sort.Slice(decls, func(i, j int) bool {
		return strings.Compare(decls[i].TypeName(), decls[j].TypeName()) < 0
	})
	return decls
}
