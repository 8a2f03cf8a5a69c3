package codegen

import (
	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/emitter"
)

// Testspec writes the unit's test-protocol descriptor, a YAML document the
// conformance harness consumes: package identity, every declared type and,
// for interface units, every method with its arguments and results. The
// document is emitted through the indentation engine rather than a
// marshaller so the field order stays exactly as documented. Sequence
// entries put the dash on its own line because the engine indents in
// fixed steps.
func Testspec(c *coordinator.Coordinator, outputPath string, unit *ast.AST) error {
	fqn := unit.FQName()
	e, err := c.Emitter(outputPath, fqn, coordinator.LocationGenOutput, fqn.Name()+".yaml")
	if err != nil {
		return err
	}

	e.Emit("# Autogenerated by idlgen. Do not edit.\n")
	e.Emitf("package: %s\n", fqn.Package())
	e.Emitf("version: %q\n", fqn.Version())
	e.Emitf("unit: %s\n", fqn.Name())

	if !unit.IsInterface() {
		e.Emit("kind: types\n")
		testspecTypes(e, unit)
		return e.Close()
	}

	e.Emit("kind: interface\n")
	iface := unit.Interface()
	if !iface.IsRoot() {
		e.Emitf("extends: %s\n", iface.Extends)
	}
	testspecTypes(e, unit)

	if len(iface.Methods) == 0 {
		e.Emit("methods: []\n")
		return e.Close()
	}
	e.Emit("methods:\n")
	e.Indented(func() {
		for _, m := range iface.Methods {
			testspecItem(e, func() {
				e.Emitf("name: %s\n", m.Name)
				e.Emitf("oneway: %t\n", m.Oneway)
				testspecArgs(e, "arguments", m.Args)
				testspecArgs(e, "results", m.Results)
			})
		}
	})

	return e.Close()
}

// testspecItem writes one block-sequence entry: a lone dash, then the
// entry's mapping one level deeper.
func testspecItem(e *emitter.Emitter, fn func()) {
	e.Emit("-\n")
	e.Indented(fn)
}

func testspecTypes(e *emitter.Emitter, unit *ast.AST) {
	decls := unit.RootScope().Types()
	if len(decls) == 0 {
		return
	}

	e.Emit("types:\n")
	e.Indented(func() {
		for _, decl := range decls {
			testspecItem(e, func() {
				testspecTypeDecl(e, decl)
			})
		}
	})
}

func testspecTypeDecl(e *emitter.Emitter, decl ast.NamedType) {
	e.Emitf("name: %s\n", decl.TypeName())
	switch d := decl.(type) {
	case *ast.Typedef:
		e.Emit("kind: typedef\n")
		e.Emitf("target: %q\n", d.Target)
	case *ast.Enum:
		e.Emit("kind: enum\n")
		e.Emitf("storage: %q\n", d.Storage)
		e.Emit("cases:\n")
		e.Indented(func() {
			for _, cs := range d.Cases {
				testspecItem(e, func() {
					e.Emitf("name: %s\n", cs.Name)
					e.Emitf("value: %d\n", cs.Value)
				})
			}
		})
	case *ast.Struct:
		e.Emit("kind: struct\n")
		testspecFields(e, d.Fields)
	case *ast.Union:
		e.Emit("kind: union\n")
		testspecFields(e, d.Fields)
	}
}

func testspecFields(e *emitter.Emitter, fields []ast.Field) {
	if len(fields) == 0 {
		e.Emit("fields: []\n")
		return
	}
	e.Emit("fields:\n")
	e.Indented(func() {
		for _, f := range fields {
			testspecItem(e, func() {
				e.Emitf("name: %s\n", f.Name)
				e.Emitf("type: %q\n", f.Type)
			})
		}
	})
}

func testspecArgs(e *emitter.Emitter, label string, args []ast.Arg) {
	if len(args) == 0 {
		e.Emitf("%s: []\n", label)
		return
	}
	e.Emitf("%s:\n", label)
	e.Indented(func() {
		for _, a := range args {
			testspecItem(e, func() {
				e.Emitf("name: %s\n", a.Name)
				e.Emitf("type: %q\n", a.Type)
			})
		}
	})
}
