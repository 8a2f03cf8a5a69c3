// Package backend enumerates the generation targets and dispatches
// requests to them.
//
// Each backend is a variant of a closed set, sharing the validate and
// generate capability; the registry is an ordered immutable table built
// once per session. Dispatch treats a fully-qualified name as a single
// unit and a bare package as its ordered member list, failing fast on the
// first member that cannot be generated.
package backend

import (
	"io"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/depgraph"
	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/fqname"
)

// Shape declares what kind of output location a backend needs.
type Shape uint8

const (
	// ShapeNone needs no output path; the backend writes nothing or
	// prints to standard out.
	ShapeNone Shape = iota
	// ShapeFile needs the output path to name the file itself.
	ShapeFile
	// ShapeDirectory needs the output path to name a directory.
	ShapeDirectory
	// ShapeSourceTree writes next to the package sources; the output
	// path defaults to the tree root.
	ShapeSourceTree
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeFile:
		return "file"
	case ShapeDirectory:
		return "directory"
	case ShapeSourceTree:
		return "source tree"
	}
	return "unknown"
}

// Context carries the collaborators a generation run needs. The driver
// builds one per invocation; backends never reach for process state.
type Context struct {
	Coord      *coordinator.Coordinator
	Graph      *depgraph.Analyzer
	OutputPath string

	// TestMode switches the blueprint backend to its test-friendly
	// library placement. The driver rejects it for every other backend.
	TestMode bool

	// HashOut receives the hash backend's report lines.
	HashOut io.Writer
}

// Backend is one generation target. Validate runs before any output is
// written; a name that fails validation must leave the filesystem
// untouched.
type Backend interface {
	Key() string
	Description() string
	Shape() Shape
	Validate(fqn fqname.FQName) error
	Generate(ctx *Context, fqn fqname.FQName) error
}

// Registry is the ordered, immutable table of every backend.
type Registry struct {
	backends []Backend
}

// NewRegistry builds the backend table. Order here is presentation
// order in help output.
func NewRegistry() *Registry {
	return &Registry{backends: []Backend{
		&unitBackend{
			key:         "check",
			description: "Parses the requested units and writes nothing.",
			shape:       ShapeNone,
			generate:    nil,
		},
		&unitBackend{
			key:         "c++",
			description: "Generates C++ headers and sources for talking to interfaces.",
			shape:       ShapeDirectory,
			generate:    generateCpp,
		},
		&unitBackend{
			key:         "c++-headers",
			description: "c++ but headers only.",
			shape:       ShapeDirectory,
			generate:    generateCppHeaders,
		},
		&unitBackend{
			key:         "c++-sources",
			description: "c++ but sources only.",
			shape:       ShapeDirectory,
			generate:    generateCppSources,
		},
		&unitBackend{
			key:         "c++-impl",
			description: "Generates boilerplate C++ implementation skeletons.",
			shape:       ShapeDirectory,
			generate:    generateCppImpl,
		},
		&unitBackend{
			key:         "c++-impl-headers",
			description: "c++-impl but headers only.",
			shape:       ShapeDirectory,
			generate:    generateCppImplHeaders,
		},
		&unitBackend{
			key:         "c++-impl-sources",
			description: "c++-impl but sources only.",
			shape:       ShapeDirectory,
			generate:    generateCppImplSources,
		},
		&unitBackend{
			key:         "c++-adapter",
			description: "Generates adapters bridging an interface across minor versions.",
			shape:       ShapeDirectory,
			generate:    generateCppAdapter,
		},
		&unitBackend{
			key:         "c++-adapter-headers",
			description: "c++-adapter but headers only.",
			shape:       ShapeDirectory,
			generate:    generateCppAdapterHeaders,
		},
		&unitBackend{
			key:         "c++-adapter-sources",
			description: "c++-adapter but sources only.",
			shape:       ShapeDirectory,
			generate:    generateCppAdapterSources,
		},
		&adapterMainBackend{},
		&unitBackend{
			key:         "java",
			description: "Generates Java sources for talking to interfaces.",
			shape:       ShapeDirectory,
			allowNested: true,
			generate:    generateJava,
		},
		&javaConstantsBackend{},
		&exportHeaderBackend{},
		&unitBackend{
			key:         "testspec",
			description: "Generates test-protocol descriptors for the conformance harness.",
			shape:       ShapeDirectory,
			generate:    generateTestspec,
		},
		&makefileBackend{},
		&blueprintBackend{},
		&blueprintImplBackend{},
		&hashBackend{},
	}}
}

// Lookup finds a backend by key.
func (r *Registry) Lookup(key string) (Backend, bool) {
	for _, b := range r.backends {
		if b.Key() == key {
			return b, true
		}
	}
	return nil, false
}

// All returns the backends in table order.
func (r *Registry) All() []Backend {
	return r.backends
}

// validateSource accepts a bare package or a fully-qualified unit name.
// The dotted types.Name form addresses one declaration of the shared
// types unit and only the Java generator can honor that restriction.
func validateSource(key string, allowNested bool, fqn fqname.FQName) error {
	if !fqn.IsValid() {
		return errors.Validationf("%s: missing package name", key)
	}
	if fqn.IsPackageOnly() || fqn.NestedType() == "" {
		return nil
	}
	if !allowNested {
		return errors.Validationf(
			"%s: %q names a single declaration, which only -Ljava supports", key, fqn)
	}
	return nil
}

// validatePackageOnly accepts only a bare package@version.
func validatePackageOnly(key string, fqn fqname.FQName) error {
	if !fqn.IsValid() {
		return errors.Validationf("%s: missing package name", key)
	}
	if !fqn.IsPackageOnly() {
		return errors.Validationf(
			"%s: expected a bare package, got unit name %q", key, fqn.Name())
	}
	return nil
}

// unitBackend generates one artifact family unit by unit. It is the
// shared fan-out: a fully-qualified request covers that unit alone, a
// bare package covers every member in the coordinator's deterministic
// order, aborting the remainder on the first failure. A nil generate
// function parses without writing.
type unitBackend struct {
	key         string
	description string
	shape       Shape
	allowNested bool
	generate    func(ctx *Context, unit *ast.AST, only string) error
}

func (b *unitBackend) Key() string         { return b.key }
func (b *unitBackend) Description() string { return b.description }
func (b *unitBackend) Shape() Shape        { return b.shape }

func (b *unitBackend) Validate(fqn fqname.FQName) error {
	return validateSource(b.key, b.allowNested, fqn)
}

func (b *unitBackend) Generate(ctx *Context, fqn fqname.FQName) error {
	if fqn.IsFullyQualified() {
		return b.generateUnit(ctx, fqn)
	}

	members, err := ctx.Coord.ListPackageMembers(fqn)
	if err != nil {
		return err
	}
	for _, member := range members {
		if err := b.generateUnit(ctx, member); err != nil {
			// Members already written stay in place; reruns overwrite
			// them with identical content.
			return err
		}
	}
	return nil
}

func (b *unitBackend) generateUnit(ctx *Context, fqn fqname.FQName) error {
	unit, err := ctx.Coord.Parse(fqn)
	if err != nil {
		return err
	}
	if b.generate == nil {
		return nil
	}
	return b.generate(ctx, unit, fqn.NestedType())
}

// parsePackageUnits resolves every member of pkg, in member order.
func parsePackageUnits(ctx *Context, pkg fqname.FQName) ([]fqname.FQName, []*ast.AST, error) {
	members, err := ctx.Coord.ListPackageMembers(pkg)
	if err != nil {
		return nil, nil, err
	}
	units := make([]*ast.AST, len(members))
	for i, member := range members {
		if units[i], err = ctx.Coord.Parse(member); err != nil {
			return nil, nil, err
		}
	}
	return members, units, nil
}
