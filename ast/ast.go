// Package ast defines the parsed representation of one interface-definition
// unit and the queries the resolver, dependency analyzer and generators run
// against it.
package ast

import "github.com/openifc/idlgen/fqname"

// AST is a parsed unit. Instances are built once by the parser, cached by
// the coordinator, and shared read-only from then on.
type AST struct {
	fqn            fqname.FQName
	filename       string
	imports        []fqname.FQName
	scope          *Scope
	iface          *Interface
	javaCompatible bool
}

// New assembles a unit. The Java-compatibility flag is computed here, at
// parse time, so later queries are plain reads.
func New(fqn fqname.FQName, filename string, imports []fqname.FQName, scope *Scope, iface *Interface) *AST {
	if scope == nil {
		scope = NewScope()
	}
	a := &AST{
		fqn:      fqn,
		filename: filename,
		imports:  dedupe(imports),
		scope:    scope,
		iface:    iface,
	}
	a.javaCompatible = a.computeJavaCompatible()
	return a
}

func dedupe(names []fqname.FQName) []fqname.FQName {
	seen := make(map[string]struct{}, len(names))
	out := make([]fqname.FQName, 0, len(names))
	for _, n := range names {
		key := n.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}

func (a *AST) computeJavaCompatible() bool {
	for _, t := range a.scope.Types() {
		if !t.JavaCompatible() {
			return false
		}
	}
	if a.iface != nil && !a.iface.javaCompatible() {
		return false
	}
	return true
}

// FQName returns the unit's fully-qualified name.
func (a *AST) FQName() fqname.FQName {
	return a.fqn
}

// Package returns the unit's bare package@version.
func (a *AST) Package() fqname.FQName {
	return a.fqn.PackageOnly()
}

// Filename returns the source path the unit was parsed from, for
// diagnostics.
func (a *AST) Filename() string {
	return a.filename
}

// Imports returns the declared imports in declaration order, duplicates
// removed.
func (a *AST) Imports() []fqname.FQName {
	return a.imports
}

// ImportedPackages returns the packages the unit imports, first-occurrence
// order, excluding the unit's own package.
func (a *AST) ImportedPackages() []fqname.FQName {
	self := a.Package()
	var out []fqname.FQName
	seen := make(map[string]struct{}, len(a.imports))
	for _, imp := range a.imports {
		pkg := imp.PackageOnly()
		if pkg == self {
			continue
		}
		key := pkg.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, pkg)
	}
	return out
}

// RootScope returns the unit's declared types.
func (a *AST) RootScope() *Scope {
	return a.scope
}

// Interface returns the declared interface, nil for a types unit.
func (a *AST) Interface() *Interface {
	return a.iface
}

// IsInterface reports whether the unit declares an interface.
func (a *AST) IsInterface() bool {
	return a.iface != nil
}

// IsJavaCompatible reports whether every declaration in the unit can be
// expressed in generated Java. Import reachability is the dependency
// analyzer's concern, not this flag's.
func (a *AST) IsJavaCompatible() bool {
	return a.javaCompatible
}

// OnlyTypedefs reports whether every declared type is a pure alias and no
// interface is present. Such a unit produces no generated code of its own.
func (a *AST) OnlyTypedefs() bool {
	if a.iface != nil {
		return false
	}
	for _, t := range a.scope.Types() {
		if !t.IsTypedef() {
			return false
		}
	}
	return true
}
