// Package depgraph computes transitive properties over the package import
// graph: reachable package closures, language compatibility, and whether a
// package produces generated code at all.
//
// Every traversal is an explicit worklist with a visited set. Package
// cycles are legal (two packages importing each other through different
// interfaces) and must terminate; recursion would make that an accident
// of stack depth instead of a property.
package depgraph

import (
	"sort"

	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/fqname"
)

// Analyzer walks units through the coordinator's cache, so analysis
// never re-parses a unit the session has already seen.
type Analyzer struct {
	coord *coordinator.Coordinator
}

func New(coord *coordinator.Coordinator) *Analyzer {
	return &Analyzer{coord: coord}
}

// ImportedPackageClosure returns every package reachable from pkg's units
// over import edges, pkg itself included, ordered by name.
func (a *Analyzer) ImportedPackageClosure(pkg fqname.FQName) ([]fqname.FQName, error) {
	visited := map[fqname.FQName]struct{}{}
	if err := a.walk(pkg.PackageOnly(), nil, visited); err != nil {
		return nil, err
	}

	closure := make([]fqname.FQName, 0, len(visited))
	for p := range visited {
		closure = append(closure, p)
	}
	sort.Slice(closure, func(i, j int) bool { return fqname.Less(closure[i], closure[j]) })
	return closure, nil
}

// IsPackageJavaCompatible reports whether every unit transitively
// reachable from pkg can be expressed in Java. Compatibility is monotone:
// one incompatible reachable unit poisons the whole package, however it
// is reached.
func (a *Analyzer) IsPackageJavaCompatible(pkg fqname.FQName) (bool, error) {
	compatible := true

	err := a.walk(pkg.PackageOnly(), func(unit unitInfo) bool {
		if !unit.javaCompatible {
			compatible = false
			return false
		}
		return true
	}, map[fqname.FQName]struct{}{})
	if err != nil {
		return false, err
	}
	return compatible, nil
}

// DirectImportedPackages returns the union of the member units' directly
// imported packages, pkg itself excluded, ordered by name. Build
// descriptors link against exactly these.
func (a *Analyzer) DirectImportedPackages(pkg fqname.FQName) ([]fqname.FQName, error) {
	self := pkg.PackageOnly()
	members, err := a.coord.ListPackageMembers(self)
	if err != nil {
		return nil, err
	}

	seen := map[fqname.FQName]struct{}{}
	for _, member := range members {
		unit, err := a.coord.Parse(member)
		if err != nil {
			return nil, err
		}
		for _, imp := range unit.ImportedPackages() {
			if imp != self {
				seen[imp] = struct{}{}
			}
		}
	}

	imports := make([]fqname.FQName, 0, len(seen))
	for p := range seen {
		imports = append(imports, p)
	}
	sort.Slice(imports, func(i, j int) bool { return fqname.Less(imports[i], imports[j]) })
	return imports, nil
}

// NeedsGeneratedCode reports whether pkg produces any generated code: it
// does not only when the sole member is the types unit and every declared
// type is a pure alias.
func (a *Analyzer) NeedsGeneratedCode(pkg fqname.FQName) (bool, error) {
	members, err := a.coord.ListPackageMembers(pkg.PackageOnly())
	if err != nil {
		return false, err
	}

	if len(members) != 1 || members[0].Name() != fqname.TypesName {
		return true, nil
	}

	types, err := a.coord.Parse(members[0])
	if err != nil {
		return false, err
	}
	return !types.OnlyTypedefs(), nil
}

// IsTypesOnlyPackage reports whether pkg declares no unit besides the
// shared types unit.
func (a *Analyzer) IsTypesOnlyPackage(pkg fqname.FQName) (bool, error) {
	members, err := a.coord.ListPackageMembers(pkg.PackageOnly())
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m.Name() != fqname.TypesName {
			return false, nil
		}
	}
	return true, nil
}

// unitInfo is what a traversal sees per visited unit.
type unitInfo struct {
	fqn            fqname.FQName
	javaCompatible bool
}

// walk visits every unit of every package reachable from seed, breadth
// first. A nil visit just builds the visited set; visit returning false
// stops the traversal early. visited keeps re-imported packages from
// being walked twice, which is what makes package cycles terminate.
func (a *Analyzer) walk(seed fqname.FQName, visit func(unitInfo) bool, visited map[fqname.FQName]struct{}) error {
	worklist := []fqname.FQName{seed}

	for len(worklist) > 0 {
		pkg := worklist[0]
		worklist = worklist[1:]

		if _, seen := visited[pkg]; seen {
			continue
		}
		visited[pkg] = struct{}{}

		members, err := a.coord.ListPackageMembers(pkg)
		if err != nil {
			return err
		}
		for _, member := range members {
			unit, err := a.coord.Parse(member)
			if err != nil {
				return err
			}
			if visit != nil && !visit(unitInfo{fqn: member, javaCompatible: unit.IsJavaCompatible()}) {
				return nil
			}
			for _, imp := range unit.ImportedPackages() {
				if _, seen := visited[imp]; !seen {
					worklist = append(worklist, imp)
				}
			}
		}
	}
	return nil
}
