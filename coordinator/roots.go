package coordinator

import (
	"strings"

	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/fqname"
)

// Root maps a package-namespace prefix onto the directory holding its
// sources. Path is kept as registered (possibly relative to the tree
// root) so build descriptors can reproduce the registration verbatim.
type Root struct {
	Prefix string
	Path   string
}

// RootTable is the ordered set of package-root registrations. It is built
// in full before the coordinator is constructed, so resolution never
// races a registration.
type RootTable struct {
	roots    []Root
	builtins map[string]bool
}

// NewRootTable returns a table seeded with the built-in runtime root,
// home of the implicit base interface. Built-in entries may be
// overridden by a later registration.
func NewRootTable() *RootTable {
	t := &RootTable{builtins: map[string]bool{}}
	t.seed("runtime", "runtime/interfaces")
	return t
}

func (t *RootTable) seed(prefix, path string) {
	t.roots = append(t.roots, Root{Prefix: prefix, Path: path})
	t.builtins[prefix] = true
}

// Register appends a package root. The prefix must be a valid dotted
// namespace. Registering a built-in prefix replaces the seeded entry;
// registering any other prefix twice is an error.
func (t *RootTable) Register(prefix, path string) error {
	if !fqname.IsValidPackage(prefix) {
		return errors.Mark(
			errors.Newf("invalid package-root prefix %q", prefix),
			errors.ErrUsage)
	}
	if path == "" {
		return errors.Mark(
			errors.Newf("package root %q has an empty path", prefix),
			errors.ErrUsage)
	}
	for i, r := range t.roots {
		if r.Prefix != prefix {
			continue
		}
		if t.builtins[prefix] {
			t.roots[i].Path = strings.TrimSuffix(path, "/")
			delete(t.builtins, prefix)
			return nil
		}
		return errors.Mark(
			errors.Newf("package root %q registered twice", prefix),
			errors.ErrUsage)
	}
	t.roots = append(t.roots, Root{Prefix: prefix, Path: strings.TrimSuffix(path, "/")})
	return nil
}

// Find resolves the root responsible for pkg: the longest registered
// prefix that is pkg itself or a dotted ancestor of it. Among equal
// lengths the first registration wins, though Register's duplicate check
// makes that tie unreachable in practice.
func (t *RootTable) Find(pkg string) (Root, error) {
	best := Root{}
	found := false
	for _, r := range t.roots {
		if pkg != r.Prefix && !strings.HasPrefix(pkg, r.Prefix+".") {
			continue
		}
		if !found || len(r.Prefix) > len(best.Prefix) {
			best = r
			found = true
		}
	}
	if !found {
		return Root{}, errors.Mark(
			errors.Newf("no package root registered for %q", pkg),
			errors.ErrValidation)
	}
	return best, nil
}

// Roots returns the registrations in registration order.
func (t *RootTable) Roots() []Root {
	return t.roots
}
