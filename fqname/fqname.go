// Package fqname implements the fully-qualified names that identify
// interface-definition packages and their units.
//
// The canonical textual form is
//
//	package@major.minor::Name
//
// where the name part is optional (a bare package), names an interface
// (ILight), the shared types unit (types), or one declared type inside it
// (types.State). Names compare by (package, version, name), which fixes
// the order of every generated artifact downstream.
package fqname

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openifc/idlgen/errors"
)

// TypesName is the reserved unit name for a package's shared type
// declarations.
const TypesName = "types"

// FQName is an immutable fully-qualified name. The zero value is invalid.
type FQName struct {
	pkg   string
	major int
	minor int
	name  string
}

// Base is the root interface every interface implicitly extends.
var Base = MustParse("runtime.base@1.0::IBase")

// New builds an FQName from parts. The parts are not validated; use Parse
// for untrusted input.
func New(pkg string, major, minor int, name string) FQName {
	return FQName{pkg: pkg, major: major, minor: minor, name: name}
}

// Parse parses s into an FQName.
//
// Accepted shapes:
//
//	com.acme.light@1.2           bare package
//	com.acme.light@1.2::ILight   interface unit
//	com.acme.light@1.2::types    shared types unit
//	com.acme.light@1.2::types.State
//	@1.2::IBase                  package-relative (resolved by the parser)
func Parse(s string) (FQName, error) {
	bad := func(reason string) (FQName, error) {
		return FQName{}, errors.Mark(
			errors.Newf("invalid fully-qualified name %q: %s", s, reason),
			errors.ErrUsage)
	}

	at := strings.IndexByte(s, '@')
	if at < 0 {
		return bad("missing @version")
	}

	pkg := s[:at]
	rest := s[at+1:]
	if pkg != "" && !validPackage(pkg) {
		return bad("malformed package")
	}

	name := ""
	if sep := strings.Index(rest, "::"); sep >= 0 {
		name = rest[sep+2:]
		rest = rest[:sep]
		if !validName(name) {
			return bad("malformed unit name")
		}
	}

	majorStr, minorStr, ok := strings.Cut(rest, ".")
	if !ok {
		return bad("version must be major.minor")
	}
	major, err := strconv.Atoi(majorStr)
	if err != nil || major < 0 {
		return bad("malformed major version")
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil || minor < 0 {
		return bad("malformed minor version")
	}

	return FQName{pkg: pkg, major: major, minor: minor, name: name}, nil
}

// MustParse parses s and panics on failure. For fixed names in code.
func MustParse(s string) FQName {
	fqn, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return fqn
}

func validPackage(pkg string) bool {
	for _, seg := range strings.Split(pkg, ".") {
		if !validSegment(seg, false) {
			return false
		}
	}
	return true
}

// IsValidPackage reports whether s is a well-formed dotted package
// namespace, usable as a package-root prefix.
func IsValidPackage(s string) bool {
	return s != "" && validPackage(s)
}

// validName accepts Identifier or types.Identifier. A dotted name is only
// meaningful on the types unit; shape is checked here, meaning at
// validation time.
func validName(name string) bool {
	head, tail, dotted := strings.Cut(name, ".")
	if !validSegment(head, true) {
		return false
	}
	if dotted {
		return validSegment(tail, true)
	}
	return true
}

func validSegment(seg string, allowUpper bool) bool {
	if seg == "" {
		return false
	}
	for i, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= 'A' && r <= 'Z':
			if !allowUpper {
				return false
			}
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Package returns the dotted package namespace.
func (f FQName) Package() string { return f.pkg }

// Major returns the major version component.
func (f FQName) Major() int { return f.major }

// Minor returns the minor version component.
func (f FQName) Minor() int { return f.minor }

// Version returns "major.minor".
func (f FQName) Version() string {
	return fmt.Sprintf("%d.%d", f.major, f.minor)
}

// Name returns the unit name; empty for a bare package.
func (f FQName) Name() string { return f.name }

// String returns the canonical form, the cache key for parsed units.
func (f FQName) String() string {
	s := fmt.Sprintf("%s@%d.%d", f.pkg, f.major, f.minor)
	if f.name != "" {
		s += "::" + f.name
	}
	return s
}

// IsValid reports whether the name carries at least a package and version.
func (f FQName) IsValid() bool {
	return f.pkg != ""
}

// IsPackageOnly reports whether the name is a bare package@version.
func (f FQName) IsPackageOnly() bool {
	return f.pkg != "" && f.name == ""
}

// IsFullyQualified reports whether package, version and unit name are all
// present.
func (f FQName) IsFullyQualified() bool {
	return f.pkg != "" && f.name != ""
}

// InPackage reports whether this name's package is prefix itself or a
// dotted descendant of it.
func (f FQName) InPackage(prefix string) bool {
	return f.pkg == prefix || strings.HasPrefix(f.pkg, prefix+".")
}

// WithPackage returns a copy with the package replaced; the parser uses it
// to resolve @-relative names against the unit's own package.
func (f FQName) WithPackage(pkg string) FQName {
	f.pkg = pkg
	return f
}

// WithName returns a copy naming a different unit of the same package.
func (f FQName) WithName(name string) FQName {
	f.name = name
	return f
}

// PackageOnly strips the unit name.
func (f FQName) PackageOnly() FQName {
	f.name = ""
	return f
}

// TypesUnit returns the shared types unit of this name's package.
func (f FQName) TypesUnit() FQName {
	f.name = TypesName
	return f
}

// IsTypesUnit reports whether the name denotes the shared types unit,
// with or without a nested type suffix.
func (f FQName) IsTypesUnit() bool {
	return f.name == TypesName || strings.HasPrefix(f.name, TypesName+".")
}

// NestedType returns the type suffix of a types.Name form, or "".
func (f FQName) NestedType() string {
	if rest, ok := strings.CutPrefix(f.name, TypesName+"."); ok {
		return rest
	}
	return ""
}

// IsInterface reports whether the unit name follows the interface naming
// convention: a leading I followed by a capitalized identifier.
func (f FQName) IsInterface() bool {
	return len(f.name) >= 2 && f.name[0] == 'I' &&
		f.name[1] >= 'A' && f.name[1] <= 'Z' && !strings.Contains(f.name, ".")
}

// InterfaceBaseName returns the interface name without its I prefix:
// ILight -> Light. Empty when the unit is not an interface.
func (f FQName) InterfaceBaseName() string {
	if !f.IsInterface() {
		return ""
	}
	return f.name[1:]
}

// ProxyName is the client-side class generated for an interface.
func (f FQName) ProxyName() string { return f.InterfaceBaseName() + "Proxy" }

// StubName is the server-side class generated for an interface.
func (f FQName) StubName() string { return f.InterfaceBaseName() + "Stub" }

// AdapterName is the version-bridge class generated for an interface.
func (f FQName) AdapterName() string { return f.InterfaceBaseName() + "Adapter" }

// PackageComponents returns the dotted package split into segments.
func (f FQName) PackageComponents() []string {
	return strings.Split(f.pkg, ".")
}

// SanitizedVersion returns the version in identifier-safe form: V1_2.
func (f FQName) SanitizedVersion() string {
	return fmt.Sprintf("V%d_%d", f.major, f.minor)
}

// JavaPackage returns the Java package for generated sources:
// com.acme.light.V1_2.
func (f FQName) JavaPackage() string {
	return f.pkg + "." + f.SanitizedVersion()
}

// CppNamespace returns the rooted C++ namespace for generated code:
// ::com::acme::light::V1_2.
func (f FQName) CppNamespace() string {
	return "::" + strings.Join(append(f.PackageComponents(), f.SanitizedVersion()), "::")
}

// PackagePath returns the directory generated artifacts for the package
// live under, relative to the output tree: the slash-joined package
// components plus the version directory, identifier-safe (V1_2) or plain
// (1.2). Include paths and Java package directories both derive from it,
// so it never depends on package-root registrations.
func (f FQName) PackagePath(sanitized bool) string {
	version := f.Version()
	if sanitized {
		version = f.SanitizedVersion()
	}
	return strings.Join(append(f.PackageComponents(), version), "/")
}

// TokenName returns an upper-case underscored token usable in include
// guards: COM_ACME_LIGHT_V1_2.
func (f FQName) TokenName() string {
	token := strings.ReplaceAll(f.pkg, ".", "_") + "_" + f.SanitizedVersion()
	return strings.ToUpper(token)
}

// Compare orders names by (package, version, name). It returns -1, 0 or 1.
func Compare(a, b FQName) int {
	if c := strings.Compare(a.pkg, b.pkg); c != 0 {
		return c
	}
	if a.major != b.major {
		if a.major < b.major {
			return -1
		}
		return 1
	}
	if a.minor != b.minor {
		if a.minor < b.minor {
			return -1
		}
		return 1
	}
	return strings.Compare(a.name, b.name)
}

// Less reports whether a orders before b.
func Less(a, b FQName) bool {
	return Compare(a, b) < 0
}
