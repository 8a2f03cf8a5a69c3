// Package coordinator resolves fully-qualified names to source files,
// parses them exactly once, and hands generators their output sinks.
//
// The coordinator owns every parsed unit for the life of the session;
// callers receive shared read-only references. Resolution goes through
// the package-root table, so the same logical unit reached through any
// import path lands on the same cache entry.
package coordinator

import (
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/fqname"
	"github.com/openifc/idlgen/hash"
	"github.com/openifc/idlgen/logger"
	"github.com/openifc/idlgen/parser"
)

// SourceExtension is the unit file extension.
const SourceExtension = ".idl"

// Enforce selects how strictly Parse treats the content ledger.
type Enforce uint8

const (
	// EnforceFull rejects units whose content disagrees with a pinned
	// ledger digest.
	EnforceFull Enforce = iota
	// EnforceNone skips the ledger, for the backend that reports hashes.
	EnforceNone
)

// Coordinator is the session's parse cache. Not safe for concurrent use;
// a session drives it from a single goroutine.
type Coordinator struct {
	fs       afero.Fs
	roots    *RootTable
	rootPath string

	cache      map[string]*ast.AST
	ledgers    map[string]*hash.Ledger
	parseCount int
}

// New builds a coordinator over fs. rootPath anchors relative root
// registrations; roots must be fully populated by the caller beforehand.
func New(fs afero.Fs, rootPath string, roots *RootTable) *Coordinator {
	return &Coordinator{
		fs:       fs,
		roots:    roots,
		rootPath: rootPath,
		cache:    map[string]*ast.AST{},
		ledgers:  map[string]*hash.Ledger{},
	}
}

// Parse resolves fqn with full ledger enforcement.
func (c *Coordinator) Parse(fqn fqname.FQName) (*ast.AST, error) {
	return c.ParseEnforce(fqn, EnforceFull)
}

// ParseEnforce resolves fqn to a parsed unit, reusing the cached instance
// when the unit was already parsed this session. The ledger check runs
// only on a cache miss; a session mixes enforcement modes only in the
// hash-reporting path, which never follows a full-enforcement parse of
// the same unit.
func (c *Coordinator) ParseEnforce(fqn fqname.FQName, enforce Enforce) (*ast.AST, error) {
	if !fqn.IsFullyQualified() {
		return nil, errors.Mark(
			errors.Newf("cannot parse %q: not a fully-qualified unit name", fqn),
			errors.ErrValidation)
	}
	if fqn.NestedType() != "" {
		// A nested type lives in its package's types unit.
		fqn = fqn.TypesUnit()
	}

	key := fqn.String()
	if unit, hit := c.cache[key]; hit {
		return unit, nil
	}

	filename, err := c.UnitPath(fqn)
	if err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(c.fs, filename)
	if err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "no source found for %s", fqn),
			errors.ErrParse)
	}

	if enforce == EnforceFull {
		if err := c.checkLedger(fqn, content); err != nil {
			return nil, err
		}
	}

	unit, err := parser.Parse(filename, content, fqn)
	if err != nil {
		return nil, err
	}

	c.cache[key] = unit
	c.parseCount++
	logger.Debugw("parsed unit", "fqname", key, "file", filename)
	return unit, nil
}

// checkLedger verifies content against the package root's ledger file.
func (c *Coordinator) checkLedger(fqn fqname.FQName, content []byte) error {
	ledger, err := c.ledgerFor(fqn)
	if err != nil {
		return err
	}

	digest := hash.Digest(content)
	if ledger.Matches(fqn, digest) {
		return nil
	}
	return errors.Mark(
		errors.Newf("%s is frozen and its source was modified (digest %s not in ledger)",
			fqn, digest),
		errors.ErrParse)
}

func (c *Coordinator) ledgerFor(fqn fqname.FQName) (*hash.Ledger, error) {
	rootDir, err := c.RootDir(fqn)
	if err != nil {
		return nil, err
	}

	if ledger, hit := c.ledgers[rootDir]; hit {
		return ledger, nil
	}

	ledgerPath := path.Join(rootDir, hash.LedgerFilename)
	content, err := afero.ReadFile(c.fs, ledgerPath)
	if err != nil {
		// No ledger means nothing at this root is frozen.
		ledger := hash.EmptyLedger()
		c.ledgers[rootDir] = ledger
		return ledger, nil
	}

	ledger, err := hash.ParseLedger(ledgerPath, content)
	if err != nil {
		return nil, err
	}
	c.ledgers[rootDir] = ledger
	return ledger, nil
}

// ListPackageMembers enumerates the units declared under a
// package-version directory, lexicographically by unit name. Generated
// artifact order downstream depends on this order being stable.
func (c *Coordinator) ListPackageMembers(pkg fqname.FQName) ([]fqname.FQName, error) {
	dir, err := c.PackageDir(pkg)
	if err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "no sources found for package %s", pkg.PackageOnly()),
			errors.ErrParse)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), SourceExtension) {
			continue
		}
		names = append(names, strings.TrimSuffix(info.Name(), SourceExtension))
	}
	if len(names) == 0 {
		return nil, errors.Mark(
			errors.Newf("package %s declares no units under %s", pkg.PackageOnly(), dir),
			errors.ErrParse)
	}
	sort.Strings(names)

	members := make([]fqname.FQName, len(names))
	for i, name := range names {
		members[i] = pkg.WithName(name)
	}
	return members, nil
}

// RootDir returns the filesystem directory of fqn's package root,
// anchored at the tree root when the registration was relative.
func (c *Coordinator) RootDir(fqn fqname.FQName) (string, error) {
	root, err := c.roots.Find(fqn.Package())
	if err != nil {
		return "", err
	}
	if path.IsAbs(root.Path) || c.rootPath == "" {
		return root.Path, nil
	}
	return path.Join(c.rootPath, root.Path), nil
}

// RootOption reproduces the -r flag that registered fqn's package root,
// for embedding the tool's own invocation into build descriptors.
func (c *Coordinator) RootOption(fqn fqname.FQName) (string, error) {
	root, err := c.roots.Find(fqn.Package())
	if err != nil {
		return "", err
	}
	return "-r" + root.Prefix + ":" + root.Path, nil
}

// PackagePath returns fqn's directory relative to its package root:
// the namespace remainder under the root prefix plus the version
// directory, sanitized (V1_2) or plain (1.2).
func (c *Coordinator) PackagePath(fqn fqname.FQName, sanitized bool) (string, error) {
	root, err := c.roots.Find(fqn.Package())
	if err != nil {
		return "", err
	}

	remainder := strings.TrimPrefix(fqn.Package(), root.Prefix)
	remainder = strings.TrimPrefix(remainder, ".")

	version := fqn.Version()
	if sanitized {
		version = fqn.SanitizedVersion()
	}

	parts := []string{}
	if remainder != "" {
		parts = strings.Split(remainder, ".")
	}
	parts = append(parts, version)
	return path.Join(parts...), nil
}

// PackageDir returns the absolute directory holding fqn's package
// sources.
func (c *Coordinator) PackageDir(fqn fqname.FQName) (string, error) {
	rootDir, err := c.RootDir(fqn)
	if err != nil {
		return "", err
	}
	pkgPath, err := c.PackagePath(fqn, false)
	if err != nil {
		return "", err
	}
	return path.Join(rootDir, pkgPath), nil
}

// UnitPath returns the source file path for a fully-qualified unit.
func (c *Coordinator) UnitPath(fqn fqname.FQName) (string, error) {
	dir, err := c.PackageDir(fqn)
	if err != nil {
		return "", err
	}
	name := fqn.Name()
	if nested := fqn.NestedType(); nested != "" {
		name = fqname.TypesName
	}
	return path.Join(dir, name+SourceExtension), nil
}

// HasUnit reports whether a source file exists for the unit, without
// parsing it. Generators probe optional collaborators this way, the
// shared types unit of an interface's package in particular.
func (c *Coordinator) HasUnit(fqn fqname.FQName) (bool, error) {
	filename, err := c.UnitPath(fqn)
	if err != nil {
		return false, err
	}
	return afero.Exists(c.fs, filename)
}

// ParseCount returns how many units were actually parsed, as opposed to
// served from cache.
func (c *Coordinator) ParseCount() int {
	return c.parseCount
}

// Fs exposes the coordinator's filesystem for collaborators that read
// alongside it.
func (c *Coordinator) Fs() afero.Fs {
	return c.fs
}
