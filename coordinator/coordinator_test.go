package coordinator

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/fqname"
	"github.com/openifc/idlgen/hash"
)

const testRootPath = "/tree"

func writeSource(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

// newTestCoordinator builds a mem-fs tree with one package holding two
// interfaces and a types unit.
func newTestCoordinator(t *testing.T) (*Coordinator, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()

	writeSource(t, fs, "/tree/ifaces/light/1.0/ILight.idl", `
package com.acme.light@1.0;
interface ILight {
    oneway blink(uint32 times);
};
`)
	writeSource(t, fs, "/tree/ifaces/light/1.0/IDimmer.idl", `
package com.acme.light@1.0;
import com.acme.light@1.0::types;
interface IDimmer {
    setLevel(Brightness level) generates (bool ok);
};
`)
	writeSource(t, fs, "/tree/ifaces/light/1.0/types.idl", `
package com.acme.light@1.0;
typedef uint32 Brightness;
`)
	writeSource(t, fs, "/tree/ifaces/light/1.0/README.md", "not a unit\n")

	roots := NewRootTable()
	require.NoError(t, roots.Register("com.acme", "ifaces"))
	return New(fs, testRootPath, roots), fs
}

func TestRootTableRegister(t *testing.T) {
	table := NewRootTable()

	require.NoError(t, table.Register("com.acme", "ifaces"))
	assert.Error(t, table.Register("com.acme", "elsewhere"), "duplicate prefix")
	assert.True(t, errors.IsUsage(table.Register("Com.Acme", "x")), "invalid prefix")
	assert.True(t, errors.IsUsage(table.Register("com.other", "")), "empty path")

	// The built-in runtime root comes first.
	roots := table.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, Root{Prefix: "runtime", Path: "runtime/interfaces"}, roots[0])
}

func TestRootTableBuiltinOverride(t *testing.T) {
	table := NewRootTable()

	// Re-registering the seeded prefix replaces it in place.
	require.NoError(t, table.Register("runtime", "vendor/runtime"))
	root, err := table.Find("runtime.base")
	require.NoError(t, err)
	assert.Equal(t, "vendor/runtime", root.Path)
	require.Len(t, table.Roots(), 1)

	// The override consumes the built-in slot; a third registration is
	// an ordinary duplicate.
	err = table.Register("runtime", "elsewhere")
	require.Error(t, err)
	assert.True(t, errors.IsUsage(err))
}

func TestRootTableLongestPrefixWins(t *testing.T) {
	table := NewRootTable()
	require.NoError(t, table.Register("com", "fallback"))
	require.NoError(t, table.Register("com.acme.light", "special"))
	require.NoError(t, table.Register("com.acme", "ifaces"))

	find := func(pkg string) string {
		root, err := table.Find(pkg)
		require.NoError(t, err)
		return root.Path
	}

	assert.Equal(t, "special", find("com.acme.light"))
	assert.Equal(t, "special", find("com.acme.light.internal"))
	assert.Equal(t, "ifaces", find("com.acme.audio"))
	assert.Equal(t, "fallback", find("com.other"))
	assert.Equal(t, "runtime/interfaces", find("runtime.base"))

	// Prefixes match whole namespace segments only.
	_, err := table.Find("com2.acme")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestParseMemoizes(t *testing.T) {
	c, _ := newTestCoordinator(t)
	light := fqname.MustParse("com.acme.light@1.0::ILight")

	first, err := c.Parse(light)
	require.NoError(t, err)
	second, err := c.Parse(light)
	require.NoError(t, err)

	assert.Same(t, first, second, "cache returns the identical instance")
	assert.Equal(t, 1, c.ParseCount())

	// A second distinct unit bumps the counter once, however often it is
	// re-resolved.
	dimmer := fqname.MustParse("com.acme.light@1.0::IDimmer")
	for i := 0; i < 3; i++ {
		_, err := c.Parse(dimmer)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.ParseCount())
}

func TestParseNormalizesNestedTypes(t *testing.T) {
	c, _ := newTestCoordinator(t)

	types, err := c.Parse(fqname.MustParse("com.acme.light@1.0::types"))
	require.NoError(t, err)
	nested, err := c.Parse(fqname.MustParse("com.acme.light@1.0::types.Brightness"))
	require.NoError(t, err)

	assert.Same(t, types, nested)
	assert.Equal(t, 1, c.ParseCount())
}

func TestParseRejectsNonUnits(t *testing.T) {
	c, _ := newTestCoordinator(t)

	_, err := c.Parse(fqname.MustParse("com.acme.light@1.0"))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestParseMissingSource(t *testing.T) {
	c, _ := newTestCoordinator(t)

	_, err := c.Parse(fqname.MustParse("com.acme.light@1.0::IMissing"))
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
	assert.Contains(t, err.Error(), "IMissing")

	_, err = c.Parse(fqname.MustParse("com.unrooted.thing@1.0::IThing"))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err), "unregistered namespace is a validation failure")
}

func TestLedgerEnforcement(t *testing.T) {
	c, fs := newTestCoordinator(t)
	light := fqname.MustParse("com.acme.light@1.0::ILight")

	content, err := afero.ReadFile(fs, "/tree/ifaces/light/1.0/ILight.idl")
	require.NoError(t, err)

	// Pin a digest that does not match the on-disk content.
	writeSource(t, fs, "/tree/ifaces/ledger.txt",
		hash.Digest([]byte("older content"))+" com.acme.light@1.0::ILight\n")

	_, err = c.Parse(light)
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
	assert.Contains(t, err.Error(), "frozen")

	// The hash-report path parses the same unit with the check suppressed.
	suppressed := New(fs, testRootPath, mustRoots(t))
	unit, err := suppressed.ParseEnforce(light, EnforceNone)
	require.NoError(t, err)
	assert.NotNil(t, unit)

	// A matching pin passes full enforcement.
	writeSource(t, fs, "/tree/ifaces/ledger.txt",
		hash.Digest(content)+" com.acme.light@1.0::ILight\n")
	pinned := New(fs, testRootPath, mustRoots(t))
	_, err = pinned.Parse(light)
	require.NoError(t, err)

	// Units the ledger does not mention stay unaffected throughout.
	_, err = pinned.Parse(fqname.MustParse("com.acme.light@1.0::types"))
	require.NoError(t, err)
}

func mustRoots(t *testing.T) *RootTable {
	t.Helper()
	roots := NewRootTable()
	require.NoError(t, roots.Register("com.acme", "ifaces"))
	return roots
}

func TestListPackageMembers(t *testing.T) {
	c, _ := newTestCoordinator(t)

	members, err := c.ListPackageMembers(fqname.MustParse("com.acme.light@1.0"))
	require.NoError(t, err)

	assert.Equal(t, []fqname.FQName{
		fqname.MustParse("com.acme.light@1.0::IDimmer"),
		fqname.MustParse("com.acme.light@1.0::ILight"),
		fqname.MustParse("com.acme.light@1.0::types"),
	}, members, "lexicographic by unit name, non-unit files ignored")
}

func TestListPackageMembersMissing(t *testing.T) {
	c, fs := newTestCoordinator(t)

	_, err := c.ListPackageMembers(fqname.MustParse("com.acme.audio@1.0"))
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))

	// A directory with no unit files is as empty as no directory.
	require.NoError(t, fs.MkdirAll("/tree/ifaces/audio/1.0", 0o755))
	writeSource(t, fs, "/tree/ifaces/audio/1.0/notes.txt", "x")
	_, err = c.ListPackageMembers(fqname.MustParse("com.acme.audio@1.0"))
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}

func TestPaths(t *testing.T) {
	c, _ := newTestCoordinator(t)
	light := fqname.MustParse("com.acme.light@1.0::ILight")

	rootDir, err := c.RootDir(light)
	require.NoError(t, err)
	assert.Equal(t, "/tree/ifaces", rootDir)

	pkgPath, err := c.PackagePath(light, false)
	require.NoError(t, err)
	assert.Equal(t, "light/1.0", pkgPath)

	sanitized, err := c.PackagePath(light, true)
	require.NoError(t, err)
	assert.Equal(t, "light/V1_0", sanitized)

	unitPath, err := c.UnitPath(light)
	require.NoError(t, err)
	assert.Equal(t, "/tree/ifaces/light/1.0/ILight.idl", unitPath)

	nestedPath, err := c.UnitPath(fqname.MustParse("com.acme.light@1.0::types.Brightness"))
	require.NoError(t, err)
	assert.Equal(t, "/tree/ifaces/light/1.0/types.idl", nestedPath)

	option, err := c.RootOption(light)
	require.NoError(t, err)
	assert.Equal(t, "-rcom.acme:ifaces", option)
}

func TestPathsAbsoluteRoot(t *testing.T) {
	roots := NewRootTable()
	require.NoError(t, roots.Register("com.acme", "/srv/ifaces"))
	c := New(afero.NewMemMapFs(), testRootPath, roots)

	rootDir, err := c.RootDir(fqname.MustParse("com.acme.light@1.0::ILight"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/ifaces", rootDir, "absolute registrations ignore the tree root")
}

func TestPackagePathAtRootPrefix(t *testing.T) {
	// A package equal to its root prefix has no namespace remainder.
	roots := NewRootTable()
	require.NoError(t, roots.Register("com.acme.light", "light-src"))
	c := New(afero.NewMemMapFs(), testRootPath, roots)

	pkgPath, err := c.PackagePath(fqname.MustParse("com.acme.light@2.3::ILight"), false)
	require.NoError(t, err)
	assert.Equal(t, "2.3", pkgPath)
}

func TestFilepathLocations(t *testing.T) {
	c, _ := newTestCoordinator(t)
	light := fqname.MustParse("com.acme.light@1.0::ILight")

	tests := []struct {
		loc  Location
		want string
	}{
		{LocationDirect, "/out/main.cpp"},
		{LocationPackageRoot, "/tree/ifaces/light/1.0/modules.mk"},
		{LocationGenOutput, "/out/com/acme/light/1.0/modules.mk"},
		{LocationGenSanitized, "/out/com/acme/light/V1_0/modules.mk"},
	}
	for _, tt := range tests {
		filename := "modules.mk"
		if tt.loc == LocationDirect {
			filename = "main.cpp"
		}
		got, err := c.Filepath("/out", light, tt.loc, filename)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestEmitterWritesThroughFs(t *testing.T) {
	c, fs := newTestCoordinator(t)
	light := fqname.MustParse("com.acme.light@1.0::ILight")

	e, err := c.Emitter("/out", light, LocationGenOutput, "ILight.h")
	require.NoError(t, err)
	e.Emit("#pragma once\n")
	require.NoError(t, e.Close())

	content, err := afero.ReadFile(fs, "/out/com/acme/light/1.0/ILight.h")
	require.NoError(t, err)
	assert.Equal(t, "#pragma once\n", string(content))

	// Re-opening truncates rather than appends.
	e, err = c.Emitter("/out", light, LocationGenOutput, "ILight.h")
	require.NoError(t, err)
	e.Emit("// regenerated\n")
	require.NoError(t, e.Close())
	content, err = afero.ReadFile(fs, "/out/com/acme/light/1.0/ILight.h")
	require.NoError(t, err)
	assert.Equal(t, "// regenerated\n", string(content))
}

func TestEmitterOpenFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	c := New(fs, testRootPath, mustRoots(t))

	_, err := c.Emitter("/out", fqname.MustParse("com.acme.light@1.0::ILight"),
		LocationDirect, "x.h")
	require.Error(t, err)
	assert.True(t, errors.IsGeneration(err))
}
