package backend

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/depgraph"
	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/fqname"
	"github.com/openifc/idlgen/hash"
)

// unitSpec maps unit name to the body written after the package
// declaration.
type unitSpec map[string]string

func writeUnits(t *testing.T, fs afero.Fs, pkg string, units unitSpec) {
	t.Helper()
	fqn := fqname.MustParse(pkg)
	dir := fmt.Sprintf("/tree/ifaces/%s/%s",
		strings.ReplaceAll(strings.TrimPrefix(fqn.Package(), "com."), ".", "/"),
		fqn.Version())
	for unit, body := range units {
		src := fmt.Sprintf("package %s;\n%s", pkg, body)
		require.NoError(t, afero.WriteFile(fs,
			fmt.Sprintf("%s/%s.idl", dir, unit), []byte(src), 0o644))
	}
}

func newTestContext(t *testing.T, fs afero.Fs) *Context {
	t.Helper()
	roots := coordinator.NewRootTable()
	require.NoError(t, roots.Register("com", "ifaces"))
	coord := coordinator.New(fs, "/tree", roots)
	return &Context{
		Coord:      coord,
		Graph:      depgraph.New(coord),
		OutputPath: "/out",
		HashOut:    &bytes.Buffer{},
	}
}

func lightFixture(t *testing.T, fs afero.Fs) {
	t.Helper()
	writeUnits(t, fs, "com.acme.light@1.2", unitSpec{
		"ILight": "import com.acme.light@1.2::types;\ninterface ILight {\n    setLevel(Brightness level) generates (bool ok);\n    oneway blink(uint32 times);\n};\n",
		"types":  "typedef uint32 Brightness;\n\n@export\nenum Status : int32 { OK = 0, BUSY = 1 };\n",
	})
}

func mustLookup(t *testing.T, key string) Backend {
	t.Helper()
	b, ok := NewRegistry().Lookup(key)
	require.True(t, ok, "backend %q not registered", key)
	return b
}

func TestRegistryTable(t *testing.T) {
	registry := NewRegistry()

	keys := make([]string, 0)
	for _, b := range registry.All() {
		keys = append(keys, b.Key())
	}
	assert.Equal(t, []string{
		"check",
		"c++", "c++-headers", "c++-sources",
		"c++-impl", "c++-impl-headers", "c++-impl-sources",
		"c++-adapter", "c++-adapter-headers", "c++-adapter-sources", "c++-adapter-main",
		"java", "java-constants", "export-header",
		"testspec",
		"makefile", "blueprint", "blueprint-impl",
		"hash",
	}, keys)

	_, ok := registry.Lookup("fortran")
	assert.False(t, ok)

	assert.Equal(t, ShapeNone, mustLookup(t, "check").Shape())
	assert.Equal(t, ShapeFile, mustLookup(t, "export-header").Shape())
	assert.Equal(t, ShapeSourceTree, mustLookup(t, "makefile").Shape())
	assert.Equal(t, ShapeDirectory, mustLookup(t, "java").Shape())
}

func TestValidateShapes(t *testing.T) {
	pkg := fqname.MustParse("com.acme.light@1.2")
	unit := fqname.MustParse("com.acme.light@1.2::ILight")
	nested := fqname.MustParse("com.acme.light@1.2::types.Status")

	// Unit backends take both shapes; package backends only the bare
	// package.
	assert.NoError(t, mustLookup(t, "c++").Validate(pkg))
	assert.NoError(t, mustLookup(t, "c++").Validate(unit))
	assert.NoError(t, mustLookup(t, "makefile").Validate(pkg))

	err := mustLookup(t, "makefile").Validate(unit)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	// The types.Name restriction is a Java-only feature.
	assert.NoError(t, mustLookup(t, "java").Validate(nested))
	err = mustLookup(t, "c++").Validate(nested)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestValidationFailureWritesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	lightFixture(t, fs)
	ctx := newTestContext(t, fs)

	unit := fqname.MustParse("com.acme.light@1.2::ILight")
	err := mustLookup(t, "blueprint").Validate(unit)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	exists, _ := afero.DirExists(fs, ctx.OutputPath)
	assert.False(t, exists, "validation failure must not touch the filesystem")
}

func TestPackageFanOutFailsFast(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeUnits(t, fs, "com.acme.mixed@1.0", unitSpec{
		"IAlpha":  "interface IAlpha {\n    ping();\n};\n",
		"IBroken": "interface IBroken {\n    ping(\n};\n",
		"types":   "typedef uint32 Token;\n",
	})
	ctx := newTestContext(t, fs)

	err := mustLookup(t, "c++-headers").Generate(ctx, fqname.MustParse("com.acme.mixed@1.0"))
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))

	// IAlpha sorts before IBroken, so its headers were already written
	// and stay in place; nothing after the failure was generated.
	exists, _ := afero.Exists(fs, "/out/com/acme/mixed/1.0/IAlpha.h")
	assert.True(t, exists, "member generated before the failure remains")
	exists, _ = afero.Exists(fs, "/out/com/acme/mixed/1.0/types.h")
	assert.False(t, exists, "members after the failure are skipped")
}

func TestCheckParsesWithoutOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	lightFixture(t, fs)
	ctx := newTestContext(t, fs)

	require.NoError(t, mustLookup(t, "check").Generate(ctx, fqname.MustParse("com.acme.light@1.2")))
	assert.Equal(t, 2, ctx.Coord.ParseCount())

	exists, _ := afero.DirExists(fs, ctx.OutputPath)
	assert.False(t, exists)
}

func TestHashBackendReportsLedgerLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	lightFixture(t, fs)
	ctx := newTestContext(t, fs)
	out := &bytes.Buffer{}
	ctx.HashOut = out

	require.NoError(t, mustLookup(t, "hash").Generate(ctx, fqname.MustParse("com.acme.light@1.2")))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	content, err := afero.ReadFile(fs, "/tree/ifaces/acme/light/1.2/ILight.idl")
	require.NoError(t, err)
	assert.Equal(t, hash.Digest(content)+" com.acme.light@1.2::ILight", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], " com.acme.light@1.2::types"))
}

func TestHashBackendIgnoresFrozenLedger(t *testing.T) {
	fs := afero.NewMemMapFs()
	lightFixture(t, fs)

	// Pin a stale digest; full enforcement must reject the source while
	// the hash backend still reports the current one.
	stale := strings.Repeat("0", 64)
	require.NoError(t, afero.WriteFile(fs, "/tree/ifaces/"+hash.LedgerFilename,
		[]byte(stale+" com.acme.light@1.2::ILight\n"), 0o644))

	ctx := newTestContext(t, fs)
	err := mustLookup(t, "check").Generate(ctx, fqname.MustParse("com.acme.light@1.2"))
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))

	ctx = newTestContext(t, fs)
	out := &bytes.Buffer{}
	ctx.HashOut = out
	require.NoError(t, mustLookup(t, "hash").Generate(ctx, fqname.MustParse("com.acme.light@1.2::ILight")))
	assert.NotContains(t, out.String(), stale)
}
