package fqname

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openifc/idlgen/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		pkg   string
		major int
		minor int
		name  string
	}{
		{"com.acme.light@1.2", "com.acme.light", 1, 2, ""},
		{"com.acme.light@1.2::ILight", "com.acme.light", 1, 2, "ILight"},
		{"com.acme.light@1.2::types", "com.acme.light", 1, 2, "types"},
		{"com.acme.light@1.2::types.State", "com.acme.light", 1, 2, "types.State"},
		{"runtime.base@1.0::IBase", "runtime.base", 1, 0, "IBase"},
		{"@1.0::IBase", "", 1, 0, "IBase"},
		{"a@0.0", "a", 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			fqn, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.pkg, fqn.Package())
			assert.Equal(t, tt.major, fqn.Major())
			assert.Equal(t, tt.minor, fqn.Minor())
			assert.Equal(t, tt.name, fqn.Name())
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"com.acme.light",
		"com.acme.light@1",
		"com.acme.light@1.",
		"com.acme.light@.2",
		"com.acme.light@-1.2",
		"com.acme.light@1.2::",
		"com.acme.light@1.2::3Light",
		"com.acme.light@1.2::types.State.Inner",
		"com.Acme.light@1.2",
		"com..light@1.2",
		"com.acme.light@a.b",
	}

	for _, in := range bad {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, errors.IsUsage(err))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, in := range []string{
		"com.acme.light@1.2",
		"com.acme.light@1.2::ILight",
		"com.acme.light@1.2::types.State",
	} {
		fqn, err := Parse(in)
		require.NoError(t, err)
		assert.Equal(t, in, fqn.String())
	}
}

func TestStructuralKinds(t *testing.T) {
	pkg := MustParse("com.acme.light@1.2")
	iface := MustParse("com.acme.light@1.2::ILight")
	relative := MustParse("@1.0::IBase")

	assert.True(t, pkg.IsValid())
	assert.True(t, pkg.IsPackageOnly())
	assert.False(t, pkg.IsFullyQualified())

	assert.True(t, iface.IsValid())
	assert.False(t, iface.IsPackageOnly())
	assert.True(t, iface.IsFullyQualified())

	assert.False(t, relative.IsValid())
	assert.False(t, relative.IsFullyQualified())
	assert.True(t, relative.WithPackage("runtime.base").IsValid())

	var zero FQName
	assert.False(t, zero.IsValid())
}

func TestUnitPredicates(t *testing.T) {
	assert.True(t, MustParse("a.b@1.0::ILight").IsInterface())
	assert.False(t, MustParse("a.b@1.0::Light").IsInterface())
	assert.False(t, MustParse("a.b@1.0::types").IsInterface())
	assert.False(t, MustParse("a.b@1.0").IsInterface())

	assert.True(t, MustParse("a.b@1.0::types").IsTypesUnit())
	assert.True(t, MustParse("a.b@1.0::types.State").IsTypesUnit())
	assert.False(t, MustParse("a.b@1.0::ILight").IsTypesUnit())

	assert.Equal(t, "State", MustParse("a.b@1.0::types.State").NestedType())
	assert.Equal(t, "", MustParse("a.b@1.0::types").NestedType())
}

func TestDerivedNames(t *testing.T) {
	fqn := MustParse("com.acme.light@1.2::ILight")

	assert.Equal(t, "Light", fqn.InterfaceBaseName())
	assert.Equal(t, "LightProxy", fqn.ProxyName())
	assert.Equal(t, "LightStub", fqn.StubName())
	assert.Equal(t, "LightAdapter", fqn.AdapterName())

	assert.Equal(t, "V1_2", fqn.SanitizedVersion())
	assert.Equal(t, "com.acme.light.V1_2", fqn.JavaPackage())
	assert.Equal(t, "::com::acme::light::V1_2", fqn.CppNamespace())
	assert.Equal(t, "COM_ACME_LIGHT_V1_2", fqn.TokenName())
	assert.Equal(t, []string{"com", "acme", "light"}, fqn.PackageComponents())
	assert.Equal(t, "com/acme/light/1.2", fqn.PackagePath(false))
	assert.Equal(t, "com/acme/light/V1_2", fqn.PackagePath(true))
}

func TestDerivedUnits(t *testing.T) {
	fqn := MustParse("com.acme.light@1.2::ILight")

	assert.Equal(t, "com.acme.light@1.2", fqn.PackageOnly().String())
	assert.Equal(t, "com.acme.light@1.2::types", fqn.TypesUnit().String())
	assert.Equal(t, "com.acme.light@1.2::IOther", fqn.WithName("IOther").String())

	// The receiver keeps its value.
	assert.Equal(t, "ILight", fqn.Name())
}

func TestInPackage(t *testing.T) {
	fqn := MustParse("com.acme.light@1.2::ILight")

	assert.True(t, fqn.InPackage("com.acme.light"))
	assert.True(t, fqn.InPackage("com.acme"))
	assert.True(t, fqn.InPackage("com"))
	assert.False(t, fqn.InPackage("com.acme.li"))
	assert.False(t, fqn.InPackage("org.acme"))
}

func TestOrdering(t *testing.T) {
	// Package first, then numeric version, then unit name.
	ordered := []FQName{
		MustParse("com.acme.audio@2.0::IStream"),
		MustParse("com.acme.light@1.2::IDimmer"),
		MustParse("com.acme.light@1.2::ILight"),
		MustParse("com.acme.light@1.10::ILight"),
		MustParse("com.acme.light@2.0::ILight"),
		MustParse("com.acme.light@10.0::ILight"),
	}

	shuffled := []FQName{
		ordered[3], ordered[5], ordered[0], ordered[2], ordered[4], ordered[1],
	}
	sort.Slice(shuffled, func(i, j int) bool { return Less(shuffled[i], shuffled[j]) })
	assert.Equal(t, ordered, shuffled)

	for i, a := range ordered {
		assert.Equal(t, 0, Compare(a, a))
		for _, b := range ordered[i+1:] {
			assert.Equal(t, -1, Compare(a, b))
			assert.Equal(t, 1, Compare(b, a))
		}
	}
}

func TestBase(t *testing.T) {
	assert.Equal(t, "runtime.base@1.0::IBase", Base.String())
	assert.True(t, Base.IsInterface())
}

func TestIsValidPackage(t *testing.T) {
	assert.True(t, IsValidPackage("com.acme.light"))
	assert.True(t, IsValidPackage("runtime"))
	assert.False(t, IsValidPackage(""))
	assert.False(t, IsValidPackage("com..light"))
	assert.False(t, IsValidPackage("Com.acme"))
	assert.False(t, IsValidPackage("com.acme."))
}
