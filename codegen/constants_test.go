package codegen

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openifc/idlgen/ast"
	"github.com/openifc/idlgen/fqname"
)

func TestExportHeader(t *testing.T) {
	c, fs := lightFixture(t)
	pkg := fqname.MustParse("com.acme.light@1.2")
	members := []*ast.AST{
		parseUnit(t, c, "com.acme.light@1.2::ILight"),
		parseUnit(t, c, "com.acme.light@1.2::types"),
	}

	require.NoError(t, ExportHeader(c, "/out/exported.h", pkg, members))

	want := `// Autogenerated by idlgen. Do not edit.
// Exported constants of com.acme.light@1.2.

#ifndef IDLGEN_EXPORTED_COM_ACME_LIGHT_V1_2_H
#define IDLGEN_EXPORTED_COM_ACME_LIGHT_V1_2_H

#ifdef __cplusplus
extern "C" {
#endif

enum {
    STATE_OFF = 0,
    STATE_ON = 1,
    STATE_FAILED = 16,
};

#ifdef __cplusplus
}  // extern "C"
#endif

#endif  // IDLGEN_EXPORTED_COM_ACME_LIGHT_V1_2_H
`
	assert.Equal(t, want, readOutput(t, fs, "/out/exported.h"))
}

func TestExportHeaderSkipsPackageWithoutExports(t *testing.T) {
	c, fs := lightFixture(t)
	pkg := fqname.MustParse("com.acme.light@1.2")

	// The interface unit's local enum carries no @export.
	members := []*ast.AST{parseUnit(t, c, "com.acme.light@1.2::ILight")}

	require.NoError(t, ExportHeader(c, "/out/exported.h", pkg, members))

	exists, err := afero.Exists(fs, "/out/exported.h")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestJavaConstants(t *testing.T) {
	c, fs := lightFixture(t)
	pkg := fqname.MustParse("com.acme.light@1.2")
	members := []*ast.AST{
		parseUnit(t, c, "com.acme.light@1.2::ILight"),
		parseUnit(t, c, "com.acme.light@1.2::types"),
	}

	require.NoError(t, JavaConstants(c, "/out", pkg, members))

	want := `// Autogenerated by idlgen. Do not edit.

package com.acme.light.V1_2;

public final class Constants {
    public static final int STATE_OFF = 0;
    public static final int STATE_ON = 1;
    public static final int STATE_FAILED = 16;

    private Constants() {}
}
`
	assert.Equal(t, want, readOutput(t, fs, "/out/com/acme/light/V1_2/Constants.java"))
}

func TestJavaConstantsSkipsPackageWithoutExports(t *testing.T) {
	c, fs := lightFixture(t)
	pkg := fqname.MustParse("com.acme.light@1.2")
	members := []*ast.AST{parseUnit(t, c, "com.acme.light@1.2::ILight")}

	require.NoError(t, JavaConstants(c, "/out", pkg, members))

	exists, err := afero.Exists(fs, "/out/com/acme/light/V1_2/Constants.java")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestConstantNameMangling(t *testing.T) {
	enum := &ast.Enum{
		Name:    "LedState",
		Storage: ast.Scalar(ast.KindInt32),
		Cases: []ast.EnumCase{
			{Name: "FAST_BLINK", Value: 3},
			{Name: "off", Value: 0},
		},
	}

	assert.Equal(t, "LED_STATE_FAST_BLINK", constantName(enum, enum.Cases[0]))
	assert.Equal(t, "LED_STATE_OFF", constantName(enum, enum.Cases[1]))
}
