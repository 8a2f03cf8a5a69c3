package codegen

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openifc/idlgen/errors"
)

func TestJavaInterfaceFile(t *testing.T) {
	c, fs := lightFixture(t)
	unit := parseUnit(t, c, "com.acme.light@1.2::ILight")

	require.NoError(t, Java(c, "/out", unit, ""))

	want := `// Autogenerated by idlgen. Do not edit.

package com.acme.light.V1_2;

public interface ILight extends runtime.base.V1_0.IBase {
    String DESCRIPTOR = "com.acme.light@1.2::ILight";

    final class Mode {
        public static final byte AUTO = 0;
        public static final byte MANUAL = 1;

        public static String toString(byte v) {
            if (v == AUTO) return "AUTO";
            if (v == MANUAL) return "MANUAL";
            return "(unknown)";
        }

        private Mode() {}
    }

    void setBrightness(int level);

    GetStateResult getState();

    final class GetStateResult {
        public int state;
        public byte level;
    }

    void reset();
}
`
	assert.Equal(t, want, readOutput(t, fs, "/out/com/acme/light/V1_2/ILight.java"))
}

func TestJavaTypesUnit(t *testing.T) {
	c, fs := lightFixture(t)
	unit := parseUnit(t, c, "com.acme.light@1.2::types")

	require.NoError(t, Java(c, "/out", unit, ""))

	state := readOutput(t, fs, "/out/com/acme/light/V1_2/State.java")
	assert.Contains(t, state, "package com.acme.light.V1_2;")
	assert.Contains(t, state, "public final class State {")
	assert.Contains(t, state, "public static final int FAILED = 16;")
	assert.Contains(t, state, "public static String toString(int v) {")
	assert.Contains(t, state, "private State() {}")

	settings := readOutput(t, fs, "/out/com/acme/light/V1_2/Settings.java")
	assert.Contains(t, settings, "public final class Settings {")
	// Enum-typed fields dissolve into the enum's storage type.
	assert.Contains(t, settings, "public int brightness;\n    public int state;")

	// Typedefs dissolve at use sites and get no file.
	exists, err := afero.Exists(fs, "/out/com/acme/light/V1_2/Payload.java")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestJavaTypesUnitOnly(t *testing.T) {
	c, fs := lightFixture(t)
	unit := parseUnit(t, c, "com.acme.light@1.2::types")

	require.NoError(t, Java(c, "/out", unit, "State"))

	exists, err := afero.Exists(fs, "/out/com/acme/light/V1_2/State.java")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fs, "/out/com/acme/light/V1_2/Settings.java")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestJavaTypesUnitOnlyRejectsUnknownName(t *testing.T) {
	c, _ := lightFixture(t)
	unit := parseUnit(t, c, "com.acme.light@1.2::types")

	err := Java(c, "/out", unit, "Nope")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), `declares no type named "Nope"`)
}

func TestJavaTypesUnitOnlyRejectsTypedef(t *testing.T) {
	c, _ := lightFixture(t)
	unit := parseUnit(t, c, "com.acme.light@1.2::types")

	err := Java(c, "/out", unit, "Payload")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "dissolves at use sites")
}

func TestJavaRejectsIncompatibleUnit(t *testing.T) {
	c, _ := newTestCoordinator(t, map[string]string{
		"/tree/ifaces/mix/1.0/types.idl": `package com.acme.mix@1.0;

union Value {
    int32 number;
    string text;
};
`,
	})
	unit := parseUnit(t, c, "com.acme.mix@1.0::types")

	err := Java(c, "/out", unit, "")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "not Java-compatible")
}

func TestJavaNarrowingLiterals(t *testing.T) {
	c, fs := newTestCoordinator(t, map[string]string{
		"/tree/ifaces/codes/1.0/types.idl": `package com.acme.codes@1.0;

enum Flags : uint8 {
    NONE = 0,
    ALL = 200
};

enum Masks : uint32 {
    TOP = 4000000000
};
`,
	})
	unit := parseUnit(t, c, "com.acme.codes@1.0::types")

	require.NoError(t, Java(c, "/out", unit, ""))

	flags := readOutput(t, fs, "/out/com/acme/codes/V1_0/Flags.java")
	assert.Contains(t, flags, "public static final byte NONE = 0;")
	assert.Contains(t, flags, "public static final byte ALL = (byte) 200;")

	masks := readOutput(t, fs, "/out/com/acme/codes/V1_0/Masks.java")
	assert.Contains(t, masks, "public static final int TOP = (int) 4000000000L;")
}
