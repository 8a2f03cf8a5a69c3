package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrapPreservesIdentity(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestTaxonomyMarking(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		check    func(error) bool
	}{
		{"usage", Usagef("missing -L option"), ErrUsage, IsUsage},
		{"validation", Validationf("expecting package name"), ErrValidation, IsValidation},
		{"parse", Mark(New("unexpected token"), ErrParse), ErrParse, IsParse},
		{"generation", Generationf("could not open %q", "out.h"), ErrGeneration, IsGeneration},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, Is(tc.err, tc.sentinel))
			assert.True(t, tc.check(tc.err))

			// Wrapping keeps the class.
			wrapped := Wrap(tc.err, "while handling request")
			assert.True(t, tc.check(wrapped))
		})
	}
}

func TestTaxonomyClassesAreDisjoint(t *testing.T) {
	err := Validationf("bad name shape")

	assert.True(t, IsValidation(err))
	assert.False(t, IsUsage(err))
	assert.False(t, IsParse(err))
	assert.False(t, IsGeneration(err))
}

func TestNilIsNoClass(t *testing.T) {
	assert.False(t, IsUsage(nil))
	assert.False(t, IsValidation(nil))
	assert.False(t, IsParse(nil))
	assert.False(t, IsGeneration(nil))
}

func TestMarkSurvivesFmtWrapping(t *testing.T) {
	err := Mark(New("inner"), ErrParse)
	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsParse(wrapped))
}
