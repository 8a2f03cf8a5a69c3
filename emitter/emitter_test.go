package emitter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkBuffer struct {
	bytes.Buffer
	closed bool
}

func (s *sinkBuffer) Close() error {
	s.closed = true
	return nil
}

func newTestEmitter() (*Emitter, *sinkBuffer) {
	sink := &sinkBuffer{}
	return New(sink), sink
}

func TestIndentAppliesAtLineStart(t *testing.T) {
	e, sink := newTestEmitter()

	e.Emit("a {\n")
	e.Indent(1)
	e.Emit("b\n")
	e.Indent(1)
	e.Emit("c\n")
	e.Unindent(2)
	e.Emit("}\n")

	assert.Equal(t, "a {\n    b\n        c\n}\n", sink.String())
}

func TestPartialLineKeepsItsIndent(t *testing.T) {
	e, sink := newTestEmitter()

	e.Emit("int x")
	e.Indent(3)
	e.Emit(" = 1;\n")
	e.Unindent(3)
	e.Emit("done\n")

	// The indent raised mid-line only affects the next line start.
	assert.Equal(t, "int x = 1;\ndone\n", sink.String())
}

func TestMultiLineWriteIndentsEachLine(t *testing.T) {
	e, sink := newTestEmitter()

	e.Indent(1)
	e.Emit("one\ntwo\nthree\n")

	assert.Equal(t, "    one\n    two\n    three\n", sink.String())
}

func TestBlankLinesStayBlank(t *testing.T) {
	e, sink := newTestEmitter()

	e.SetLinePrefix("# ")
	e.Indent(2)
	e.Emit("x\n\ny\n")

	assert.Equal(t, "#         x\n\n#         y\n", sink.String())
}

func TestTrailingNewlineEmitsNothingExtra(t *testing.T) {
	e, sink := newTestEmitter()

	e.Indent(1)
	e.Emit("x\n")
	assert.Equal(t, "    x\n", sink.String())

	// Nothing pending: a later write starts a fresh indented line.
	e.Emit("y")
	assert.Equal(t, "    x\n    y", sink.String())
}

func TestLinePrefix(t *testing.T) {
	e, sink := newTestEmitter()

	e.Emit("/**\n")
	e.SetLinePrefix(" * ")
	e.Emit("doc line\n")
	e.Indented(func() {
		e.Emit("indented doc\n")
	})
	e.UnsetLinePrefix()
	e.Emit(" */\n")

	assert.Equal(t, "/**\n * doc line\n *     indented doc\n */\n", sink.String())
}

func TestNamespaceElision(t *testing.T) {
	e, sink := newTestEmitter()

	e.SetNamespace("::com::acme::light::V1_0::")
	e.Emit("::com::acme::light::V1_0::State s = ::com::acme::light::V1_0::State::ON;\n")
	e.Emit("::com::acme::audio::V1_0::Format f;\n")
	e.SetNamespace("")
	e.Emit("::com::acme::light::V1_0::State t;\n")

	want := "State s = State::ON;\n" +
		"::com::acme::audio::V1_0::Format f;\n" +
		"::com::acme::light::V1_0::State t;\n"
	assert.Equal(t, want, sink.String())
}

func TestNamespaceDoesNotTouchIndent(t *testing.T) {
	e, sink := newTestEmitter()

	e.SetNamespace("  ")
	e.Indent(1)
	e.Emit("a  b\n")

	// Indentation bytes never pass through the elision filter.
	assert.Equal(t, "    ab\n", sink.String())
}

func TestUnindentBelowZeroPanics(t *testing.T) {
	e, _ := newTestEmitter()
	e.Indent(1)

	assert.Panics(t, func() { e.Unindent(2) })
}

func TestIndentedRestoresDepth(t *testing.T) {
	e, sink := newTestEmitter()

	e.Emit("a\n")
	e.IndentedBy(2, func() {
		e.Emit("b\n")
	})
	e.Emit("c\n")

	assert.Equal(t, "a\n        b\nc\n", sink.String())
}

func TestBlock(t *testing.T) {
	e, sink := newTestEmitter()

	e.Emit("enum State ").Block(func() {
		e.Emit("ON,\n")
		e.Emit("OFF,\n")
	}).Emit(";\n")

	assert.Equal(t, "enum State {\n    ON,\n    OFF,\n};\n", sink.String())
}

func TestEmitf(t *testing.T) {
	e, sink := newTestEmitter()

	e.Emitf("const int %s = %d;\n", "MAX", 32)

	assert.Equal(t, "const int MAX = 32;\n", sink.String())
}

func TestInvalidEmitterDiscards(t *testing.T) {
	e := Invalid()

	assert.False(t, e.Valid())
	e.Emit("lost\n").Emitf("also %s\n", "lost")
	e.Indented(func() { e.Emit("gone\n") })
	assert.NoError(t, e.Close())

	var nilEmitter *Emitter
	assert.False(t, nilEmitter.Valid())
}

func TestCloseClosesSinkOnce(t *testing.T) {
	e, sink := newTestEmitter()

	e.Emit("x\n")
	require.NoError(t, e.Close())
	assert.True(t, sink.closed)
	assert.False(t, e.Valid())
	assert.NoError(t, e.Close())
}

type failingSink struct{ err error }

func (f *failingSink) Write([]byte) (int, error) { return 0, f.err }
func (f *failingSink) Close() error              { return nil }

func TestWriteErrorSurfacesOnClose(t *testing.T) {
	wantErr := errors.New("disk full")
	e := New(&failingSink{err: wantErr})

	e.Emit("anything\n")
	err := e.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}
