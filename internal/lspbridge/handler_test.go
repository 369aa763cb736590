package lspbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsForCleanProgramIsEmpty(t *testing.T) {
	h := NewHandler()
	source := `fn main(v1: Field) {
  return v1
}
`
	diags := h.diagnosticsFor("clean.ssa", source)
	assert.Empty(t, diags)
}

func TestDiagnosticsForParseErrorUsesParseSource(t *testing.T) {
	h := NewHandler()
	diags := h.diagnosticsFor("bad.ssa", "this is not valid ssa {{{")
	require.Len(t, diags, 1)
	assert.Equal(t, "acirgen-parse", *diags[0].Source)
}

// TestDiagnosticsForLoweringErrorRecoversPosition exercises the full
// parse -> lower -> PositionMap.Attach -> ConvertLoweringError pipeline: a
// direct (uninlined) call is a fatal lowering error, and its diagnostic
// must be positioned at the line the call instruction was parsed from, not
// at the document's first line.
func TestDiagnosticsForLoweringErrorRecoversPosition(t *testing.T) {
	h := NewHandler()
	source := `fn main(v1: Field) {
  v2 = call direct helper(v1) -> Field
  return v2
}
`
	diags := h.diagnosticsFor("direct.ssa", source)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "acirgen-lower", *d.Source)
	// The call instruction is on line 2 (1-indexed in source, 0-indexed in
	// LSP ranges).
	assert.Equal(t, uint32(1), d.Range.Start.Line)
}

func TestUriToPathDecodesFileURI(t *testing.T) {
	path, err := uriToPath("file:///tmp/example.ssa")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/example.ssa", path)
}

func TestUriToPathRejectsMalformedURI(t *testing.T) {
	_, err := uriToPath("://not a uri")
	assert.Error(t, err)
}
