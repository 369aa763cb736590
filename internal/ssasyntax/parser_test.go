package ssasyntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acirgen/internal/ssa"
)

func TestParseStringBuildsProgram(t *testing.T) {
	source := `fn main(v1: Field, v2: Field) {
  v3 = binary add v1, v2
  constrain v3, v1, "sanity"
  return v3
}
`
	prog, positions, err := ParseString("test.ssa", source)
	require.NoError(t, err)
	require.NotNil(t, prog)

	fn := prog.Main()
	require.NotNil(t, fn)
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, ssa.Constrained, fn.Runtime)
	require.Len(t, fn.Instructions, 2)

	bin, ok := fn.Instructions[0].(*ssa.BinaryInstruction)
	require.True(t, ok)
	assert.Equal(t, ssa.OpAdd, bin.Op)

	require.NotNil(t, positions["main"])
	_, hasPos := positions["main"][bin.ID]
	assert.True(t, hasPos, "binary instruction should have a recovered source position")
}

func TestParseStringUnconstrainedFunction(t *testing.T) {
	source := `unconstrained fn helper(v1: Field) {
  return v1
}
`
	prog, _, err := ParseString("helper.ssa", source)
	require.NoError(t, err)
	assert.Equal(t, ssa.Unconstrained, prog.Main().Runtime)
}

func TestParseStringRejectsGarbage(t *testing.T) {
	_, _, err := ParseString("bad.ssa", "this is not valid ssa syntax {{{")
	assert.Error(t, err)
}

func TestParseArrayAndCallSyntax(t *testing.T) {
	source := `fn main(v1: Field) {
  v2 = const Field 0
  v3 = literal [Field; 1] [v1]
  v4 = array_get v3, v2
  v5, v6 = call intrinsic array_len(v3) -> u32, Field
  return v4
}
`
	prog, _, err := ParseString("arrays.ssa", source)
	require.NoError(t, err)

	fn := prog.Main()
	get, ok := fn.Instructions[0].(*ssa.ArrayGetInstruction)
	require.True(t, ok)
	assert.Equal(t, ssa.ValueID(3), get.Array)

	call, ok := fn.Instructions[1].(*ssa.CallInstruction)
	require.True(t, ok)
	assert.Equal(t, ssa.CallIntrinsic, call.Kind)
	assert.Equal(t, "array_len", call.Target)
	require.Len(t, call.Results, 2)
}

// TestPrintParseRoundTrip checks print(parse(text)) reproduces the same
// instruction stream, the guarantee the textual surface syntax exists for
// (SPEC_FULL.md §2.1's "print . parse" round trip).
func TestPrintParseRoundTrip(t *testing.T) {
	source := `fn main(v1: Field, v2: u8) {
  v3 = binary add v1, v1
  v4 = cast v2 as Field
  v5 = not v2
  constrain v3, v4, "eq"
  return v3
}
`
	prog, _, err := ParseString("roundtrip.ssa", source)
	require.NoError(t, err)

	printed := ssa.Print(prog.Main())

	reparsed, _, err := ParseString("roundtrip2.ssa", printed)
	require.NoError(t, err)

	reprinted := ssa.Print(reparsed.Main())
	assert.Equal(t, printed, reprinted)
}
