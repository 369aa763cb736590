package ssa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintEmitsConstantsBeforeInstructions(t *testing.T) {
	b := NewBuilder("main", Constrained)
	x := b.Param(field())
	five := b.Constant(field(), "5")
	sum := b.Binary(OpAdd, x, five, field())
	b.Return(sum)

	out := Print(b.Build())

	assert.Contains(t, out, "fn main(v1: Field) {")
	assert.Contains(t, out, "v2 = const Field 5")
	assert.Contains(t, out, "v3 = binary add v1, v2")
	assert.Contains(t, out, "return v3")
	assert.Less(t, strings.Index(out, "v2 = const Field 5"), strings.Index(out, "v3 = binary add v1, v2"))
}

func TestPrintUnconstrainedFunctionHeader(t *testing.T) {
	b := NewBuilder("helper", Unconstrained)
	x := b.Param(field())
	b.Return(x)

	out := Print(b.Build())
	assert.Contains(t, out, "unconstrained fn helper(v1: Field) {")
}

func TestPrintConstrainQuotesMessage(t *testing.T) {
	b := NewBuilder("main", Constrained)
	x := b.Param(field())
	y := b.Param(field())
	b.Constrain(x, y, "values must match")
	b.Return(x)

	out := Print(b.Build())
	assert.Contains(t, out, `constrain v1, v2, "values must match"`)
}

func TestPrintCallIncludesKindAndResultTypes(t *testing.T) {
	b := NewBuilder("main", Constrained)
	x := b.Param(field())
	results := b.Call(CallUnconstrained, "helper", []ValueID{x}, []Type{field()})
	b.Return(results[0])

	out := Print(b.Build())
	assert.Contains(t, out, "v2 = call unconstrained helper(v1) -> Field")
}
