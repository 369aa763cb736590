package acir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintIncludesWitnessCountsAndInputs(t *testing.T) {
	b := NewRefBuilder()
	a := b.AllocateInput()
	c := b.AllocateVariable()
	sum := b.Add(a, c)
	b.MarkReturnWitness(sum)

	out := Print(b.Finish())
	assert.Contains(t, out, "witnesses: 3")
	assert.Contains(t, out, "inputs: [v1]")
	assert.Contains(t, out, "return: [v3]")
}

func TestPrintGateOpcodeIncludesMessageWhenPresent(t *testing.T) {
	b := NewRefBuilder()
	a := b.AllocateVariable()
	c := b.AllocateVariable()
	b.AssertEq(a, c, "must match")

	out := Print(b.Finish())
	assert.Contains(t, out, `assert_eq [v1, v2] -> v0  # must match`)
}

func TestPrintMemoryOpcodesRoundTripAllThreeKinds(t *testing.T) {
	b := NewRefBuilder()
	v := b.AllocateVariable()
	b.InitMemoryBlock(1, []Variable{v})
	read := b.ReadMemory(1, v)
	b.WriteMemory(1, v, read)

	out := Print(b.Finish())
	assert.Contains(t, out, "mem[1] = init [v1]")
	assert.Contains(t, out, "mem[1][v1]")
}

func TestPrintRangeCheckOpcode(t *testing.T) {
	b := NewRefBuilder()
	v := b.AllocateVariable()
	b.RangeCheck(v, 8)

	out := Print(b.Finish())
	assert.Contains(t, out, "range_check v1 < 2^8")
}

func TestPrintUnconstrainedCallIncludesArtifactAndPredicate(t *testing.T) {
	b := NewRefBuilder()
	pred := b.AllocateVariable()
	arg := b.AllocateVariable()
	b.EmitUnconstrainedCall("helper", []Variable{arg}, 1, pred)

	out := Print(b.Finish())
	assert.Contains(t, out, `unconstrained_call "helper"`)
	assert.Contains(t, out, "[predicate v1]")
}
