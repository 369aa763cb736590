package acir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acirgen/internal/field"
)

func TestAllocateInputRecordsInputWitness(t *testing.T) {
	b := NewRefBuilder()
	a := b.AllocateInput()
	_ = b.AllocateVariable()

	prog := b.Finish()
	assert.Equal(t, []Variable{a}, prog.InputWitnesses)
	assert.Equal(t, 2, prog.NumWitnesses)
}

func TestDoubleInitMemoryBlockPanics(t *testing.T) {
	b := NewRefBuilder()
	v := b.AllocateVariable()
	b.InitMemoryBlock(1, []Variable{v})

	assert.Panics(t, func() { b.InitMemoryBlock(1, []Variable{v}) })
}

func TestReadBeforeInitPanics(t *testing.T) {
	b := NewRefBuilder()
	assert.Panics(t, func() { b.ReadMemory(1, 0) })
}

func TestWriteBeforeInitPanics(t *testing.T) {
	b := NewRefBuilder()
	v := b.AllocateVariable()
	assert.Panics(t, func() { b.WriteMemory(1, 0, v) })
}

func TestMarkReturnWitnessDistinctness(t *testing.T) {
	b := NewRefBuilder()
	v1 := b.AllocateVariable()
	v2 := b.AllocateVariable()
	b.MarkReturnWitness(v1)
	b.MarkReturnWitness(v2)

	prog := b.Finish()
	require.Len(t, prog.ReturnWitnesses, 2)
	assert.NotEqual(t, prog.ReturnWitnesses[0], prog.ReturnWitnesses[1])
}

// TestCountMulGatesIsZeroWithNoMultiplication is the baseline half of the
// predicate-transparency property: a program with no Mul calls at all has
// zero mul gates, so any nonzero count a later lowering run produces must
// come from predicate-multiplexing, not incidental gate emission.
func TestCountMulGatesIsZeroWithNoMultiplication(t *testing.T) {
	b := NewRefBuilder()
	a := b.AllocateVariable()
	c := b.AllocateVariable()
	b.Add(a, c)

	assert.Equal(t, 0, CountMulGates(b.Finish()))
}

func TestCountMulGatesCountsEachMul(t *testing.T) {
	b := NewRefBuilder()
	a := b.AllocateVariable()
	c := b.AllocateVariable()
	b.Mul(a, c)
	b.Mul(a, c)
	b.Add(a, c)

	assert.Equal(t, 2, CountMulGates(b.Finish()))
}

func TestAddConstantRecordsValue(t *testing.T) {
	b := NewRefBuilder()
	five := field.FromUint64(5)
	v := b.AddConstant(five)

	prog := b.Finish()
	got, ok := prog.Constants[v]
	require.True(t, ok)
	assert.True(t, got.Equal(five))
}
