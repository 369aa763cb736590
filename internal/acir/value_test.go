package acir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntoVarScalar(t *testing.T) {
	v, err := IntoVar(Scalar{Var: 5, Type: NumericType{IsField: true}})
	require.NoError(t, err)
	assert.Equal(t, Variable(5), v)
}

func TestIntoVarFailsOnArray(t *testing.T) {
	_, err := IntoVar(StaticArray{Elements: []Value{Scalar{Var: 1}}})
	assert.Error(t, err)

	_, err = IntoVar(DynamicArray{Block: 1, FlatLen: 2})
	assert.Error(t, err)
}

func TestFlattenStaticArrayOutermostFirst(t *testing.T) {
	nested := StaticArray{Elements: []Value{
		Scalar{Var: 1},
		StaticArray{Elements: []Value{Scalar{Var: 2}, Scalar{Var: 3}}},
	}}

	flat, err := Flatten(nested)
	require.NoError(t, err)
	require.Len(t, flat, 3)
	assert.Equal(t, []Variable{1, 2, 3}, []Variable{flat[0].Var, flat[1].Var, flat[2].Var})
}

func TestFlattenFailsOnDynamicArray(t *testing.T) {
	_, err := Flatten(DynamicArray{Block: 1, FlatLen: 4})
	assert.Error(t, err)
}

func TestFlattenedLenDoesNotRequireFlattenSuccess(t *testing.T) {
	assert.Equal(t, 4, FlattenedLen(DynamicArray{Block: 1, FlatLen: 4}))
	assert.Equal(t, 1, FlattenedLen(Scalar{Var: 1}))
	assert.Equal(t, 2, FlattenedLen(StaticArray{Elements: []Value{Scalar{Var: 1}, Scalar{Var: 2}}}))
}

func TestNumericTypeString(t *testing.T) {
	assert.Equal(t, "Field", NumericType{IsField: true}.String())
	assert.Equal(t, "u8", NumericType{BitWidth: 8}.String())
	assert.Equal(t, "i16", NumericType{Signed: true, BitWidth: 16}.String())
}
