package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field() Type { return &NumericType{Kind: FieldKind} }
func u8() Type    { return &NumericType{Kind: UnsignedKind, BitWidth: 8} }

func TestBuilderAssignsIncreasingIDs(t *testing.T) {
	b := NewBuilder("main", Constrained)
	x := b.Param(field())
	y := b.Param(field())
	sum := b.Binary(OpAdd, x, y, field())
	b.Return(sum)

	fn := b.Build()
	assert.Less(t, x, y)
	assert.Less(t, y, sum)
	require.NotNil(t, fn.Return)
	assert.Equal(t, []ValueID{sum}, fn.Return.Values)
}

func TestDataFlowGraphResolvesCopyChain(t *testing.T) {
	g := NewDataFlowGraph()
	g.Insert(&Value{ID: 1, Type: field(), Constant: &ConstantData{Big: "5"}})
	g.Insert(&Value{ID: 2, Type: field(), ResolvesTo: 1})
	g.Insert(&Value{ID: 3, Type: field(), ResolvesTo: 2})

	assert.Equal(t, ValueID(1), g.ResolveID(3))
	cd, ok := g.NumericConstant(3)
	require.True(t, ok)
	assert.Equal(t, "5", cd.Big)
}

func TestDataFlowGraphResolveIDBreaksCycle(t *testing.T) {
	g := NewDataFlowGraph()
	g.Insert(&Value{ID: 1, Type: field(), ResolvesTo: 2})
	g.Insert(&Value{ID: 2, Type: field(), ResolvesTo: 1})

	// Must terminate rather than loop forever.
	assert.NotPanics(t, func() { g.ResolveID(1) })
}

func TestAllValuesOrderedByID(t *testing.T) {
	g := NewDataFlowGraph()
	g.Insert(&Value{ID: 3, Type: field()})
	g.Insert(&Value{ID: 1, Type: field()})
	g.Insert(&Value{ID: 2, Type: field()})

	ids := make([]ValueID, 0, 3)
	for _, v := range g.AllValues() {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []ValueID{1, 2, 3}, ids)
}

func TestArrayLiteralAndArrayGet(t *testing.T) {
	b := NewBuilder("main", Constrained)
	zero := b.Constant(field(), "0")
	one := b.Constant(field(), "1")
	arrType := &ArrayType{ElementTypes: []Type{field()}, Length: 2}
	arr := b.ArrayLiteral(arrType, []ValueID{zero, one})
	idx := b.Constant(u8(), "0")
	elem := b.ArrayGet(arr, idx, field())
	b.Return(elem)

	fn := b.Build()
	require.Len(t, fn.Instructions, 1)
	get, ok := fn.Instructions[0].(*ArrayGetInstruction)
	require.True(t, ok)
	assert.Equal(t, arr, get.Array)
	assert.Equal(t, idx, get.Index)
}

func TestFlattenedSizeOfTupleArray(t *testing.T) {
	tupleArray := &ArrayType{ElementTypes: []Type{field(), u8()}, Length: 3}
	assert.Equal(t, 6, FlattenedSize(tupleArray))
	assert.Equal(t, 1, FlattenedSize(field()))
	assert.Equal(t, 0, FlattenedSize(&SliceType{ElementTypes: []Type{field()}}))
}
