package lower

import (
	"acirgen/internal/acir"
	"acirgen/internal/errors"
	"acirgen/internal/field"
	"acirgen/internal/ssa"
)

// blockFor returns valueID's existing user block, or allocates and records
// a fresh one (spec §4.3 "block_for").
func (c *Context) blockFor(valueID ssa.ValueID) BlockKey {
	if b, ok := c.userBlocks[valueID]; ok {
		return b
	}
	c.blockCounter++
	b := c.blockCounter
	c.userBlocks[valueID] = b
	return b
}

func (c *Context) internalBlockFor(valueID ssa.ValueID, length int) BlockKey {
	if e, ok := c.internalBlocks[valueID]; ok {
		return e.Block
	}
	c.blockCounter++
	b := c.blockCounter
	c.internalBlocks[valueID] = elementSizesEntry{Block: b, Len: length}
	return b
}

// initialize records block as initialized and emits a memory-init opcode.
// A second initialization of the same block is a fatal internal error
// (spec §4.3 "initialize").
func (c *Context) initialize(block BlockKey, values []acir.Variable) error {
	if c.initialized[block] {
		return internalErr(errors.DoubleInitBlock(int(block)), c.callStack)
	}
	c.initialized[block] = true
	c.builder.InitMemoryBlock(block, values)
	return nil
}

func (c *Context) requireInitialized(block BlockKey, op string) error {
	if !c.initialized[block] {
		return internalErr(errors.UninitializedBlock(int(block), op), c.callStack)
	}
	return nil
}

// checkArrayIsInitialized materializes id's structural value (if not
// already cached) and, if its user block is not yet initialized, flattens
// it and emits the memory-init opcode. Returns the (now guaranteed
// initialized) DynamicArray view of the value.
func (c *Context) checkArrayIsInitialized(id ssa.ValueID) (acir.DynamicArray, error) {
	val, err := c.valueFor(id)
	if err != nil {
		return acir.DynamicArray{}, err
	}

	if dyn, ok := val.(acir.DynamicArray); ok {
		if err := c.requireInitialized(dyn.Block, "accessed"); err != nil {
			return acir.DynamicArray{}, err
		}
		return dyn, nil
	}

	block := c.blockFor(id)
	sizesBlock, sizesLen, err := c.elementTypeSizes(id, val)
	if err != nil {
		return acir.DynamicArray{}, err
	}

	if !c.initialized[block] {
		flat, err := acir.Flatten(val)
		if err != nil {
			return acir.DynamicArray{}, internalErr(errors.FlattenDynamicArray(), c.callStack)
		}
		vars := make([]acir.Variable, len(flat))
		for i, f := range flat {
			vars[i] = f.Var
		}
		if err := c.initialize(block, vars); err != nil {
			return acir.DynamicArray{}, err
		}
	}

	dyn := acir.DynamicArray{Block: block, FlatLen: acir.FlattenedLen(val), ElementSizesID: sizesBlock}
	_ = sizesLen
	c.cache[id] = dyn
	return dyn, nil
}

// elementTypeSizes builds (or returns the cached) element-type-sizes table
// for id's type: a length-(k+1) non-decreasing prefix sum over the
// repeating element layout (spec §4.3 "Element-type-sizes table").
func (c *Context) elementTypeSizes(id ssa.ValueID, val acir.Value) (BlockKey, int, error) {
	if e, ok := c.internalBlocks[id]; ok {
		return e.Block, e.Len, nil
	}

	t := c.fn.DFG.TypeOf(id)
	elemTypes, length, err := elementLayout(t, id, c, val)
	if err != nil {
		return 0, 0, err
	}

	sizes := make([]int, length+1)
	running := 0
	leafSizes := make([]int, len(elemTypes))
	for i, et := range elemTypes {
		leafSizes[i] = ssa.FlattenedSize(et)
	}
	for i := 0; i < length; i++ {
		sizes[i] = running
		running += leafSizes[i%len(leafSizes)]
	}
	sizes[length] = running

	block := c.internalBlockFor(id, length+1)
	vars := make([]acir.Variable, len(sizes))
	for i, s := range sizes {
		vars[i] = c.builder.AddConstant(field.FromUint64(uint64(s)))
	}
	if err := c.initialize(block, vars); err != nil {
		return 0, 0, err
	}
	return block, length + 1, nil
}

// elementLayout extracts the repeating element-type list and logical length
// for id's type: straightforward for ArrayType, read from the slice-size
// map (falling back to the structural value's own element count) for
// SliceType.
func elementLayout(t ssa.Type, id ssa.ValueID, c *Context, val acir.Value) ([]ssa.Type, int, error) {
	switch tv := t.(type) {
	case *ssa.ArrayType:
		return tv.ElementTypes, tv.Length, nil
	case *ssa.SliceType:
		if sz, ok := c.sliceSizes[id]; ok {
			return tv.ElementTypes, sz.Len, nil
		}
		if sa, ok := val.(acir.StaticArray); ok {
			n := len(sa.Elements)
			if len(tv.ElementTypes) > 0 {
				n = n / len(tv.ElementTypes)
			}
			c.sliceSizes[id] = sliceSize{Len: n}
			return tv.ElementTypes, n, nil
		}
		return tv.ElementTypes, 0, nil
	default:
		return nil, 0, internalErr(errors.CastOfArray(t.String()), c.callStack)
	}
}

// getFlattenedIndex dereferences the element-type-sizes table at logical
// index i to obtain the flattened offset — a memory read, not a closed-form
// multiply, so heterogeneous (tuple) element layouts are handled correctly
// (spec.md §4 supplemented feature "get_flattened_index").
func (c *Context) getFlattenedIndex(sizesBlock BlockKey, index acir.Variable) (acir.Variable, error) {
	if err := c.requireInitialized(sizesBlock, "read"); err != nil {
		return 0, err
	}
	return c.builder.ReadMemory(sizesBlock, index), nil
}

// handleConstantIndex implements the §4.3 fast path: a structural (non
// dynamic) array value with a compile-time constant index. Returns
// (value, true, nil) when the fast path applies, (nil, false, nil) to fall
// through to the dynamic path.
func (c *Context) handleConstantIndex(arrayID, indexID ssa.ValueID, isWrite bool) (acir.Value, bool, error) {
	arrayVal, err := c.valueFor(arrayID)
	if err != nil {
		return nil, false, err
	}
	sa, ok := arrayVal.(acir.StaticArray)
	if !ok {
		return nil, false, nil // already dynamic; dynamic path handles it
	}
	if _, isSlice := c.fn.DFG.TypeOf(arrayID).(*ssa.SliceType); isSlice {
		return nil, false, nil // design note §9: constant-index fast path excludes slices
	}

	constData, ok := c.fn.DFG.NumericConstant(indexID)
	if !ok {
		return nil, false, nil
	}
	idxBig, ok := parseConstant(constData.Big)
	if !ok || !idxBig.IsInt64() {
		return nil, false, nil
	}
	idx := int(idxBig.Int64())

	inBounds := idx >= 0 && idx < len(sa.Elements)

	if c.predicateIsOne {
		if !inBounds {
			return nil, false, internalErr(errors.IndexOutOfBounds(idx, len(sa.Elements)), c.callStack)
		}
		return sa.Elements[idx], true, nil
	}

	// Non-constant (or false) predicate: only reads of in-bounds indices
	// short-circuit; writes and out-of-bounds reads fall through to the
	// dynamic path, whose gating suppresses the bounds check (spec
	// end-to-end scenario 6).
	if isWrite || !inBounds {
		return nil, false, nil
	}
	return sa.Elements[idx], true, nil
}

// arrayGet implements ArrayGetInstruction: fast path first, then the
// dynamic index-transformation path (spec §4.3).
func (c *Context) arrayGet(arrayID, indexID ssa.ValueID, elemType ssa.Type) (acir.Value, error) {
	if v, ok, err := c.handleConstantIndex(arrayID, indexID, false); err != nil {
		return nil, err
	} else if ok {
		return v, nil
	}

	dyn, err := c.checkArrayIsInitialized(arrayID)
	if err != nil {
		return nil, err
	}
	idxVal, err := c.valueFor(indexID)
	if err != nil {
		return nil, err
	}
	idxVar, err := c.intoScalar(idxVal)
	if err != nil {
		return nil, err
	}

	flatIdx, err := c.getFlattenedIndex(dyn.ElementSizesID, idxVar)
	if err != nil {
		return nil, err
	}

	effectiveIdx := flatIdx
	if !c.predicateIsOne {
		zero := c.builder.AddConstant(field.Zero())
		gatedTrue := c.builder.Mul(c.predicate, flatIdx)
		notPred := c.builder.Sub(c.builder.AddConstant(field.One()), c.predicate)
		gatedFalse := c.builder.Mul(notPred, zero)
		effectiveIdx = c.builder.Add(gatedTrue, gatedFalse)
	}

	if err := c.requireInitialized(dyn.Block, "read"); err != nil {
		return nil, err
	}
	out := c.builder.ReadMemory(dyn.Block, effectiveIdx)
	return acir.Scalar{Var: out, Type: numericTypeOfElem(elemType)}, nil
}

func numericTypeOfElem(t ssa.Type) acir.NumericType {
	nt, ok := t.(*ssa.NumericType)
	if !ok {
		return acir.NumericType{IsField: true}
	}
	return numericTypeOf(nt)
}

// arraySet implements ArraySetInstruction (spec §4.3 "array_set
// semantics"): the constant-index fast path returns a rebuilt StaticArray
// (structuralConstantSet); every other call produces a new DynamicArray
// value, either reusing the source block in place (last use) or copying
// into a fresh one.
func (c *Context) arraySet(arrayID, indexID, valueID ssa.ValueID, resultType ssa.Type, instID ssa.InstructionID) (acir.Value, error) {
	if v, ok, err := c.handleConstantIndex(arrayID, indexID, true); err != nil {
		return nil, err
	} else if ok {
		_ = v
		// In-bounds constant write under a statically-true predicate still
		// needs a structural StaticArray rebuild, not memory ops.
		return c.structuralConstantSet(arrayID, indexID, valueID, resultType)
	}

	dyn, err := c.checkArrayIsInitialized(arrayID)
	if err != nil {
		return nil, err
	}

	if vv, err := c.valueFor(valueID); err == nil {
		if _, isDyn := vv.(acir.DynamicArray); isDyn {
			return nil, internalErr(errors.NestedDynamicArraySet(), c.callStack)
		}
	}

	destBlock := dyn.Block
	lastUse := c.fn.LastUse[arrayID] == instID
	if !lastUse {
		c.blockCounter++
		destBlock = c.blockCounter
		vals := make([]acir.Variable, dyn.FlatLen)
		if err := c.requireInitialized(dyn.Block, "read"); err != nil {
			return nil, err
		}
		for i := 0; i < dyn.FlatLen; i++ {
			idxConst := c.builder.AddConstant(field.FromUint64(uint64(i)))
			vals[i] = c.builder.ReadMemory(dyn.Block, idxConst)
		}
		if err := c.initialize(destBlock, vals); err != nil {
			return nil, err
		}
	}

	idxVal, err := c.valueFor(indexID)
	if err != nil {
		return nil, err
	}
	idxVar, err := c.intoScalar(idxVal)
	if err != nil {
		return nil, err
	}
	flatIdx, err := c.getFlattenedIndex(dyn.ElementSizesID, idxVar)
	if err != nil {
		return nil, err
	}

	newVal, err := c.valueFor(valueID)
	if err != nil {
		return nil, err
	}
	newVar, err := c.intoScalar(newVal)
	if err != nil {
		return nil, err
	}

	if !c.predicateIsOne {
		if err := c.requireInitialized(destBlock, "read"); err != nil {
			return nil, err
		}
		oldVar := c.builder.ReadMemory(destBlock, flatIdx)
		notPred := c.builder.Sub(c.builder.AddConstant(field.One()), c.predicate)
		gatedNew := c.builder.Mul(c.predicate, newVar)
		gatedOld := c.builder.Mul(notPred, oldVar)
		newVar = c.builder.Add(gatedNew, gatedOld)

		zero := c.builder.AddConstant(field.Zero())
		gatedTrue := c.builder.Mul(c.predicate, flatIdx)
		gatedFalse := c.builder.Mul(notPred, zero)
		flatIdx = c.builder.Add(gatedTrue, gatedFalse)
	}

	if err := c.requireInitialized(destBlock, "written"); err != nil {
		return nil, err
	}
	c.builder.WriteMemory(destBlock, flatIdx, newVar)

	sizesBlock := dyn.ElementSizesID
	return acir.DynamicArray{Block: destBlock, FlatLen: dyn.FlatLen, ElementSizesID: sizesBlock}, nil
}

// structuralConstantSet implements the in-bounds, statically-true-predicate
// constant-index write fast path: an immutable functional update of the
// StaticArray, no memory blocks touched at all.
func (c *Context) structuralConstantSet(arrayID, indexID, valueID ssa.ValueID, resultType ssa.Type) (acir.Value, error) {
	arrayVal, err := c.valueFor(arrayID)
	if err != nil {
		return nil, err
	}
	sa := arrayVal.(acir.StaticArray)
	constData, _ := c.fn.DFG.NumericConstant(indexID)
	idxBig, _ := parseConstant(constData.Big)
	idx := int(idxBig.Int64())

	newVal, err := c.valueFor(valueID)
	if err != nil {
		return nil, err
	}

	out := make([]acir.Value, len(sa.Elements))
	copy(out, sa.Elements)
	if idx < 0 || idx >= len(out) {
		return nil, internalErr(errors.IndexOutOfBounds(idx, len(out)), c.callStack)
	}
	out[idx] = newVal
	return acir.StaticArray{Elements: out}, nil
}
