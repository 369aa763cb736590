package lower

import (
	"acirgen/internal/acir"
	"acirgen/internal/errors"
	"acirgen/internal/field"
	"acirgen/internal/ssa"
)

// lowerIntrinsic dispatches the intrinsic set named in spec §4.5 and the
// supplemented full set from original_source's convert_ssa_intrinsic_call:
// to_radix/to_bits, sort, array_len, the four slice push/pop ops,
// slice_insert/remove, and black_box.
func (c *Context) lowerIntrinsic(inst *ssa.CallInstruction) error {
	switch inst.Target {
	case "to_radix", "to_bits":
		return c.lowerRadixDecompose(inst)
	case "sort":
		return c.lowerSort(inst)
	case "array_len":
		return c.lowerArrayLen(inst)
	case "slice_push_back":
		return c.lowerSlicePush(inst, true)
	case "slice_push_front":
		return c.lowerSlicePush(inst, false)
	case "slice_pop_back":
		return c.lowerSlicePop(inst, true)
	case "slice_pop_front":
		return c.lowerSlicePop(inst, false)
	case "slice_insert":
		return c.lowerSliceInsert(inst)
	case "slice_remove":
		return c.lowerSliceRemove(inst)
	case "array_as_slice":
		v, err := c.valueFor(inst.Args[0])
		if err != nil {
			return err
		}
		c.cache[inst.Results[0]] = v
		c.propagateSliceSize(inst.Args[0], inst.Results[0])
		return nil
	default:
		return c.lowerBlackBox(inst)
	}
}

func (c *Context) flattenArgs(args []ssa.ValueID) ([]acir.Variable, error) {
	var out []acir.Variable
	for _, id := range args {
		v, err := c.valueFor(id)
		if err != nil {
			return nil, err
		}
		flat, ferr := acir.Flatten(v)
		if ferr != nil {
			if dyn, ok := v.(acir.DynamicArray); ok {
				if err := c.requireInitialized(dyn.Block, "read"); err != nil {
					return nil, err
				}
				for i := 0; i < dyn.FlatLen; i++ {
					idx := c.builder.AddConstant(field.FromUint64(uint64(i)))
					out = append(out, c.builder.ReadMemory(dyn.Block, idx))
				}
				continue
			}
			return nil, internalErr(errors.FlattenDynamicArray(), c.callStack)
		}
		for _, f := range flat {
			out = append(out, f.Var)
		}
	}
	return out, nil
}

func (c *Context) lowerRadixDecompose(inst *ssa.CallInstruction) error {
	inputs, err := c.flattenArgs(inst.Args)
	if err != nil {
		return err
	}
	if len(inst.ResultTypes) != 1 {
		return internalErr(errors.UnknownInstruction(inst.Target+": expected one result"), c.callStack)
	}
	limbs := ssa.FlattenedSize(inst.ResultTypes[0])
	if limbs == 0 {
		limbs = 1
	}
	outs := c.builder.EmitBlackBox(inst.Target, inputs, limbs)
	c.cache[inst.Results[0]] = repackScalars(outs, inst.ResultTypes[0])
	return nil
}

func (c *Context) lowerSort(inst *ssa.CallInstruction) error {
	inputs, err := c.flattenArgs(inst.Args)
	if err != nil {
		return err
	}
	bitWidth := -1
	for _, id := range inst.Args {
		v, _ := c.valueFor(id)
		flat, ferr := acir.Flatten(v)
		if ferr != nil {
			continue
		}
		for _, f := range flat {
			if bitWidth == -1 {
				bitWidth = f.Type.BitWidth
			} else if bitWidth != f.Type.BitWidth {
				return internalErr(errors.OperandTypeMismatch("sort element", "mismatched bit width"), c.callStack)
			}
		}
	}
	outs := c.builder.EmitSortNetwork(inputs)
	if len(inst.Results) == 1 {
		c.cache[inst.Results[0]] = repackScalars(outs, inst.ResultTypes[0])
		return nil
	}
	return c.repackMultiResult(inst, outs)
}

func (c *Context) lowerArrayLen(inst *ssa.CallInstruction) error {
	id := inst.Args[0]
	t := c.fn.DFG.TypeOf(id)
	var n int
	switch tv := t.(type) {
	case *ssa.ArrayType:
		n = tv.Length
	case *ssa.SliceType:
		if sz, ok := c.sliceSizes[id]; ok {
			n = sz.Len
		}
	}
	out := c.builder.AddConstant(field.FromUint64(uint64(n)))
	c.cache[inst.Results[0]] = acir.Scalar{Var: out, Type: acir.NumericType{BitWidth: 32}}
	return nil
}

// materializeStructural reads a (possibly dynamic) array/slice value back
// into a StaticArray of per-element Values, the form every slice intrinsic
// operates on structurally (spec §4.5 "Input dynamic arrays are
// materialized back to structural form by reading every element").
func (c *Context) materializeStructural(id ssa.ValueID) ([]acir.Value, ssa.Type, error) {
	val, err := c.valueFor(id)
	if err != nil {
		return nil, nil, err
	}
	sliceType, _ := c.fn.DFG.TypeOf(id).(*ssa.SliceType)
	var elemType ssa.Type
	if sliceType != nil && len(sliceType.ElementTypes) == 1 {
		elemType = sliceType.ElementTypes[0]
	}

	switch v := val.(type) {
	case acir.StaticArray:
		return v.Elements, elemType, nil
	case acir.DynamicArray:
		if err := c.requireInitialized(v.Block, "read"); err != nil {
			return nil, nil, err
		}
		elemSize := 1
		if elemType != nil {
			elemSize = ssa.FlattenedSize(elemType)
			if elemSize == 0 {
				elemSize = 1
			}
		}
		var out []acir.Value
		for i := 0; i+elemSize <= v.FlatLen; i += elemSize {
			leaves := make([]acir.Value, elemSize)
			for j := 0; j < elemSize; j++ {
				idx := c.builder.AddConstant(field.FromUint64(uint64(i + j)))
				rv := c.builder.ReadMemory(v.Block, idx)
				leaves[j] = acir.Scalar{Var: rv}
			}
			if elemSize == 1 {
				out = append(out, leaves[0])
			} else {
				out = append(out, acir.StaticArray{Elements: leaves})
			}
		}
		return out, elemType, nil
	default:
		return nil, nil, internalErr(errors.CastOfArray("slice intrinsic operand"), c.callStack)
	}
}

func (c *Context) lowerSlicePush(inst *ssa.CallInstruction, back bool) error {
	elems, _, err := c.materializeStructural(inst.Args[0])
	if err != nil {
		return err
	}
	newElem, err := c.valueFor(inst.Args[len(inst.Args)-1])
	if err != nil {
		return err
	}

	var out []acir.Value
	if back {
		out = append(append([]acir.Value{}, elems...), newElem)
	} else {
		out = append([]acir.Value{newElem}, elems...)
	}

	lenOut := c.builder.AddConstant(field.FromUint64(uint64(len(out))))
	c.cache[inst.Results[0]] = acir.Scalar{Var: lenOut, Type: acir.NumericType{BitWidth: 32}}
	c.cache[inst.Results[1]] = acir.StaticArray{Elements: out}
	c.sliceSizes[inst.Results[1]] = sliceSize{Len: len(out)}
	return nil
}

func (c *Context) lowerSlicePop(inst *ssa.CallInstruction, back bool) error {
	elems, _, err := c.materializeStructural(inst.Args[0])
	if err != nil {
		return err
	}
	if len(elems) == 0 {
		return internalErr(errors.IndexOutOfBounds(0, 0), c.callStack)
	}

	var popped acir.Value
	var rest []acir.Value
	if back {
		popped = elems[len(elems)-1]
		rest = elems[:len(elems)-1]
	} else {
		popped = elems[0]
		rest = elems[1:]
	}

	lenOut := c.builder.AddConstant(field.FromUint64(uint64(len(rest))))
	c.cache[inst.Results[0]] = acir.Scalar{Var: lenOut, Type: acir.NumericType{BitWidth: 32}}
	c.cache[inst.Results[1]] = acir.StaticArray{Elements: rest}
	c.sliceSizes[inst.Results[1]] = sliceSize{Len: len(rest)}
	if len(inst.Results) > 2 {
		c.cache[inst.Results[2]] = popped
	}
	return nil
}

func (c *Context) lowerSliceInsert(inst *ssa.CallInstruction) error {
	return c.structuralSpliceByConstantIndex(inst, "slice_insert", func(elems []acir.Value, idx int, extra acir.Value) []acir.Value {
		out := make([]acir.Value, 0, len(elems)+1)
		out = append(out, elems[:idx]...)
		out = append(out, extra)
		out = append(out, elems[idx:]...)
		return out
	})
}

func (c *Context) lowerSliceRemove(inst *ssa.CallInstruction) error {
	return c.structuralSpliceByConstantIndex(inst, "slice_remove", func(elems []acir.Value, idx int, _ acir.Value) []acir.Value {
		out := make([]acir.Value, 0, len(elems)-1)
		out = append(out, elems[:idx]...)
		out = append(out, elems[idx+1:]...)
		return out
	})
}

func (c *Context) structuralSpliceByConstantIndex(inst *ssa.CallInstruction, name string, splice func([]acir.Value, int, acir.Value) []acir.Value) error {
	elems, _, err := c.materializeStructural(inst.Args[0])
	if err != nil {
		return err
	}
	indexArg := inst.Args[1]
	constData, ok := c.fn.DFG.NumericConstant(indexArg)
	if !ok {
		return internalErr(errors.DynamicSliceIndex(name), c.callStack)
	}
	idxBig, ok := parseConstant(constData.Big)
	if !ok {
		return internalErr(errors.DynamicSliceIndex(name), c.callStack)
	}
	idx := int(idxBig.Int64())
	if idx < 0 || idx > len(elems) {
		return internalErr(errors.IndexOutOfBounds(idx, len(elems)), c.callStack)
	}

	var extra acir.Value
	if len(inst.Args) > 2 {
		extra, err = c.valueFor(inst.Args[2])
		if err != nil {
			return err
		}
	}

	out := splice(elems, idx, extra)
	lenOut := c.builder.AddConstant(field.FromUint64(uint64(len(out))))
	c.cache[inst.Results[0]] = acir.Scalar{Var: lenOut, Type: acir.NumericType{BitWidth: 32}}
	c.cache[inst.Results[1]] = acir.StaticArray{Elements: out}
	c.sliceSizes[inst.Results[1]] = sliceSize{Len: len(out)}
	return nil
}

func (c *Context) lowerBlackBox(inst *ssa.CallInstruction) error {
	inputs, err := c.flattenArgs(inst.Args)
	if err != nil {
		return err
	}
	numOutputs := 0
	for _, t := range inst.ResultTypes {
		n := ssa.FlattenedSize(t)
		if n == 0 {
			n = 1
		}
		numOutputs += n
	}
	outs := c.builder.EmitBlackBox(inst.Target, inputs, numOutputs)
	return c.repackMultiResult(inst, outs)
}

// repackMultiResult splits a flat output-variable list across the declared
// result types, in order.
func (c *Context) repackMultiResult(inst *ssa.CallInstruction, outs []acir.Variable) error {
	pos := 0
	for i, t := range inst.ResultTypes {
		n := ssa.FlattenedSize(t)
		if n == 0 {
			n = 1
		}
		if pos+n > len(outs) {
			return internalErr(errors.UnknownInstruction(inst.Target+": too few outputs"), c.callStack)
		}
		c.cache[inst.Results[i]] = repackScalars(outs[pos:pos+n], t)
		pos += n
	}
	return nil
}

func repackScalars(vars []acir.Variable, t ssa.Type) acir.Value {
	if len(vars) == 1 {
		if nt, ok := t.(*ssa.NumericType); ok {
			return acir.Scalar{Var: vars[0], Type: numericTypeOf(nt)}
		}
		return acir.Scalar{Var: vars[0]}
	}
	elems := make([]acir.Value, len(vars))
	for i, v := range vars {
		elems[i] = acir.Scalar{Var: v}
	}
	return acir.StaticArray{Elements: elems}
}
