package lower

import (
	"acirgen/internal/acir"
	"acirgen/internal/errors"
	"acirgen/internal/field"
	"acirgen/internal/ssa"
	"acirgen/internal/ucode"
)

// lowerUnconstrainedCall implements the §4.5 VM bridge for a CallInstruction
// targeting a function marked Unconstrained.
func (c *Context) lowerUnconstrainedCall(inst *ssa.CallInstruction) error {
	args, err := c.flattenArgs(inst.Args)
	if err != nil {
		return err
	}
	results, err := c.lowerUnconstrainedCallRaw(inst.Target, args, c.fn.DFG, inst.ResultTypes)
	if err != nil {
		return err
	}
	for i, r := range results {
		c.cache[inst.Results[i]] = r
		if _, isArray := inst.ResultTypes[i].(*ssa.ArrayType); isArray {
			if dyn, ok := r.(acir.DynamicArray); ok {
				c.userBlocks[inst.Results[i]] = dyn.Block
			}
		}
	}
	return nil
}

// elementSizesForFlatResult builds a standalone element-type-sizes table for
// an array-typed unconstrained-call output, which has no SSA value id to key
// the usual internalBlocks cache by. Mirrors elementTypeSizes' prefix-sum
// construction (array.go) so indexing into a VM-produced array is legal.
func (c *Context) elementSizesForFlatResult(at *ssa.ArrayType) (BlockKey, error) {
	leafSizes := make([]int, len(at.ElementTypes))
	for i, et := range at.ElementTypes {
		leafSizes[i] = ssa.FlattenedSize(et)
	}
	if len(leafSizes) == 0 {
		leafSizes = []int{1}
	}
	sizes := make([]int, at.Length+1)
	running := 0
	for i := 0; i < at.Length; i++ {
		sizes[i] = running
		running += leafSizes[i%len(leafSizes)]
	}
	sizes[at.Length] = running

	c.blockCounter++
	block := c.blockCounter
	vars := make([]acir.Variable, len(sizes))
	for i, s := range sizes {
		vars[i] = c.builder.AddConstant(field.FromUint64(uint64(s)))
	}
	if err := c.initialize(block, vars); err != nil {
		return 0, err
	}
	return block, nil
}

// lowerUnconstrainedCallRaw performs the four steps of spec §4.5's VM
// bridge: link the callee's artifact to a fixed point, package inputs,
// emit a single predicate-gated unconstrained-call opcode, and initialize
// memory blocks for array-typed outputs.
func (c *Context) lowerUnconstrainedCallRaw(label string, args []acir.Variable, dfg *ssa.DataFlowGraph, resultTypes []ssa.Type) ([]acir.Value, error) {
	linked, ok := c.linkedArtifacts[label]
	if !ok {
		var err error
		linked, err = ucode.Link(c.catalog, label)
		if err != nil {
			return nil, internalErr(errors.UnlinkableCallee(label), c.callStack)
		}
		c.linkedArtifacts[label] = linked
	}

	numOutputs := 0
	for _, l := range linked.Entry.ReturnLayout {
		numOutputs += l.Size
	}
	if numOutputs == 0 {
		for _, t := range resultTypes {
			n := ssa.FlattenedSize(t)
			if n == 0 {
				n = 1
			}
			numOutputs += n
		}
	}

	outs := c.builder.EmitUnconstrainedCall(label, args, numOutputs, c.currentPredicate())

	if resultTypes == nil {
		results := make([]acir.Value, len(outs))
		for i, v := range outs {
			results[i] = acir.Scalar{Var: v}
		}
		return results, nil
	}

	results := make([]acir.Value, 0, len(resultTypes))
	pos := 0
	for _, t := range resultTypes {
		if at, isArray := t.(*ssa.ArrayType); isArray {
			n := ssa.FlattenedSize(at)
			c.blockCounter++
			block := c.blockCounter
			if err := c.initialize(block, outs[pos:pos+n]); err != nil {
				return nil, err
			}
			sizesBlock, err := c.elementSizesForFlatResult(at)
			if err != nil {
				return nil, err
			}
			results = append(results, acir.DynamicArray{Block: block, FlatLen: n, ElementSizesID: sizesBlock})
			pos += n
			continue
		}
		n := ssa.FlattenedSize(t)
		if n == 0 {
			n = 1
		}
		results = append(results, repackScalars(outs[pos:pos+n], t))
		pos += n
	}
	return results, nil
}
