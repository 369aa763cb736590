package lower

import (
	"acirgen/internal/acir"
	"acirgen/internal/errors"
	"acirgen/internal/ssa"
)

// lowerInstruction is the dispatch table of spec §4.1, matched by exhaustive
// type switch (never subclassing). Every case attaches the instruction to
// the call stack before doing any work and pops it on the way out, so a
// nested failure (e.g. inside the VM bridge) carries the outer instruction
// too.
func (c *Context) lowerInstruction(inst ssa.Instruction) error {
	c.pushFrame(inst)
	defer c.popFrame()

	switch i := inst.(type) {
	case *ssa.BinaryInstruction:
		v, err := c.lowerBinary(i)
		if err != nil {
			return err
		}
		c.cache[i.Result] = v
		return nil

	case *ssa.ConstrainInstruction:
		return c.lowerConstrain(i)

	case *ssa.CastInstruction:
		v, err := c.lowerCast(i)
		if err != nil {
			return err
		}
		c.cache[i.Result] = v
		return nil

	case *ssa.NotInstruction:
		v, err := c.lowerNot(i)
		if err != nil {
			return err
		}
		c.cache[i.Result] = v
		return nil

	case *ssa.TruncateInstruction:
		v, err := c.lowerTruncate(i)
		if err != nil {
			return err
		}
		c.cache[i.Result] = v
		return nil

	case *ssa.EnableSideEffectsInstruction:
		return c.lowerEnableSideEffects(i)

	case *ssa.ArrayGetInstruction:
		elemType := c.fn.DFG.TypeOf(i.Result)
		v, err := c.arrayGet(i.Array, i.Index, elemType)
		if err != nil {
			return err
		}
		c.cache[i.Result] = v
		return nil

	case *ssa.ArraySetInstruction:
		resultType := c.fn.DFG.TypeOf(i.Result)
		v, err := c.arraySet(i.Array, i.Index, i.Value, resultType, i.ID)
		if err != nil {
			return err
		}
		c.cache[i.Result] = v
		c.propagateSliceSize(i.Array, i.Result)
		return nil

	case *ssa.CallInstruction:
		return c.lowerCall(i)

	case *ssa.AllocateInstruction:
		return internalErr(errors.ReferenceEncountered("Allocate"), c.callStack)
	case *ssa.LoadInstruction:
		return internalErr(errors.ReferenceEncountered("Load"), c.callStack)
	case *ssa.StoreInstruction:
		return internalErr(errors.ReferenceEncountered("Store"), c.callStack)

	default:
		return internalErr(errors.UnknownInstruction("<unrecognized>"), c.callStack)
	}
}

// lowerEnableSideEffects replaces the current predicate wholesale; there is
// no nesting semantics (design note §9's resolution of the open question).
func (c *Context) lowerEnableSideEffects(inst *ssa.EnableSideEffectsInstruction) error {
	v, err := c.valueFor(inst.Condition)
	if err != nil {
		return err
	}
	s, ok := v.(acir.Scalar)
	if !ok {
		return internalErr(errors.CastOfArray("enable_side_effects condition"), c.callStack)
	}

	if cd, ok := c.fn.DFG.NumericConstant(c.fn.DFG.ResolveID(inst.Condition)); ok {
		big, okParse := parseConstant(cd.Big)
		c.predicateIsOne = okParse && big.Sign() != 0
	} else {
		c.predicateIsOne = false
	}

	c.predicate = s.Var
	return nil
}

func (c *Context) propagateSliceSize(from, to ssa.ValueID) {
	if sz, ok := c.sliceSizes[from]; ok {
		c.sliceSizes[to] = sz
	}
}

// lowerCall dispatches a Call by kind (spec §4.1 dispatch table row
// "Call(f, args)").
func (c *Context) lowerCall(inst *ssa.CallInstruction) error {
	switch inst.Kind {
	case ssa.CallDirect:
		return internalErr(errors.DirectCallUninlined(inst.Target), c.callStack)
	case ssa.CallIntrinsic:
		return c.lowerIntrinsic(inst)
	case ssa.CallUnconstrained:
		return c.lowerUnconstrainedCall(inst)
	default:
		return internalErr(errors.UnknownInstruction("call kind"), c.callStack)
	}
}
