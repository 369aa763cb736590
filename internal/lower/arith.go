package lower

import (
	"acirgen/internal/acir"
	"acirgen/internal/errors"
	"acirgen/internal/field"
	"acirgen/internal/ssa"
)

// maxIntegerBitWidth rejects integer widths that could overflow the field
// modulus during multiplication (spec §4.4: bit_width > field_max_bits/2).
func (c *Context) maxIntegerBitWidth() int {
	return field.ModulusBitLen() / 2
}

func (c *Context) checkBitWidth(nt acir.NumericType) error {
	if nt.IsField {
		return nil
	}
	if nt.BitWidth > c.maxIntegerBitWidth() {
		return internalErr(errors.BitWidthTooLarge(nt.BitWidth, c.maxIntegerBitWidth()), c.callStack)
	}
	return nil
}

// coerceOperandTypes implements the §4.4 "operand type coercion" rule: if
// one operand is Field and the other fixed-width, the field side's type tag
// (not its value) is coerced to the other's type. Non-field operands must
// match exactly.
func coerceOperandTypes(lhs, rhs acir.NumericType) (acir.NumericType, acir.NumericType, bool) {
	if lhs.IsField && !rhs.IsField {
		lhs.IsField, lhs.Signed, lhs.BitWidth = false, rhs.Signed, rhs.BitWidth
		return lhs, rhs, true
	}
	if rhs.IsField && !lhs.IsField {
		rhs.IsField, rhs.Signed, rhs.BitWidth = false, lhs.Signed, lhs.BitWidth
		return lhs, rhs, true
	}
	if lhs.IsField && rhs.IsField {
		return lhs, rhs, true
	}
	return lhs, rhs, lhs == rhs
}

// lowerBinary implements §4.4 binary-op lowering, including predicate
// gating for div/lt/mod.
func (c *Context) lowerBinary(inst *ssa.BinaryInstruction) (acir.Value, error) {
	lhsVal, err := c.valueFor(inst.LHS)
	if err != nil {
		return nil, err
	}
	rhsVal, err := c.valueFor(inst.RHS)
	if err != nil {
		return nil, err
	}
	lhsScalar, ok := lhsVal.(acir.Scalar)
	if !ok {
		return nil, internalErr(errors.CastOfArray("lhs operand"), c.callStack)
	}
	rhsScalar, ok := rhsVal.(acir.Scalar)
	if !ok {
		return nil, internalErr(errors.CastOfArray("rhs operand"), c.callStack)
	}

	lt, rt, okTypes := coerceOperandTypes(lhsScalar.Type, rhsScalar.Type)
	if !okTypes {
		return nil, internalErr(errors.OperandTypeMismatch(lhsScalar.Type.String(), rhsScalar.Type.String()), c.callStack)
	}
	if err := c.checkBitWidth(lt); err != nil {
		return nil, err
	}
	if err := c.checkBitWidth(rt); err != nil {
		return nil, err
	}

	a, b := lhsScalar.Var, rhsScalar.Var
	var out acir.Variable
	resultType := lt

	switch inst.Op {
	case ssa.OpAdd:
		out = c.builder.Add(a, b)
	case ssa.OpSub:
		out = c.builder.Sub(a, b)
	case ssa.OpMul:
		out = c.builder.Mul(a, b)
	case ssa.OpDiv:
		out = c.builder.Div(a, b, c.currentPredicate())
	case ssa.OpEq:
		out = c.builder.Eq(a, b)
		resultType = acir.NumericType{BitWidth: 1}
	case ssa.OpLt:
		out = c.builder.Lt(a, b, c.currentPredicate())
		resultType = acir.NumericType{BitWidth: 1}
	case ssa.OpXor:
		out = c.builder.Xor(a, b, lt.BitWidth)
	case ssa.OpAnd:
		out = c.builder.And(a, b, lt.BitWidth)
	case ssa.OpOr:
		out = c.builder.Or(a, b, lt.BitWidth)
	case ssa.OpMod:
		out = c.builder.Mod(a, b, c.currentPredicate())
	default:
		return nil, internalErr(errors.UnknownInstruction("binary op "+inst.Op.String()), c.callStack)
	}

	return acir.Scalar{Var: out, Type: resultType}, nil
}

// lowerCast implements §4.4 cast rules: no-op to Field; no-op widening to a
// fixed width ≥ the source; truncate-mod-2^N for a genuine narrowing.
func (c *Context) lowerCast(inst *ssa.CastInstruction) (acir.Value, error) {
	v, err := c.valueFor(inst.Value)
	if err != nil {
		return nil, err
	}
	s, ok := v.(acir.Scalar)
	if !ok {
		return nil, internalErr(errors.CastOfArray("cast operand"), c.callStack)
	}

	toNT, ok := inst.To.(*ssa.NumericType)
	if !ok {
		return nil, internalErr(errors.CastOfArray(inst.To.String()), c.callStack)
	}
	target := numericTypeOf(toNT)

	if target.IsField {
		return acir.Scalar{Var: s.Var, Type: target}, nil
	}
	if s.Type.IsField || s.Type.BitWidth <= target.BitWidth {
		return acir.Scalar{Var: s.Var, Type: target}, nil
	}
	out := c.builder.Truncate(s.Var, target.BitWidth, s.Type.BitWidth)
	return acir.Scalar{Var: out, Type: target}, nil
}

// lowerTruncate implements §4.4 truncation: detect, structurally, whether
// the value being truncated is the result of a Sub instruction, and if so
// add 2^bit_size first to restore non-negativity within the field before
// truncating (spec.md §4 supplemented feature "Truncate-after-subtraction
// bias").
func (c *Context) lowerTruncate(inst *ssa.TruncateInstruction) (acir.Value, error) {
	v, err := c.valueFor(inst.Value)
	if err != nil {
		return nil, err
	}
	s, ok := v.(acir.Scalar)
	if !ok {
		return nil, internalErr(errors.CastOfArray("truncate operand"), c.callStack)
	}

	operand := s.Var
	if c.definedBySub(inst.Value) {
		bias := c.builder.AddConstant(field.Pow2(inst.BitSize))
		operand = c.builder.Add(operand, bias)
	}

	out := c.builder.Truncate(operand, inst.BitSize, inst.MaxBitSize)
	return acir.Scalar{Var: out, Type: acir.NumericType{Signed: s.Type.Signed, BitWidth: inst.BitSize}}, nil
}

// definedBySub answers the structural question §4.4/§9 require: is id's
// defining instruction a Binary{Op: Sub}?
func (c *Context) definedBySub(id ssa.ValueID) bool {
	resolved := c.fn.DFG.ResolveID(id)
	for _, inst := range c.fn.Instructions {
		bi, ok := inst.(*ssa.BinaryInstruction)
		if ok && bi.Result == resolved {
			return bi.Op == ssa.OpSub
		}
	}
	return false
}

func (c *Context) lowerNot(inst *ssa.NotInstruction) (acir.Value, error) {
	v, err := c.valueFor(inst.Value)
	if err != nil {
		return nil, err
	}
	s, ok := v.(acir.Scalar)
	if !ok {
		return nil, internalErr(errors.CastOfArray("not operand"), c.callStack)
	}
	out := c.builder.Not(s.Var, s.Type.BitWidth)
	return acir.Scalar{Var: out, Type: s.Type}, nil
}

// lowerConstrain implements §4.4 structural constrain: recursive pairing of
// scalars, static arrays element-wise, and dynamic arrays of equal length
// index-wise. Mismatched shapes are a fatal internal error.
func (c *Context) lowerConstrain(inst *ssa.ConstrainInstruction) error {
	lhs, err := c.valueFor(inst.LHS)
	if err != nil {
		return err
	}
	rhs, err := c.valueFor(inst.RHS)
	if err != nil {
		return err
	}
	return c.constrainValues(lhs, rhs, inst.Msg)
}

func (c *Context) constrainValues(lhs, rhs acir.Value, msg string) error {
	switch l := lhs.(type) {
	case acir.Scalar:
		r, ok := rhs.(acir.Scalar)
		if !ok {
			return internalErr(errors.ShapeMismatch("Scalar", shapeName(rhs)), c.callStack)
		}
		c.builder.AssertEq(l.Var, r.Var, msg)
		return nil
	case acir.StaticArray:
		r, ok := rhs.(acir.StaticArray)
		if !ok || len(l.Elements) != len(r.Elements) {
			return internalErr(errors.ShapeMismatch("StaticArray", shapeName(rhs)), c.callStack)
		}
		for i := range l.Elements {
			if err := c.constrainValues(l.Elements[i], r.Elements[i], msg); err != nil {
				return err
			}
		}
		return nil
	case acir.DynamicArray:
		r, ok := rhs.(acir.DynamicArray)
		if !ok || l.FlatLen != r.FlatLen {
			return internalErr(errors.ShapeMismatch("DynamicArray", shapeName(rhs)), c.callStack)
		}
		if err := c.requireInitialized(l.Block, "read"); err != nil {
			return err
		}
		if err := c.requireInitialized(r.Block, "read"); err != nil {
			return err
		}
		for i := 0; i < l.FlatLen; i++ {
			idx := c.builder.AddConstant(field.FromUint64(uint64(i)))
			lv := c.builder.ReadMemory(l.Block, idx)
			rv := c.builder.ReadMemory(r.Block, idx)
			c.builder.AssertEq(lv, rv, msg)
		}
		return nil
	default:
		return internalErr(errors.ShapeMismatch("<unknown>", shapeName(rhs)), c.callStack)
	}
}

func shapeName(v acir.Value) string {
	switch v.(type) {
	case acir.Scalar:
		return "Scalar"
	case acir.StaticArray:
		return "StaticArray"
	case acir.DynamicArray:
		return "DynamicArray"
	default:
		return "<unknown>"
	}
}
