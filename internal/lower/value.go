package lower

import (
	"math/big"
	"strings"

	"acirgen/internal/acir"
	"acirgen/internal/errors"
	"acirgen/internal/ssa"
)

// parseConstant accepts a decimal or 0x-prefixed hex literal, the two forms
// internal/ssasyntax's lexer produces for numeric constants.
func parseConstant(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, ok := new(big.Int).SetString(s, base)
	return v, ok
}

// createFromType recursively materializes a fresh ACIR value for an SSA
// type, allocating one scalar per leaf via mint (spec §4.2
// "create_from_type"). It never creates a memory block itself — array/slice
// values stay in StaticArray form until something forces materialization.
func (c *Context) createFromType(t ssa.Type, mint func() acir.Variable) (acir.Value, error) {
	switch v := t.(type) {
	case *ssa.NumericType:
		return acir.Scalar{Var: mint(), Type: numericTypeOf(v)}, nil
	case *ssa.ArrayType:
		elems := make([]acir.Value, 0, v.Length*len(v.ElementTypes))
		for i := 0; i < v.Length; i++ {
			for _, et := range v.ElementTypes {
				ev, err := c.createFromType(et, mint)
				if err != nil {
					return nil, err
				}
				elems = append(elems, ev)
			}
		}
		return acir.StaticArray{Elements: elems}, nil
	case *ssa.SliceType:
		// A slice parameter with no declared length starts empty; callers
		// that need a concrete length (e.g. the textual SSA front end)
		// populate it via an explicit array literal converted separately.
		return acir.StaticArray{Elements: nil}, nil
	default:
		return nil, internalErr(errors.CastOfArray(t.String()), c.callStack)
	}
}

// intoScalar extracts a value's underlying Variable, failing as an Internal
// error (not a User error — the pass itself is responsible for only ever
// calling this on values it knows are scalar) for any array value.
func (c *Context) intoScalar(v acir.Value) (acir.Variable, error) {
	vr, err := acir.IntoVar(v)
	if err != nil {
		return 0, internalErr(errors.CastOfArray("non-scalar"), c.callStack)
	}
	return vr, nil
}
