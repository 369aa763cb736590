// Package acir models the lowered, constraint-system side of a value:
// the ACIR value variant (scalar / static array / dynamic array), the
// constraint builder collaborator interface the lowering pass composes
// calls against, and the program it ultimately produces.
package acir

import "fmt"

// Variable is an opaque handle into the constraint builder's variable
// space. The lowering pass never inspects its internals; only the builder
// implementation assigns meaning to it.
type Variable int

// BlockID identifies a memory block (user or internal/element-type-size).
type BlockID int

// NumericType tags a Scalar with the numeric kind it must be treated as
// when emitting arithmetic (field vs. fixed-width signed/unsigned).
type NumericType struct {
	IsField  bool
	Signed   bool
	BitWidth int
}

func (t NumericType) String() string {
	if t.IsField {
		return "Field"
	}
	p := "u"
	if t.Signed {
		p = "i"
	}
	return fmt.Sprintf("%s%d", p, t.BitWidth)
}

// Value is the ACIR-side tagged variant described in spec §3: a fully
// materialized scalar, a structured (not-yet-flattened) static array, or an
// opaque handle into a dynamic memory-block array. Dispatch is always by
// type switch; never by subclassing.
type Value interface {
	isAcirValue()
}

// Scalar is a single constraint-system variable carrying a numeric type tag.
type Scalar struct {
	Var  Variable
	Type NumericType
}

func (Scalar) isAcirValue() {}

// StaticArray is an ordered, still-structured sequence of ACIR values. It
// is never flattened into a memory block unless a dynamic access or an
// ArraySet forces it — see internal/lower/array.go.
type StaticArray struct {
	Elements []Value
}

func (StaticArray) isAcirValue() {}

// DynamicArray is an opaque handle into a memory block: the block holding
// the flattened elements, the flattened length, and the block holding the
// companion element-type-size prefix-sum table (spec invariant 4).
type DynamicArray struct {
	Block          BlockID
	FlatLen        int
	ElementSizesID BlockID
}

func (DynamicArray) isAcirValue() {}

// IntoVar extracts the underlying variable of a Scalar value, failing for
// any array value (spec §4.2 "into_scalar").
func IntoVar(v Value) (Variable, error) {
	s, ok := v.(Scalar)
	if !ok {
		return 0, fmt.Errorf("acir: expected scalar value, got %T", v)
	}
	return s.Var, nil
}

// FlatElem is one leaf of a flattened value: its variable and numeric type.
type FlatElem struct {
	Var  Variable
	Type NumericType
}

// Flatten unrolls a value into its leaf (variable, type) pairs in
// lexicographic, outermost-first order — the single canonical mapping to
// memory-block offsets (spec §4.2). It fails on a DynamicArray: dynamic
// values must be read element-by-element through the constraint builder,
// not flattened structurally.
func Flatten(v Value) ([]FlatElem, error) {
	switch val := v.(type) {
	case Scalar:
		return []FlatElem{{Var: val.Var, Type: val.Type}}, nil
	case StaticArray:
		var out []FlatElem
		for _, e := range val.Elements {
			flat, err := Flatten(e)
			if err != nil {
				return nil, err
			}
			out = append(out, flat...)
		}
		return out, nil
	case DynamicArray:
		return nil, fmt.Errorf("acir: cannot flatten a dynamic array value without reading its block")
	default:
		return nil, fmt.Errorf("acir: unknown value kind %T", v)
	}
}

// FlattenedLen reports the flattened leaf count of a value without
// requiring it to succeed flattening a dynamic array — used by callers that
// already know (or compute separately) a dynamic array's flat length.
func FlattenedLen(v Value) int {
	switch val := v.(type) {
	case Scalar:
		return 1
	case StaticArray:
		n := 0
		for _, e := range val.Elements {
			n += FlattenedLen(e)
		}
		return n
	case DynamicArray:
		return val.FlatLen
	default:
		return 0
	}
}
