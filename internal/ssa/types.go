// Package ssa is the read-only input side of the lowering pass: a minimal
// Static Single Assignment representation of a function's entry block.
// Construction, optimization, and inlining of this representation are the
// responsibility of earlier compiler stages and are not implemented here;
// this package only models the shape those stages are assumed to produce.
package ssa

import "fmt"

// Type is the type of an SSA value. Exactly one of the concrete types below.
type Type interface {
	isType()
	String() string
}

// NumericKind distinguishes the three numeric value kinds. Field values are
// elements of the proving system's prime field; Signed/Unsigned values are
// fixed-width two's-complement or unsigned integers checked against that
// field at the point they're used in arithmetic.
type NumericKind int

const (
	FieldKind NumericKind = iota
	SignedKind
	UnsignedKind
)

func (k NumericKind) String() string {
	switch k {
	case FieldKind:
		return "field"
	case SignedKind:
		return "signed"
	case UnsignedKind:
		return "unsigned"
	default:
		return "unknown"
	}
}

// NumericType is the type of a scalar value.
type NumericType struct {
	Kind     NumericKind
	BitWidth int // meaningless (0) for FieldKind
}

func (*NumericType) isType() {}
func (n *NumericType) String() string {
	if n.Kind == FieldKind {
		return "Field"
	}
	prefix := "u"
	if n.Kind == SignedKind {
		prefix = "i"
	}
	return fmt.Sprintf("%s%d", prefix, n.BitWidth)
}

// ArrayType is a statically-sized, possibly heterogeneous array. ElementTypes
// is the repeating element layout (length 1 for homogeneous arrays, >1 for
// arrays of tuples); Length is the number of repetitions.
type ArrayType struct {
	ElementTypes []Type
	Length       int
}

func (*ArrayType) isType() {}
func (a *ArrayType) String() string {
	return fmt.Sprintf("[%s; %d]", typeListString(a.ElementTypes), a.Length)
}

// SliceType is a dynamically-sized array. Unlike ArrayType it carries no
// length in the type itself; runtime length is tracked by the lowering
// pass's slice-size map, keyed by SSA value id.
type SliceType struct {
	ElementTypes []Type
}

func (*SliceType) isType() {}
func (s *SliceType) String() string {
	return fmt.Sprintf("[%s]", typeListString(s.ElementTypes))
}

// ReferenceType and FunctionType values never appear as operands of
// arithmetic, array, or intrinsic instructions; a prior pass is assumed to
// have eliminated references, and function values only ever label a Call.
type ReferenceType struct{ Inner Type }

func (*ReferenceType) isType()          {}
func (r *ReferenceType) String() string { return "&" + r.Inner.String() }

type FunctionType struct{}

func (*FunctionType) isType()        {}
func (*FunctionType) String() string { return "function" }

func typeListString(ts []Type) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s
}

// FlattenedSize returns the number of leaf scalars a value of type t
// occupies once fully unrolled in lexicographic, outermost-first order.
// It is undefined (and unused) for Slice/Reference/Function types, whose
// flattened size depends on a runtime value rather than the type alone.
func FlattenedSize(t Type) int {
	switch v := t.(type) {
	case *NumericType:
		return 1
	case *ArrayType:
		sum := 0
		for _, et := range v.ElementTypes {
			sum += FlattenedSize(et)
		}
		return sum * v.Length
	default:
		return 0
	}
}
