// Package field wraps the scalar field of the bn254 curve as the prime
// field ACIR constraints are expressed over. Every constant, coefficient,
// and witness value that flows through the lowering pass is a field.Element.
package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Element is a field element modulo the bn254 scalar field order.
type Element struct {
	inner fr.Element
}

// Zero returns the additive identity.
func Zero() Element { return Element{} }

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e.inner.SetOne()
	return e
}

// FromUint64 builds a field element from a small unsigned constant.
func FromUint64(v uint64) Element {
	var e Element
	e.inner.SetUint64(v)
	return e
}

// FromBigInt reduces an arbitrary-precision integer modulo the field order.
func FromBigInt(v *big.Int) Element {
	var e Element
	e.inner.SetBigInt(v)
	return e
}

// FromBool maps false/true to 0/1, the canonical boolean encoding used by
// predicate variables.
func FromBool(b bool) Element {
	if b {
		return One()
	}
	return Zero()
}

func (e Element) Add(o Element) Element {
	var r Element
	r.inner.Add(&e.inner, &o.inner)
	return r
}

func (e Element) Sub(o Element) Element {
	var r Element
	r.inner.Sub(&e.inner, &o.inner)
	return r
}

func (e Element) Mul(o Element) Element {
	var r Element
	r.inner.Mul(&e.inner, &o.inner)
	return r
}

func (e Element) Neg() Element {
	var r Element
	r.inner.Neg(&e.inner)
	return r
}

// Inverse returns the multiplicative inverse, or zero if e is zero (mirrors
// the constraint system's convention of never panicking on a zero divisor;
// callers gate division under a predicate so a zero result is discarded).
func (e Element) Inverse() Element {
	if e.IsZero() {
		return Zero()
	}
	var r Element
	r.inner.Inverse(&e.inner)
	return r
}

func (e Element) IsZero() bool { return e.inner.IsZero() }

func (e Element) IsOne() bool {
	one := One()
	return e.Equal(one)
}

func (e Element) Equal(o Element) bool { return e.inner.Equal(&o.inner) }

func (e Element) BigInt() *big.Int {
	var b big.Int
	e.inner.BigInt(&b)
	return &b
}

func (e Element) String() string { return e.inner.String() }

// Pow2 returns 2^n as a field element, used by truncation's
// "add 2^bit_size before truncating a subtraction" rule and by bit/radix
// decomposition.
func Pow2(n int) Element {
	v := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return FromBigInt(v)
}

// ModulusBitLen returns the bit length of the field modulus, used to reject
// integer operand widths that could overflow it during multiplication
// (bit_width > field_max_bits/2 is a user error).
func ModulusBitLen() int {
	return fr.Modulus().BitLen()
}
