package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArithmeticIdentities(t *testing.T) {
	a := FromUint64(7)
	b := FromUint64(5)

	assert.True(t, a.Add(b).Equal(FromUint64(12)))
	assert.True(t, a.Sub(b).Equal(FromUint64(2)))
	assert.True(t, a.Mul(b).Equal(FromUint64(35)))
	assert.True(t, a.Add(Zero()).Equal(a))
	assert.True(t, a.Mul(One()).Equal(a))
}

func TestInverse(t *testing.T) {
	a := FromUint64(9)
	inv := a.Inverse()
	assert.True(t, a.Mul(inv).IsOne())
	assert.True(t, Zero().Inverse().IsZero())
}

func TestFromBigIntRoundTrip(t *testing.T) {
	v := big.NewInt(123456789)
	e := FromBigInt(v)
	assert.Equal(t, 0, v.Cmp(e.BigInt()))
}

func TestPow2(t *testing.T) {
	assert.True(t, Pow2(0).Equal(One()))
	assert.True(t, Pow2(3).Equal(FromUint64(8)))
}

func TestFromBool(t *testing.T) {
	assert.True(t, FromBool(true).IsOne())
	assert.True(t, FromBool(false).IsZero())
}
