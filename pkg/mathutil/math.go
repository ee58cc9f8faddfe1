package mathutil

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// MulDivFloor returns ⌊x * num / den⌋. It returns zero if den is zero.
func MulDivFloor(x, num, den *big.Int) *big.Int {
	if den.Sign() == 0 {
		return big.NewInt(0)
	}
	z := new(big.Int).Mul(x, num)
	return z.Quo(z, den)
}

// IsPositive returns whether x is not nil and strictly greater than zero.
func IsPositive(x *big.Int) bool {
	return x != nil && x.Sign() > 0
}

// IsNonNegative returns whether x is not nil and greater or equal to zero.
func IsNonNegative(x *big.Int) bool {
	return x != nil && x.Sign() >= 0
}

// Sum adds up the given values.
func Sum(values ...*big.Int) *big.Int {
	z := new(big.Int)
	for _, v := range values {
		if v != nil {
			z.Add(z, v)
		}
	}
	return z
}

// ToDecimal converts an integer amount into a decimal with the given number
// of decimals, ie. (12345, 2) -> 123.45.
func ToDecimal(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// FromDecimal is the inverse of ToDecimal, the fractional part exceeding the
// given decimals is truncated.
func FromDecimal(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Truncate(0).BigInt()
}
