package mathutil

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FeeDenominator is the denominator of every fee rate, ie. a rate of 25
// means 2.5%.
const FeeDenominator = uint64(1000)

var bigFeeDenominator = new(big.Int).SetUint64(FeeDenominator)

// FeeAmount calculates the fee to be charged on amount for a rate expressed
// in per mille. The result is floored.
func FeeAmount(amount *big.Int, rate uint64) *big.Int {
	return MulDivFloor(amount, new(big.Int).SetUint64(rate), bigFeeDenominator)
}

// LessFees returns the amount left after subtracting every fee calculated
// with the given rates, along with the single fee amounts in the same order.
// Rounding dust always stays with the returned net amount, so that
// net + sum(fees) == amount.
func LessFees(amount *big.Int, rates ...uint64) (*big.Int, []*big.Int) {
	net := new(big.Int).Set(amount)
	fees := make([]*big.Int, 0, len(rates))
	for _, rate := range rates {
		fee := FeeAmount(amount, rate)
		net.Sub(net, fee)
		fees = append(fees, fee)
	}
	return net, fees
}

// RateToPercentage converts a per mille rate into a percentage, ie. 25 -> 2.5.
func RateToPercentage(rate uint64) decimal.Decimal {
	return decimal.NewFromInt(int64(rate)).Div(decimal.NewFromInt(10))
}

// PercentageToRate is the inverse of RateToPercentage. The percentage must
// have at most one decimal digit.
func PercentageToRate(percentage decimal.Decimal) (uint64, error) {
	if percentage.IsNegative() {
		return 0, fmt.Errorf("percentage must not be negative")
	}
	rate := percentage.Mul(decimal.NewFromInt(10))
	if !rate.Equal(rate.Truncate(0)) {
		return 0, fmt.Errorf("percentage must have at most one decimal digit")
	}
	return rate.BigInt().Uint64(), nil
}
