package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var fixedPriceSaleParams = abi.Arguments{
	{Name: "price", Type: uint256Type},
}

// EncodeFixedPriceSaleParams encodes the params of a fixed price ask.
func EncodeFixedPriceSaleParams(price *big.Int) ([]byte, error) {
	return fixedPriceSaleParams.Pack(price)
}

// DecodeFixedPriceSaleParams returns the price of a fixed price ask, or
// ErrInvalidStrategyParams if malformed.
func DecodeFixedPriceSaleParams(params []byte) (*big.Int, error) {
	values, err := fixedPriceSaleParams.Unpack(params)
	if err != nil {
		return nil, ErrInvalidStrategyParams
	}
	return values[0].(*big.Int), nil
}

// FixedPriceSale executes any bid at or above the fixed price until the
// deadline.
type FixedPriceSale struct{}

func (FixedPriceSale) Type() StrategyType {
	return StrategyFixedPriceSale
}

func (FixedPriceSale) ValidateParams(params []byte) error {
	_, err := DecodeFixedPriceSaleParams(params)
	return err
}

func (FixedPriceSale) CanBid(BidContext) bool {
	return false
}

func (FixedPriceSale) CanClaim(ctx ClaimContext) (bool, *big.Int, *big.Int) {
	price, err := DecodeFixedPriceSaleParams(ctx.Params)
	if err != nil {
		return false, nil, nil
	}
	if !isOpenAt(ctx.Deadline, ctx.Block) || ctx.Bid.IsZero() {
		return false, nil, nil
	}
	if ctx.Bid.Price.Cmp(price) < 0 {
		return false, nil, nil
	}
	return true, ctx.Bid.Price, ctx.Bid.Amount
}
