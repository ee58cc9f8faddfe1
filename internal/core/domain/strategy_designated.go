package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var designatedSaleParams = abi.Arguments{
	{Name: "price", Type: uint256Type},
	{Name: "taker", Type: addressType},
}

// EncodeDesignatedSaleParams encodes the params of a designated sale ask.
func EncodeDesignatedSaleParams(price *big.Int, taker common.Address) ([]byte, error) {
	return designatedSaleParams.Pack(price, taker)
}

// DecodeDesignatedSaleParams returns the price and the only allowed taker of
// a designated sale ask, or ErrInvalidStrategyParams if malformed.
func DecodeDesignatedSaleParams(params []byte) (*big.Int, common.Address, error) {
	values, err := designatedSaleParams.Unpack(params)
	if err != nil {
		return nil, common.Address{}, ErrInvalidStrategyParams
	}
	return values[0].(*big.Int), values[1].(common.Address), nil
}

// DesignatedSale lets only the designated taker buy, at exactly the price.
type DesignatedSale struct{}

func (DesignatedSale) Type() StrategyType {
	return StrategyDesignatedSale
}

func (DesignatedSale) ValidateParams(params []byte) error {
	_, taker, err := DecodeDesignatedSaleParams(params)
	if err != nil {
		return err
	}
	if taker == ZeroAddress {
		return ErrInvalidStrategyParams
	}
	return nil
}

func (DesignatedSale) CanBid(BidContext) bool {
	return false
}

func (DesignatedSale) CanClaim(ctx ClaimContext) (bool, *big.Int, *big.Int) {
	price, taker, err := DecodeDesignatedSaleParams(ctx.Params)
	if err != nil {
		return false, nil, nil
	}
	if !isOpenAt(ctx.Deadline, ctx.Block) || ctx.Bid.IsZero() {
		return false, nil, nil
	}
	if ctx.Bid.Bidder != taker || ctx.Bid.Price.Cmp(price) != 0 {
		return false, nil, nil
	}
	return true, ctx.Bid.Price, ctx.Bid.Amount
}
