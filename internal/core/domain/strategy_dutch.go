package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var dutchAuctionParams = abi.Arguments{
	{Name: "startPrice", Type: uint256Type},
	{Name: "endPrice", Type: uint256Type},
	{Name: "startBlock", Type: uint256Type},
}

// EncodeDutchAuctionParams encodes the params of a dutch auction ask.
func EncodeDutchAuctionParams(startPrice, endPrice, startBlock *big.Int) ([]byte, error) {
	return dutchAuctionParams.Pack(startPrice, endPrice, startBlock)
}

// DecodeDutchAuctionParams returns the start price, end price and start
// block of a dutch auction ask, or ErrInvalidStrategyParams if malformed.
func DecodeDutchAuctionParams(params []byte) (startPrice, endPrice, startBlock *big.Int, err error) {
	values, err := dutchAuctionParams.Unpack(params)
	if err != nil {
		return nil, nil, nil, ErrInvalidStrategyParams
	}
	return values[0].(*big.Int), values[1].(*big.Int), values[2].(*big.Int), nil
}

// DutchAuction is a descending price sale: the price decays linearly every
// block from the start price at startBlock down to the end price at the
// deadline. The first bid meeting the current price settles immediately.
type DutchAuction struct{}

func (DutchAuction) Type() StrategyType {
	return StrategyDutchAuction
}

func (DutchAuction) ValidateParams(params []byte) error {
	startPrice, endPrice, _, err := DecodeDutchAuctionParams(params)
	if err != nil {
		return err
	}
	if startPrice.Cmp(endPrice) <= 0 {
		return ErrInvalidStrategyParams
	}
	return nil
}

// CurrentPrice returns the price of a dutch auction at the given block.
func (DutchAuction) CurrentPrice(params []byte, deadline *big.Int, block uint64) (*big.Int, error) {
	startPrice, endPrice, startBlock, err := DecodeDutchAuctionParams(params)
	if err != nil {
		return nil, err
	}
	if startPrice.Cmp(endPrice) <= 0 || startBlock.Cmp(deadline) >= 0 {
		return nil, ErrInvalidStrategyParams
	}

	current := blockToInt(block)
	if current.Cmp(startBlock) <= 0 {
		return new(big.Int).Set(startPrice), nil
	}
	if current.Cmp(deadline) >= 0 {
		current = deadline
	}

	// Decrement per block is floored, the remainder is kept by the seller.
	tickPerBlock := new(big.Int).Sub(startPrice, endPrice)
	tickPerBlock.Quo(tickPerBlock, new(big.Int).Sub(deadline, startBlock))
	elapsed := new(big.Int).Sub(current, startBlock)
	return new(big.Int).Sub(startPrice, elapsed.Mul(elapsed, tickPerBlock)), nil
}

func (DutchAuction) CanBid(BidContext) bool {
	return false
}

func (s DutchAuction) CanClaim(ctx ClaimContext) (bool, *big.Int, *big.Int) {
	if !isOpenAt(ctx.Deadline, ctx.Block) || ctx.Bid.IsZero() {
		return false, nil, nil
	}
	price, err := s.CurrentPrice(ctx.Params, ctx.Deadline, ctx.Block)
	if err != nil {
		return false, nil, nil
	}
	if ctx.Bid.Price.Cmp(price) < 0 {
		return false, nil, nil
	}
	return true, ctx.Bid.Price, ctx.Bid.Amount
}
