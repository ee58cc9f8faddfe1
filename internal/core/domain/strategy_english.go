package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var englishAuctionParams = abi.Arguments{
	{Name: "minPrice", Type: uint256Type},
}

// EncodeEnglishAuctionParams encodes the params of an english auction ask.
func EncodeEnglishAuctionParams(minPrice *big.Int) ([]byte, error) {
	return englishAuctionParams.Pack(minPrice)
}

// DecodeEnglishAuctionParams returns the reserve price of an english auction
// ask, or ErrInvalidStrategyParams if malformed.
func DecodeEnglishAuctionParams(params []byte) (minPrice *big.Int, err error) {
	values, err := englishAuctionParams.Unpack(params)
	if err != nil {
		return nil, ErrInvalidStrategyParams
	}
	return values[0].(*big.Int), nil
}

// EnglishAuction is a standing ascending auction: bids must beat the best
// bid (or meet the minimum price) until the deadline, the best bid can be
// claimed once the deadline has passed.
type EnglishAuction struct{}

func (EnglishAuction) Type() StrategyType {
	return StrategyEnglishAuction
}

func (EnglishAuction) ValidateParams(params []byte) error {
	_, err := DecodeEnglishAuctionParams(params)
	return err
}

func (EnglishAuction) CanBid(ctx BidContext) bool {
	minPrice, err := DecodeEnglishAuctionParams(ctx.Params)
	if err != nil {
		return false
	}
	if !isOpenAt(ctx.Deadline, ctx.Block) {
		return false
	}
	if ctx.Price == nil || ctx.Price.Sign() <= 0 {
		return false
	}
	if ctx.BestBid.IsZero() {
		return ctx.Price.Cmp(minPrice) >= 0
	}
	return ctx.Price.Cmp(ctx.BestBid.Price) > 0
}

func (EnglishAuction) CanClaim(ctx ClaimContext) (bool, *big.Int, *big.Int) {
	if _, err := DecodeEnglishAuctionParams(ctx.Params); err != nil {
		return false, nil, nil
	}
	if !isClosedAt(ctx.Deadline, ctx.Block) || ctx.Bid.IsZero() {
		return false, nil, nil
	}
	// Only the standing best bid settles an english auction.
	if !isSameBid(ctx.Bid, ctx.BestBid) {
		return false, nil, nil
	}
	return true, ctx.Bid.Price, ctx.Bid.Amount
}

func isSameBid(a, b BestBid) bool {
	return a.Bidder == b.Bidder && a.Block == b.Block &&
		a.PriceOrZero().Cmp(b.PriceOrZero()) == 0
}
