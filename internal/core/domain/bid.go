package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
	"github.com/shoyu-network/shoyu-daemon/pkg/mathutil"
)

// BidOrder is a bid counter-signed by the bidder, relayed by a third party.
type BidOrder struct {
	AskHash   common.Hash      `json:"askHash"`
	Signer    common.Address   `json:"signer"`
	Amount    *big.Int         `json:"amount"`
	Price     *big.Int         `json:"price"`
	Recipient common.Address   `json:"recipient"`
	Referrer  common.Address   `json:"referrer"`
	Signature eip712.Signature `json:"signature"`
}

// Hash returns the struct hash of the bid order.
func (b BidOrder) Hash() common.Hash {
	return eip712.HashStruct(
		eip712.BidTypeHash,
		eip712.Bytes32(b.AskHash),
		eip712.Address(b.Signer),
		eip712.Uint256(b.Amount),
		eip712.Uint256(b.Price),
		eip712.Address(b.Recipient),
		eip712.Address(b.Referrer),
	)
}

// Verify checks the bid order was signed by its signer in the given domain.
func (b BidOrder) Verify(domainSeparator common.Hash) error {
	if b.Signer == ZeroAddress {
		return ErrInvalidSigner
	}
	digest := eip712.Digest(domainSeparator, b.Hash())
	if err := eip712.Verify(digest, b.Signer, b.Signature); err != nil {
		return fmt.Errorf("%w: bid %s: %s", ErrUnauthorized, b.Hash().Hex(), err)
	}
	return nil
}

// BestBid is the leading bid of a standing auction. A zero bidder means no
// bid was placed yet.
type BestBid struct {
	Bidder    common.Address `json:"bidder"`
	Amount    *big.Int       `json:"amount"`
	Price     *big.Int       `json:"price"`
	Recipient common.Address `json:"recipient"`
	Referrer  common.Address `json:"referrer"`
	Block     uint64         `json:"block"`
}

// NewBid validates the bid arguments and returns the bid.
func NewBid(
	bidder common.Address, amount, price *big.Int,
	recipient, referrer common.Address, block uint64,
) (BestBid, error) {
	if bidder == ZeroAddress {
		return BestBid{}, ErrInvalidSigner
	}
	if !mathutil.IsPositive(amount) {
		return BestBid{}, ErrInvalidAmount
	}
	if !mathutil.IsNonNegative(price) {
		return BestBid{}, ErrInvalidPrice
	}
	return BestBid{
		Bidder:    bidder,
		Amount:    new(big.Int).Set(amount),
		Price:     new(big.Int).Set(price),
		Recipient: recipient,
		Referrer:  referrer,
		Block:     block,
	}, nil
}

// IsZero returns whether no bid is recorded.
func (b BestBid) IsZero() bool {
	return b.Bidder == ZeroAddress
}

// TokenRecipient returns who receives the asset once the bid settles.
func (b BestBid) TokenRecipient() common.Address {
	if b.Recipient == ZeroAddress {
		return b.Bidder
	}
	return b.Recipient
}

// PriceOrZero returns the bid price, or zero if no bid is recorded.
func (b BestBid) PriceOrZero() *big.Int {
	if b.IsZero() || b.Price == nil {
		return big.NewInt(0)
	}
	return b.Price
}
