package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// StrategyType enumerates the closed set of supported strategies.
type StrategyType int

const (
	StrategyEnglishAuction StrategyType = iota
	StrategyDutchAuction
	StrategyFixedPriceSale
	StrategyDesignatedSale
)

var strategyNames = map[StrategyType]string{
	StrategyEnglishAuction: "EnglishAuction",
	StrategyDutchAuction:   "DutchAuction",
	StrategyFixedPriceSale: "FixedPriceSale",
	StrategyDesignatedSale: "DesignatedSale",
}

// StrategyTypes returns every supported strategy type.
func StrategyTypes() []StrategyType {
	return []StrategyType{
		StrategyEnglishAuction,
		StrategyDutchAuction,
		StrategyFixedPriceSale,
		StrategyDesignatedSale,
	}
}

func (t StrategyType) String() string {
	if name, ok := strategyNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Address returns the identifier asks use to reference the strategy.
func (t StrategyType) Address() common.Address {
	return common.BytesToAddress(
		crypto.Keccak256([]byte("shoyu.strategy." + t.String()))[12:],
	)
}

// StrategyTypeFromAddress returns the strategy identified by addr.
func StrategyTypeFromAddress(addr common.Address) (StrategyType, bool) {
	for _, t := range StrategyTypes() {
		if t.Address() == addr {
			return t, true
		}
	}
	return -1, false
}

// StrategyTypeFromString returns the strategy with the given name.
func StrategyTypeFromString(name string) (StrategyType, bool) {
	for t, n := range strategyNames {
		if n == name {
			return t, true
		}
	}
	return -1, false
}

// BidContext is everything a strategy gets to decide whether a bid can be
// recorded as the new best bid.
type BidContext struct {
	Proxy    common.Address
	Signer   common.Address
	Bidder   common.Address
	Amount   *big.Int
	Price    *big.Int
	BestBid  BestBid
	Params   []byte
	Deadline *big.Int
	Block    uint64
}

// ClaimContext is everything a strategy gets to decide whether a bid can be
// settled. Bid is either the standing best bid or a bid to be executed
// immediately, BestBid is always the standing one.
type ClaimContext struct {
	Proxy    common.Address
	Claimant common.Address
	Bid      BestBid
	BestBid  BestBid
	Params   []byte
	Deadline *big.Int
	Block    uint64
}

// Strategy is a stateless policy governing bid and claim admissibility.
type Strategy interface {
	Type() StrategyType
	// ValidateParams checks the ask params can be decoded by the strategy.
	ValidateParams(params []byte) error
	// CanBid returns whether the bid can become the standing best bid.
	CanBid(ctx BidContext) bool
	// CanClaim returns whether the bid can be settled now, along with the
	// price and amount to settle.
	CanClaim(ctx ClaimContext) (bool, *big.Int, *big.Int)
}

// NewStrategy returns the strategy of the given type.
func NewStrategy(t StrategyType) (Strategy, error) {
	switch t {
	case StrategyEnglishAuction:
		return EnglishAuction{}, nil
	case StrategyDutchAuction:
		return DutchAuction{}, nil
	case StrategyFixedPriceSale:
		return FixedPriceSale{}, nil
	case StrategyDesignatedSale:
		return DesignatedSale{}, nil
	default:
		return nil, ErrInvalidStrategy
	}
}

// NewStrategyFromAddress returns the strategy identified by addr.
func NewStrategyFromAddress(addr common.Address) (Strategy, error) {
	t, ok := StrategyTypeFromAddress(addr)
	if !ok {
		return nil, ErrInvalidStrategy
	}
	return NewStrategy(t)
}

var (
	uint256Type, _ = abi.NewType("uint256", "", nil)
	addressType, _ = abi.NewType("address", "", nil)
)

func blockToInt(block uint64) *big.Int {
	return new(big.Int).SetUint64(block)
}

func isOpenAt(deadline *big.Int, block uint64) bool {
	return deadline != nil && blockToInt(block).Cmp(deadline) <= 0
}

func isClosedAt(deadline *big.Int, block uint64) bool {
	return deadline != nil && blockToInt(block).Cmp(deadline) > 0
}
