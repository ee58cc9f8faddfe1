package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/pkg/mathutil"
)

const (
	// MaxRoyaltyFee is the highest royalty rate a collection can set.
	MaxRoyaltyFee = uint8(250)
	// RoyaltyFeeUnset marks collections deployed without royalties. Such
	// collections can later set any rate up to MaxRoyaltyFee, once.
	RoyaltyFeeUnset = uint8(255)
	// MaxProtocolFee is the highest protocol rate, in permille, the factory
	// owner can set.
	MaxProtocolFee = uint8(100)
	// MaxOperationalFee is the highest operational rate, in permille, the
	// factory owner can set.
	MaxOperationalFee = uint8(100)

	DefaultProtocolFee    = uint8(25)
	DefaultOperationalFee = uint8(5)
)

// Transfer is a single currency movement of a settlement.
type Transfer struct {
	To     common.Address `json:"to"`
	Amount *big.Int       `json:"amount"`
}

// Settlement is the split of a sale price into protocol, operational and
// royalty fees plus seller proceeds. The four amounts always add up to the
// price.
type Settlement struct {
	Price                   *big.Int       `json:"price"`
	ProtocolFeeRecipient    common.Address `json:"protocolFeeRecipient"`
	ProtocolFee             *big.Int       `json:"protocolFee"`
	OperationalFeeRecipient common.Address `json:"operationalFeeRecipient"`
	OperationalFee          *big.Int       `json:"operationalFee"`
	RoyaltyFeeRecipient     common.Address `json:"royaltyFeeRecipient"`
	RoyaltyFee              *big.Int       `json:"royaltyFee"`
	Seller                  common.Address `json:"seller"`
	SellerProceeds          *big.Int       `json:"sellerProceeds"`
}

// NewSettlement splits price according to the factory and collection fee
// configuration. Proceeds go to seller.
func NewSettlement(
	price *big.Int, factory Factory, collection Collection, seller common.Address,
) Settlement {
	proceeds, fees := mathutil.LessFees(
		price,
		uint64(factory.ProtocolFee),
		uint64(factory.OperationalFee),
		uint64(collection.EffectiveRoyaltyFee()),
	)
	return Settlement{
		Price:                   new(big.Int).Set(price),
		ProtocolFeeRecipient:    factory.ProtocolFeeRecipient,
		ProtocolFee:             fees[0],
		OperationalFeeRecipient: factory.OperationalFeeRecipient,
		OperationalFee:          fees[1],
		RoyaltyFeeRecipient:     collection.RoyaltyFeeRecipient,
		RoyaltyFee:              fees[2],
		Seller:                  seller,
		SellerProceeds:          proceeds,
	}
}

// Transfers returns the non-zero currency movements of the settlement in
// order: protocol, operational, royalty and seller.
func (s Settlement) Transfers() []Transfer {
	all := []Transfer{
		{s.ProtocolFeeRecipient, s.ProtocolFee},
		{s.OperationalFeeRecipient, s.OperationalFee},
		{s.RoyaltyFeeRecipient, s.RoyaltyFee},
		{s.Seller, s.SellerProceeds},
	}
	transfers := make([]Transfer, 0, len(all))
	for _, t := range all {
		if t.Amount.Sign() > 0 {
			transfers = append(transfers, t)
		}
	}
	return transfers
}
