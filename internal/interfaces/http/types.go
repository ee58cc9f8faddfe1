package httpinterface

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
)

type DeployCollectionRequest struct {
	Owner               common.Address `json:"owner"`
	Name                string         `json:"name"`
	Symbol              string         `json:"symbol"`
	RoyaltyFeeRecipient common.Address `json:"royaltyFeeRecipient"`
	RoyaltyFee          uint8          `json:"royaltyFee"`
	TokenIDs            []*big.Int     `json:"tokenIds,omitempty"`
	// ToTokenID, when set, parks the range [0, ToTokenID) instead of minting
	// TokenIDs.
	ToTokenID *big.Int `json:"toTokenId,omitempty"`
}

func (r DeployCollectionRequest) toApplication() application.DeployRequest {
	return application.DeployRequest{
		Owner:               r.Owner,
		Name:                r.Name,
		Symbol:              r.Symbol,
		RoyaltyFeeRecipient: r.RoyaltyFeeRecipient,
		RoyaltyFee:          r.RoyaltyFee,
		TokenIDs:            r.TokenIDs,
		ToTokenID:           r.ToTokenID,
	}
}

type CollectionResponse struct {
	domain.Collection
	DomainSeparator common.Hash `json:"domainSeparator"`
}

type RoyaltyRequest struct {
	Fee uint8 `json:"fee"`
}

type RoyaltyResponse struct {
	Recipient  common.Address `json:"recipient"`
	Amount     *big.Int       `json:"amount"`
	RoyaltyFee uint8          `json:"royaltyFee"`
}

type ParkRequest struct {
	ToTokenID *big.Int `json:"toTokenId"`
}

type MintRequest struct {
	To       common.Address `json:"to"`
	TokenIDs []*big.Int     `json:"tokenIds"`
}

type BurnRequest struct {
	TokenIDs []*big.Int `json:"tokenIds"`
}

type TransferRequest struct {
	From    common.Address `json:"from"`
	To      common.Address `json:"to"`
	TokenID *big.Int       `json:"tokenId"`
}

type BaseURIRequest struct {
	URI string `json:"uri"`
}

type TokenURIRequest struct {
	TokenID *big.Int `json:"tokenId"`
	URI     string   `json:"uri"`
}

type BidRequest struct {
	Ask       domain.Ask     `json:"ask"`
	Amount    *big.Int       `json:"amount"`
	Price     *big.Int       `json:"price"`
	Recipient common.Address `json:"recipient"`
	Referrer  common.Address `json:"referrer"`
}

func (r BidRequest) toApplication() application.BidRequest {
	return application.BidRequest{
		Ask:       r.Ask,
		Amount:    r.Amount,
		Price:     r.Price,
		Recipient: r.Recipient,
		Referrer:  r.Referrer,
	}
}

type BidOrderRequest struct {
	Ask domain.Ask      `json:"ask"`
	Bid domain.BidOrder `json:"bid"`
}

type AskRequest struct {
	Ask domain.Ask `json:"ask"`
}

type ApprovedBidHashRequest struct {
	AskHash common.Hash    `json:"askHash"`
	Bidder  common.Address `json:"bidder"`
	BidHash common.Hash    `json:"bidHash"`
}

type ApprovedBidHashResponse struct {
	BidHash common.Hash `json:"bidHash"`
}

type OrderResponse struct {
	domain.Order
	IsCancelledOrClaimed bool `json:"isCancelledOrClaimed"`
}

type PermitRequest struct {
	Spender   common.Address   `json:"spender"`
	TokenID   *big.Int         `json:"tokenId"`
	Deadline  *big.Int         `json:"deadline"`
	Signature eip712.Signature `json:"signature"`
}

type PermitAllRequest struct {
	Owner     common.Address   `json:"owner"`
	Spender   common.Address   `json:"spender"`
	Deadline  *big.Int         `json:"deadline"`
	Signature eip712.Signature `json:"signature"`
}

type StrategyRequest struct {
	// Strategy is either the name or the address of the strategy.
	Strategy    string `json:"strategy"`
	Whitelisted bool   `json:"whitelisted"`
}

func (r StrategyRequest) address() (common.Address, error) {
	if t, ok := domain.StrategyTypeFromString(r.Strategy); ok {
		return t.Address(), nil
	}
	if common.IsHexAddress(r.Strategy) {
		return common.HexToAddress(r.Strategy), nil
	}
	return common.Address{}, fmt.Errorf("unknown strategy %q", r.Strategy)
}

type DeployerRequest struct {
	Deployer    common.Address `json:"deployer"`
	Whitelisted bool           `json:"whitelisted"`
}

const (
	FeeKindProtocol    = "protocol"
	FeeKindOperational = "operational"
)

type FeeRequest struct {
	Kind      string         `json:"kind"`
	Recipient common.Address `json:"recipient"`
	Fee       uint8          `json:"fee"`
}

type BlockResponse struct {
	Block uint64 `json:"block"`
}

type MineRequest struct {
	Blocks uint64 `json:"blocks"`
}

type FaucetRequest struct {
	Currency common.Address `json:"currency"`
	To       common.Address `json:"to"`
	Amount   *big.Int       `json:"amount"`
}

type BalanceResponse struct {
	Balance *big.Int `json:"balance"`
}

type WebhookRequest struct {
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type WebhookResponse struct {
	Id string `json:"id"`
}
