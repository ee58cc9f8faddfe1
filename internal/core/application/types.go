package application

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
)

type Webhook struct {
	Event    string
	Endpoint string
	Secret   string
}

type WebhookInfo struct {
	Id        string `json:"id"`
	Event     string `json:"event"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"isSecured"`
}

// BidRequest is a bid submitted directly by the bidder.
type BidRequest struct {
	Ask       domain.Ask
	Amount    *big.Int
	Price     *big.Int
	Recipient common.Address
	Referrer  common.Address
}

// BidResult tells whether a bid was settled right away or recorded as the
// new best bid.
type BidResult struct {
	Hash       common.Hash        `json:"hash"`
	Executed   bool               `json:"executed"`
	Order      domain.Order       `json:"order"`
	Settlement *domain.Settlement `json:"settlement,omitempty"`
}

// ClaimResult tells whether a claim settled the order or swept it as
// expired.
type ClaimResult struct {
	Hash       common.Hash        `json:"hash"`
	Claimed    bool               `json:"claimed"`
	Order      domain.Order       `json:"order"`
	Settlement *domain.Settlement `json:"settlement,omitempty"`
}

// OrderFilter restricts the orders returned by ListOrders. Zero values mean
// no filter.
type OrderFilter struct {
	Status *domain.OrderStatus
	Signer common.Address
}

// FactoryConfig is used to initialize the factory at first start.
type FactoryConfig struct {
	Owner                   common.Address
	ChainID                 *big.Int
	BaseURI                 string
	ProtocolFeeRecipient    common.Address
	ProtocolFee             uint8
	OperationalFeeRecipient common.Address
	OperationalFee          uint8
	Strategies              []domain.StrategyType
}

// DeployRequest holds the arguments to deploy a new collection. The
// collection is deployed along with either the batch of TokenIDs minted to
// Owner, or the range [0, ToTokenID) parked.
type DeployRequest struct {
	Owner               common.Address
	Name                string
	Symbol              string
	RoyaltyFeeRecipient common.Address
	RoyaltyFee          uint8
	TokenIDs            []*big.Int
	ToTokenID           *big.Int
}

// FeesInfo holds the factory fees in thousandths along with their
// human readable percentage, ie. 25 -> "2.5".
type FeesInfo struct {
	ProtocolFeeRecipient     common.Address `json:"protocolFeeRecipient"`
	ProtocolFee              uint8          `json:"protocolFee"`
	ProtocolFeePercentage    string         `json:"protocolFeePercentage"`
	OperationalFeeRecipient  common.Address `json:"operationalFeeRecipient"`
	OperationalFee           uint8          `json:"operationalFee"`
	OperationalFeePercentage string         `json:"operationalFeePercentage"`
}

type StrategyInfo struct {
	Name        string         `json:"name"`
	Address     common.Address `json:"address"`
	Whitelisted bool           `json:"whitelisted"`
}

type TokenInfo struct {
	Collection common.Address `json:"collection"`
	TokenID    *big.Int       `json:"tokenId"`
	Owner      common.Address `json:"owner"`
	Exists     bool           `json:"exists"`
	Parked     bool           `json:"parked"`
	Approved   common.Address `json:"approved"`
	URI        string         `json:"uri"`
}

type Nonces struct {
	Nonce       uint64 `json:"nonce"`
	NonceForAll uint64 `json:"nonceForAll"`
}
