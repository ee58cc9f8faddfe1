package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventType identifies the kind of an exchange event.
type EventType string

const (
	EventBid                   EventType = "Bid"
	EventClaim                 EventType = "Claim"
	EventCancel                EventType = "Cancel"
	EventUpdateApprovedBidHash EventType = "UpdateApprovedBidHash"
	EventRoyaltyFeeUpdated     EventType = "RoyaltyFeeUpdated"
	EventCollectionDeployed    EventType = "CollectionDeployed"
	EventApproval              EventType = "Approval"
	EventApprovalForAll        EventType = "ApprovalForAll"
)

// EventTypes returns every event type.
func EventTypes() []EventType {
	return []EventType{
		EventBid, EventClaim, EventCancel, EventUpdateApprovedBidHash,
		EventRoyaltyFeeUpdated, EventCollectionDeployed,
		EventApproval, EventApprovalForAll,
	}
}

// Event is an observable outcome of a state transition. Only the fields
// relevant to its type are set.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"event"`
	Collection common.Address `json:"collection"`
	Block      uint64         `json:"block"`
	Hash       common.Hash    `json:"hash,omitempty"`
	Bidder     common.Address `json:"bidder,omitempty"`
	Amount     *big.Int       `json:"amount,omitempty"`
	Price      *big.Int       `json:"price,omitempty"`
	Recipient  common.Address `json:"recipient,omitempty"`
	Referrer   common.Address `json:"referrer,omitempty"`
	Proxy      common.Address `json:"proxy,omitempty"`
	BidHash    common.Hash    `json:"bidHash,omitempty"`
	Owner      common.Address `json:"owner,omitempty"`
	Spender    common.Address `json:"spender,omitempty"`
	TokenID    *big.Int       `json:"tokenId,omitempty"`
	RoyaltyFee uint8          `json:"royaltyFee,omitempty"`
}
