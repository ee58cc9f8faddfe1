package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// OrderStatus is the lifecycle state of an ask order.
type OrderStatus int

const (
	// OrderStatusOpen is the initial state, no bid and not terminal.
	OrderStatusOpen OrderStatus = iota
	// OrderStatusBidding means a standing best bid is recorded.
	OrderStatusBidding
	// OrderStatusClaimed is terminal, the order settled.
	OrderStatusClaimed
	// OrderStatusCancelled is terminal, the order was cancelled by its signer
	// or swept after expiring without bids.
	OrderStatusCancelled
)

var orderStatusNames = map[OrderStatus]string{
	OrderStatusOpen:      "Open",
	OrderStatusBidding:   "Bidding",
	OrderStatusClaimed:   "Claimed",
	OrderStatusCancelled: "Cancelled",
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// OrderStatusFromString is the inverse of OrderStatus.String.
func OrderStatusFromString(s string) (OrderStatus, bool) {
	for status, name := range orderStatusNames {
		if name == s {
			return status, true
		}
	}
	return -1, false
}

// Order is the state of an ask order identified by its hash within a
// collection.
type Order struct {
	Hash         common.Hash    `json:"hash"`
	Collection   common.Address `json:"collection"`
	Ask          *Ask           `json:"ask,omitempty"`
	Status       OrderStatus    `json:"status"`
	BestBid      BestBid        `json:"bestBid"`
	AmountFilled *big.Int       `json:"amountFilled"`
	// Escrow is the amount held for the standing best bid, in the ask's
	// currency.
	Escrow    *big.Int `json:"escrow"`
	UpdatedAt uint64   `json:"updatedAt"`
}

// NewOrder returns an open order for the given hash.
func NewOrder(collection common.Address, hash common.Hash) *Order {
	return &Order{
		Hash:         hash,
		Collection:   collection,
		Status:       OrderStatusOpen,
		AmountFilled: big.NewInt(0),
		Escrow:       big.NewInt(0),
	}
}

// Copy returns a deep copy of the order.
func (o *Order) Copy() *Order {
	c := *o
	if o.Ask != nil {
		ask := *o.Ask
		c.Ask = &ask
	}
	c.AmountFilled = copyInt(o.AmountFilled)
	c.Escrow = copyInt(o.Escrow)
	c.BestBid.Amount = copyInt(o.BestBid.Amount)
	c.BestBid.Price = copyInt(o.BestBid.Price)
	return &c
}

// IsCancelledOrClaimed returns whether the order reached a terminal state.
func (o *Order) IsCancelledOrClaimed() bool {
	return o.Status == OrderStatusClaimed || o.Status == OrderStatusCancelled
}

// IsOpen ...
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

// IsBidding ...
func (o *Order) IsBidding() bool {
	return o.Status == OrderStatusBidding
}

// IsClaimed ...
func (o *Order) IsClaimed() bool {
	return o.Status == OrderStatusClaimed
}

// IsCancelled ...
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// RemainingAmount returns how many units of the ask are still unfilled.
func (o *Order) RemainingAmount(ask Ask) *big.Int {
	return new(big.Int).Sub(ask.Amount, o.filled())
}

// CanFill returns whether amount units can still be sold.
func (o *Order) CanFill(ask Ask, amount *big.Int) error {
	if o.IsCancelledOrClaimed() {
		return ErrForbidden
	}
	if amount.Cmp(o.RemainingAmount(ask)) > 0 {
		return ErrInvalidAmount
	}
	return nil
}

// PlaceBid records bid as the new best bid and returns the one it replaces.
func (o *Order) PlaceBid(ask Ask, bid BestBid) (BestBid, error) {
	if err := o.CanFill(ask, bid.Amount); err != nil {
		return BestBid{}, err
	}

	previous := o.BestBid
	o.Ask = &ask
	o.BestBid = bid
	o.Escrow = new(big.Int).Set(bid.Price)
	o.Status = OrderStatusBidding
	o.UpdatedAt = bid.Block
	return previous, nil
}

// Fill settles amount units of the ask. The order is claimed once every unit
// is sold. Returns whether the order reached the terminal state.
func (o *Order) Fill(ask Ask, amount *big.Int, block uint64) (bool, error) {
	if err := o.CanFill(ask, amount); err != nil {
		return false, err
	}

	o.Ask = &ask
	o.AmountFilled = new(big.Int).Add(o.filled(), amount)
	o.UpdatedAt = block
	if o.AmountFilled.Cmp(ask.Amount) >= 0 {
		o.Status = OrderStatusClaimed
		return true, nil
	}
	return false, nil
}

// Claim settles the standing best bid. The order becomes terminal and the
// escrow is released.
func (o *Order) Claim(ask Ask, block uint64) error {
	if o.IsCancelledOrClaimed() {
		return ErrForbidden
	}
	if o.BestBid.IsZero() {
		return ErrFailure
	}

	o.Ask = &ask
	o.AmountFilled = new(big.Int).Add(o.filled(), o.BestBid.Amount)
	o.Escrow = big.NewInt(0)
	o.Status = OrderStatusClaimed
	o.UpdatedAt = block
	return nil
}

// Cancel brings the order to the Cancelled state on behalf of its signer.
// Cancellation is not allowed once a bid has been placed.
func (o *Order) Cancel(ask Ask, caller common.Address, block uint64) error {
	if o.IsCancelledOrClaimed() {
		return ErrForbidden
	}
	if caller != ask.Signer {
		return ErrForbidden
	}
	if !o.BestBid.IsZero() {
		return ErrBidExists
	}

	o.Ask = &ask
	o.Status = OrderStatusCancelled
	o.UpdatedAt = block
	return nil
}

// Sweep cancels an order that expired without any bid.
func (o *Order) Sweep(ask Ask, block uint64) error {
	if o.IsCancelledOrClaimed() {
		return ErrForbidden
	}
	if !o.BestBid.IsZero() || !ask.IsExpired(block) {
		return ErrFailure
	}

	o.Ask = &ask
	o.Status = OrderStatusCancelled
	o.UpdatedAt = block
	return nil
}

func (o *Order) filled() *big.Int {
	if o.AmountFilled == nil {
		return big.NewInt(0)
	}
	return o.AmountFilled
}

func copyInt(x *big.Int) *big.Int {
	if x == nil {
		return nil
	}
	return new(big.Int).Set(x)
}
