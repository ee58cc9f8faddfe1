package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// OrderRepository is the abstraction for any kind of database intended to
// persist the state of ask orders, scoped by collection.
type OrderRepository interface {
	// GetOrder returns the order with the given hash.
	GetOrder(ctx context.Context, collection common.Address, hash common.Hash) (*Order, error)
	// GetOrCreateOrder returns the order with the given hash, or a new open
	// one if not found. New orders are not persisted until updated.
	GetOrCreateOrder(ctx context.Context, collection common.Address, hash common.Hash) (*Order, error)
	// GetAllOrders returns all the orders of the given collection.
	GetAllOrders(ctx context.Context, collection common.Address) ([]Order, error)
	// GetOrdersByStatus returns the orders of the given collection in the
	// given state.
	GetOrdersByStatus(ctx context.Context, collection common.Address, status OrderStatus) ([]Order, error)
	// GetOrdersBySigner returns the orders of the given collection signed by
	// the given address.
	GetOrdersBySigner(ctx context.Context, collection, signer common.Address) ([]Order, error)
	// UpdateOrder allows to commit multiple changes to the same order in a
	// transactional way. If not found, the order is created.
	UpdateOrder(
		ctx context.Context,
		collection common.Address,
		hash common.Hash,
		updateFn func(o *Order) (*Order, error),
	) error
}
