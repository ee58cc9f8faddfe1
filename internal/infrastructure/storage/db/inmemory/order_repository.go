package inmemory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
)

type orderKey struct {
	collection common.Address
	hash       common.Hash
}

type orderRepositoryImpl struct {
	orders map[orderKey]*domain.Order

	lock *sync.RWMutex
}

// NewOrderRepositoryImpl returns a new empty in memory order repository.
func NewOrderRepositoryImpl() domain.OrderRepository {
	return &orderRepositoryImpl{
		orders: make(map[orderKey]*domain.Order),
		lock:   &sync.RWMutex{},
	}
}

func (r *orderRepositoryImpl) GetOrder(
	_ context.Context, collection common.Address, hash common.Hash,
) (*domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	order, ok := r.orders[orderKey{collection, hash}]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order.Copy(), nil
}

func (r *orderRepositoryImpl) GetOrCreateOrder(
	_ context.Context, collection common.Address, hash common.Hash,
) (*domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.getOrCreateOrder(collection, hash), nil
}

func (r *orderRepositoryImpl) GetAllOrders(
	_ context.Context, collection common.Address,
) ([]domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.findOrders(collection, func(*domain.Order) bool { return true }), nil
}

func (r *orderRepositoryImpl) GetOrdersByStatus(
	_ context.Context, collection common.Address, status domain.OrderStatus,
) ([]domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.findOrders(collection, func(o *domain.Order) bool {
		return o.Status == status
	}), nil
}

func (r *orderRepositoryImpl) GetOrdersBySigner(
	_ context.Context, collection, signer common.Address,
) ([]domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.findOrders(collection, func(o *domain.Order) bool {
		return o.Ask != nil && o.Ask.Signer == signer
	}), nil
}

func (r *orderRepositoryImpl) UpdateOrder(
	_ context.Context,
	collection common.Address,
	hash common.Hash,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	updated, err := updateFn(r.getOrCreateOrder(collection, hash))
	if err != nil {
		return err
	}

	r.orders[orderKey{collection, hash}] = updated.Copy()
	return nil
}

func (r *orderRepositoryImpl) getOrCreateOrder(
	collection common.Address, hash common.Hash,
) *domain.Order {
	if order, ok := r.orders[orderKey{collection, hash}]; ok {
		return order.Copy()
	}
	return domain.NewOrder(collection, hash)
}

func (r *orderRepositoryImpl) findOrders(
	collection common.Address, filter func(o *domain.Order) bool,
) []domain.Order {
	orders := make([]domain.Order, 0)
	for key, order := range r.orders {
		if key.collection != collection || !filter(order) {
			continue
		}
		orders = append(orders, *order.Copy())
	}
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].UpdatedAt == orders[j].UpdatedAt {
			return orders[i].Hash.Hex() < orders[j].Hash.Hex()
		}
		return orders[i].UpdatedAt < orders[j].UpdatedAt
	})
	return orders
}

// snapshot returns a function that restores the orders as they are now.
// Stored orders are never mutated in place, so a shallow copy is enough.
func (r *orderRepositoryImpl) snapshot() func() {
	r.lock.RLock()
	orders := maps.Clone(r.orders)
	r.lock.RUnlock()

	return func() {
		r.lock.Lock()
		r.orders = orders
		r.lock.Unlock()
	}
}
