package dbbadger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// orderRecord is the stored form of an order. Queryable fields are
// denormalized as strings.
type orderRecord struct {
	Key        string
	Collection string
	Hash       string
	Signer     string
	Status     int
	UpdatedAt  uint64
	Order      domain.Order
}

type orderRepositoryImpl struct {
	store *badgerhold.Store
}

// NewOrderRepositoryImpl returns a badger implementation of
// domain.OrderRepository.
func NewOrderRepositoryImpl(store *badgerhold.Store) domain.OrderRepository {
	return orderRepositoryImpl{store}
}

func (r orderRepositoryImpl) GetOrder(
	ctx context.Context, collection common.Address, hash common.Hash,
) (*domain.Order, error) {
	order, err := r.getOrder(ctx, collection, hash)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r orderRepositoryImpl) GetOrCreateOrder(
	ctx context.Context, collection common.Address, hash common.Hash,
) (*domain.Order, error) {
	return r.getOrCreateOrder(ctx, collection, hash)
}

func (r orderRepositoryImpl) GetAllOrders(
	ctx context.Context, collection common.Address,
) ([]domain.Order, error) {
	query := badgerhold.Where("Collection").Eq(collection.Hex()).
		SortBy("UpdatedAt", "Hash")
	return r.findOrders(ctx, query)
}

func (r orderRepositoryImpl) GetOrdersByStatus(
	ctx context.Context, collection common.Address, status domain.OrderStatus,
) ([]domain.Order, error) {
	query := badgerhold.Where("Collection").Eq(collection.Hex()).
		And("Status").Eq(int(status)).
		SortBy("UpdatedAt", "Hash")
	return r.findOrders(ctx, query)
}

func (r orderRepositoryImpl) GetOrdersBySigner(
	ctx context.Context, collection, signer common.Address,
) ([]domain.Order, error) {
	query := badgerhold.Where("Collection").Eq(collection.Hex()).
		And("Signer").Eq(signer.Hex()).
		SortBy("UpdatedAt", "Hash")
	return r.findOrders(ctx, query)
}

func (r orderRepositoryImpl) UpdateOrder(
	ctx context.Context,
	collection common.Address,
	hash common.Hash,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	current, err := r.getOrCreateOrder(ctx, collection, hash)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	return r.upsertOrder(ctx, *updated)
}

func (r orderRepositoryImpl) getOrCreateOrder(
	ctx context.Context, collection common.Address, hash common.Hash,
) (*domain.Order, error) {
	order, err := r.getOrder(ctx, collection, hash)
	if err != nil {
		return nil, err
	}
	if order == nil {
		order = domain.NewOrder(collection, hash)
	}
	return order, nil
}

func (r orderRepositoryImpl) getOrder(
	ctx context.Context, collection common.Address, hash common.Hash,
) (*domain.Order, error) {
	var record orderRecord
	var err error

	key := orderKey(collection, hash)
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, key, &record)
	} else {
		err = r.store.Get(key, &record)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &record.Order, nil
}

func (r orderRepositoryImpl) upsertOrder(ctx context.Context, order domain.Order) error {
	record := newOrderRecord(order)

	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxUpsert(tx, record.Key, record)
	} else {
		err = r.store.Upsert(record.Key, record)
	}
	if err != nil {
		return fmt.Errorf("trying to update order %s: %w", record.Hash, err)
	}
	return nil
}

func (r orderRepositoryImpl) findOrders(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Order, error) {
	var records []orderRecord
	var err error

	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &records, query)
	} else {
		err = r.store.Find(&records, query)
	}
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(records))
	for _, record := range records {
		orders = append(orders, record.Order)
	}
	return orders, nil
}

func newOrderRecord(o domain.Order) orderRecord {
	var signer string
	if o.Ask != nil {
		signer = o.Ask.Signer.Hex()
	}
	return orderRecord{
		Key:        orderKey(o.Collection, o.Hash),
		Collection: o.Collection.Hex(),
		Hash:       o.Hash.Hex(),
		Signer:     signer,
		Status:     int(o.Status),
		UpdatedAt:  o.UpdatedAt,
		Order:      o,
	}
}

func orderKey(collection common.Address, hash common.Hash) string {
	return fmt.Sprintf("%s:%s", collection.Hex(), hash.Hex())
}
