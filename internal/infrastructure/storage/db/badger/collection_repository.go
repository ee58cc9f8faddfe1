package dbbadger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// collectionRecord is the stored form of a collection. Queryable fields are
// denormalized as strings.
type collectionRecord struct {
	Address    string
	Owner      string
	CreatedAt  int64
	Collection domain.Collection
}

type collectionRepositoryImpl struct {
	store *badgerhold.Store
}

// NewCollectionRepositoryImpl returns a badger implementation of
// domain.CollectionRepository.
func NewCollectionRepositoryImpl(store *badgerhold.Store) domain.CollectionRepository {
	return collectionRepositoryImpl{store}
}

func (r collectionRepositoryImpl) AddCollection(
	ctx context.Context, collection *domain.Collection,
) error {
	record := newCollectionRecord(*collection)

	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, record.Address, record)
	} else {
		err = r.store.Insert(record.Address, record)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrCollectionAlreadyExists
		}
		return err
	}
	return nil
}

func (r collectionRepositoryImpl) GetCollection(
	ctx context.Context, address common.Address,
) (*domain.Collection, error) {
	return r.getCollection(ctx, address)
}

func (r collectionRepositoryImpl) GetAllCollections(
	ctx context.Context,
) ([]domain.Collection, error) {
	query := badgerhold.Where("CreatedAt").Ge(int64(0)).SortBy("CreatedAt", "Address")
	return r.findCollections(ctx, query)
}

func (r collectionRepositoryImpl) GetCollectionsByOwner(
	ctx context.Context, owner common.Address,
) ([]domain.Collection, error) {
	query := badgerhold.Where("Owner").Eq(owner.Hex()).SortBy("CreatedAt", "Address")
	return r.findCollections(ctx, query)
}

func (r collectionRepositoryImpl) UpdateCollection(
	ctx context.Context,
	address common.Address,
	updateFn func(c *domain.Collection) (*domain.Collection, error),
) error {
	current, err := r.getCollection(ctx, address)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	return r.updateCollection(ctx, *updated)
}

func (r collectionRepositoryImpl) getCollection(
	ctx context.Context, address common.Address,
) (*domain.Collection, error) {
	var record collectionRecord
	var err error

	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, address.Hex(), &record)
	} else {
		err = r.store.Get(address.Hex(), &record)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, err
	}

	return &record.Collection, nil
}

func (r collectionRepositoryImpl) updateCollection(
	ctx context.Context, collection domain.Collection,
) error {
	record := newCollectionRecord(collection)

	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxUpdate(tx, record.Address, record)
	} else {
		err = r.store.Update(record.Address, record)
	}
	if err != nil {
		return fmt.Errorf("trying to update collection %s: %w", record.Address, err)
	}
	return nil
}

func (r collectionRepositoryImpl) findCollections(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Collection, error) {
	var records []collectionRecord
	var err error

	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &records, query)
	} else {
		err = r.store.Find(&records, query)
	}
	if err != nil {
		return nil, err
	}

	collections := make([]domain.Collection, 0, len(records))
	for _, record := range records {
		collections = append(collections, record.Collection)
	}
	return collections, nil
}

func newCollectionRecord(c domain.Collection) collectionRecord {
	return collectionRecord{
		Address:    c.Address.Hex(),
		Owner:      c.Owner.Hex(),
		CreatedAt:  c.CreatedAt,
		Collection: c,
	}
}
