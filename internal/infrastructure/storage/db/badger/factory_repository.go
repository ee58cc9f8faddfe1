package dbbadger

import (
	"context"
	"fmt"

	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const factoryKey = "factory"

type factoryRepositoryImpl struct {
	store *badgerhold.Store
}

// NewFactoryRepositoryImpl returns a badger implementation of
// domain.FactoryRepository.
func NewFactoryRepositoryImpl(store *badgerhold.Store) domain.FactoryRepository {
	return factoryRepositoryImpl{store}
}

func (r factoryRepositoryImpl) AddFactory(ctx context.Context, factory *domain.Factory) error {
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, factoryKey, *factory)
	} else {
		err = r.store.Insert(factoryKey, *factory)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrFactoryAlreadyInitialized
		}
		return err
	}
	return nil
}

func (r factoryRepositoryImpl) GetFactory(ctx context.Context) (*domain.Factory, error) {
	return r.getFactory(ctx)
}

func (r factoryRepositoryImpl) UpdateFactory(
	ctx context.Context,
	updateFn func(f *domain.Factory) (*domain.Factory, error),
) error {
	current, err := r.getFactory(ctx)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxUpdate(tx, factoryKey, *updated)
	} else {
		err = r.store.Update(factoryKey, *updated)
	}
	if err != nil {
		return fmt.Errorf("trying to update factory: %w", err)
	}
	return nil
}

func (r factoryRepositoryImpl) getFactory(ctx context.Context) (*domain.Factory, error) {
	var factory domain.Factory
	var err error

	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, factoryKey, &factory)
	} else {
		err = r.store.Get(factoryKey, &factory)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrFactoryNotInitialized
		}
		return nil, err
	}
	return &factory, nil
}
