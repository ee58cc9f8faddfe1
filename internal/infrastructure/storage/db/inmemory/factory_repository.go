package inmemory

import (
	"context"
	"sync"

	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
)

type factoryRepositoryImpl struct {
	factory *domain.Factory

	lock *sync.RWMutex
}

// NewFactoryRepositoryImpl returns an in memory factory repository with no
// factory initialized.
func NewFactoryRepositoryImpl() domain.FactoryRepository {
	return &factoryRepositoryImpl{lock: &sync.RWMutex{}}
}

func (r *factoryRepositoryImpl) AddFactory(
	_ context.Context, factory *domain.Factory,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.factory != nil {
		return domain.ErrFactoryAlreadyInitialized
	}
	r.factory = factory.Copy()
	return nil
}

func (r *factoryRepositoryImpl) GetFactory(_ context.Context) (*domain.Factory, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.factory == nil {
		return nil, domain.ErrFactoryNotInitialized
	}
	return r.factory.Copy(), nil
}

func (r *factoryRepositoryImpl) UpdateFactory(
	_ context.Context,
	updateFn func(f *domain.Factory) (*domain.Factory, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.factory == nil {
		return domain.ErrFactoryNotInitialized
	}

	updated, err := updateFn(r.factory.Copy())
	if err != nil {
		return err
	}
	r.factory = updated.Copy()
	return nil
}

func (r *factoryRepositoryImpl) snapshot() func() {
	r.lock.RLock()
	factory := r.factory
	r.lock.RUnlock()

	return func() {
		r.lock.Lock()
		r.factory = factory
		r.lock.Unlock()
	}
}
