package inmemory

import (
	"context"
	"sync"

	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
)

type snapshotter interface {
	snapshot() func()
}

type repoManager struct {
	collectionRepository domain.CollectionRepository
	orderRepository      domain.OrderRepository
	factoryRepository    domain.FactoryRepository

	// txLock serializes transactions since maps have no isolation.
	txLock *sync.Mutex
}

func NewRepoManager() ports.RepoManager {
	return &repoManager{
		collectionRepository: NewCollectionRepositoryImpl(),
		orderRepository:      NewOrderRepositoryImpl(),
		factoryRepository:    NewFactoryRepositoryImpl(),
		txLock:               &sync.Mutex{},
	}
}

func (r *repoManager) CollectionRepository() domain.CollectionRepository {
	return r.collectionRepository
}

func (r *repoManager) OrderRepository() domain.OrderRepository {
	return r.orderRepository
}

func (r *repoManager) FactoryRepository() domain.FactoryRepository {
	return r.factoryRepository
}

func (r *repoManager) RunTransaction(
	ctx context.Context,
	_ bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	r.txLock.Lock()
	defer r.txLock.Unlock()

	restoreFns := make([]func(), 0, 3)
	for _, repo := range []interface{}{
		r.collectionRepository, r.orderRepository, r.factoryRepository,
	} {
		if s, ok := repo.(snapshotter); ok {
			restoreFns = append(restoreFns, s.snapshot())
		}
	}

	res, err := handler(ctx)
	if err != nil {
		// Roll back any write made by the handler before failing.
		for _, restore := range restoreFns {
			restore()
		}
		return nil, err
	}
	return res, nil
}

func (r *repoManager) Close() {}
