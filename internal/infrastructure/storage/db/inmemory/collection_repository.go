package inmemory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
)

type collectionRepositoryImpl struct {
	collections map[common.Address]*domain.Collection

	lock *sync.RWMutex
}

// NewCollectionRepositoryImpl returns a new empty in memory collection
// repository.
func NewCollectionRepositoryImpl() domain.CollectionRepository {
	return &collectionRepositoryImpl{
		collections: make(map[common.Address]*domain.Collection),
		lock:        &sync.RWMutex{},
	}
}

func (r *collectionRepositoryImpl) AddCollection(
	_ context.Context, collection *domain.Collection,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.collections[collection.Address]; ok {
		return domain.ErrCollectionAlreadyExists
	}
	r.collections[collection.Address] = collection.Copy()
	return nil
}

func (r *collectionRepositoryImpl) GetCollection(
	_ context.Context, address common.Address,
) (*domain.Collection, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	c, ok := r.collections[address]
	if !ok {
		return nil, domain.ErrCollectionNotFound
	}
	return c.Copy(), nil
}

func (r *collectionRepositoryImpl) GetAllCollections(
	_ context.Context,
) ([]domain.Collection, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.findCollections(func(*domain.Collection) bool { return true }), nil
}

func (r *collectionRepositoryImpl) GetCollectionsByOwner(
	_ context.Context, owner common.Address,
) ([]domain.Collection, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.findCollections(func(c *domain.Collection) bool {
		return c.Owner == owner
	}), nil
}

func (r *collectionRepositoryImpl) UpdateCollection(
	_ context.Context,
	address common.Address,
	updateFn func(c *domain.Collection) (*domain.Collection, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	current, ok := r.collections[address]
	if !ok {
		return domain.ErrCollectionNotFound
	}

	updated, err := updateFn(current.Copy())
	if err != nil {
		return err
	}

	r.collections[address] = updated.Copy()
	return nil
}

func (r *collectionRepositoryImpl) findCollections(
	filter func(c *domain.Collection) bool,
) []domain.Collection {
	collections := make([]domain.Collection, 0, len(r.collections))
	for _, c := range r.collections {
		if filter(c) {
			collections = append(collections, *c.Copy())
		}
	}
	sort.SliceStable(collections, func(i, j int) bool {
		if collections[i].CreatedAt == collections[j].CreatedAt {
			return collections[i].Address.Hex() < collections[j].Address.Hex()
		}
		return collections[i].CreatedAt < collections[j].CreatedAt
	})
	return collections
}

func (r *collectionRepositoryImpl) snapshot() func() {
	r.lock.RLock()
	collections := maps.Clone(r.collections)
	r.lock.RUnlock()

	return func() {
		r.lock.Lock()
		r.collections = collections
		r.lock.Unlock()
	}
}
