package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// CollectionRepository is the abstraction for any kind of database intended
// to persist Collections.
type CollectionRepository interface {
	// AddCollection stores a new collection, it fails if one with the same
	// address already exists.
	AddCollection(ctx context.Context, collection *Collection) error
	// GetCollection returns the collection with the given address.
	GetCollection(ctx context.Context, address common.Address) (*Collection, error)
	// GetAllCollections returns all the stored collections.
	GetAllCollections(ctx context.Context) ([]Collection, error)
	// GetCollectionsByOwner returns the collections owned by the given
	// address.
	GetCollectionsByOwner(ctx context.Context, owner common.Address) ([]Collection, error)
	// UpdateCollection allows to commit multiple changes to the same
	// collection in a transactional way.
	UpdateCollection(
		ctx context.Context,
		address common.Address,
		updateFn func(c *Collection) (*Collection, error),
	) error
}
