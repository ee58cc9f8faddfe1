package ports

import (
	"context"

	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
)

// RepoManager interface defines the methods for collections, orders and the
// factory.
type RepoManager interface {
	CollectionRepository() domain.CollectionRepository
	OrderRepository() domain.OrderRepository
	FactoryRepository() domain.FactoryRepository

	// RunTransaction runs the handler within a single db transaction. The
	// repositories pick the transaction from the context given to the handler.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)

	Close()
}
