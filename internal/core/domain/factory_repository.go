package domain

import "context"

// FactoryRepository is the abstraction for any kind of database intended to
// persist the singleton Factory.
type FactoryRepository interface {
	// AddFactory stores the factory, it fails if already initialized.
	AddFactory(ctx context.Context, factory *Factory) error
	// GetFactory returns the factory or ErrFactoryNotInitialized.
	GetFactory(ctx context.Context) (*Factory, error)
	// UpdateFactory allows to commit multiple changes to the factory in a
	// transactional way.
	UpdateFactory(
		ctx context.Context,
		updateFn func(f *Factory) (*Factory, error),
	) error
}
