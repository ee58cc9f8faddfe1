package dbbadger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const maxTxRetries = 5

type repoManager struct {
	store *badgerhold.Store

	collectionRepository domain.CollectionRepository
	orderRepository      domain.OrderRepository
	factoryRepository    domain.FactoryRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	store, err := createDb(filepath.Join(baseDbDir, "exchange"), logger)
	if err != nil {
		return nil, fmt.Errorf("opening exchange db: %w", err)
	}

	return &repoManager{
		store:                store,
		collectionRepository: NewCollectionRepositoryImpl(store),
		orderRepository:      NewOrderRepositoryImpl(store),
		factoryRepository:    NewFactoryRepositoryImpl(store),
	}, nil
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
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	for i := 0; i < maxTxRetries; i++ {
		tx := r.store.Badger().NewTransaction(!readOnly)
		txCtx := context.WithValue(ctx, "tx", tx)

		res, err := handler(txCtx)
		if err != nil {
			tx.Discard()
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			if errors.Is(err, badger.ErrConflict) {
				log.Debugf("db transaction conflict, retrying (%d/%d)", i+1, maxTxRetries)
				continue
			}
			return nil, err
		}
		return res, nil
	}
	return nil, fmt.Errorf("db transaction failed after %d attempts", maxTxRetries)
}

func (r *repoManager) Close() {
	if err := r.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close exchange db")
	}
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	opts.Compression = options.ZSTD

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}

func txFromContext(ctx context.Context) *badger.Txn {
	if tx, ok := ctx.Value("tx").(*badger.Txn); ok {
		return tx
	}
	return nil
}
