package application

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	"github.com/shoyu-network/shoyu-daemon/pkg/mathutil"
	"github.com/shoyu-network/shoyu-daemon/pkg/stats"
	log "github.com/sirupsen/logrus"
)

// OperatorService defines the methods of the application layer to
// administrate the factory and the collections deployed with it.
type OperatorService interface {
	// Factory
	InitFactory(ctx context.Context, cfg FactoryConfig) (*domain.Factory, error)
	GetFactory(ctx context.Context) (*domain.Factory, error)
	SetStrategyWhitelisted(
		ctx context.Context, caller, strategy common.Address, whitelisted bool,
	) error
	ListStrategies(ctx context.Context) ([]StrategyInfo, error)
	SetDeployerWhitelisted(
		ctx context.Context, caller, deployer common.Address, whitelisted bool,
	) error
	GetFees(ctx context.Context) (*FeesInfo, error)
	SetProtocolFee(
		ctx context.Context, caller, recipient common.Address, fee uint8,
	) (*FeesInfo, error)
	SetOperationalFee(
		ctx context.Context, caller, recipient common.Address, fee uint8,
	) (*FeesInfo, error)
	SetFactoryBaseURI(ctx context.Context, caller common.Address, uri string) error

	// Collections
	DeployCollectionAndMintBatch(
		ctx context.Context, caller common.Address, req DeployRequest,
	) (*domain.Collection, error)
	DeployCollectionAndPark(
		ctx context.Context, caller common.Address, req DeployRequest,
	) (*domain.Collection, error)
	GetCollection(ctx context.Context, collection common.Address) (*domain.Collection, error)
	ListCollections(ctx context.Context, owner common.Address) ([]domain.Collection, error)
	SetRoyaltyFee(
		ctx context.Context, collection, caller common.Address, fee uint8,
	) error
	RoyaltyInfo(
		ctx context.Context, collection common.Address, salePrice *big.Int,
	) (common.Address, *big.Int, error)
	ParkTokenIds(
		ctx context.Context, collection, caller common.Address, toTokenID *big.Int,
	) error
	Parked(ctx context.Context, collection common.Address, tokenID *big.Int) (bool, error)
	Mint(
		ctx context.Context, collection, caller, to common.Address,
		tokenIDs ...*big.Int,
	) error
	Burn(
		ctx context.Context, collection, caller common.Address, tokenIDs ...*big.Int,
	) error
	TransferToken(
		ctx context.Context, collection, caller, from, to common.Address,
		tokenID *big.Int,
	) error
	SetBaseURI(ctx context.Context, collection, caller common.Address, uri string) error
	SetTokenURI(
		ctx context.Context, collection, caller common.Address,
		tokenID *big.Int, uri string,
	) error
	GetToken(
		ctx context.Context, collection common.Address, tokenID *big.Int,
	) (*TokenInfo, error)

	// Currencies
	Faucet(ctx context.Context, currency, to common.Address, amount *big.Int) error
	BalanceOf(ctx context.Context, currency, owner common.Address) (*big.Int, error)

	// MineBlocks advances a manual clock, it fails for any other clock.
	MineBlocks(ctx context.Context, blocks uint64) (uint64, error)
}

type blockMiner interface {
	Mine(blocks uint64) uint64
}

type operatorService struct {
	repoManager   ports.RepoManager
	tokens        ports.TokenLedger
	currencies    ports.CurrencyLedger
	clock         ports.BlockClock
	pubsub        PubSubService
	faucetEnabled bool

	lock *sync.Mutex
}

func NewOperatorService(
	repoManager ports.RepoManager,
	tokens ports.TokenLedger,
	currencies ports.CurrencyLedger,
	clock ports.BlockClock,
	pubsub PubSubService,
	faucetEnabled bool,
	lock *sync.Mutex,
) (OperatorService, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if tokens == nil {
		return nil, fmt.Errorf("missing token ledger")
	}
	if currencies == nil {
		return nil, fmt.Errorf("missing currency ledger")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing block clock")
	}
	if pubsub == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &operatorService{
		repoManager, tokens, currencies, clock, pubsub, faucetEnabled, lock,
	}, nil
}

// InitFactory creates the factory if not existing yet, otherwise it returns
// the persisted one unchanged.
func (s *operatorService) InitFactory(
	ctx context.Context, cfg FactoryConfig,
) (*domain.Factory, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	factory, err := s.repoManager.FactoryRepository().GetFactory(ctx)
	if err == nil {
		return factory, nil
	}
	if !errors.Is(err, domain.ErrFactoryNotInitialized) {
		return nil, err
	}

	factory, err = domain.NewFactory(
		cfg.Owner, cfg.ChainID, cfg.BaseURI,
		cfg.ProtocolFeeRecipient, cfg.ProtocolFee,
		cfg.OperationalFeeRecipient, cfg.OperationalFee,
	)
	if err != nil {
		return nil, err
	}
	for _, t := range cfg.Strategies {
		if err := factory.SetStrategyWhitelisted(
			cfg.Owner, t.Address(), true,
		); err != nil {
			return nil, err
		}
	}
	if err := s.repoManager.FactoryRepository().AddFactory(ctx, factory); err != nil {
		return nil, err
	}

	log.Infof("factory %s initialized for owner %s", factory.Address.Hex(), factory.Owner.Hex())
	return factory, nil
}

func (s *operatorService) GetFactory(ctx context.Context) (*domain.Factory, error) {
	return s.repoManager.FactoryRepository().GetFactory(ctx)
}

func (s *operatorService) SetStrategyWhitelisted(
	ctx context.Context, caller, strategy common.Address, whitelisted bool,
) error {
	return s.updateFactory(ctx, func(f *domain.Factory) error {
		return f.SetStrategyWhitelisted(caller, strategy, whitelisted)
	})
}

func (s *operatorService) ListStrategies(ctx context.Context) ([]StrategyInfo, error) {
	factory, err := s.repoManager.FactoryRepository().GetFactory(ctx)
	if err != nil {
		return nil, err
	}
	types := domain.StrategyTypes()
	strategies := make([]StrategyInfo, 0, len(types))
	for _, t := range types {
		strategies = append(strategies, StrategyInfo{
			Name:        t.String(),
			Address:     t.Address(),
			Whitelisted: factory.IsStrategyWhitelisted(t.Address()),
		})
	}
	return strategies, nil
}

func (s *operatorService) SetDeployerWhitelisted(
	ctx context.Context, caller, deployer common.Address, whitelisted bool,
) error {
	return s.updateFactory(ctx, func(f *domain.Factory) error {
		return f.SetDeployerWhitelisted(caller, deployer, whitelisted)
	})
}

func (s *operatorService) GetFees(ctx context.Context) (*FeesInfo, error) {
	factory, err := s.repoManager.FactoryRepository().GetFactory(ctx)
	if err != nil {
		return nil, err
	}
	return feesInfo(factory), nil
}

func (s *operatorService) SetProtocolFee(
	ctx context.Context, caller, recipient common.Address, fee uint8,
) (*FeesInfo, error) {
	if err := s.updateFactory(ctx, func(f *domain.Factory) error {
		return f.SetProtocolFee(caller, recipient, fee)
	}); err != nil {
		return nil, err
	}
	return s.GetFees(ctx)
}

func (s *operatorService) SetOperationalFee(
	ctx context.Context, caller, recipient common.Address, fee uint8,
) (*FeesInfo, error) {
	if err := s.updateFactory(ctx, func(f *domain.Factory) error {
		return f.SetOperationalFee(caller, recipient, fee)
	}); err != nil {
		return nil, err
	}
	return s.GetFees(ctx)
}

func (s *operatorService) SetFactoryBaseURI(
	ctx context.Context, caller common.Address, uri string,
) error {
	return s.updateFactory(ctx, func(f *domain.Factory) error {
		return f.SetBaseURI(caller, uri)
	})
}

func (s *operatorService) DeployCollectionAndMintBatch(
	ctx context.Context, caller common.Address, req DeployRequest,
) (*domain.Collection, error) {
	req.ToTokenID = nil
	return s.deploy(ctx, caller, req)
}

func (s *operatorService) DeployCollectionAndPark(
	ctx context.Context, caller common.Address, req DeployRequest,
) (*domain.Collection, error) {
	if req.ToTokenID == nil {
		return nil, domain.ErrInvalidToTokenID
	}
	req.TokenIDs = nil
	return s.deploy(ctx, caller, req)
}

func (s *operatorService) GetCollection(
	ctx context.Context, collection common.Address,
) (*domain.Collection, error) {
	return s.repoManager.CollectionRepository().GetCollection(ctx, collection)
}

func (s *operatorService) ListCollections(
	ctx context.Context, owner common.Address,
) ([]domain.Collection, error) {
	if owner == domain.ZeroAddress {
		return s.repoManager.CollectionRepository().GetAllCollections(ctx)
	}
	return s.repoManager.CollectionRepository().GetCollectionsByOwner(ctx, owner)
}

func (s *operatorService) SetRoyaltyFee(
	ctx context.Context, collectionAddr, caller common.Address, fee uint8,
) error {
	if err := s.updateCollection(
		ctx, collectionAddr, func(c *domain.Collection) error {
			return c.SetRoyaltyFee(caller, fee)
		},
	); err != nil {
		return err
	}

	s.pubsub.PublishEvent(domain.Event{
		Type:       domain.EventRoyaltyFeeUpdated,
		Collection: collectionAddr,
		Block:      s.block(ctx),
		RoyaltyFee: fee,
	})
	return nil
}

func (s *operatorService) RoyaltyInfo(
	ctx context.Context, collectionAddr common.Address, salePrice *big.Int,
) (common.Address, *big.Int, error) {
	if salePrice == nil || salePrice.Sign() < 0 {
		return common.Address{}, nil, domain.ErrInvalidPrice
	}
	collection, err := s.GetCollection(ctx, collectionAddr)
	if err != nil {
		return common.Address{}, nil, err
	}
	recipient, amount := collection.RoyaltyInfo(salePrice)
	return recipient, amount, nil
}

func (s *operatorService) ParkTokenIds(
	ctx context.Context, collectionAddr, caller common.Address, toTokenID *big.Int,
) error {
	return s.updateCollection(
		ctx, collectionAddr, func(c *domain.Collection) error {
			return c.ParkTokenIds(caller, toTokenID)
		},
	)
}

func (s *operatorService) Parked(
	ctx context.Context, collectionAddr common.Address, tokenID *big.Int,
) (bool, error) {
	collection, err := s.GetCollection(ctx, collectionAddr)
	if err != nil {
		return false, err
	}
	return collection.IsParked(tokenID), nil
}

func (s *operatorService) Mint(
	ctx context.Context, collectionAddr, caller, to common.Address,
	tokenIDs ...*big.Int,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	collection, err := s.GetCollection(ctx, collectionAddr)
	if err != nil {
		return err
	}
	snapshot := collection.Copy()
	if err := collection.Mint(caller, to, tokenIDs...); err != nil {
		return err
	}
	if err := s.saveCollection(ctx, collection); err != nil {
		return err
	}

	ops := newLedgerOps(s.tokens, s.currencies)
	for _, id := range tokenIDs {
		if err := ops.mintToken(ctx, collection.Address, to, id); err != nil {
			if err := ops.revert(ctx); err != nil {
				return fmt.Errorf("%w: %s", ErrServiceUnavailable, err)
			}
			if err := s.saveCollection(ctx, snapshot); err != nil {
				return fmt.Errorf("%w: %s", ErrServiceUnavailable, err)
			}
			return err
		}
	}

	log.Debugf("minted %d tokens of %s to %s", len(tokenIDs), collection.Address.Hex(), to.Hex())
	return nil
}

// Burn destroys the given tokens, all owned by the caller.
func (s *operatorService) Burn(
	ctx context.Context, collectionAddr, caller common.Address, tokenIDs ...*big.Int,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(tokenIDs) <= 0 {
		return domain.ErrInvalidTokenID
	}
	collection, err := s.GetCollection(ctx, collectionAddr)
	if err != nil {
		return err
	}
	for _, id := range tokenIDs {
		if id == nil || id.Sign() < 0 {
			return domain.ErrInvalidTokenID
		}
		owner, err := s.tokens.OwnerOf(ctx, collection.Address, id)
		if err != nil || owner != caller {
			return domain.ErrForbidden
		}
	}
	for _, id := range tokenIDs {
		if err := s.tokens.Burn(ctx, collection.Address, id); err != nil {
			return fmt.Errorf("%w: %s", domain.ErrFailure, err)
		}
	}
	return nil
}

// TransferToken moves a token on behalf of its owner. The caller must be
// the owner, the approved spender of the token or an operator of the owner.
// Parked tokens are minted to the recipient.
func (s *operatorService) TransferToken(
	ctx context.Context, collectionAddr, caller, from, to common.Address,
	tokenID *big.Int,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if to == domain.ZeroAddress {
		return domain.ErrInvalidTo
	}
	if tokenID == nil || tokenID.Sign() < 0 {
		return domain.ErrInvalidTokenID
	}
	collection, err := s.GetCollection(ctx, collectionAddr)
	if err != nil {
		return err
	}

	if collection.IsParked(tokenID) {
		if from != collection.Owner {
			return domain.ErrForbidden
		}
		if err := s.checkSpender(ctx, collection.Address, caller, from, tokenID, false); err != nil {
			return err
		}
		snapshot := collection.Copy()
		if err := collection.Mint(collection.Owner, to, tokenID); err != nil {
			return err
		}
		if err := s.saveCollection(ctx, collection); err != nil {
			return err
		}
		if err := s.tokens.Mint(ctx, collection.Address, to, tokenID); err != nil {
			if err := s.saveCollection(ctx, snapshot); err != nil {
				return fmt.Errorf("%w: %s", ErrServiceUnavailable, err)
			}
			return fmt.Errorf("%w: %s", domain.ErrFailure, err)
		}
		return nil
	}

	owner, err := s.tokens.OwnerOf(ctx, collection.Address, tokenID)
	if err != nil {
		return domain.ErrInvalidTokenID
	}
	if owner != from {
		return domain.ErrForbidden
	}
	if err := s.checkSpender(ctx, collection.Address, caller, from, tokenID, true); err != nil {
		return err
	}
	if err := s.tokens.TransferFrom(
		ctx, collection.Address, from, to, tokenID, big.NewInt(1),
	); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrFailure, err)
	}
	return nil
}

func (s *operatorService) SetBaseURI(
	ctx context.Context, collectionAddr, caller common.Address, uri string,
) error {
	return s.updateCollection(
		ctx, collectionAddr, func(c *domain.Collection) error {
			return c.SetBaseURI(caller, uri)
		},
	)
}

func (s *operatorService) SetTokenURI(
	ctx context.Context, collectionAddr, caller common.Address,
	tokenID *big.Int, uri string,
) error {
	return s.updateCollection(
		ctx, collectionAddr, func(c *domain.Collection) error {
			return c.SetTokenURI(caller, tokenID, uri)
		},
	)
}

func (s *operatorService) GetToken(
	ctx context.Context, collectionAddr common.Address, tokenID *big.Int,
) (*TokenInfo, error) {
	if tokenID == nil || tokenID.Sign() < 0 {
		return nil, domain.ErrInvalidTokenID
	}
	factory, err := s.GetFactory(ctx)
	if err != nil {
		return nil, err
	}
	collection, err := s.GetCollection(ctx, collectionAddr)
	if err != nil {
		return nil, err
	}
	exists, err := s.tokens.Exists(ctx, collection.Address, tokenID)
	if err != nil {
		return nil, err
	}
	uri, err := collection.TokenURI(factory.BaseURI, tokenID, exists)
	if err != nil {
		return nil, err
	}

	info := &TokenInfo{
		Collection: collection.Address,
		TokenID:    tokenID,
		Exists:     exists,
		Parked:     collection.IsParked(tokenID),
		URI:        uri,
	}
	if info.Parked {
		info.Owner = collection.Owner
	}
	if exists {
		if info.Owner, err = s.tokens.OwnerOf(ctx, collection.Address, tokenID); err != nil {
			return nil, err
		}
		if info.Approved, err = s.tokens.GetApproved(ctx, collection.Address, tokenID); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func (s *operatorService) Faucet(
	ctx context.Context, currency, to common.Address, amount *big.Int,
) error {
	if !s.faucetEnabled {
		return ErrFaucetDisabled
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidFaucetAmount
	}
	if to == domain.ZeroAddress {
		return domain.ErrInvalidTo
	}
	if err := s.currencies.Mint(ctx, currency, to, amount); err != nil {
		return err
	}
	log.Debugf("faucet: sent %s of currency %s to %s", amount, currency.Hex(), to.Hex())
	return nil
}

func (s *operatorService) BalanceOf(
	ctx context.Context, currency, owner common.Address,
) (*big.Int, error) {
	return s.currencies.BalanceOf(ctx, currency, owner)
}

func (s *operatorService) MineBlocks(
	_ context.Context, blocks uint64,
) (uint64, error) {
	miner, ok := s.clock.(blockMiner)
	if !ok {
		return 0, ErrMiningDisabled
	}
	if blocks == 0 {
		blocks = 1
	}
	block := miner.Mine(blocks)
	stats.SetBlockNumber(block)
	return block, nil
}

func (s *operatorService) deploy(
	ctx context.Context, caller common.Address, req DeployRequest,
) (*domain.Collection, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	factory, err := s.GetFactory(ctx)
	if err != nil {
		return nil, err
	}
	if !factory.CanDeploy(caller) {
		return nil, domain.ErrDeployerNotWhitelisted
	}

	addr := factory.NextCollectionAddress()
	collection, err := domain.NewCollection(
		addr, req.Name, req.Symbol, req.Owner, factory.ChainID,
		req.RoyaltyFeeRecipient, req.RoyaltyFee,
	)
	if err != nil {
		return nil, err
	}
	collection.CreatedAt = time.Now().Unix()

	if req.ToTokenID != nil {
		if err := collection.ParkTokenIds(req.Owner, req.ToTokenID); err != nil {
			return nil, err
		}
	}
	if len(req.TokenIDs) > 0 {
		if err := collection.Mint(req.Owner, req.Owner, req.TokenIDs...); err != nil {
			return nil, err
		}
	}

	ops := newLedgerOps(s.tokens, s.currencies)
	for _, id := range req.TokenIDs {
		if err := ops.mintToken(ctx, addr, req.Owner, id); err != nil {
			if err := ops.revert(ctx); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrServiceUnavailable, err)
			}
			return nil, err
		}
	}

	if _, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := s.repoManager.FactoryRepository().UpdateFactory(
				ctx, func(_ *domain.Factory) (*domain.Factory, error) {
					return factory, nil
				},
			); err != nil {
				return nil, err
			}
			return nil, s.repoManager.CollectionRepository().AddCollection(ctx, collection)
		},
	); err != nil {
		if err := ops.revert(ctx); err != nil {
			log.WithError(err).Errorf("failed to burn tokens of %s", addr.Hex())
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"collection": addr.Hex(),
		"owner":      req.Owner.Hex(),
		"name":       req.Name,
	}).Info("collection deployed")

	s.pubsub.PublishEvent(domain.Event{
		Type:       domain.EventCollectionDeployed,
		Collection: addr,
		Block:      s.block(ctx),
		Owner:      req.Owner,
		RoyaltyFee: collection.RoyaltyFee,
	})
	return collection, nil
}

// checkSpender returns whether caller can move the token of owner. Approved
// spenders are only looked up for existing tokens.
func (s *operatorService) checkSpender(
	ctx context.Context, collection, caller, owner common.Address,
	tokenID *big.Int, exists bool,
) error {
	if caller == owner {
		return nil
	}
	if exists {
		approved, err := s.tokens.GetApproved(ctx, collection, tokenID)
		if err != nil {
			return err
		}
		if approved == caller {
			return nil
		}
	}
	isOperator, err := s.tokens.IsApprovedForAll(ctx, collection, owner, caller)
	if err != nil {
		return err
	}
	if !isOperator {
		return domain.ErrForbidden
	}
	return nil
}

func (s *operatorService) updateFactory(
	ctx context.Context, fn func(f *domain.Factory) error,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.repoManager.FactoryRepository().UpdateFactory(
		ctx, func(f *domain.Factory) (*domain.Factory, error) {
			if err := fn(f); err != nil {
				return nil, err
			}
			return f, nil
		},
	)
}

func (s *operatorService) updateCollection(
	ctx context.Context, addr common.Address, fn func(c *domain.Collection) error,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.repoManager.CollectionRepository().UpdateCollection(
		ctx, addr, func(c *domain.Collection) (*domain.Collection, error) {
			if err := fn(c); err != nil {
				return nil, err
			}
			return c, nil
		},
	)
}

func (s *operatorService) saveCollection(
	ctx context.Context, collection *domain.Collection,
) error {
	return s.repoManager.CollectionRepository().UpdateCollection(
		ctx, collection.Address,
		func(_ *domain.Collection) (*domain.Collection, error) {
			return collection, nil
		},
	)
}

func (s *operatorService) block(ctx context.Context) uint64 {
	block, err := s.clock.BlockNumber(ctx)
	if err != nil {
		log.WithError(err).Debug("failed to get current block")
		return 0
	}
	return block
}

func feesInfo(f *domain.Factory) *FeesInfo {
	return &FeesInfo{
		ProtocolFeeRecipient:     f.ProtocolFeeRecipient,
		ProtocolFee:              f.ProtocolFee,
		ProtocolFeePercentage:    mathutil.RateToPercentage(uint64(f.ProtocolFee)).String(),
		OperationalFeeRecipient:  f.OperationalFeeRecipient,
		OperationalFee:           f.OperationalFee,
		OperationalFeePercentage: mathutil.RateToPercentage(uint64(f.OperationalFee)).String(),
	}
}
