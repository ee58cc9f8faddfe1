package application

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	"github.com/shoyu-network/shoyu-daemon/pkg/stats"
	log "github.com/sirupsen/logrus"
)

// ExchangeService defines the methods of the order matching and settlement
// engine of a collection.
type ExchangeService interface {
	Bid(
		ctx context.Context, collection, caller common.Address, req BidRequest,
	) (*BidResult, error)
	BidWithOrder(
		ctx context.Context, collection, caller common.Address,
		ask domain.Ask, bid domain.BidOrder,
	) (*BidResult, error)
	Claim(
		ctx context.Context, collection, caller common.Address, ask domain.Ask,
	) (*ClaimResult, error)
	Cancel(
		ctx context.Context, collection, caller common.Address, ask domain.Ask,
	) (*domain.Order, error)
	UpdateApprovedBidHash(
		ctx context.Context, collection, caller common.Address,
		askHash common.Hash, bidder common.Address, bidHash common.Hash,
	) error

	BestBid(
		ctx context.Context, collection common.Address, hash common.Hash,
	) (domain.BestBid, error)
	IsCancelledOrClaimed(
		ctx context.Context, collection common.Address, hash common.Hash,
	) (bool, error)
	AmountFilled(
		ctx context.Context, collection common.Address, hash common.Hash,
	) (*big.Int, error)
	ApprovedBidHash(
		ctx context.Context, collection, proxy common.Address,
		askHash common.Hash, bidder common.Address,
	) (common.Hash, error)
	CanTrade(ctx context.Context, collection, token common.Address) (bool, error)
	DomainSeparator(ctx context.Context, collection common.Address) (common.Hash, error)
	GetOrder(
		ctx context.Context, collection common.Address, hash common.Hash,
	) (*domain.Order, error)
	ListOrders(
		ctx context.Context, collection common.Address, filter OrderFilter,
	) ([]domain.Order, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

type exchangeService struct {
	repoManager ports.RepoManager
	tokens      ports.TokenLedger
	currencies  ports.CurrencyLedger
	clock       ports.BlockClock
	pubsub      PubSubService

	// lock serializes every state transition of the exchange.
	lock *sync.Mutex
}

// NewExchangeService returns the exchange engine. Services sharing the same
// lock never run their state transitions concurrently.
func NewExchangeService(
	repoManager ports.RepoManager,
	tokens ports.TokenLedger,
	currencies ports.CurrencyLedger,
	clock ports.BlockClock,
	pubsub PubSubService,
	lock *sync.Mutex,
) (ExchangeService, error) {
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
	return &exchangeService{
		repoManager, tokens, currencies, clock, pubsub, lock,
	}, nil
}

// bidArgs is a bid either submitted by the bidder, or relayed as a signed bid
// order.
type bidArgs struct {
	caller    common.Address
	ask       domain.Ask
	bidder    common.Address
	amount    *big.Int
	price     *big.Int
	recipient common.Address
	referrer  common.Address
	bidOrder  *domain.BidOrder
}

func (s *exchangeService) Bid(
	ctx context.Context, collection, caller common.Address, req BidRequest,
) (*BidResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.bid(ctx, collection, bidArgs{
		caller:    caller,
		ask:       req.Ask,
		bidder:    caller,
		amount:    req.Amount,
		price:     req.Price,
		recipient: req.Recipient,
		referrer:  req.Referrer,
	})
}

func (s *exchangeService) BidWithOrder(
	ctx context.Context, collection, caller common.Address,
	ask domain.Ask, bid domain.BidOrder,
) (*BidResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.bid(ctx, collection, bidArgs{
		caller:    caller,
		ask:       ask,
		bidder:    bid.Signer,
		amount:    bid.Amount,
		price:     bid.Price,
		recipient: bid.Recipient,
		referrer:  bid.Referrer,
		bidOrder:  &bid,
	})
}

func (s *exchangeService) Claim(
	ctx context.Context, collectionAddr, caller common.Address, ask domain.Ask,
) (*ClaimResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	block, err := s.blockNumber(ctx)
	if err != nil {
		return nil, err
	}
	if err := ask.Validate(); err != nil {
		return nil, err
	}
	hash := ask.Hash()

	factory, collection, order, err := s.loadState(ctx, collectionAddr, hash)
	if err != nil {
		return nil, err
	}
	if !collection.CanTrade(ask.Token) {
		return nil, domain.ErrInvalidExchange
	}
	if err := ask.Verify(collection.DomainSeparator()); err != nil {
		return nil, err
	}
	if order.IsCancelledOrClaimed() {
		return nil, domain.ErrForbidden
	}
	// Claims skip the strategy whitelist.
	strategy, err := domain.NewStrategyFromAddress(ask.Strategy)
	if err != nil {
		return nil, err
	}

	if order.BestBid.IsZero() {
		return s.sweep(ctx, collection, order, ask, block)
	}

	ok, price, amount := strategy.CanClaim(domain.ClaimContext{
		Proxy:    ask.Proxy,
		Claimant: caller,
		Bid:      order.BestBid,
		BestBid:  order.BestBid,
		Params:   ask.Params,
		Deadline: ask.Deadline,
		Block:    block,
	})
	if !ok {
		return nil, domain.ErrFailure
	}
	return s.settleBestBid(ctx, factory, collection, order, ask, price, amount, block)
}

func (s *exchangeService) Cancel(
	ctx context.Context, collectionAddr, caller common.Address, ask domain.Ask,
) (*domain.Order, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	block, err := s.blockNumber(ctx)
	if err != nil {
		return nil, err
	}
	if err := ask.Validate(); err != nil {
		return nil, err
	}
	hash := ask.Hash()

	_, collection, order, err := s.loadState(ctx, collectionAddr, hash)
	if err != nil {
		return nil, err
	}
	if !collection.CanTrade(ask.Token) {
		return nil, domain.ErrInvalidExchange
	}
	if err := order.Cancel(ask, caller, block); err != nil {
		return nil, err
	}
	if err := s.saveState(ctx, order, nil); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"collection": collection.Address.Hex(),
		"hash":       hash.Hex(),
	}).Info("order cancelled by signer")

	s.pubsub.PublishEvent(domain.Event{
		Type:       domain.EventCancel,
		Collection: collection.Address,
		Block:      block,
		Hash:       hash,
	})
	return order, nil
}

func (s *exchangeService) UpdateApprovedBidHash(
	ctx context.Context, collectionAddr, caller common.Address,
	askHash common.Hash, bidder common.Address, bidHash common.Hash,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if caller == domain.ZeroAddress {
		return domain.ErrForbidden
	}
	block, err := s.blockNumber(ctx)
	if err != nil {
		return err
	}

	if err := s.repoManager.CollectionRepository().UpdateCollection(
		ctx, collectionAddr,
		func(c *domain.Collection) (*domain.Collection, error) {
			c.SetApprovedBidHash(caller, askHash, bidder, bidHash)
			return c, nil
		},
	); err != nil {
		return err
	}

	s.pubsub.PublishEvent(domain.Event{
		Type:       domain.EventUpdateApprovedBidHash,
		Collection: collectionAddr,
		Block:      block,
		Proxy:      caller,
		Hash:       askHash,
		Bidder:     bidder,
		BidHash:    bidHash,
	})
	return nil
}

func (s *exchangeService) BestBid(
	ctx context.Context, collection common.Address, hash common.Hash,
) (domain.BestBid, error) {
	order, err := s.repoManager.OrderRepository().GetOrCreateOrder(ctx, collection, hash)
	if err != nil {
		return domain.BestBid{}, err
	}
	return order.BestBid, nil
}

func (s *exchangeService) IsCancelledOrClaimed(
	ctx context.Context, collection common.Address, hash common.Hash,
) (bool, error) {
	order, err := s.repoManager.OrderRepository().GetOrCreateOrder(ctx, collection, hash)
	if err != nil {
		return false, err
	}
	return order.IsCancelledOrClaimed(), nil
}

func (s *exchangeService) AmountFilled(
	ctx context.Context, collection common.Address, hash common.Hash,
) (*big.Int, error) {
	order, err := s.repoManager.OrderRepository().GetOrCreateOrder(ctx, collection, hash)
	if err != nil {
		return nil, err
	}
	if order.AmountFilled == nil {
		return big.NewInt(0), nil
	}
	return order.AmountFilled, nil
}

func (s *exchangeService) ApprovedBidHash(
	ctx context.Context, collectionAddr, proxy common.Address,
	askHash common.Hash, bidder common.Address,
) (common.Hash, error) {
	collection, err := s.repoManager.CollectionRepository().GetCollection(
		ctx, collectionAddr,
	)
	if err != nil {
		return common.Hash{}, err
	}
	return collection.ApprovedBidHash(proxy, askHash, bidder), nil
}

func (s *exchangeService) CanTrade(
	ctx context.Context, collectionAddr, token common.Address,
) (bool, error) {
	collection, err := s.repoManager.CollectionRepository().GetCollection(
		ctx, collectionAddr,
	)
	if err != nil {
		return false, err
	}
	return collection.CanTrade(token), nil
}

func (s *exchangeService) DomainSeparator(
	ctx context.Context, collectionAddr common.Address,
) (common.Hash, error) {
	collection, err := s.repoManager.CollectionRepository().GetCollection(
		ctx, collectionAddr,
	)
	if err != nil {
		return common.Hash{}, err
	}
	return collection.DomainSeparator(), nil
}

func (s *exchangeService) GetOrder(
	ctx context.Context, collection common.Address, hash common.Hash,
) (*domain.Order, error) {
	return s.repoManager.OrderRepository().GetOrder(ctx, collection, hash)
}

func (s *exchangeService) ListOrders(
	ctx context.Context, collectionAddr common.Address, filter OrderFilter,
) ([]domain.Order, error) {
	if _, err := s.repoManager.CollectionRepository().GetCollection(
		ctx, collectionAddr,
	); err != nil {
		return nil, err
	}

	repo := s.repoManager.OrderRepository()
	if filter.Signer != domain.ZeroAddress {
		orders, err := repo.GetOrdersBySigner(ctx, collectionAddr, filter.Signer)
		if err != nil {
			return nil, err
		}
		if filter.Status == nil {
			return orders, nil
		}
		filtered := make([]domain.Order, 0, len(orders))
		for _, o := range orders {
			if o.Status == *filter.Status {
				filtered = append(filtered, o)
			}
		}
		return filtered, nil
	}
	if filter.Status != nil {
		return repo.GetOrdersByStatus(ctx, collectionAddr, *filter.Status)
	}
	return repo.GetAllOrders(ctx, collectionAddr)
}

func (s *exchangeService) BlockNumber(ctx context.Context) (uint64, error) {
	return s.blockNumber(ctx)
}

func (s *exchangeService) bid(
	ctx context.Context, collectionAddr common.Address, args bidArgs,
) (*BidResult, error) {
	block, err := s.blockNumber(ctx)
	if err != nil {
		return nil, err
	}
	ask := args.ask
	if err := ask.Validate(); err != nil {
		return nil, err
	}
	hash := ask.Hash()

	factory, collection, order, err := s.loadState(ctx, collectionAddr, hash)
	if err != nil {
		return nil, err
	}
	if !collection.CanTrade(ask.Token) {
		return nil, domain.ErrInvalidExchange
	}
	strategy, err := factory.GetStrategy(ask.Strategy)
	if err != nil {
		return nil, err
	}
	if err := ask.Verify(collection.DomainSeparator()); err != nil {
		return nil, err
	}

	consumeApproval, err := checkBidder(collection, ask, hash, args)
	if err != nil {
		return nil, err
	}

	if err := order.CanFill(ask, args.amount); err != nil {
		return nil, err
	}
	bid, err := domain.NewBid(
		args.bidder, args.amount, args.price, args.recipient, args.referrer, block,
	)
	if err != nil {
		return nil, err
	}

	if ok, price, amount := strategy.CanClaim(domain.ClaimContext{
		Proxy:    ask.Proxy,
		Claimant: args.caller,
		Bid:      bid,
		BestBid:  order.BestBid,
		Params:   ask.Params,
		Deadline: ask.Deadline,
		Block:    block,
	}); ok {
		collectionSnapshot := collection.Copy()
		if consumeApproval {
			collection.SetApprovedBidHash(ask.Proxy, hash, bid.Bidder, common.Hash{})
		}
		return s.executeBid(
			ctx, factory, collection, collectionSnapshot,
			order, ask, bid, price, amount, block,
		)
	}

	if strategy.CanBid(domain.BidContext{
		Proxy:    ask.Proxy,
		Signer:   ask.Signer,
		Bidder:   bid.Bidder,
		Amount:   bid.Amount,
		Price:    bid.Price,
		BestBid:  order.BestBid,
		Params:   ask.Params,
		Deadline: ask.Deadline,
		Block:    block,
	}) {
		var collectionSnapshot *domain.Collection
		if consumeApproval {
			collectionSnapshot = collection.Copy()
			collection.SetApprovedBidHash(ask.Proxy, hash, bid.Bidder, common.Hash{})
		}
		return s.placeBid(
			ctx, collection, collectionSnapshot, order, ask, bid, block,
		)
	}

	return nil, domain.ErrFailure
}

// checkBidder enforces the proxy rule of the ask. It returns whether the bid
// is relayed thanks to an approved bid hash that must be consumed.
func checkBidder(
	collection *domain.Collection, ask domain.Ask, hash common.Hash, args bidArgs,
) (bool, error) {
	if args.bidOrder == nil {
		if ask.Proxy != domain.ZeroAddress && args.caller != ask.Proxy {
			return false, domain.ErrForbidden
		}
		return false, nil
	}

	bidOrder := args.bidOrder
	if bidOrder.AskHash != hash {
		return false, domain.ErrUnauthorized
	}
	if err := bidOrder.Verify(collection.DomainSeparator()); err != nil {
		return false, err
	}
	if ask.Proxy == domain.ZeroAddress || args.caller == ask.Proxy {
		return false, nil
	}
	approved := collection.ApprovedBidHash(ask.Proxy, hash, bidOrder.Signer)
	if approved != bidOrder.Hash() {
		return false, domain.ErrForbidden
	}
	return true, nil
}

// executeBid settles a bid right away: the bidder pays the fees and the
// seller, the asset moves to the bid recipient.
func (s *exchangeService) executeBid(
	ctx context.Context,
	factory *domain.Factory, collection, collectionSnapshot *domain.Collection,
	order *domain.Order,
	ask domain.Ask, bid domain.BestBid, price, amount *big.Int, block uint64,
) (*BidResult, error) {
	orderSnapshot := order.Copy()

	if _, err := order.Fill(ask, amount, block); err != nil {
		return nil, err
	}
	mintParked := s.isParkedSale(collection, ask)
	if mintParked {
		if err := collection.Mint(
			collection.Owner, bid.TokenRecipient(), ask.TokenID,
		); err != nil {
			return nil, err
		}
	}
	if err := s.saveState(ctx, order, collection); err != nil {
		return nil, err
	}

	settlement := domain.NewSettlement(
		price, *factory, *collection, ask.ProceedsRecipient(),
	)
	ops := newLedgerOps(s.tokens, s.currencies)
	if err := s.settle(
		ctx, ops, ask, bid, settlement, bid.Bidder, amount, mintParked,
	); err != nil {
		return nil, s.rollback(ctx, ops, orderSnapshot, collectionSnapshot, err)
	}

	log.WithFields(log.Fields{
		"collection": collection.Address.Hex(),
		"hash":       order.Hash.Hex(),
		"bidder":     bid.Bidder.Hex(),
		"price":      price.String(),
	}).Info("bid executed")

	s.publishClaim(collection.Address, order.Hash, bid, amount, price, block)
	return &BidResult{
		Hash:       order.Hash,
		Executed:   true,
		Order:      *order,
		Settlement: &settlement,
	}, nil
}

// placeBid records the bid as the new best bid. Its price is escrowed by the
// collection and the outbid bidder is refunded. A nil collectionSnapshot
// means the collection was not changed.
func (s *exchangeService) placeBid(
	ctx context.Context,
	collection, collectionSnapshot *domain.Collection, order *domain.Order,
	ask domain.Ask, bid domain.BestBid, block uint64,
) (*BidResult, error) {
	orderSnapshot := order.Copy()

	previous, err := order.PlaceBid(ask, bid)
	if err != nil {
		return nil, err
	}
	var changed *domain.Collection
	if collectionSnapshot != nil {
		changed = collection
	}
	if err := s.saveState(ctx, order, changed); err != nil {
		return nil, err
	}

	ops := newLedgerOps(s.tokens, s.currencies)
	if err := ops.transferCurrency(
		ctx, ask.Currency, bid.Bidder, collection.Address, bid.Price,
	); err != nil {
		return nil, s.rollback(ctx, ops, orderSnapshot, collectionSnapshot, err)
	}
	if !previous.IsZero() {
		if err := ops.transferCurrency(
			ctx, ask.Currency, collection.Address, previous.Bidder, orderSnapshot.Escrow,
		); err != nil {
			return nil, s.rollback(ctx, ops, orderSnapshot, collectionSnapshot, err)
		}
	}

	log.WithFields(log.Fields{
		"collection": collection.Address.Hex(),
		"hash":       order.Hash.Hex(),
		"bidder":     bid.Bidder.Hex(),
		"price":      bid.Price.String(),
	}).Info("new best bid")

	s.pubsub.PublishEvent(domain.Event{
		Type:       domain.EventBid,
		Collection: collection.Address,
		Block:      block,
		Hash:       order.Hash,
		Bidder:     bid.Bidder,
		Amount:     bid.Amount,
		Price:      bid.Price,
		Recipient:  bid.Recipient,
		Referrer:   bid.Referrer,
	})
	return &BidResult{Hash: order.Hash, Order: *order}, nil
}

// settleBestBid settles the standing best bid out of the escrow held by the
// collection.
func (s *exchangeService) settleBestBid(
	ctx context.Context,
	factory *domain.Factory, collection *domain.Collection, order *domain.Order,
	ask domain.Ask, price, amount *big.Int, block uint64,
) (*ClaimResult, error) {
	orderSnapshot := order.Copy()
	collectionSnapshot := collection.Copy()
	bid := order.BestBid
	escrow := orderSnapshot.Escrow

	if err := order.Claim(ask, block); err != nil {
		return nil, err
	}
	mintParked := s.isParkedSale(collection, ask)
	if mintParked {
		if err := collection.Mint(
			collection.Owner, bid.TokenRecipient(), ask.TokenID,
		); err != nil {
			return nil, err
		}
	}
	if err := s.saveState(ctx, order, collection); err != nil {
		return nil, err
	}

	settlement := domain.NewSettlement(
		price, *factory, *collection, ask.ProceedsRecipient(),
	)
	ops := newLedgerOps(s.tokens, s.currencies)
	if err := s.settle(
		ctx, ops, ask, bid, settlement, collection.Address, amount, mintParked,
	); err != nil {
		return nil, s.rollback(ctx, ops, orderSnapshot, collectionSnapshot, err)
	}
	if escrow != nil && escrow.Cmp(price) > 0 {
		change := new(big.Int).Sub(escrow, price)
		if err := ops.transferCurrency(
			ctx, ask.Currency, collection.Address, bid.Bidder, change,
		); err != nil {
			return nil, s.rollback(ctx, ops, orderSnapshot, collectionSnapshot, err)
		}
	}

	log.WithFields(log.Fields{
		"collection": collection.Address.Hex(),
		"hash":       order.Hash.Hex(),
		"bidder":     bid.Bidder.Hex(),
		"price":      price.String(),
	}).Info("order claimed")

	s.publishClaim(collection.Address, order.Hash, bid, amount, price, block)
	return &ClaimResult{
		Hash:       order.Hash,
		Claimed:    true,
		Order:      *order,
		Settlement: &settlement,
	}, nil
}

// sweep cancels an order that expired without receiving any bid.
func (s *exchangeService) sweep(
	ctx context.Context, collection *domain.Collection, order *domain.Order,
	ask domain.Ask, block uint64,
) (*ClaimResult, error) {
	if err := order.Sweep(ask, block); err != nil {
		return nil, err
	}
	if err := s.saveState(ctx, order, nil); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"collection": collection.Address.Hex(),
		"hash":       order.Hash.Hex(),
	}).Info("expired order cancelled")

	s.pubsub.PublishEvent(domain.Event{
		Type:       domain.EventCancel,
		Collection: collection.Address,
		Block:      block,
		Hash:       order.Hash,
	})
	return &ClaimResult{Hash: order.Hash, Order: *order}, nil
}

// settle pays the settlement from payer and delivers the asset to the bid
// recipient.
func (s *exchangeService) settle(
	ctx context.Context, ops *ledgerOps,
	ask domain.Ask, bid domain.BestBid, settlement domain.Settlement,
	payer common.Address, amount *big.Int, mintParked bool,
) error {
	for _, t := range settlement.Transfers() {
		if err := ops.transferCurrency(
			ctx, ask.Currency, payer, t.To, t.Amount,
		); err != nil {
			return err
		}
	}
	if mintParked {
		return ops.mintToken(ctx, ask.Token, bid.TokenRecipient(), ask.TokenID)
	}
	return ops.transferToken(
		ctx, ask.Token, ask.Signer, bid.TokenRecipient(), ask.TokenID, amount,
	)
}

// isParkedSale returns whether the asset on sale is a parked token of the
// collection owner, minted on settlement.
func (s *exchangeService) isParkedSale(
	collection *domain.Collection, ask domain.Ask,
) bool {
	return ask.Signer == collection.Owner && collection.IsParked(ask.TokenID)
}

// rollback restores the state persisted before the ledger operations and
// reverts the executed ones.
func (s *exchangeService) rollback(
	ctx context.Context, ops *ledgerOps,
	order *domain.Order, collection *domain.Collection, cause error,
) error {
	log.WithError(cause).Warnf("settlement of order %s failed, rolling back", order.Hash.Hex())

	if err := ops.revert(ctx); err != nil {
		return fmt.Errorf("%w: %s", ErrServiceUnavailable, err)
	}
	if err := s.saveState(ctx, order, collection); err != nil {
		return fmt.Errorf("%w: %s", ErrServiceUnavailable, err)
	}
	return cause
}

func (s *exchangeService) publishClaim(
	collection common.Address, hash common.Hash, bid domain.BestBid,
	amount, price *big.Int, block uint64,
) {
	s.pubsub.PublishEvent(domain.Event{
		Type:       domain.EventClaim,
		Collection: collection,
		Block:      block,
		Hash:       hash,
		Bidder:     bid.Bidder,
		Amount:     amount,
		Price:      price,
		Recipient:  bid.Recipient,
		Referrer:   bid.Referrer,
	})
}

func (s *exchangeService) loadState(
	ctx context.Context, collectionAddr common.Address, hash common.Hash,
) (*domain.Factory, *domain.Collection, *domain.Order, error) {
	factory, err := s.repoManager.FactoryRepository().GetFactory(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	collection, err := s.repoManager.CollectionRepository().GetCollection(
		ctx, collectionAddr,
	)
	if err != nil {
		return nil, nil, nil, err
	}
	order, err := s.repoManager.OrderRepository().GetOrCreateOrder(ctx, collectionAddr, hash)
	if err != nil {
		return nil, nil, nil, err
	}
	return factory, collection, order, nil
}

// saveState persists the order and, if not nil, the collection within the
// same db transaction.
func (s *exchangeService) saveState(
	ctx context.Context, order *domain.Order, collection *domain.Collection,
) error {
	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := s.repoManager.OrderRepository().UpdateOrder(
				ctx, order.Collection, order.Hash,
				func(_ *domain.Order) (*domain.Order, error) {
					return order, nil
				},
			); err != nil {
				return nil, err
			}
			if collection == nil {
				return nil, nil
			}
			return nil, s.repoManager.CollectionRepository().UpdateCollection(
				ctx, collection.Address,
				func(_ *domain.Collection) (*domain.Collection, error) {
					return collection, nil
				},
			)
		},
	)
	return err
}

func (s *exchangeService) blockNumber(ctx context.Context) (uint64, error) {
	block, err := s.clock.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current block: %w", err)
	}
	stats.SetBlockNumber(block)
	return block, nil
}
