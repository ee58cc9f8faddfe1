package application_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestEnglishAuction(t *testing.T) {
	env := newTestEnv(t)
	events, unsubscribe := env.pubsub.SubscribeEvents()
	defer unsubscribe()

	params := mustEncode(t)(domain.EncodeEnglishAuctionParams(big.NewInt(500)))
	ask := env.signAsk(t, env.newAsk(
		env.seller.addr, 0, domain.StrategyEnglishAuction, params, 200,
	), env.seller)
	alice := env.fund(t, 10000)
	bob := env.fund(t, 10000)
	carol := env.fund(t, 10000)

	env.clock.SetBlock(150)

	_, err := env.bid(alice.addr, ask, 400)
	require.ErrorIs(t, err, domain.ErrFailure)

	res, err := env.bid(alice.addr, ask, 1000)
	require.NoError(t, err)
	require.False(t, res.Executed)
	require.Equal(t, domain.OrderStatusBidding, res.Order.Status)
	require.Equal(t, int64(9000), env.balance(t, alice.addr))
	require.Equal(t, int64(1000), env.balance(t, env.collection.Address))

	_, err = env.bid(bob.addr, ask, 900)
	require.ErrorIs(t, err, domain.ErrFailure)

	_, err = env.bid(bob.addr, ask, 1200)
	require.NoError(t, err)
	require.Equal(t, int64(10000), env.balance(t, alice.addr))
	require.Equal(t, int64(8800), env.balance(t, bob.addr))
	require.Equal(t, int64(1200), env.balance(t, env.collection.Address))

	bestBid, err := env.exchange.BestBid(ctx, env.collection.Address, ask.Hash())
	require.NoError(t, err)
	require.Equal(t, bob.addr, bestBid.Bidder)
	require.Equal(t, big.NewInt(1200), bestBid.Price)
	require.Equal(t, uint64(150), bestBid.Block)

	for _, block := range []uint64{199, 200} {
		env.clock.SetBlock(block)
		_, err = env.exchange.Claim(ctx, env.collection.Address, env.seller.addr, ask)
		require.ErrorIs(t, err, domain.ErrFailure)
	}

	env.clock.SetBlock(201)

	_, err = env.bid(carol.addr, ask, 1500)
	require.ErrorIs(t, err, domain.ErrFailure)

	claim, err := env.exchange.Claim(ctx, env.collection.Address, carol.addr, ask)
	require.NoError(t, err)
	require.True(t, claim.Claimed)
	require.Equal(t, domain.OrderStatusClaimed, claim.Order.Status)
	require.NotNil(t, claim.Settlement)
	require.Equal(t, big.NewInt(sellerProceeds(1200)), claim.Settlement.SellerProceeds)

	require.Equal(t, bob.addr, env.ownerOf(t, 0))
	require.Equal(t, sellerProceeds(1200), env.balance(t, env.seller.addr))
	require.Equal(t, int64(30), env.balance(t, protocolVault))
	require.Equal(t, int64(6), env.balance(t, operationalVault))
	require.Equal(t, int64(30), env.balance(t, royaltyVault))
	require.Zero(t, env.balance(t, env.collection.Address))
	require.Equal(t, int64(10000), env.balance(t, carol.addr))

	done, err := env.exchange.IsCancelledOrClaimed(ctx, env.collection.Address, ask.Hash())
	require.NoError(t, err)
	require.True(t, done)

	_, err = env.exchange.Claim(ctx, env.collection.Address, bob.addr, ask)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = env.bid(carol.addr, ask, 2000)
	require.ErrorIs(t, err, domain.ErrForbidden)

	expected := []domain.EventType{
		domain.EventBid, domain.EventBid, domain.EventClaim,
	}
	for _, eventType := range expected {
		event := nextEvent(t, events)
		require.Equal(t, eventType, event.Type)
		require.Equal(t, ask.Hash(), event.Hash)
		require.NotEmpty(t, event.ID)
	}
}

func TestImmediateSales(t *testing.T) {
	taker := newWallet(t)

	tests := []struct {
		name     string
		strategy domain.StrategyType
		params   func(t *testing.T) []byte
		block    uint64
		rejected []int64
		price    int64
	}{
		{
			name:     "fixed price sale",
			strategy: domain.StrategyFixedPriceSale,
			params: func(t *testing.T) []byte {
				return mustEncode(t)(domain.EncodeFixedPriceSaleParams(big.NewInt(1000)))
			},
			block:    150,
			rejected: []int64{0, 999},
			price:    1000,
		},
		{
			name:     "dutch auction",
			strategy: domain.StrategyDutchAuction,
			params: func(t *testing.T) []byte {
				return mustEncode(t)(domain.EncodeDutchAuctionParams(
					big.NewInt(2000), big.NewInt(1000), big.NewInt(100),
				))
			},
			block:    150,
			rejected: []int64{1000, 1499},
			price:    1500,
		},
		{
			name:     "designated sale",
			strategy: domain.StrategyDesignatedSale,
			params: func(t *testing.T) []byte {
				return mustEncode(t)(domain.EncodeDesignatedSaleParams(
					big.NewInt(1000), taker.addr,
				))
			},
			block:    150,
			rejected: []int64{999, 1001},
			price:    1000,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			err := env.operator.Faucet(ctx, currency, taker.addr, big.NewInt(5000))
			require.NoError(t, err)

			ask := env.signAsk(t, env.newAsk(
				env.seller.addr, 1, tt.strategy, tt.params(t), 200,
			), env.seller)
			env.clock.SetBlock(tt.block)

			for _, price := range tt.rejected {
				_, err := env.bid(taker.addr, ask, price)
				require.ErrorIs(t, err, domain.ErrFailure)
			}

			res, err := env.bid(taker.addr, ask, tt.price)
			require.NoError(t, err)
			require.True(t, res.Executed)
			require.Equal(t, domain.OrderStatusClaimed, res.Order.Status)
			require.Equal(t, big.NewInt(tt.price), res.Settlement.Price)

			require.Equal(t, taker.addr, env.ownerOf(t, 1))
			require.Equal(t, 5000-tt.price, env.balance(t, taker.addr))
			require.Equal(t, sellerProceeds(tt.price), env.balance(t, env.seller.addr))
			require.Zero(t, env.balance(t, env.collection.Address))

			filled, err := env.exchange.AmountFilled(ctx, env.collection.Address, ask.Hash())
			require.NoError(t, err)
			require.Equal(t, big.NewInt(1), filled)

			_, err = env.bid(taker.addr, ask, tt.price)
			require.ErrorIs(t, err, domain.ErrForbidden)
		})
	}
}

func TestDesignatedSaleRejectsOtherBidders(t *testing.T) {
	env := newTestEnv(t)
	taker := newWallet(t)
	other := env.fund(t, 5000)

	params := mustEncode(t)(domain.EncodeDesignatedSaleParams(big.NewInt(1000), taker.addr))
	ask := env.signAsk(t, env.newAsk(
		env.seller.addr, 1, domain.StrategyDesignatedSale, params, 200,
	), env.seller)

	_, err := env.bid(other.addr, ask, 1000)
	require.ErrorIs(t, err, domain.ErrFailure)
	require.Equal(t, env.seller.addr, env.ownerOf(t, 1))
}

func TestBidValidation(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.fund(t, 5000)
	other := newWallet(t)
	params := mustEncode(t)(domain.EncodeFixedPriceSaleParams(big.NewInt(1000)))

	tests := []struct {
		name        string
		ask         func() domain.Ask
		expectedErr error
	}{
		{
			name: "not signed by signer",
			ask: func() domain.Ask {
				return env.signAsk(t, env.newAsk(
					env.seller.addr, 1, domain.StrategyFixedPriceSale, params, 200,
				), other)
			},
			expectedErr: domain.ErrUnauthorized,
		},
		{
			name: "unknown strategy",
			ask: func() domain.Ask {
				ask := env.newAsk(
					env.seller.addr, 1, domain.StrategyFixedPriceSale, params, 200,
				)
				ask.Strategy = common.HexToAddress("0x01")
				return env.signAsk(t, ask, env.seller)
			},
			expectedErr: domain.ErrStrategyNotWhitelisted,
		},
		{
			name: "other token",
			ask: func() domain.Ask {
				ask := env.newAsk(
					env.seller.addr, 1, domain.StrategyFixedPriceSale, params, 200,
				)
				ask.Token = common.HexToAddress("0x02")
				return env.signAsk(t, ask, env.seller)
			},
			expectedErr: domain.ErrInvalidExchange,
		},
		{
			name: "zero amount",
			ask: func() domain.Ask {
				ask := env.newAsk(
					env.seller.addr, 1, domain.StrategyFixedPriceSale, params, 200,
				)
				ask.Amount = big.NewInt(0)
				return env.signAsk(t, ask, env.seller)
			},
			expectedErr: domain.ErrInvalidAmount,
		},
		{
			name: "expired",
			ask: func() domain.Ask {
				return env.signAsk(t, env.newAsk(
					env.seller.addr, 1, domain.StrategyFixedPriceSale, params, 99,
				), env.seller)
			},
			expectedErr: domain.ErrFailure,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.bid(bidder.addr, tt.ask(), 1000)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}

	require.Equal(t, int64(5000), env.balance(t, bidder.addr))
	require.Equal(t, env.seller.addr, env.ownerOf(t, 1))
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.fund(t, 5000)

	englishParams := mustEncode(t)(domain.EncodeEnglishAuctionParams(big.NewInt(100)))
	auction := env.signAsk(t, env.newAsk(
		env.seller.addr, 2, domain.StrategyEnglishAuction, englishParams, 200,
	), env.seller)

	_, err := env.exchange.Cancel(ctx, env.collection.Address, bidder.addr, auction)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.bid(bidder.addr, auction, 100)
	require.NoError(t, err)

	_, err = env.exchange.Cancel(ctx, env.collection.Address, env.seller.addr, auction)
	require.ErrorIs(t, err, domain.ErrBidExists)

	fixedParams := mustEncode(t)(domain.EncodeFixedPriceSaleParams(big.NewInt(1000)))
	sale := env.signAsk(t, env.newAsk(
		env.seller.addr, 1, domain.StrategyFixedPriceSale, fixedParams, 200,
	), env.seller)

	order, err := env.exchange.Cancel(ctx, env.collection.Address, env.seller.addr, sale)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusCancelled, order.Status)

	_, err = env.exchange.Cancel(ctx, env.collection.Address, env.seller.addr, sale)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.bid(bidder.addr, sale, 1000)
	require.ErrorIs(t, err, domain.ErrForbidden)

	status := domain.OrderStatusCancelled
	orders, err := env.exchange.ListOrders(
		ctx, env.collection.Address, application.OrderFilter{Status: &status},
	)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, sale.Hash(), orders[0].Hash)

	orders, err = env.exchange.ListOrders(
		ctx, env.collection.Address, application.OrderFilter{Signer: env.seller.addr},
	)
	require.NoError(t, err)
	require.Len(t, orders, 2)
}

func TestClaimSweepsExpiredOrder(t *testing.T) {
	taker := newWallet(t).addr
	tests := []struct {
		name     string
		strategy domain.StrategyType
		params   func(t *testing.T) []byte
	}{
		{
			name:     "english auction",
			strategy: domain.StrategyEnglishAuction,
			params: func(t *testing.T) []byte {
				return mustEncode(t)(domain.EncodeEnglishAuctionParams(big.NewInt(100)))
			},
		},
		{
			name:     "dutch auction",
			strategy: domain.StrategyDutchAuction,
			params: func(t *testing.T) []byte {
				return mustEncode(t)(domain.EncodeDutchAuctionParams(
					big.NewInt(2000), big.NewInt(1000), big.NewInt(startBlock),
				))
			},
		},
		{
			name:     "fixed price sale",
			strategy: domain.StrategyFixedPriceSale,
			params: func(t *testing.T) []byte {
				return mustEncode(t)(domain.EncodeFixedPriceSaleParams(big.NewInt(1000)))
			},
		},
		{
			name:     "designated sale",
			strategy: domain.StrategyDesignatedSale,
			params: func(t *testing.T) []byte {
				return mustEncode(t)(domain.EncodeDesignatedSaleParams(
					big.NewInt(1000), taker,
				))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ask := env.signAsk(t, env.newAsk(
				env.seller.addr, 1, tt.strategy, tt.params(t), 120,
			), env.seller)

			// Nothing to claim before the deadline without bids.
			env.clock.SetBlock(110)
			_, err := env.exchange.Claim(ctx, env.collection.Address, env.seller.addr, ask)
			require.ErrorIs(t, err, domain.ErrFailure)

			env.clock.SetBlock(121)
			res, err := env.exchange.Claim(ctx, env.collection.Address, env.seller.addr, ask)
			require.NoError(t, err)
			require.False(t, res.Claimed)
			require.Equal(t, domain.OrderStatusCancelled, res.Order.Status)
			require.Equal(t, env.seller.addr, env.ownerOf(t, 1))

			done, err := env.exchange.IsCancelledOrClaimed(ctx, env.collection.Address, ask.Hash())
			require.NoError(t, err)
			require.True(t, done)

			_, err = env.exchange.Claim(ctx, env.collection.Address, env.seller.addr, ask)
			require.ErrorIs(t, err, domain.ErrForbidden)
		})
	}
}

func TestUnknownOrderDefaults(t *testing.T) {
	env := newTestEnv(t)
	hash := common.HexToHash("0x01")

	bestBid, err := env.exchange.BestBid(ctx, env.collection.Address, hash)
	require.NoError(t, err)
	require.True(t, bestBid.IsZero())

	done, err := env.exchange.IsCancelledOrClaimed(ctx, env.collection.Address, hash)
	require.NoError(t, err)
	require.False(t, done)

	filled, err := env.exchange.AmountFilled(ctx, env.collection.Address, hash)
	require.NoError(t, err)
	require.Zero(t, filled.Sign())

	// Lookups never persist the default order.
	orders, err := env.exchange.ListOrders(
		ctx, env.collection.Address, application.OrderFilter{},
	)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestProxyBids(t *testing.T) {
	env := newTestEnv(t)
	proxy := newWallet(t)
	relayer := newWallet(t)
	bidder := env.fund(t, 5000)

	params := mustEncode(t)(domain.EncodeFixedPriceSaleParams(big.NewInt(1000)))
	newProxiedAsk := func(tokenID int64) domain.Ask {
		ask := env.newAsk(
			env.seller.addr, tokenID, domain.StrategyFixedPriceSale, params, 200,
		)
		ask.Proxy = proxy.addr
		return env.signAsk(t, ask, env.seller)
	}

	t.Run("direct bids must come from the proxy", func(t *testing.T) {
		ask := newProxiedAsk(0)
		_, err := env.bid(bidder.addr, ask, 1000)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("bid order relayed by the proxy", func(t *testing.T) {
		ask := newProxiedAsk(0)
		bid := env.signBidOrder(t, ask, bidder, 1000)

		res, err := env.exchange.BidWithOrder(
			ctx, env.collection.Address, proxy.addr, ask, bid,
		)
		require.NoError(t, err)
		require.True(t, res.Executed)
		require.Equal(t, bidder.addr, env.ownerOf(t, 0))
		require.Equal(t, int64(4000), env.balance(t, bidder.addr))
	})

	t.Run("bid order for another ask", func(t *testing.T) {
		ask := newProxiedAsk(1)
		bid := env.signBidOrder(t, newProxiedAsk(2), bidder, 1000)

		_, err := env.exchange.BidWithOrder(
			ctx, env.collection.Address, proxy.addr, ask, bid,
		)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("bid order relayed with approved hash", func(t *testing.T) {
		ask := newProxiedAsk(1)
		bid := env.signBidOrder(t, ask, bidder, 1000)

		_, err := env.exchange.BidWithOrder(
			ctx, env.collection.Address, relayer.addr, ask, bid,
		)
		require.ErrorIs(t, err, domain.ErrForbidden)

		err = env.exchange.UpdateApprovedBidHash(
			ctx, env.collection.Address, proxy.addr, ask.Hash(), bidder.addr, bid.Hash(),
		)
		require.NoError(t, err)

		approved, err := env.exchange.ApprovedBidHash(
			ctx, env.collection.Address, proxy.addr, ask.Hash(), bidder.addr,
		)
		require.NoError(t, err)
		require.Equal(t, bid.Hash(), approved)

		res, err := env.exchange.BidWithOrder(
			ctx, env.collection.Address, relayer.addr, ask, bid,
		)
		require.NoError(t, err)
		require.True(t, res.Executed)
		require.Equal(t, bidder.addr, env.ownerOf(t, 1))

		approved, err = env.exchange.ApprovedBidHash(
			ctx, env.collection.Address, proxy.addr, ask.Hash(), bidder.addr,
		)
		require.NoError(t, err)
		require.Equal(t, common.Hash{}, approved)
	})
}

func TestSettlementRollback(t *testing.T) {
	t.Run("immediate sale", func(t *testing.T) {
		env := newTestEnv(t)
		bidder := env.fund(t, 500)
		params := mustEncode(t)(domain.EncodeFixedPriceSaleParams(big.NewInt(1000)))
		ask := env.signAsk(t, env.newAsk(
			env.seller.addr, 0, domain.StrategyFixedPriceSale, params, 200,
		), env.seller)

		_, err := env.bid(bidder.addr, ask, 1000)
		require.ErrorIs(t, err, domain.ErrFailure)

		require.Equal(t, int64(500), env.balance(t, bidder.addr))
		require.Zero(t, env.balance(t, protocolVault))
		require.Zero(t, env.balance(t, env.seller.addr))
		require.Equal(t, env.seller.addr, env.ownerOf(t, 0))

		order, err := env.exchange.GetOrder(ctx, env.collection.Address, ask.Hash())
		require.NoError(t, err)
		require.Equal(t, domain.OrderStatusOpen, order.Status)
		require.Zero(t, order.AmountFilled.Sign())
	})

	t.Run("auction bid", func(t *testing.T) {
		env := newTestEnv(t)
		bidder := env.fund(t, 100)
		params := mustEncode(t)(domain.EncodeEnglishAuctionParams(big.NewInt(500)))
		ask := env.signAsk(t, env.newAsk(
			env.seller.addr, 0, domain.StrategyEnglishAuction, params, 200,
		), env.seller)

		_, err := env.bid(bidder.addr, ask, 1000)
		require.ErrorIs(t, err, domain.ErrFailure)

		bestBid, err := env.exchange.BestBid(ctx, env.collection.Address, ask.Hash())
		require.NoError(t, err)
		require.True(t, bestBid.IsZero())
		require.Equal(t, int64(100), env.balance(t, bidder.addr))
	})

	t.Run("seller no longer owns the token", func(t *testing.T) {
		env := newTestEnv(t)
		bidder := env.fund(t, 5000)
		params := mustEncode(t)(domain.EncodeFixedPriceSaleParams(big.NewInt(1000)))
		ask := env.signAsk(t, env.newAsk(
			env.seller.addr, 0, domain.StrategyFixedPriceSale, params, 200,
		), env.seller)

		err := env.operator.TransferToken(
			ctx, env.collection.Address, env.seller.addr, env.seller.addr,
			newWallet(t).addr, big.NewInt(0),
		)
		require.NoError(t, err)

		_, err = env.bid(bidder.addr, ask, 1000)
		require.ErrorIs(t, err, domain.ErrFailure)
		require.Equal(t, int64(5000), env.balance(t, bidder.addr))
		require.Zero(t, env.balance(t, env.seller.addr))
	})
}

func TestParkedTokenSale(t *testing.T) {
	env := newTestEnv(t)
	collection, err := env.operator.DeployCollectionAndPark(
		ctx, env.factoryOwner.addr, application.DeployRequest{
			Owner:               env.seller.addr,
			Name:                "Parked",
			Symbol:              "PRK",
			RoyaltyFeeRecipient: royaltyVault,
			ToTokenID:           big.NewInt(10),
		},
	)
	require.NoError(t, err)
	env.collection = collection
	bidder := env.fund(t, 5000)

	params := mustEncode(t)(domain.EncodeFixedPriceSaleParams(big.NewInt(1000)))
	ask := env.signAsk(t, env.newAsk(
		env.seller.addr, 5, domain.StrategyFixedPriceSale, params, 200,
	), env.seller)

	res, err := env.bid(bidder.addr, ask, 1000)
	require.NoError(t, err)
	require.True(t, res.Executed)
	require.Equal(t, bidder.addr, env.ownerOf(t, 5))

	parked, err := env.operator.Parked(ctx, collection.Address, big.NewInt(5))
	require.NoError(t, err)
	require.False(t, parked)
	// No royalties were configured at deployment.
	require.Equal(t, int64(1000-25-5), env.balance(t, env.seller.addr))

	outOfRange := env.signAsk(t, env.newAsk(
		env.seller.addr, 11, domain.StrategyFixedPriceSale, params, 200,
	), env.seller)
	_, err = env.bid(bidder.addr, outOfRange, 1000)
	require.ErrorIs(t, err, domain.ErrFailure)
	require.Equal(t, int64(4000), env.balance(t, bidder.addr))
}

func TestExchangeQueries(t *testing.T) {
	env := newTestEnv(t)

	separator, err := env.exchange.DomainSeparator(ctx, env.collection.Address)
	require.NoError(t, err)
	require.Equal(t, env.collection.DomainSeparator(), separator)

	ok, err := env.exchange.CanTrade(ctx, env.collection.Address, env.collection.Address)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = env.exchange.CanTrade(ctx, env.collection.Address, currency)
	require.NoError(t, err)
	require.False(t, ok)

	unknown := common.HexToHash("0x01")
	bestBid, err := env.exchange.BestBid(ctx, env.collection.Address, unknown)
	require.NoError(t, err)
	require.True(t, bestBid.IsZero())
	filled, err := env.exchange.AmountFilled(ctx, env.collection.Address, unknown)
	require.NoError(t, err)
	require.Zero(t, filled.Sign())
	_, err = env.exchange.GetOrder(ctx, env.collection.Address, unknown)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = env.exchange.DomainSeparator(ctx, common.HexToAddress("0x03"))
	require.ErrorIs(t, err, domain.ErrCollectionNotFound)

	block, err := env.exchange.BlockNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(startBlock), block)
}

func nextEvent(t *testing.T, events <-chan domain.Event) domain.Event {
	select {
	case event := <-events:
		return event
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return domain.Event{}
}
