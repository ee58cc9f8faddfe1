package domain_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func newTestAsk(signer common.Address, deadline int64) domain.Ask {
	return domain.Ask{
		Signer:   signer,
		Token:    collectionAddr,
		TokenID:  big.NewInt(0),
		Amount:   big.NewInt(1),
		Strategy: domain.StrategyEnglishAuction.Address(),
		Deadline: big.NewInt(deadline),
	}
}

func TestOrderStatus(t *testing.T) {
	for _, s := range []domain.OrderStatus{
		domain.OrderStatusOpen, domain.OrderStatusBidding,
		domain.OrderStatusClaimed, domain.OrderStatusCancelled,
	} {
		got, ok := domain.OrderStatusFromString(s.String())
		require.True(t, ok)
		require.Equal(t, s, got)
	}
	_, ok := domain.OrderStatusFromString("Pending")
	require.False(t, ok)
	require.Equal(t, "Unknown", domain.OrderStatus(9).String())
}

func TestOrderBidAndClaim(t *testing.T) {
	seller := common.Address{0xa1}
	ask := newTestAsk(seller, 100)
	order := domain.NewOrder(collectionAddr, ask.Hash())

	require.True(t, order.IsOpen())
	require.False(t, order.IsCancelledOrClaimed())

	previous, err := order.PlaceBid(ask, newBid(bidder, 60, 5))
	require.NoError(t, err)
	require.True(t, previous.IsZero())
	require.True(t, order.IsBidding())
	require.Equal(t, int64(60), order.Escrow.Int64())

	previous, err = order.PlaceBid(ask, newBid(other, 70, 6))
	require.NoError(t, err)
	require.Equal(t, bidder, previous.Bidder)
	require.Equal(t, int64(60), previous.Price.Int64())
	require.Equal(t, other, order.BestBid.Bidder)
	require.Equal(t, int64(70), order.Escrow.Int64())

	err = order.Cancel(ask, seller, 7)
	require.ErrorIs(t, err, domain.ErrBidExists)

	require.NoError(t, order.Claim(ask, 101))
	require.True(t, order.IsClaimed())
	require.True(t, order.IsCancelledOrClaimed())
	require.Equal(t, int64(1), order.AmountFilled.Int64())
	require.Zero(t, order.Escrow.Sign())

	require.ErrorIs(t, order.Claim(ask, 102), domain.ErrForbidden)
	require.ErrorIs(t, order.Cancel(ask, seller, 102), domain.ErrForbidden)
	_, err = order.PlaceBid(ask, newBid(bidder, 80, 102))
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOrderClaimWithoutBid(t *testing.T) {
	ask := newTestAsk(common.Address{0xa1}, 100)
	order := domain.NewOrder(collectionAddr, ask.Hash())
	require.ErrorIs(t, order.Claim(ask, 101), domain.ErrFailure)
	require.True(t, order.IsOpen())
}

func TestOrderCancel(t *testing.T) {
	seller := common.Address{0xa1}
	ask := newTestAsk(seller, 100)

	tests := []struct {
		name   string
		caller common.Address
		setup  func(o *domain.Order)
		err    error
	}{
		{"by_signer", seller, func(*domain.Order) {}, nil},
		{"by_someone_else", other, func(*domain.Order) {}, domain.ErrForbidden},
		{
			"with_bid", seller,
			func(o *domain.Order) { o.PlaceBid(ask, newBid(bidder, 60, 1)) },
			domain.ErrBidExists,
		},
		{
			"already_cancelled", seller,
			func(o *domain.Order) { o.Cancel(ask, seller, 1) },
			domain.ErrForbidden,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			order := domain.NewOrder(collectionAddr, ask.Hash())
			tt.setup(order)
			err := order.Cancel(ask, tt.caller, 2)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.True(t, order.IsCancelled())
		})
	}
}

func TestOrderSweep(t *testing.T) {
	ask := newTestAsk(common.Address{0xa1}, 100)

	order := domain.NewOrder(collectionAddr, ask.Hash())
	require.ErrorIs(t, order.Sweep(ask, 100), domain.ErrFailure)
	require.NoError(t, order.Sweep(ask, 101))
	require.True(t, order.IsCancelled())
	require.ErrorIs(t, order.Sweep(ask, 102), domain.ErrForbidden)

	order = domain.NewOrder(collectionAddr, ask.Hash())
	_, err := order.PlaceBid(ask, newBid(bidder, 60, 1))
	require.NoError(t, err)
	require.ErrorIs(t, order.Sweep(ask, 101), domain.ErrFailure)
}

func TestOrderFill(t *testing.T) {
	ask := newTestAsk(common.Address{0xa1}, 100)
	ask.Amount = big.NewInt(3)
	order := domain.NewOrder(collectionAddr, ask.Hash())

	done, err := order.Fill(ask, big.NewInt(2), 1)
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, int64(1), order.RemainingAmount(ask).Int64())

	_, err = order.Fill(ask, big.NewInt(2), 2)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	done, err = order.Fill(ask, big.NewInt(1), 3)
	require.NoError(t, err)
	require.True(t, done)
	require.True(t, order.IsClaimed())
	require.Equal(t, int64(3), order.AmountFilled.Int64())
}

func TestOrderCopy(t *testing.T) {
	ask := newTestAsk(common.Address{0xa1}, 100)
	order := domain.NewOrder(collectionAddr, ask.Hash())
	_, err := order.PlaceBid(ask, newBid(bidder, 60, 1))
	require.NoError(t, err)

	snapshot := order.Copy()
	require.NoError(t, order.Claim(ask, 101))

	require.True(t, snapshot.IsBidding())
	require.Equal(t, int64(60), snapshot.Escrow.Int64())
	require.Zero(t, snapshot.AmountFilled.Sign())
}
