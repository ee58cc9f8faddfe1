package application_test

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/clock"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/ledger"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/storage/db/inmemory"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
	"github.com/stretchr/testify/require"
)

const startBlock = 100

var (
	ctx = context.Background()

	currency         = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	protocolVault    = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	operationalVault = common.HexToAddress("0x00000000000000000000000000000000000000f2")
	royaltyVault     = common.HexToAddress("0x00000000000000000000000000000000000000f3")
	now              = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
)

type wallet struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func newWallet(t *testing.T) wallet {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return wallet{key, crypto.PubkeyToAddress(key.PublicKey)}
}

// testEnv is a factory with a single collection whose first tokens are
// owned by seller.
type testEnv struct {
	exchange   application.ExchangeService
	permit     application.PermitService
	operator   application.OperatorService
	pubsub     application.PubSubService
	tokens     ports.TokenLedger
	currencies ports.CurrencyLedger
	clock      *clock.ManualClock

	factoryOwner wallet
	seller       wallet
	collection   *domain.Collection
}

func newTestEnv(t *testing.T) *testEnv {
	repoManager := inmemory.NewRepoManager()
	tokens := ledger.NewTokenLedger()
	currencies := ledger.NewCurrencyLedger()
	clk := clock.NewManualClock(startBlock)
	clk.SetTime(now)
	pubsub := application.NewPubSubService(nil)
	lock := &sync.Mutex{}

	exchange, err := application.NewExchangeService(
		repoManager, tokens, currencies, clk, pubsub, lock,
	)
	require.NoError(t, err)
	permit, err := application.NewPermitService(
		repoManager, tokens, clk, pubsub, lock,
	)
	require.NoError(t, err)
	operator, err := application.NewOperatorService(
		repoManager, tokens, currencies, clk, pubsub, true, lock,
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		pubsub.Close()
	})

	env := &testEnv{
		exchange:     exchange,
		permit:       permit,
		operator:     operator,
		pubsub:       pubsub,
		tokens:       tokens,
		currencies:   currencies,
		clock:        clk,
		factoryOwner: newWallet(t),
		seller:       newWallet(t),
	}

	_, err = operator.InitFactory(ctx, application.FactoryConfig{
		Owner:                   env.factoryOwner.addr,
		ChainID:                 big.NewInt(1),
		BaseURI:                 "https://nft.shoyu.test/",
		ProtocolFeeRecipient:    protocolVault,
		ProtocolFee:             domain.DefaultProtocolFee,
		OperationalFeeRecipient: operationalVault,
		OperationalFee:          domain.DefaultOperationalFee,
		Strategies:              domain.StrategyTypes(),
	})
	require.NoError(t, err)

	env.collection, err = operator.DeployCollectionAndMintBatch(
		ctx, env.factoryOwner.addr, application.DeployRequest{
			Owner:               env.seller.addr,
			Name:                "Shoyu",
			Symbol:              "SHOYU",
			RoyaltyFeeRecipient: royaltyVault,
			RoyaltyFee:          25,
			TokenIDs:            []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(2)},
		},
	)
	require.NoError(t, err)
	return env
}

// fund returns a new wallet holding the given amount of the test currency.
func (e *testEnv) fund(t *testing.T, amount int64) wallet {
	w := newWallet(t)
	if amount > 0 {
		err := e.operator.Faucet(ctx, currency, w.addr, big.NewInt(amount))
		require.NoError(t, err)
	}
	return w
}

func (e *testEnv) balance(t *testing.T, owner common.Address) int64 {
	balance, err := e.currencies.BalanceOf(ctx, currency, owner)
	require.NoError(t, err)
	return balance.Int64()
}

func (e *testEnv) ownerOf(t *testing.T, tokenID int64) common.Address {
	owner, err := e.tokens.OwnerOf(ctx, e.collection.Address, big.NewInt(tokenID))
	require.NoError(t, err)
	return owner
}

func (e *testEnv) newAsk(
	signer common.Address, tokenID int64, strategy domain.StrategyType,
	params []byte, deadline uint64,
) domain.Ask {
	return domain.Ask{
		Signer:   signer,
		Token:    e.collection.Address,
		TokenID:  big.NewInt(tokenID),
		Amount:   big.NewInt(1),
		Strategy: strategy.Address(),
		Currency: currency,
		Deadline: new(big.Int).SetUint64(deadline),
		Params:   params,
	}
}

func (e *testEnv) signAsk(t *testing.T, ask domain.Ask, signer wallet) domain.Ask {
	digest := eip712.Digest(e.collection.DomainSeparator(), ask.Hash())
	sig, err := eip712.Sign(digest, signer.key)
	require.NoError(t, err)
	ask.Signature = sig
	return ask
}

func (e *testEnv) signBidOrder(
	t *testing.T, ask domain.Ask, bidder wallet, price int64,
) domain.BidOrder {
	bid := domain.BidOrder{
		AskHash: ask.Hash(),
		Signer:  bidder.addr,
		Amount:  big.NewInt(1),
		Price:   big.NewInt(price),
	}
	digest := eip712.Digest(e.collection.DomainSeparator(), bid.Hash())
	sig, err := eip712.Sign(digest, bidder.key)
	require.NoError(t, err)
	bid.Signature = sig
	return bid
}

func (e *testEnv) bid(
	bidder common.Address, ask domain.Ask, price int64,
) (*application.BidResult, error) {
	return e.exchange.Bid(ctx, e.collection.Address, bidder, application.BidRequest{
		Ask:    ask,
		Amount: big.NewInt(1),
		Price:  big.NewInt(price),
	})
}

func mustEncode(t *testing.T) func([]byte, error) []byte {
	return func(params []byte, err error) []byte {
		require.NoError(t, err)
		return params
	}
}

// sellerProceeds returns price less protocol, operational and royalty fees
// of the test environment.
func sellerProceeds(price int64) int64 {
	return price - price*25/1000 - price*5/1000 - price*25/1000
}
