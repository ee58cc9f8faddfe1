package application_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestInitFactory(t *testing.T) {
	env := newTestEnv(t)

	factory, err := env.operator.InitFactory(ctx, application.FactoryConfig{
		Owner:                   newWallet(t).addr,
		ProtocolFeeRecipient:    protocolVault,
		OperationalFeeRecipient: operationalVault,
	})
	require.NoError(t, err)
	require.Equal(t, env.factoryOwner.addr, factory.Owner)

	strategies, err := env.operator.ListStrategies(ctx)
	require.NoError(t, err)
	require.Len(t, strategies, len(domain.StrategyTypes()))
	for _, s := range strategies {
		require.True(t, s.Whitelisted)
	}

	fees, err := env.operator.GetFees(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.DefaultProtocolFee, fees.ProtocolFee)
	require.Equal(t, domain.DefaultOperationalFee, fees.OperationalFee)
	require.Equal(t, "2.5", fees.ProtocolFeePercentage)
}

func TestFactoryAdmin(t *testing.T) {
	env := newTestEnv(t)
	owner := env.factoryOwner.addr
	stranger := newWallet(t).addr
	dutch := domain.StrategyDutchAuction.Address()

	err := env.operator.SetStrategyWhitelisted(ctx, stranger, dutch, false)
	require.ErrorIs(t, err, domain.ErrForbidden)
	err = env.operator.SetStrategyWhitelisted(ctx, owner, dutch, false)
	require.NoError(t, err)

	params := mustEncode(t)(domain.EncodeDutchAuctionParams(
		big.NewInt(2000), big.NewInt(1000), big.NewInt(100),
	))
	ask := env.signAsk(t, env.newAsk(
		env.seller.addr, 1, domain.StrategyDutchAuction, params, 200,
	), env.seller)
	bidder := env.fund(t, 5000)
	_, err = env.bid(bidder.addr, ask, 2000)
	require.ErrorIs(t, err, domain.ErrStrategyNotWhitelisted)

	tests := []struct {
		name        string
		caller      common.Address
		fee         uint8
		expectedErr error
	}{
		{"not owner", stranger, 10, domain.ErrForbidden},
		{"fee too high", owner, domain.MaxProtocolFee + 1, domain.ErrInvalidFee},
		{"valid", owner, 50, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fees, err := env.operator.SetProtocolFee(ctx, tt.caller, protocolVault, tt.fee)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.fee, fees.ProtocolFee)
		})
	}

	fees, err := env.operator.SetOperationalFee(ctx, owner, operationalVault, 0)
	require.NoError(t, err)
	require.Zero(t, fees.OperationalFee)
	require.Equal(t, uint8(50), fees.ProtocolFee)
	require.Equal(t, "5", fees.ProtocolFeePercentage)

	err = env.operator.SetFactoryBaseURI(ctx, stranger, "https://other/")
	require.ErrorIs(t, err, domain.ErrForbidden)
	err = env.operator.SetFactoryBaseURI(ctx, owner, "https://other/")
	require.NoError(t, err)
	factory, err := env.operator.GetFactory(ctx)
	require.NoError(t, err)
	require.Equal(t, "https://other/", factory.BaseURI)
}

func TestDeployCollection(t *testing.T) {
	env := newTestEnv(t)
	deployer := newWallet(t)
	events, unsubscribe := env.pubsub.SubscribeEvents()
	defer unsubscribe()

	req := application.DeployRequest{
		Owner:               deployer.addr,
		Name:                "Deployed",
		Symbol:              "DPL",
		RoyaltyFeeRecipient: royaltyVault,
		RoyaltyFee:          10,
		TokenIDs:            []*big.Int{big.NewInt(7)},
	}

	_, err := env.operator.DeployCollectionAndMintBatch(ctx, deployer.addr, req)
	require.ErrorIs(t, err, domain.ErrDeployerNotWhitelisted)

	err = env.operator.SetDeployerWhitelisted(
		ctx, env.factoryOwner.addr, deployer.addr, true,
	)
	require.NoError(t, err)

	invalid := req
	invalid.Name = " "
	_, err = env.operator.DeployCollectionAndMintBatch(ctx, deployer.addr, invalid)
	require.ErrorIs(t, err, domain.ErrInvalidName)
	invalid = req
	invalid.RoyaltyFee = domain.MaxRoyaltyFee + 1
	_, err = env.operator.DeployCollectionAndMintBatch(ctx, deployer.addr, invalid)
	require.ErrorIs(t, err, domain.ErrInvalidFee)

	collection, err := env.operator.DeployCollectionAndMintBatch(ctx, deployer.addr, req)
	require.NoError(t, err)
	require.NotEqual(t, env.collection.Address, collection.Address)

	owner, err := env.tokens.OwnerOf(ctx, collection.Address, big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, deployer.addr, owner)

	event := nextEvent(t, events)
	require.Equal(t, domain.EventCollectionDeployed, event.Type)
	require.Equal(t, collection.Address, event.Collection)
	require.Equal(t, deployer.addr, event.Owner)

	collections, err := env.operator.ListCollections(ctx, deployer.addr)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	collections, err = env.operator.ListCollections(ctx, common.Address{})
	require.NoError(t, err)
	require.Len(t, collections, 2)

	_, err = env.operator.DeployCollectionAndPark(ctx, deployer.addr, req)
	require.ErrorIs(t, err, domain.ErrInvalidToTokenID)
}

func TestRoyaltyFee(t *testing.T) {
	env := newTestEnv(t)
	addr := env.collection.Address

	recipient, amount, err := env.operator.RoyaltyInfo(ctx, addr, big.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, royaltyVault, recipient)
	require.Equal(t, big.NewInt(25), amount)

	tests := []struct {
		name        string
		caller      common.Address
		fee         uint8
		expectedErr error
	}{
		{"not owner", env.factoryOwner.addr, 10, domain.ErrForbidden},
		{"increase", env.seller.addr, 26, domain.ErrInvalidFee},
		{"decrease", env.seller.addr, 10, nil},
		{"increase after decrease", env.seller.addr, 25, domain.ErrInvalidFee},
		{"zero", env.seller.addr, 0, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := env.operator.SetRoyaltyFee(ctx, addr, tt.caller, tt.fee)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			collection, err := env.operator.GetCollection(ctx, addr)
			require.NoError(t, err)
			require.Equal(t, tt.fee, collection.RoyaltyFee)
		})
	}

	_, amount, err = env.operator.RoyaltyInfo(ctx, addr, big.NewInt(1000))
	require.NoError(t, err)
	require.Zero(t, amount.Sign())

	_, _, err = env.operator.RoyaltyInfo(ctx, addr, big.NewInt(-1))
	require.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestTokens(t *testing.T) {
	env := newTestEnv(t)
	addr := env.collection.Address
	buyer := newWallet(t)

	t.Run("mint", func(t *testing.T) {
		err := env.operator.Mint(ctx, addr, buyer.addr, buyer.addr, big.NewInt(10))
		require.ErrorIs(t, err, domain.ErrForbidden)
		err = env.operator.Mint(ctx, addr, env.seller.addr, buyer.addr, big.NewInt(0))
		require.ErrorIs(t, err, domain.ErrAlreadyMinted)
		err = env.operator.Mint(
			ctx, addr, env.seller.addr, buyer.addr, big.NewInt(10), big.NewInt(11),
		)
		require.NoError(t, err)
		require.Equal(t, buyer.addr, env.ownerOf(t, 10))
		require.Equal(t, buyer.addr, env.ownerOf(t, 11))
	})

	t.Run("park", func(t *testing.T) {
		err := env.operator.ParkTokenIds(ctx, addr, env.seller.addr, big.NewInt(20))
		require.NoError(t, err)
		err = env.operator.ParkTokenIds(ctx, addr, env.seller.addr, big.NewInt(20))
		require.ErrorIs(t, err, domain.ErrInvalidToTokenID)

		parked, err := env.operator.Parked(ctx, addr, big.NewInt(15))
		require.NoError(t, err)
		require.True(t, parked)
		// Ids minted before parking are never parked.
		parked, err = env.operator.Parked(ctx, addr, big.NewInt(10))
		require.NoError(t, err)
		require.False(t, parked)

		info, err := env.operator.GetToken(ctx, addr, big.NewInt(15))
		require.NoError(t, err)
		require.False(t, info.Exists)
		require.True(t, info.Parked)
		require.Equal(t, env.seller.addr, info.Owner)

		err = env.operator.TransferToken(
			ctx, addr, env.seller.addr, env.seller.addr, buyer.addr, big.NewInt(15),
		)
		require.NoError(t, err)
		require.Equal(t, buyer.addr, env.ownerOf(t, 15))
		parked, err = env.operator.Parked(ctx, addr, big.NewInt(15))
		require.NoError(t, err)
		require.False(t, parked)
	})

	t.Run("uri", func(t *testing.T) {
		info, err := env.operator.GetToken(ctx, addr, big.NewInt(0))
		require.NoError(t, err)
		require.True(t, info.Exists)
		require.Equal(t, env.seller.addr, info.Owner)
		require.Equal(t,
			"https://nft.shoyu.test/"+strings.ToLower(addr.Hex())+"/0.json", info.URI,
		)

		err = env.operator.SetBaseURI(ctx, addr, buyer.addr, "ipfs://base/")
		require.ErrorIs(t, err, domain.ErrForbidden)
		err = env.operator.SetBaseURI(ctx, addr, env.seller.addr, "ipfs://base/")
		require.NoError(t, err)
		err = env.operator.SetTokenURI(ctx, addr, env.seller.addr, big.NewInt(1), "ipfs://one")
		require.NoError(t, err)

		info, err = env.operator.GetToken(ctx, addr, big.NewInt(0))
		require.NoError(t, err)
		require.Equal(t, "ipfs://base/0.json", info.URI)
		info, err = env.operator.GetToken(ctx, addr, big.NewInt(1))
		require.NoError(t, err)
		require.Equal(t, "ipfs://one", info.URI)

		_, err = env.operator.GetToken(ctx, addr, big.NewInt(100))
		require.ErrorIs(t, err, domain.ErrInvalidTokenID)
	})

	t.Run("transfer", func(t *testing.T) {
		stranger := newWallet(t)
		err := env.operator.TransferToken(
			ctx, addr, stranger.addr, env.seller.addr, stranger.addr, big.NewInt(0),
		)
		require.ErrorIs(t, err, domain.ErrForbidden)
		err = env.operator.TransferToken(
			ctx, addr, buyer.addr, env.seller.addr, buyer.addr, big.NewInt(10),
		)
		require.ErrorIs(t, err, domain.ErrForbidden)
		err = env.operator.TransferToken(
			ctx, addr, env.seller.addr, env.seller.addr, common.Address{}, big.NewInt(0),
		)
		require.ErrorIs(t, err, domain.ErrInvalidTo)
	})

	t.Run("burn", func(t *testing.T) {
		err := env.operator.Burn(ctx, addr, env.seller.addr, big.NewInt(10))
		require.ErrorIs(t, err, domain.ErrForbidden)
		err = env.operator.Burn(ctx, addr, buyer.addr, big.NewInt(99))
		require.ErrorIs(t, err, domain.ErrForbidden)
		err = env.operator.Burn(ctx, addr, buyer.addr, big.NewInt(10), big.NewInt(11))
		require.NoError(t, err)

		exists, err := env.tokens.Exists(ctx, addr, big.NewInt(10))
		require.NoError(t, err)
		require.False(t, exists)
		// Burnt ids can not be minted again.
		err = env.operator.Mint(ctx, addr, env.seller.addr, buyer.addr, big.NewInt(10))
		require.ErrorIs(t, err, domain.ErrAlreadyMinted)
	})
}

func TestFaucetAndMining(t *testing.T) {
	env := newTestEnv(t)
	receiver := newWallet(t).addr

	err := env.operator.Faucet(ctx, currency, receiver, big.NewInt(0))
	require.ErrorIs(t, err, application.ErrInvalidFaucetAmount)
	err = env.operator.Faucet(ctx, currency, receiver, big.NewInt(100))
	require.NoError(t, err)

	balance, err := env.operator.BalanceOf(ctx, currency, receiver)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), balance)

	block, err := env.operator.MineBlocks(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(startBlock+5), block)
	block, err = env.exchange.BlockNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(startBlock+5), block)
}
