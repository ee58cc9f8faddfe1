package domain_test

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
	"github.com/stretchr/testify/require"
)

var (
	collectionAddr = common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	royaltyVault   = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	erc20          = common.HexToAddress("0x00000000000000000000000000000000000000e2")
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

func newTestCollection(t *testing.T, owner common.Address, royaltyFee uint8) *domain.Collection {
	c, err := domain.NewCollection(
		collectionAddr, "Name", "Symbol", owner, big.NewInt(1), royaltyVault, royaltyFee,
	)
	require.NoError(t, err)
	return c
}

func newSignedAsk(
	t *testing.T, c *domain.Collection, signer wallet, strategy domain.StrategyType,
	params []byte, deadline uint64,
) domain.Ask {
	ask := domain.Ask{
		Signer:   signer.addr,
		Token:    c.Address,
		TokenID:  big.NewInt(0),
		Amount:   big.NewInt(1),
		Strategy: strategy.Address(),
		Currency: erc20,
		Deadline: new(big.Int).SetUint64(deadline),
		Params:   params,
	}
	sig, err := eip712.Sign(eip712.Digest(c.DomainSeparator(), ask.Hash()), signer.key)
	require.NoError(t, err)
	ask.Signature = sig
	return ask
}

func mustEncode(t *testing.T) func([]byte, error) []byte {
	return func(params []byte, err error) []byte {
		require.NoError(t, err)
		return params
	}
}

func newBid(bidder common.Address, price int64, block uint64) domain.BestBid {
	return domain.BestBid{
		Bidder: bidder,
		Amount: big.NewInt(1),
		Price:  big.NewInt(price),
		Block:  block,
	}
}
