package domain_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
	"github.com/stretchr/testify/require"
)

var owner = common.HexToAddress("0x00000000000000000000000000000000000000a0")

func TestNewCollection(t *testing.T) {
	c := newTestCollection(t, owner, 10)
	require.Equal(t, uint8(10), c.RoyaltyFee)
	require.Zero(t, c.ParkedUntil.Sign())
	require.True(t, c.CanTrade(collectionAddr))
	require.False(t, c.CanTrade(erc20))

	c = newTestCollection(t, owner, 0)
	recipient, fee := c.RoyaltyFeeInfo()
	require.Equal(t, royaltyVault, recipient)
	require.Equal(t, domain.RoyaltyFeeUnset, fee)
	require.Zero(t, c.EffectiveRoyaltyFee())

	tests := []struct {
		name      string
		cname     string
		owner     common.Address
		recipient common.Address
		fee       uint8
		err       error
	}{
		{"empty_name", " ", owner, royaltyVault, 10, domain.ErrInvalidName},
		{"zero_owner", "Name", domain.ZeroAddress, royaltyVault, 10, domain.ErrInvalidTo},
		{"zero_recipient", "Name", owner, domain.ZeroAddress, 10, domain.ErrInvalidTo},
		{"fee_too_high", "Name", owner, royaltyVault, 251, domain.ErrInvalidFee},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewCollection(
				collectionAddr, tt.cname, "SYM", tt.owner, big.NewInt(1), tt.recipient, tt.fee,
			)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCollectionSetRoyaltyFee(t *testing.T) {
	type step struct {
		fee uint8
		err error
	}
	tests := []struct {
		name    string
		initial uint8
		steps   []step
	}{
		{
			name:    "deployed_with_royalty",
			initial: 20,
			steps: []step{
				{30, domain.ErrInvalidFee},
				{20, nil},
				{3, nil},
				{0, nil},
				{1, domain.ErrInvalidFee},
			},
		},
		{
			name:    "deployed_without_royalty",
			initial: 0,
			steps: []step{
				{251, domain.ErrInvalidFee},
				{93, nil},
				{111, domain.ErrInvalidFee},
				{0, nil},
				{1, domain.ErrInvalidFee},
			},
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCollection(t, owner, tt.initial)
			for _, s := range tt.steps {
				before := c.RoyaltyFee
				err := c.SetRoyaltyFee(owner, s.fee)
				if s.err != nil {
					require.ErrorIs(t, err, s.err, "fee %d", s.fee)
					require.Equal(t, before, c.RoyaltyFee)
					continue
				}
				require.NoError(t, err, "fee %d", s.fee)
				require.Equal(t, s.fee, c.RoyaltyFee)
			}
		})
	}

	c := newTestCollection(t, owner, 20)
	require.ErrorIs(t, c.SetRoyaltyFee(other, 10), domain.ErrForbidden)
}

func TestCollectionRoyaltyInfo(t *testing.T) {
	c := newTestCollection(t, owner, 10)
	recipient, amount := c.RoyaltyInfo(big.NewInt(12345))
	require.Equal(t, royaltyVault, recipient)
	require.Equal(t, int64(123), amount.Int64())

	c = newTestCollection(t, owner, 0)
	_, amount = c.RoyaltyInfo(big.NewInt(12345))
	require.Zero(t, amount.Sign())
}

func TestCollectionParkAndMint(t *testing.T) {
	c := newTestCollection(t, owner, 10)
	require.NoError(t, c.ParkTokenIds(owner, big.NewInt(50)))

	require.True(t, c.IsParked(big.NewInt(0)))
	require.True(t, c.IsParked(big.NewInt(49)))
	require.False(t, c.IsParked(big.NewInt(50)))

	require.ErrorIs(t, c.ParkTokenIds(owner, big.NewInt(30)), domain.ErrInvalidToTokenID)
	require.ErrorIs(t, c.ParkTokenIds(owner, big.NewInt(50)), domain.ErrInvalidToTokenID)
	require.ErrorIs(t, c.ParkTokenIds(other, big.NewInt(60)), domain.ErrForbidden)
	require.NoError(t, c.ParkTokenIds(owner, big.NewInt(51)))
	require.NoError(t, c.ParkTokenIds(owner, big.NewInt(100)))

	require.ErrorIs(t, c.Mint(other, owner, big.NewInt(3)), domain.ErrForbidden)
	require.ErrorIs(t, c.Mint(owner, domain.ZeroAddress, big.NewInt(3)), domain.ErrInvalidTo)
	require.ErrorIs(t, c.Mint(owner, owner), domain.ErrInvalidTokenID)
	require.ErrorIs(
		t, c.Mint(owner, owner, big.NewInt(3), big.NewInt(3)), domain.ErrAlreadyMinted,
	)
	require.False(t, c.IsMinted(big.NewInt(3)))

	require.NoError(t, c.Mint(owner, owner, big.NewInt(3), big.NewInt(200)))
	require.True(t, c.IsMinted(big.NewInt(3)))
	require.True(t, c.IsMinted(big.NewInt(200)))
	require.False(t, c.IsParked(big.NewInt(3)))
	require.True(t, c.IsParked(big.NewInt(4)))
	require.ErrorIs(t, c.Mint(owner, owner, big.NewInt(200)), domain.ErrAlreadyMinted)
}

func TestCollectionTokenURI(t *testing.T) {
	c := newTestCollection(t, owner, 10)
	require.NoError(t, c.ParkTokenIds(owner, big.NewInt(10)))
	factoryURI := "https://nft.shoyu.test/"
	expectedPrefix := factoryURI + strings.ToLower(collectionAddr.Hex()) + "/"

	uri, err := c.TokenURI(factoryURI, big.NewInt(1), false)
	require.NoError(t, err)
	require.Equal(t, expectedPrefix+"1.json", uri)

	_, err = c.TokenURI(factoryURI, big.NewInt(10), false)
	require.ErrorIs(t, err, domain.ErrInvalidTokenID)

	uri, err = c.TokenURI(factoryURI, big.NewInt(10), true)
	require.NoError(t, err)
	require.Equal(t, expectedPrefix+"10.json", uri)

	require.ErrorIs(t, c.SetBaseURI(other, "ipfs://x/"), domain.ErrForbidden)
	require.NoError(t, c.SetBaseURI(owner, "ipfs://x/"))
	uri, err = c.TokenURI(factoryURI, big.NewInt(1), false)
	require.NoError(t, err)
	require.Equal(t, "ipfs://x/1.json", uri)

	require.NoError(t, c.SetTokenURI(owner, big.NewInt(1), "ipfs://one"))
	uri, err = c.TokenURI(factoryURI, big.NewInt(1), false)
	require.NoError(t, err)
	require.Equal(t, "ipfs://one", uri)
}

func TestCollectionNonces(t *testing.T) {
	c := newTestCollection(t, owner, 10)
	require.Zero(t, c.Nonce(bidder))
	require.Zero(t, c.UseNonce(bidder))
	require.Equal(t, uint64(1), c.UseNonce(bidder))
	require.Equal(t, uint64(2), c.Nonce(bidder))
	require.Zero(t, c.NonceForAll(bidder))
	require.Zero(t, c.UseNonceForAll(bidder))
	require.Equal(t, uint64(1), c.NonceForAll(bidder))
	require.Zero(t, c.Nonce(other))
}

func TestCollectionPermitDigest(t *testing.T) {
	alice := newWallet(t)
	c := newTestCollection(t, alice.addr, 10)
	deadline := big.NewInt(1700000000)

	digest := c.PermitDigest(bidder, big.NewInt(7), 0, deadline)
	sig, err := eip712.Sign(digest, alice.key)
	require.NoError(t, err)
	require.NoError(t, eip712.Verify(digest, alice.addr, sig))

	require.NotEqual(t, digest, c.PermitDigest(bidder, big.NewInt(7), 1, deadline))
	require.NotEqual(t, digest, c.PermitDigest(other, big.NewInt(7), 0, deadline))
	require.NotEqual(
		t, c.PermitAllDigest(alice.addr, bidder, 0, deadline),
		c.PermitAllDigest(alice.addr, bidder, 1, deadline),
	)
}

func TestCollectionApprovedBidHash(t *testing.T) {
	c := newTestCollection(t, owner, 10)
	proxy, askHash, bidHash := common.Address{0xcc}, common.Hash{0x01}, common.Hash{0x02}

	require.Equal(t, common.Hash{}, c.ApprovedBidHash(proxy, askHash, bidder))
	c.SetApprovedBidHash(proxy, askHash, bidder, bidHash)
	require.Equal(t, bidHash, c.ApprovedBidHash(proxy, askHash, bidder))
	require.Equal(t, common.Hash{}, c.ApprovedBidHash(proxy, askHash, other))

	cc := c.Copy()
	c.SetApprovedBidHash(proxy, askHash, bidder, common.Hash{})
	require.Equal(t, common.Hash{}, c.ApprovedBidHash(proxy, askHash, bidder))
	require.Equal(t, bidHash, cc.ApprovedBidHash(proxy, askHash, bidder))
}
