package eip712_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
	"github.com/stretchr/testify/require"
)

func TestDomainTypeHash(t *testing.T) {
	require.Equal(
		t,
		"0x8b73c3c69bb8fe3d512ecc4cf759cc79239f7b179b0ffacaa9a75d522b39400f",
		eip712.EIP712DomainTypeHash.Hex(),
	)
}

func TestDomainSeparator(t *testing.T) {
	collection := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	other := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	chainID := big.NewInt(1)

	ds := eip712.DomainSeparator("Name", chainID, collection)
	require.Equal(t, ds, eip712.DomainSeparator("Name", chainID, collection))
	require.NotEqual(t, ds, eip712.DomainSeparator("Name", chainID, other))
	require.NotEqual(t, ds, eip712.DomainSeparator("Other", chainID, collection))
	require.NotEqual(t, ds, eip712.DomainSeparator("Name", big.NewInt(5), collection))
}

func TestSignAndRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	ds := eip712.DomainSeparator("Name", big.NewInt(1), common.Address{1})
	structHash := eip712.HashStruct(
		eip712.PermitTypeHash,
		eip712.Address(common.Address{2}),
		eip712.Uint256(big.NewInt(1)),
		eip712.Uint256(big.NewInt(0)),
		eip712.Uint256(big.NewInt(100)),
	)
	digest := eip712.Digest(ds, structHash)

	sig, err := eip712.Sign(digest, key)
	require.NoError(t, err)
	require.Contains(t, []uint8{27, 28}, sig.V)

	addr, err := eip712.Recover(digest, sig)
	require.NoError(t, err)
	require.Equal(t, signer, addr)
	require.NoError(t, eip712.Verify(digest, signer, sig))

	parsed, err := eip712.SignatureFromBytes(sig.Bytes())
	require.NoError(t, err)
	require.Equal(t, sig, parsed)
}

func TestFailingVerify(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	digest := crypto.Keccak256Hash([]byte("digest"))
	sig, err := eip712.Sign(digest, key)
	require.NoError(t, err)

	flipped := sig
	flipped.R[31] ^= 0x01

	badV := sig
	badV.V = 29

	highS := sig
	highS.S = common.BigToHash(crypto.S256().Params().N)

	tests := []struct {
		name   string
		digest common.Hash
		signer common.Address
		sig    eip712.Signature
	}{
		{"tampered_digest", crypto.Keccak256Hash([]byte("other")), signer, sig},
		{"wrong_signer", digest, common.Address{9}, sig},
		{"zero_signer", digest, common.Address{}, sig},
		{"flipped_r", digest, signer, flipped},
		{"invalid_v", digest, signer, badV},
		{"out_of_range_s", digest, signer, highS},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, eip712.Verify(tt.digest, tt.signer, tt.sig))
		})
	}
}

func TestSignatureFromBytes(t *testing.T) {
	_, err := eip712.SignatureFromBytes(make([]byte, 64))
	require.Error(t, err)

	raw := make([]byte, 65)
	raw[64] = 1
	sig, err := eip712.SignatureFromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, uint8(28), sig.V)
}
