package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
	"github.com/shoyu-network/shoyu-daemon/pkg/mathutil"
)

// ZeroAddress is the sentinel for "not set" addresses: the native currency,
// the signer as recipient of proceeds, no proxy.
var ZeroAddress = common.Address{}

// Ask is a signed intent to sell or auction an asset under a strategy.
// Deadline is expressed as a block number.
type Ask struct {
	Signer    common.Address   `json:"signer"`
	Proxy     common.Address   `json:"proxy"`
	Token     common.Address   `json:"token"`
	TokenID   *big.Int         `json:"tokenId"`
	Amount    *big.Int         `json:"amount"`
	Strategy  common.Address   `json:"strategy"`
	Currency  common.Address   `json:"currency"`
	Recipient common.Address   `json:"recipient"`
	Deadline  *big.Int         `json:"deadline"`
	Params    hexutil.Bytes    `json:"params"`
	Signature eip712.Signature `json:"signature"`
}

// Hash returns the identity of the order, the struct hash of every field
// but the signature.
func (a Ask) Hash() common.Hash {
	return eip712.HashStruct(
		eip712.AskTypeHash,
		eip712.Address(a.Signer),
		eip712.Address(a.Proxy),
		eip712.Address(a.Token),
		eip712.Uint256(a.TokenID),
		eip712.Uint256(a.Amount),
		eip712.Address(a.Strategy),
		eip712.Address(a.Currency),
		eip712.Address(a.Recipient),
		eip712.Uint256(a.Deadline),
		eip712.DynamicBytes(a.Params),
	)
}

// Validate checks the order is well formed. It does not verify the signature.
func (a Ask) Validate() error {
	if a.Signer == ZeroAddress {
		return ErrInvalidSigner
	}
	if a.Token == ZeroAddress {
		return ErrInvalidToken
	}
	if !mathutil.IsNonNegative(a.TokenID) {
		return ErrInvalidTokenID
	}
	if !mathutil.IsPositive(a.Amount) {
		return ErrInvalidAmount
	}
	if a.Strategy == ZeroAddress {
		return ErrInvalidStrategy
	}
	if !mathutil.IsNonNegative(a.Deadline) {
		return ErrInvalidDeadline
	}
	return nil
}

// Verify checks the ask was signed by its signer in the given domain.
func (a Ask) Verify(domainSeparator common.Hash) error {
	digest := eip712.Digest(domainSeparator, a.Hash())
	if err := eip712.Verify(digest, a.Signer, a.Signature); err != nil {
		return fmt.Errorf("%w: ask %s: %s", ErrUnauthorized, a.Hash().Hex(), err)
	}
	return nil
}

// ProceedsRecipient returns who receives the seller proceeds.
func (a Ask) ProceedsRecipient() common.Address {
	if a.Recipient == ZeroAddress {
		return a.Signer
	}
	return a.Recipient
}

// IsExpired returns whether the order deadline is before the given block.
func (a Ask) IsExpired(block uint64) bool {
	return a.Deadline.Cmp(new(big.Int).SetUint64(block)) < 0
}
