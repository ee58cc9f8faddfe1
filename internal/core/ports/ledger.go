package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokenLedger tracks the ownership of the non-fungible tokens of every
// collection. Token is the collection address.
type TokenLedger interface {
	OwnerOf(ctx context.Context, token common.Address, tokenID *big.Int) (common.Address, error)
	Exists(ctx context.Context, token common.Address, tokenID *big.Int) (bool, error)
	// TransferFrom moves amount units of the token from one owner to another.
	// For non-fungible tokens amount is always 1.
	TransferFrom(
		ctx context.Context, token, from, to common.Address, tokenID, amount *big.Int,
	) error
	Approve(ctx context.Context, token, spender common.Address, tokenID *big.Int) error
	GetApproved(ctx context.Context, token common.Address, tokenID *big.Int) (common.Address, error)
	SetApprovalForAll(ctx context.Context, token, owner, operator common.Address, approved bool) error
	IsApprovedForAll(ctx context.Context, token, owner, operator common.Address) (bool, error)
	Mint(ctx context.Context, token, to common.Address, tokenID *big.Int) error
	Burn(ctx context.Context, token common.Address, tokenID *big.Int) error
}

// CurrencyLedger moves fungible balances. The zero currency address is the
// native asset.
type CurrencyLedger interface {
	TransferFrom(ctx context.Context, currency, payer, payee common.Address, amount *big.Int) error
	BalanceOf(ctx context.Context, currency, owner common.Address) (*big.Int, error)
	// Mint credits new funds, only meant for local networks.
	Mint(ctx context.Context, currency, to common.Address, amount *big.Int) error
}

// BlockClock gives the current block height, used for order deadlines, and
// the wall clock time, used for permit deadlines.
type BlockClock interface {
	BlockNumber(ctx context.Context) (uint64, error)
	Now() int64
}
