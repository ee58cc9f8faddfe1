package application

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// ledgerOps executes ledger operations keeping track of how to revert them.
type ledgerOps struct {
	tokens     ports.TokenLedger
	currencies ports.CurrencyLedger
	undo       []func(ctx context.Context) error
}

func newLedgerOps(
	tokens ports.TokenLedger, currencies ports.CurrencyLedger,
) *ledgerOps {
	return &ledgerOps{tokens: tokens, currencies: currencies}
}

func (l *ledgerOps) transferCurrency(
	ctx context.Context, currency, from, to common.Address, amount *big.Int,
) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	if err := l.currencies.TransferFrom(ctx, currency, from, to, amount); err != nil {
		return fmt.Errorf(
			"%w: transfer of %s from %s to %s: %s",
			domain.ErrFailure, amount, from.Hex(), to.Hex(), err,
		)
	}
	l.undo = append(l.undo, func(ctx context.Context) error {
		return l.currencies.TransferFrom(ctx, currency, to, from, amount)
	})
	return nil
}

func (l *ledgerOps) transferToken(
	ctx context.Context, token, from, to common.Address, tokenID, amount *big.Int,
) error {
	if err := l.tokens.TransferFrom(ctx, token, from, to, tokenID, amount); err != nil {
		return fmt.Errorf(
			"%w: transfer of token %s from %s: %s", domain.ErrFailure, tokenID, from.Hex(), err,
		)
	}
	l.undo = append(l.undo, func(ctx context.Context) error {
		return l.tokens.TransferFrom(ctx, token, to, from, tokenID, amount)
	})
	return nil
}

func (l *ledgerOps) mintToken(
	ctx context.Context, token, to common.Address, tokenID *big.Int,
) error {
	if err := l.tokens.Mint(ctx, token, to, tokenID); err != nil {
		return fmt.Errorf("%w: mint of token %s: %s", domain.ErrFailure, tokenID, err)
	}
	l.undo = append(l.undo, func(ctx context.Context) error {
		return l.tokens.Burn(ctx, token, tokenID)
	})
	return nil
}

// revert undoes every executed operation, last first.
func (l *ledgerOps) revert(ctx context.Context) error {
	var firstErr error
	for i := len(l.undo) - 1; i >= 0; i-- {
		if err := l.undo[i](ctx); err != nil {
			log.WithError(err).Error("failed to revert ledger operation")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	l.undo = nil
	return firstErr
}
