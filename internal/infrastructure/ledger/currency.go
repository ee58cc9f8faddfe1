package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
)

type currencyLedger struct {
	balances map[common.Address]map[common.Address]*big.Int

	lock *sync.RWMutex
}

// NewCurrencyLedger returns an in memory ledger of fungible balances.
func NewCurrencyLedger() ports.CurrencyLedger {
	return &currencyLedger{
		balances: make(map[common.Address]map[common.Address]*big.Int),
		lock:     &sync.RWMutex{},
	}
}

func (l *currencyLedger) TransferFrom(
	_ context.Context, currency, payer, payee common.Address, amount *big.Int,
) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if payee == (common.Address{}) {
		return ErrInvalidRecipient
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	balance := l.balanceOf(currency, payer)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf(
			"%w: %s has %s, needs %s", ErrInsufficientBalance, payer.Hex(), balance, amount,
		)
	}

	l.setBalance(currency, payer, new(big.Int).Sub(balance, amount))
	l.setBalance(currency, payee, new(big.Int).Add(l.balanceOf(currency, payee), amount))
	return nil
}

func (l *currencyLedger) BalanceOf(
	_ context.Context, currency, owner common.Address,
) (*big.Int, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return new(big.Int).Set(l.balanceOf(currency, owner)), nil
}

func (l *currencyLedger) Mint(
	_ context.Context, currency, to common.Address, amount *big.Int,
) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if to == (common.Address{}) {
		return ErrInvalidRecipient
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	l.setBalance(currency, to, new(big.Int).Add(l.balanceOf(currency, to), amount))
	return nil
}

func (l *currencyLedger) balanceOf(currency, owner common.Address) *big.Int {
	if balance, ok := l.balances[currency][owner]; ok {
		return balance
	}
	return big.NewInt(0)
}

func (l *currencyLedger) setBalance(currency, owner common.Address, amount *big.Int) {
	if _, ok := l.balances[currency]; !ok {
		l.balances[currency] = make(map[common.Address]*big.Int)
	}
	l.balances[currency][owner] = amount
}
