package ledger

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
)

type operatorKey struct {
	owner    common.Address
	operator common.Address
}

// collectionTokens is the ownership state of the tokens of a single
// collection.
type collectionTokens struct {
	owners    map[string]common.Address
	approvals map[string]common.Address
	operators map[operatorKey]bool
}

func newCollectionTokens() *collectionTokens {
	return &collectionTokens{
		owners:    make(map[string]common.Address),
		approvals: make(map[string]common.Address),
		operators: make(map[operatorKey]bool),
	}
}

type tokenLedger struct {
	collections map[common.Address]*collectionTokens

	lock *sync.RWMutex
}

// NewTokenLedger returns an in memory ledger of non-fungible tokens.
func NewTokenLedger() ports.TokenLedger {
	return &tokenLedger{
		collections: make(map[common.Address]*collectionTokens),
		lock:        &sync.RWMutex{},
	}
}

func (l *tokenLedger) OwnerOf(
	_ context.Context, token common.Address, tokenID *big.Int,
) (common.Address, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	owner, ok := l.tokens(token).owners[tokenID.String()]
	if !ok {
		return common.Address{}, ErrTokenNotFound
	}
	return owner, nil
}

func (l *tokenLedger) Exists(
	_ context.Context, token common.Address, tokenID *big.Int,
) (bool, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	_, ok := l.tokens(token).owners[tokenID.String()]
	return ok, nil
}

func (l *tokenLedger) TransferFrom(
	_ context.Context, token, from, to common.Address, tokenID, amount *big.Int,
) error {
	if amount != nil && amount.Cmp(big.NewInt(1)) != 0 {
		return ErrInvalidAmount
	}
	if to == (common.Address{}) {
		return ErrInvalidRecipient
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	tokens := l.mutableTokens(token)
	id := tokenID.String()
	owner, ok := tokens.owners[id]
	if !ok {
		return ErrTokenNotFound
	}
	if owner != from {
		return ErrNotTokenOwner
	}

	delete(tokens.approvals, id)
	tokens.owners[id] = to
	return nil
}

func (l *tokenLedger) Approve(
	_ context.Context, token, spender common.Address, tokenID *big.Int,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	tokens := l.mutableTokens(token)
	id := tokenID.String()
	if _, ok := tokens.owners[id]; !ok {
		return ErrTokenNotFound
	}
	tokens.approvals[id] = spender
	return nil
}

func (l *tokenLedger) GetApproved(
	_ context.Context, token common.Address, tokenID *big.Int,
) (common.Address, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	tokens := l.tokens(token)
	id := tokenID.String()
	if _, ok := tokens.owners[id]; !ok {
		return common.Address{}, ErrTokenNotFound
	}
	return tokens.approvals[id], nil
}

func (l *tokenLedger) SetApprovalForAll(
	_ context.Context, token, owner, operator common.Address, approved bool,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	tokens := l.mutableTokens(token)
	key := operatorKey{owner, operator}
	if approved {
		tokens.operators[key] = true
	} else {
		delete(tokens.operators, key)
	}
	return nil
}

func (l *tokenLedger) IsApprovedForAll(
	_ context.Context, token, owner, operator common.Address,
) (bool, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.tokens(token).operators[operatorKey{owner, operator}], nil
}

func (l *tokenLedger) Mint(
	_ context.Context, token, to common.Address, tokenID *big.Int,
) error {
	if to == (common.Address{}) {
		return ErrInvalidRecipient
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	tokens := l.mutableTokens(token)
	id := tokenID.String()
	if _, ok := tokens.owners[id]; ok {
		return ErrTokenAlreadyExists
	}
	tokens.owners[id] = to
	return nil
}

func (l *tokenLedger) Burn(
	_ context.Context, token common.Address, tokenID *big.Int,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	tokens := l.mutableTokens(token)
	id := tokenID.String()
	if _, ok := tokens.owners[id]; !ok {
		return ErrTokenNotFound
	}
	delete(tokens.owners, id)
	delete(tokens.approvals, id)
	return nil
}

// tokens returns the state of the given collection for reading.
func (l *tokenLedger) tokens(token common.Address) *collectionTokens {
	if tokens, ok := l.collections[token]; ok {
		return tokens
	}
	return newCollectionTokens()
}

// mutableTokens returns the state of the given collection, creating it if
// missing. Must be called with the write lock held.
func (l *tokenLedger) mutableTokens(token common.Address) *collectionTokens {
	tokens, ok := l.collections[token]
	if !ok {
		tokens = newCollectionTokens()
		l.collections[token] = tokens
	}
	return tokens
}
