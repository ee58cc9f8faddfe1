package application

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
	log "github.com/sirupsen/logrus"
)

// PermitService grants token approvals on behalf of owners who signed an
// off-chain permit.
type PermitService interface {
	Permit(
		ctx context.Context, collection, spender common.Address,
		tokenID, deadline *big.Int, sig eip712.Signature,
	) error
	PermitAll(
		ctx context.Context, collection, owner, spender common.Address,
		deadline *big.Int, sig eip712.Signature,
	) error
	Nonces(ctx context.Context, collection, owner common.Address) (*Nonces, error)
}

type permitService struct {
	repoManager ports.RepoManager
	tokens      ports.TokenLedger
	clock       ports.BlockClock
	pubsub      PubSubService
	lock        *sync.Mutex
}

func NewPermitService(
	repoManager ports.RepoManager,
	tokens ports.TokenLedger,
	clock ports.BlockClock,
	pubsub PubSubService,
	lock *sync.Mutex,
) (PermitService, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if tokens == nil {
		return nil, fmt.Errorf("missing token ledger")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing block clock")
	}
	if pubsub == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &permitService{repoManager, tokens, clock, pubsub, lock}, nil
}

func (s *permitService) Permit(
	ctx context.Context, collectionAddr, spender common.Address,
	tokenID, deadline *big.Int, sig eip712.Signature,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.isExpired(deadline) {
		return domain.ErrExpired
	}
	if tokenID == nil || tokenID.Sign() < 0 {
		return domain.ErrInvalidTokenID
	}
	collection, err := s.repoManager.CollectionRepository().GetCollection(
		ctx, collectionAddr,
	)
	if err != nil {
		return err
	}
	exists, err := s.tokens.Exists(ctx, collection.Address, tokenID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrInvalidTokenID
	}
	owner, err := s.tokens.OwnerOf(ctx, collection.Address, tokenID)
	if err != nil {
		return err
	}

	nonce := collection.Nonce(owner)
	digest := collection.PermitDigest(spender, tokenID, nonce, deadline)
	if err := eip712.Verify(digest, owner, sig); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, err)
	}

	if err := s.repoManager.CollectionRepository().UpdateCollection(
		ctx, collection.Address,
		func(c *domain.Collection) (*domain.Collection, error) {
			c.UseNonce(owner)
			return c, nil
		},
	); err != nil {
		return err
	}

	if err := s.tokens.Approve(ctx, collection.Address, spender, tokenID); err != nil {
		if err := s.repoManager.CollectionRepository().UpdateCollection(
			ctx, collection.Address,
			func(c *domain.Collection) (*domain.Collection, error) {
				c.Nonces[owner] = nonce
				return c, nil
			},
		); err != nil {
			log.WithError(err).Errorf("failed to restore permit nonce of %s", owner.Hex())
		}
		return fmt.Errorf("%w: %s", domain.ErrFailure, err)
	}

	log.Debugf(
		"permit: %s approved for token %s of %s", spender.Hex(), tokenID, owner.Hex(),
	)
	s.pubsub.PublishEvent(domain.Event{
		Type:       domain.EventApproval,
		Collection: collection.Address,
		Block:      s.block(ctx),
		Owner:      owner,
		Spender:    spender,
		TokenID:    tokenID,
	})
	return nil
}

func (s *permitService) PermitAll(
	ctx context.Context, collectionAddr, owner, spender common.Address,
	deadline *big.Int, sig eip712.Signature,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.isExpired(deadline) {
		return domain.ErrExpired
	}
	collection, err := s.repoManager.CollectionRepository().GetCollection(
		ctx, collectionAddr,
	)
	if err != nil {
		return err
	}

	nonce := collection.NonceForAll(owner)
	digest := collection.PermitAllDigest(owner, spender, nonce, deadline)
	if err := eip712.Verify(digest, owner, sig); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, err)
	}

	if err := s.repoManager.CollectionRepository().UpdateCollection(
		ctx, collection.Address,
		func(c *domain.Collection) (*domain.Collection, error) {
			c.UseNonceForAll(owner)
			return c, nil
		},
	); err != nil {
		return err
	}

	if err := s.tokens.SetApprovalForAll(
		ctx, collection.Address, owner, spender, true,
	); err != nil {
		if err := s.repoManager.CollectionRepository().UpdateCollection(
			ctx, collection.Address,
			func(c *domain.Collection) (*domain.Collection, error) {
				c.NoncesForAll[owner] = nonce
				return c, nil
			},
		); err != nil {
			log.WithError(err).Errorf("failed to restore permit-all nonce of %s", owner.Hex())
		}
		return fmt.Errorf("%w: %s", domain.ErrFailure, err)
	}

	log.Debugf("permit all: %s is operator of %s", spender.Hex(), owner.Hex())
	s.pubsub.PublishEvent(domain.Event{
		Type:       domain.EventApprovalForAll,
		Collection: collection.Address,
		Block:      s.block(ctx),
		Owner:      owner,
		Spender:    spender,
	})
	return nil
}

func (s *permitService) Nonces(
	ctx context.Context, collectionAddr, owner common.Address,
) (*Nonces, error) {
	collection, err := s.repoManager.CollectionRepository().GetCollection(
		ctx, collectionAddr,
	)
	if err != nil {
		return nil, err
	}
	return &Nonces{
		Nonce:       collection.Nonce(owner),
		NonceForAll: collection.NonceForAll(owner),
	}, nil
}

// isExpired compares the permit deadline, a unix timestamp, with the wall
// clock.
func (s *permitService) isExpired(deadline *big.Int) bool {
	if deadline == nil {
		return true
	}
	return deadline.Cmp(big.NewInt(s.clock.Now())) < 0
}

func (s *permitService) block(ctx context.Context) uint64 {
	block, err := s.clock.BlockNumber(ctx)
	if err != nil {
		log.WithError(err).Debug("failed to get current block")
		return 0
	}
	return block
}
