package application

import (
	"fmt"
	"sync"

	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	dbbadger "github.com/shoyu-network/shoyu-daemon/internal/infrastructure/storage/db/badger"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/storage/db/inmemory"
	log "github.com/sirupsen/logrus"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

type Config struct {
	DBType   string
	DBConfig interface{}

	TokenLedger    ports.TokenLedger
	CurrencyLedger ports.CurrencyLedger
	Clock          ports.BlockClock
	SecurePubSub   ports.SecurePubSub
	FaucetEnabled  bool

	repo     ports.RepoManager
	pubsub   PubSubService
	exchange ExchangeService
	permit   PermitService
	operator OperatorService

	lock     *sync.Mutex
	lockOnce sync.Once
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("unsupported db type %s", c.DBType)
	}
	if c.TokenLedger == nil {
		return fmt.Errorf("missing token ledger")
	}
	if c.CurrencyLedger == nil {
		return fmt.Errorf("missing currency ledger")
	}
	if c.Clock == nil {
		return fmt.Errorf("missing block clock")
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	svc, _ := c.repoManager()
	return svc
}

func (c *Config) PubSubService() PubSubService {
	svc, _ := c.pubsubService()
	return svc
}

func (c *Config) ExchangeService() ExchangeService {
	svc, _ := c.exchangeService()
	return svc
}

func (c *Config) PermitService() PermitService {
	svc, _ := c.permitService()
	return svc
}

func (c *Config) OperatorService() OperatorService {
	svc, _ := c.operatorService()
	return svc
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			datadir := c.DBConfig.(string)
			repoManager, err := dbbadger.NewRepoManager(datadir, log.New())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		case DBInMemory:
			c.repo = inmemory.NewRepoManager()
		}
	}
	return c.repo, nil
}

func (c *Config) pubsubService() (PubSubService, error) {
	if c.pubsub == nil {
		c.pubsub = NewPubSubService(c.SecurePubSub)
	}
	return c.pubsub, nil
}

func (c *Config) exchangeService() (ExchangeService, error) {
	if c.exchange == nil {
		repo, _ := c.repoManager()
		pubsub, _ := c.pubsubService()
		exchange, err := NewExchangeService(
			repo, c.TokenLedger, c.CurrencyLedger, c.Clock, pubsub, c.sharedLock(),
		)
		if err != nil {
			return nil, err
		}
		c.exchange = exchange
	}
	return c.exchange, nil
}

func (c *Config) permitService() (PermitService, error) {
	if c.permit == nil {
		repo, _ := c.repoManager()
		pubsub, _ := c.pubsubService()
		permit, err := NewPermitService(
			repo, c.TokenLedger, c.Clock, pubsub, c.sharedLock(),
		)
		if err != nil {
			return nil, err
		}
		c.permit = permit
	}
	return c.permit, nil
}

func (c *Config) operatorService() (OperatorService, error) {
	if c.operator == nil {
		repo, _ := c.repoManager()
		pubsub, _ := c.pubsubService()
		operator, err := NewOperatorService(
			repo, c.TokenLedger, c.CurrencyLedger, c.Clock, pubsub,
			c.FaucetEnabled, c.sharedLock(),
		)
		if err != nil {
			return nil, err
		}
		c.operator = operator
	}
	return c.operator, nil
}

// sharedLock is the lock serializing the state transitions of all services.
func (c *Config) sharedLock() *sync.Mutex {
	c.lockOnce.Do(func() {
		c.lock = &sync.Mutex{}
	})
	return c.lock
}
