package main

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shoyu-network/shoyu-daemon/internal/config"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/clock"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/ledger"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/pubsub"
	httpinterface "github.com/shoyu-network/shoyu-daemon/internal/interfaces/http"
	"github.com/shoyu-network/shoyu-daemon/pkg/stats"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to initialize config")
	}

	var (
		datadir       = config.GetDatadir()
		logLevel      = log.Level(config.GetInt(config.LogLevelKey))
		logFile       = config.GetString(config.LogFileKey)
		dbType        = config.GetString(config.DBTypeKey)
		statsInterval = time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second
		blockInterval = time.Duration(config.GetInt(config.BlockIntervalKey)) * time.Second
	)

	log.SetLevel(logLevel)
	if len(logFile) > 0 {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if logLevel >= log.DebugLevel {
		stats.EnableMemoryStatistics(
			ctx, statsInterval, filepath.Join(datadir, "metrics.txt"),
		)
	}

	blockClock, err := newClock(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize block clock")
	}

	var store pubsub.SubscriptionStore
	if dbType == application.DBBadger {
		store, err = pubsub.NewBadgerStore(datadir, log.StandardLogger())
		if err != nil {
			log.WithError(err).Fatal("failed to open webhook store")
		}
	} else {
		store = pubsub.NewInMemoryStore()
	}
	securePubSub, err := pubsub.NewService(
		store, config.GetInt(config.WebhookRateLimitKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize pubsub")
	}

	appConfig := &application.Config{
		DBType:         dbType,
		DBConfig:       filepath.Join(datadir, config.DbLocation),
		TokenLedger:    ledger.NewTokenLedger(),
		CurrencyLedger: ledger.NewCurrencyLedger(),
		Clock:          blockClock,
		SecurePubSub:   securePubSub,
		FaucetEnabled:  config.GetBool(config.EnableFaucetKey),
	}
	if err := appConfig.Validate(); err != nil {
		log.WithError(err).Fatal("invalid application config")
	}

	if err := initFactory(ctx, appConfig.OperatorService()); err != nil {
		log.WithError(err).Fatal("failed to initialize factory")
	}

	httpSvc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Port:        config.GetInt(config.HTTPListeningPortKey),
		AuthSecret:  config.GetString(config.AuthSecretKey),
		NoAuth:      config.GetBool(config.NoAuthKey),
		ExchangeSvc: appConfig.ExchangeService(),
		PermitSvc:   appConfig.PermitService(),
		OperatorSvc: appConfig.OperatorService(),
		PubSubSvc:   appConfig.PubSubService(),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize http interface")
	}

	log.Debug("starting daemon")
	if err := httpSvc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return watchBlocks(gctx, appConfig.ExchangeService(), blockInterval)
	})
	group.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			log.Debugf("received signal %s", sig)
		case <-gctx.Done():
		}
		cancel()
		return nil
	})
	if err := group.Wait(); err != nil {
		log.WithError(err).Warn("daemon stopped with error")
	}

	httpSvc.Stop()
	if err := appConfig.PubSubService().Close(); err != nil {
		log.WithError(err).Warn("failed to close pubsub")
	}
	appConfig.RepoManager().Close()

	log.Debug("exiting")
}

func newClock(ctx context.Context) (ports.BlockClock, error) {
	switch clockType := config.GetString(config.ClockTypeKey); clockType {
	case config.ClockManual:
		return clock.NewManualClock(0), nil
	case config.ClockRPC:
		return clock.NewRPCClock(ctx, config.GetString(config.RPCURLKey))
	case config.ClockLocal:
		interval := time.Duration(config.GetInt(config.BlockIntervalKey)) * time.Second
		return clock.NewLocalClock(interval)
	default:
		return nil, fmt.Errorf("unsupported clock type %s", clockType)
	}
}

// initFactory creates the factory at first start. Later starts keep the
// stored factory untouched.
func initFactory(ctx context.Context, svc application.OperatorService) error {
	if _, err := svc.GetFactory(ctx); err == nil {
		return nil
	}

	owner := config.GetAddress(config.FactoryOwnerKey)
	if owner == domain.ZeroAddress {
		log.Warnf(
			"factory not initialized, restart with %s set to create one",
			config.FactoryOwnerKey,
		)
		return nil
	}

	factory, err := svc.InitFactory(ctx, application.FactoryConfig{
		Owner:                   owner,
		ChainID:                 big.NewInt(int64(config.GetInt(config.ChainIDKey))),
		BaseURI:                 config.GetString(config.BaseURIKey),
		ProtocolFeeRecipient:    config.GetAddress(config.ProtocolFeeRecipientKey),
		ProtocolFee:             uint8(config.GetInt(config.ProtocolFeeKey)),
		OperationalFeeRecipient: config.GetAddress(config.OperationalFeeRecipientKey),
		OperationalFee:          uint8(config.GetInt(config.OperationalFeeKey)),
		Strategies:              domain.StrategyTypes(),
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"address": factory.Address.Hex(),
		"owner":   factory.Owner.Hex(),
	}).Info("factory initialized")
	return nil
}

// watchBlocks keeps the block number gauge up to date.
func watchBlocks(
	ctx context.Context, svc application.ExchangeService, interval time.Duration,
) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			block, err := svc.BlockNumber(ctx)
			if err != nil {
				log.WithError(err).Warn("failed to fetch block number")
				continue
			}
			stats.SetBlockNumber(block)
		}
	}
}
