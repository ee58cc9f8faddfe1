package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"

	"github.com/spf13/viper"
)

const (
	// HTTPListeningPortKey is the port where the HTTP interface will listen on
	HTTPListeningPortKey = "HTTP_LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// LogFileKey is the path of the rotating log file, logs are written to
	// stdout only if not set
	LogFileKey = "LOG_FILE"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// ChainIDKey is the chain id every collection signs its orders for
	ChainIDKey = "CHAIN_ID"
	// ClockTypeKey selects the source of block numbers, one of local, manual
	// or rpc
	ClockTypeKey = "CLOCK_TYPE"
	// BlockIntervalKey is the duration in seconds of a block of the local clock
	BlockIntervalKey = "BLOCK_INTERVAL"
	// RPCURLKey is the endpoint of the node used by the rpc clock
	RPCURLKey = "RPC_URL"
	// FactoryOwnerKey is the owner of the factory created at first start
	FactoryOwnerKey = "FACTORY_OWNER"
	// ProtocolFeeRecipientKey ...
	ProtocolFeeRecipientKey = "PROTOCOL_FEE_RECIPIENT"
	// ProtocolFeeKey is the protocol fee rate, in thousandths
	ProtocolFeeKey = "PROTOCOL_FEE"
	// OperationalFeeRecipientKey ...
	OperationalFeeRecipientKey = "OPERATIONAL_FEE_RECIPIENT"
	// OperationalFeeKey is the operational fee rate, in thousandths
	OperationalFeeKey = "OPERATIONAL_FEE"
	// BaseURIKey is the factory base URI of the token metadata
	BaseURIKey = "BASE_URI"
	// AuthSecretKey is the HS256 secret of the bearer tokens of the HTTP
	// interface
	AuthSecretKey = "AUTH_SECRET"
	// NoAuthKey is used to start the daemon trusting the X-Caller header
	// instead of bearer tokens
	NoAuthKey = "NO_AUTH"
	// WebhookRateLimitKey is the max number of webhook requests per second
	WebhookRateLimitKey = "WEBHOOK_RATE_LIMIT"
	// EnableFaucetKey enables minting currencies to anyone, for local networks
	EnableFaucetKey = "ENABLE_FAUCET"
	// StatsIntervalKey defines interval in seconds for printing basic stats
	StatsIntervalKey = "STATS_INTERVAL"

	ClockLocal  = "local"
	ClockManual = "manual"
	ClockRPC    = "rpc"

	DbLocation     = "db"
	PubSubLocation = "pubsub"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("shoyu-daemon", false)

	supportedClockTypes = map[string]struct{}{
		ClockLocal:  {},
		ClockManual: {},
		ClockRPC:    {},
	}
)

func InitConfig() error {
	// A missing .env file is not an error, env vars are used as they are.
	_ = godotenv.Load()

	vip = viper.New()
	vip.SetEnvPrefix("SHOYU")
	vip.AutomaticEnv()

	vip.SetDefault(HTTPListeningPortKey, 9945)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(ChainIDKey, 1)
	vip.SetDefault(ClockTypeKey, ClockLocal)
	vip.SetDefault(BlockIntervalKey, 12)
	vip.SetDefault(ProtocolFeeKey, domain.DefaultProtocolFee)
	vip.SetDefault(OperationalFeeKey, domain.DefaultOperationalFee)
	vip.SetDefault(NoAuthKey, false)
	vip.SetDefault(WebhookRateLimitKey, 10)
	vip.SetDefault(EnableFaucetKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetAddress returns the address for the given key, the zero address if not
// set.
func GetAddress(key string) common.Address {
	return common.HexToAddress(vip.GetString(key))
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if _, ok := application.SupportedDBType[GetString(DBTypeKey)]; !ok {
		return fmt.Errorf("unsupported db type %s", GetString(DBTypeKey))
	}

	clockType := GetString(ClockTypeKey)
	if _, ok := supportedClockTypes[clockType]; !ok {
		return fmt.Errorf("unsupported clock type %s", clockType)
	}
	if clockType == ClockRPC && len(GetString(RPCURLKey)) <= 0 {
		return fmt.Errorf("%s is required with %s clock", RPCURLKey, ClockRPC)
	}
	if clockType == ClockLocal && GetInt(BlockIntervalKey) <= 0 {
		return fmt.Errorf("%s must be a positive number of seconds", BlockIntervalKey)
	}

	if GetInt(ChainIDKey) <= 0 {
		return fmt.Errorf("%s must be positive", ChainIDKey)
	}

	for _, key := range []string{
		FactoryOwnerKey, ProtocolFeeRecipientKey, OperationalFeeRecipientKey,
	} {
		if vip.IsSet(key) && !common.IsHexAddress(GetString(key)) {
			return fmt.Errorf("%s must be a valid hex address", key)
		}
	}
	for _, key := range []string{ProtocolFeeKey, OperationalFeeKey} {
		if fee := GetInt(key); fee < 0 || fee > int(domain.MaxProtocolFee) {
			return fmt.Errorf("%s must be in range [0, %d]", key, domain.MaxProtocolFee)
		}
	}

	if !GetBool(NoAuthKey) && len(GetString(AuthSecretKey)) <= 0 {
		return fmt.Errorf("%s is required unless %s is set", AuthSecretKey, NoAuthKey)
	}

	if GetInt(WebhookRateLimitKey) < 0 {
		return fmt.Errorf("%s must not be negative", WebhookRateLimitKey)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if GetString(DBTypeKey) == application.DBBadger {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, PubSubLocation)); err != nil {
			return err
		}
	}

	if logFile := GetString(LogFileKey); len(logFile) > 0 {
		if err := makeDirectoryIfNotExists(filepath.Dir(logFile)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
