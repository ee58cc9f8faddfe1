package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
	"github.com/shoyu-network/shoyu-daemon/pkg/circuitbreaker"
	"github.com/sony/gobreaker"
)

type rpcClock struct {
	client *ethclient.Client
	cb     *gobreaker.CircuitBreaker
}

// NewRPCClock returns a clock following the head of the chain exposed by the
// given JSON-RPC endpoint.
func NewRPCClock(ctx context.Context, rpcURL string) (ports.BlockClock, error) {
	if len(rpcURL) <= 0 {
		return nil, fmt.Errorf("missing rpc url")
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}

	return &rpcClock{client, circuitbreaker.NewCircuitBreaker("rpc-clock")}, nil
}

func (c *rpcClock) BlockNumber(ctx context.Context) (uint64, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.BlockNumber(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch block number: %w", err)
	}
	return res.(uint64), nil
}

func (c *rpcClock) Now() int64 {
	return time.Now().Unix()
}
