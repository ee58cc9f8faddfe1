package httpinterface

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
)

func parseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%s must be a valid hex address", name)
	}
	return common.HexToAddress(s), nil
}

func parseHash(name, s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%s must be a 0x prefixed 32 bytes hex string", name)
	}
	return common.BytesToHash(b), nil
}

func parseTokenID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("token id must be a non negative integer")
	}
	return id, nil
}

func parseOrderFilter(c *gin.Context) (application.OrderFilter, error) {
	filter := application.OrderFilter{}
	if s := c.Query("status"); s != "" {
		status, ok := domain.OrderStatusFromString(s)
		if !ok {
			return filter, fmt.Errorf("unknown order status %q", s)
		}
		filter.Status = &status
	}
	if s := c.Query("signer"); s != "" {
		signer, err := parseAddress("signer", s)
		if err != nil {
			return filter, err
		}
		filter.Signer = signer
	}
	return filter, nil
}

func parseEventTypes(s string) (map[domain.EventType]bool, error) {
	if s == "" {
		return nil, nil
	}
	known := make(map[domain.EventType]bool)
	for _, t := range domain.EventTypes() {
		known[t] = true
	}
	filter := make(map[domain.EventType]bool)
	for _, e := range strings.Split(s, ",") {
		t := domain.EventType(strings.TrimSpace(e))
		if !known[t] {
			return nil, fmt.Errorf("unknown event type %q", t)
		}
		filter[t] = true
	}
	return filter, nil
}
