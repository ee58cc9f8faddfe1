package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func parseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", name, s)
	}
	return common.HexToAddress(s), nil
}

func parseOptionalAddress(name, s string) (common.Address, error) {
	if len(s) <= 0 {
		return common.Address{}, nil
	}
	return parseAddress(name, s)
}

func parseBigInt(name, s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}

// parseTokenIDs parses a comma separated list of token ids.
func parseTokenIDs(s string) ([]*big.Int, error) {
	if len(strings.TrimSpace(s)) <= 0 {
		return nil, nil
	}
	list := strings.Split(s, ",")
	tokenIDs := make([]*big.Int, 0, len(list))
	for _, id := range list {
		tokenID, err := parseBigInt("token id", id)
		if err != nil {
			return nil, err
		}
		tokenIDs = append(tokenIDs, tokenID)
	}
	return tokenIDs, nil
}

func readJSONFile(path string, v interface{}) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("invalid json in %s: %w", path, err)
	}
	return nil
}
