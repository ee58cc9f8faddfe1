package main

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	httpinterface "github.com/shoyu-network/shoyu-daemon/internal/interfaces/http"
	"github.com/shoyu-network/shoyu-daemon/pkg/mathutil"
	"github.com/urfave/cli/v2"
)

var decimalsFlag = cli.IntFlag{
	Name:  "decimals",
	Usage: "the number of decimals of the currency amounts are expressed in",
	Value: 0,
}

var faucet = cli.Command{
	Name:  "faucet",
	Usage: "credit an account with some currency, only if the daemon enables it",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "currency",
			Usage:    "the currency address",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "to",
			Usage:    "the credited account",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the credited amount, with up to decimals fractional digits",
			Required: true,
		},
		&decimalsFlag,
	},
	Action: faucetAction,
}

var balance = cli.Command{
	Name:  "balance",
	Usage: "get the currency balance of an account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "currency",
			Usage:    "the currency address",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "owner",
			Usage:    "the account",
			Required: true,
		},
		&decimalsFlag,
	},
	Action: balanceAction,
}

func faucetAction(ctx *cli.Context) error {
	currency, err := parseAddress("currency", ctx.String("currency"))
	if err != nil {
		return err
	}
	to, err := parseAddress("receiver", ctx.String("to"))
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.String("amount"), int32(ctx.Int("decimals")))
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}
	req := httpinterface.FaucetRequest{Currency: currency, To: to, Amount: amount}
	if err := client.post("/v1/faucet", req, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("%s credited to %s\n", ctx.String("amount"), to.Hex())
	return nil
}

func balanceAction(ctx *cli.Context) error {
	currency, err := parseAddress("currency", ctx.String("currency"))
	if err != nil {
		return err
	}
	owner, err := parseAddress("owner", ctx.String("owner"))
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}
	res := httpinterface.BalanceResponse{}
	path := fmt.Sprintf("/v1/balances/%s/%s", currency.Hex(), owner.Hex())
	if err := client.get(path, nil, &res); err != nil {
		return err
	}

	fmt.Println("balance:", mathutil.ToDecimal(res.Balance, int32(ctx.Int("decimals"))))
	return nil
}

// parseAmount converts a decimal amount into base units of a currency with
// the given decimals, ie. ("1.5", 2) -> 150.
func parseAmount(s string, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("invalid decimals %d", decimals)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil || amount.IsNegative() {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if units := amount.Shift(decimals); !units.Truncate(0).Equal(units) {
		return nil, fmt.Errorf("amount %s exceeds %d decimals", s, decimals)
	}
	return mathutil.FromDecimal(amount, decimals), nil
}
