package main

import (
	"encoding/json"
	"fmt"

	httpinterface "github.com/shoyu-network/shoyu-daemon/internal/interfaces/http"
	"github.com/urfave/cli/v2"
)

var whitelist = cli.Command{
	Name:  "whitelist",
	Usage: "list the strategies or (un)whitelist a strategy or a deployer",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "strategy",
			Usage: "the strategy name or address",
		},
		&cli.StringFlag{
			Name:  "deployer",
			Usage: "the deployer address, the zero address allows anyone",
		},
		&cli.BoolFlag{
			Name:  "remove",
			Usage: "remove from the whitelist instead of adding",
		},
	},
	Action: whitelistAction,
}

var fees = cli.Command{
	Name:  "fees",
	Usage: "get the factory fees or update one of them",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "kind",
			Usage: "the fee to update: protocol or operational",
		},
		&cli.StringFlag{
			Name:  "recipient",
			Usage: "the fee recipient",
		},
		&cli.UintFlag{
			Name:  "fee",
			Usage: "the fee in thousandths",
		},
	},
	Action: feesAction,
}

var block = cli.Command{
	Name:  "block",
	Usage: "get the current block number or mine new blocks",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "mine",
			Usage: "number of blocks to mine, only with a manual clock",
		},
	},
	Action: blockAction,
}

func whitelistAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	whitelisted := !ctx.Bool("remove")

	switch {
	case ctx.IsSet("strategy") && ctx.IsSet("deployer"):
		return &invalidUsageError{ctx, ctx.Command.Name}
	case ctx.IsSet("strategy"):
		req := httpinterface.StrategyRequest{
			Strategy:    ctx.String("strategy"),
			Whitelisted: whitelisted,
		}
		if err := client.post("/v1/strategies", req, nil); err != nil {
			return err
		}
	case ctx.IsSet("deployer"):
		deployer, err := parseAddress("deployer", ctx.String("deployer"))
		if err != nil {
			return err
		}
		req := httpinterface.DeployerRequest{
			Deployer:    deployer,
			Whitelisted: whitelisted,
		}
		if err := client.post("/v1/deployers", req, nil); err != nil {
			return err
		}
	default:
		var res json.RawMessage
		if err := client.get("/v1/strategies", nil, &res); err != nil {
			return err
		}
		printRespJSON(res)
		return nil
	}

	fmt.Println()
	fmt.Println("whitelist updated")
	return nil
}

func feesAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var res json.RawMessage
	if !ctx.IsSet("kind") {
		if err := client.get("/v1/fees", nil, &res); err != nil {
			return err
		}
		printRespJSON(res)
		return nil
	}

	recipient, err := parseAddress("recipient", ctx.String("recipient"))
	if err != nil {
		return err
	}
	req := httpinterface.FeeRequest{
		Kind:      ctx.String("kind"),
		Recipient: recipient,
		Fee:       uint8(ctx.Uint("fee")),
	}
	if err := client.post("/v1/fees", req, &res); err != nil {
		return err
	}

	printRespJSON(res)
	return nil
}

func blockAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	res := httpinterface.BlockResponse{}
	if blocks := ctx.Uint64("mine"); blocks > 0 {
		req := httpinterface.MineRequest{Blocks: blocks}
		if err := client.post("/v1/mine", req, &res); err != nil {
			return err
		}
	} else if err := client.get("/v1/block", nil, &res); err != nil {
		return err
	}

	fmt.Println("block:", res.Block)
	return nil
}
