package main

import (
	"fmt"

	httpinterface "github.com/shoyu-network/shoyu-daemon/internal/interfaces/http"
	"github.com/urfave/cli/v2"
)

var token = cli.Command{
	Name:  "token",
	Usage: "generate an auth token for a caller and store it in the local state",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "secret",
			Usage:    "the auth secret shared with the daemon",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "caller",
			Usage:    "the address the token authenticates",
			Required: true,
		},
		&cli.DurationFlag{
			Name:  "ttl",
			Usage: "validity of the token, 0 for a never expiring one",
		},
	},
	Action: tokenAction,
}

func tokenAction(ctx *cli.Context) error {
	caller, err := parseAddress("caller", ctx.String("caller"))
	if err != nil {
		return err
	}

	authToken, err := httpinterface.NewAuthToken(
		ctx.String("secret"), caller, ctx.Duration("ttl"),
	)
	if err != nil {
		return err
	}

	if err := setState(map[string]string{
		"token":  authToken,
		"caller": caller.Hex(),
	}); err != nil {
		return err
	}

	fmt.Println(authToken)
	return nil
}
