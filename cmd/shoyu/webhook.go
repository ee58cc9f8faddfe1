package main

import (
	"encoding/json"
	"fmt"

	httpinterface "github.com/shoyu-network/shoyu-daemon/internal/interfaces/http"
	"github.com/thanhpk/randstr"
	"github.com/urfave/cli/v2"
)

var addwebhook = cli.Command{
	Name:  "addwebhook",
	Usage: "add a webhook registered for some kind of event",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "the url where to send the event",
		},
		&cli.StringFlag{
			Name:  "event",
			Usage: "the event type: Bid, Claim, Cancel, ... leave empty for any",
		},
		&cli.StringFlag{
			Name:  "secret",
			Usage: "the secret to sign event requests with",
		},
		&cli.BoolFlag{
			Name:  "gen_secret",
			Usage: "generate a random secret and print it",
		},
	},
	Action: addWebhookAction,
}

var listwebhooks = cli.Command{
	Name:  "listwebhooks",
	Usage: "list the webhooks registered for some kind of event",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "event",
			Usage: "the event type, leave empty for all",
		},
	},
	Action: listWebhooksAction,
}

var removewebhook = cli.Command{
	Name:  "removewebhook",
	Usage: "remove some webhook",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "the id of the webhook to remove",
			Required: true,
		},
	},
	Action: removeWebhookAction,
}

func addWebhookAction(ctx *cli.Context) error {
	endpoint := ctx.String("endpoint")
	if len(endpoint) <= 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	secret := ctx.String("secret")
	if ctx.Bool("gen_secret") {
		secret = randstr.Hex(32)
	}

	client, err := getClient()
	if err != nil {
		return err
	}
	req := httpinterface.WebhookRequest{
		Event:    ctx.String("event"),
		Endpoint: endpoint,
		Secret:   secret,
	}
	res := httpinterface.WebhookResponse{}
	if err := client.post("/v1/webhooks", req, &res); err != nil {
		return err
	}

	fmt.Println("hook id:", res.Id)
	if ctx.Bool("gen_secret") {
		fmt.Println("secret:", secret)
	}
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var query map[string]string
	if event := ctx.String("event"); len(event) > 0 {
		query = map[string]string{"event": event}
	}
	var res json.RawMessage
	if err := client.get("/v1/webhooks", query, &res); err != nil {
		return err
	}

	printRespJSON(res)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.delete("/v1/webhooks/" + ctx.String("id")); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("removed")
	return nil
}
