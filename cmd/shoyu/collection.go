package main

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	httpinterface "github.com/shoyu-network/shoyu-daemon/internal/interfaces/http"
	"github.com/urfave/cli/v2"
)

var deploy = cli.Command{
	Name:  "deploy",
	Usage: "deploy a new collection and either mint or park its first tokens",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Usage:    "the collection name",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "symbol",
			Usage: "the collection symbol",
		},
		&cli.StringFlag{
			Name:     "owner",
			Usage:    "the collection owner",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "royalty_recipient",
			Usage: "the royalty fee recipient, defaults to owner",
		},
		&cli.UintFlag{
			Name:  "royalty_fee",
			Usage: "the royalty fee in thousandths",
		},
		&cli.StringFlag{
			Name:  "tokens",
			Usage: "comma separated list of token ids minted to owner",
		},
		&cli.StringFlag{
			Name:  "park_to",
			Usage: "park token ids in range [0, park_to)",
		},
	},
	Action: deployAction,
}

var collections = cli.Command{
	Name:  "collections",
	Usage: "list the deployed collections or get the details of one",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "owner",
			Usage: "list only the collections of this owner",
		},
		&cli.StringFlag{
			Name:  "address",
			Usage: "get the collection with this address",
		},
	},
	Action: collectionsAction,
}

var royalty = cli.Command{
	Name:  "royalty",
	Usage: "get the royalty info of a collection or set its royalty fee",
	Flags: []cli.Flag{
		&collectionFlag,
		&cli.StringFlag{
			Name:  "price",
			Usage: "the sale price royalties are computed on",
			Value: "0",
		},
		&cli.UintFlag{
			Name:  "fee",
			Usage: "the new royalty fee in thousandths",
		},
	},
	Action: royaltyAction,
}

var park = cli.Command{
	Name:  "park",
	Usage: "park token ids up to the given bound",
	Flags: []cli.Flag{
		&collectionFlag,
		&cli.StringFlag{
			Name:     "to",
			Usage:    "the new exclusive upper bound of parked token ids",
			Required: true,
		},
	},
	Action: parkAction,
}

var mint = cli.Command{
	Name:  "mint",
	Usage: "mint a batch of tokens",
	Flags: []cli.Flag{
		&collectionFlag,
		&cli.StringFlag{
			Name:     "to",
			Usage:    "the receiver of the tokens",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "tokens",
			Usage:    "comma separated list of token ids",
			Required: true,
		},
	},
	Action: mintAction,
}

var burn = cli.Command{
	Name:  "burn",
	Usage: "burn a batch of tokens",
	Flags: []cli.Flag{
		&collectionFlag,
		&cli.StringFlag{
			Name:     "tokens",
			Usage:    "comma separated list of token ids",
			Required: true,
		},
	},
	Action: burnAction,
}

var transfer = cli.Command{
	Name:  "transfer",
	Usage: "transfer a token",
	Flags: []cli.Flag{
		&collectionFlag,
		&cli.StringFlag{
			Name:  "from",
			Usage: "the current owner, defaults to the caller",
		},
		&cli.StringFlag{
			Name:     "to",
			Usage:    "the receiver",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "token",
			Usage:    "the token id",
			Required: true,
		},
	},
	Action: transferAction,
}

func deployAction(ctx *cli.Context) error {
	owner, err := parseAddress("owner", ctx.String("owner"))
	if err != nil {
		return err
	}
	recipient, err := parseOptionalAddress(
		"royalty recipient", ctx.String("royalty_recipient"),
	)
	if err != nil {
		return err
	}
	if recipient == (common.Address{}) {
		recipient = owner
	}
	if ctx.IsSet("tokens") && ctx.IsSet("park_to") {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	req := httpinterface.DeployCollectionRequest{
		Owner:               owner,
		Name:                ctx.String("name"),
		Symbol:              ctx.String("symbol"),
		RoyaltyFeeRecipient: recipient,
		RoyaltyFee:          uint8(ctx.Uint("royalty_fee")),
	}
	if ctx.IsSet("park_to") {
		if req.ToTokenID, err = parseBigInt("park bound", ctx.String("park_to")); err != nil {
			return err
		}
	} else if req.TokenIDs, err = parseTokenIDs(ctx.String("tokens")); err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}
	res := httpinterface.CollectionResponse{}
	if err := client.post("/v1/collections", req, &res); err != nil {
		return err
	}

	if err := setState(map[string]string{
		"collection": res.Address.Hex(),
	}); err != nil {
		return err
	}

	printRespJSON(res)
	return nil
}

func collectionsAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var res json.RawMessage
	if addr := ctx.String("address"); len(addr) > 0 {
		collection, err := parseAddress("collection", addr)
		if err != nil {
			return err
		}
		if err := client.get(collectionPath(collection, ""), nil, &res); err != nil {
			return err
		}
		printRespJSON(res)
		return nil
	}

	var query map[string]string
	if owner := ctx.String("owner"); len(owner) > 0 {
		if _, err := parseAddress("owner", owner); err != nil {
			return err
		}
		query = map[string]string{"owner": owner}
	}
	if err := client.get("/v1/collections", query, &res); err != nil {
		return err
	}

	printRespJSON(res)
	return nil
}

func royaltyAction(ctx *cli.Context) error {
	collection, err := getCollection(ctx)
	if err != nil {
		return err
	}
	client, err := getClient()
	if err != nil {
		return err
	}

	if ctx.IsSet("fee") {
		req := httpinterface.RoyaltyRequest{Fee: uint8(ctx.Uint("fee"))}
		if err := client.post(collectionPath(collection, "royalty"), req, nil); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println("royalty fee updated")
		return nil
	}

	if _, err := parseBigInt("price", ctx.String("price")); err != nil {
		return err
	}
	res := httpinterface.RoyaltyResponse{}
	if err := client.get(
		collectionPath(collection, "royalty"),
		map[string]string{"price": ctx.String("price")},
		&res,
	); err != nil {
		return err
	}

	printRespJSON(res)
	return nil
}

func parkAction(ctx *cli.Context) error {
	collection, err := getCollection(ctx)
	if err != nil {
		return err
	}
	toTokenID, err := parseBigInt("park bound", ctx.String("to"))
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}
	req := httpinterface.ParkRequest{ToTokenID: toTokenID}
	if err := client.post(collectionPath(collection, "park"), req, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("token ids parked up to %s\n", toTokenID)
	return nil
}

func mintAction(ctx *cli.Context) error {
	collection, err := getCollection(ctx)
	if err != nil {
		return err
	}
	to, err := parseAddress("receiver", ctx.String("to"))
	if err != nil {
		return err
	}
	tokenIDs, err := parseTokenIDs(ctx.String("tokens"))
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}
	req := httpinterface.MintRequest{To: to, TokenIDs: tokenIDs}
	if err := client.post(collectionPath(collection, "mint"), req, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("minted")
	return nil
}

func burnAction(ctx *cli.Context) error {
	collection, err := getCollection(ctx)
	if err != nil {
		return err
	}
	tokenIDs, err := parseTokenIDs(ctx.String("tokens"))
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}
	req := httpinterface.BurnRequest{TokenIDs: tokenIDs}
	if err := client.post(collectionPath(collection, "burn"), req, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("burnt")
	return nil
}

func transferAction(ctx *cli.Context) error {
	collection, err := getCollection(ctx)
	if err != nil {
		return err
	}
	from, err := parseOptionalAddress("sender", ctx.String("from"))
	if err != nil {
		return err
	}
	if from == (common.Address{}) {
		state, err := getState()
		if err != nil {
			return err
		}
		if from, err = parseAddress("caller", state["caller"]); err != nil {
			return err
		}
	}
	to, err := parseAddress("receiver", ctx.String("to"))
	if err != nil {
		return err
	}
	tokenID, err := parseBigInt("token id", ctx.String("token"))
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}
	req := httpinterface.TransferRequest{From: from, To: to, TokenID: tokenID}
	if err := client.post(collectionPath(collection, "transfer"), req, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("transferred")
	return nil
}

func collectionPath(collection common.Address, suffix string) string {
	path := "/v1/collections/" + collection.Hex()
	if len(suffix) > 0 {
		path += "/" + suffix
	}
	return path
}
