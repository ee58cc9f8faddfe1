package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	httpinterface "github.com/shoyu-network/shoyu-daemon/internal/interfaces/http"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
	"github.com/urfave/cli/v2"
)

var askFlag = cli.StringFlag{
	Name:     "ask",
	Usage:    "path of the json file with the signed ask",
	Required: true,
}

var signask = cli.Command{
	Name:  "sign-ask",
	Usage: "sign an ask with the local key and print it as json",
	Flags: []cli.Flag{
		&collectionFlag,
		&cli.StringFlag{
			Name:     "token",
			Usage:    "the token id for sale",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "amount",
			Usage: "the amount for sale",
			Value: "1",
		},
		&cli.StringFlag{
			Name:     "strategy",
			Usage:    "EnglishAuction, DutchAuction, FixedPriceSale or DesignatedSale",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "currency",
			Usage:    "the currency the sale is settled with",
			Required: true,
		},
		&cli.Uint64Flag{
			Name:     "deadline",
			Usage:    "the block the ask expires at",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "recipient",
			Usage: "the receiver of the proceeds, defaults to the signer",
		},
		&cli.StringFlag{
			Name:  "proxy",
			Usage: "the proxy that must approve bids, if any",
		},
		&cli.StringFlag{
			Name:  "price",
			Usage: "the price of fixed price and designated sales, the min price of english auctions, the start price of dutch auctions",
		},
		&cli.StringFlag{
			Name:  "end_price",
			Usage: "the end price of dutch auctions",
		},
		&cli.Uint64Flag{
			Name:  "start_block",
			Usage: "the start block of dutch auctions",
		},
		&cli.StringFlag{
			Name:  "taker",
			Usage: "the only allowed buyer of designated sales",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "write the signed ask to this file",
		},
	},
	Action: signAskAction,
}

var bid = cli.Command{
	Name:  "bid",
	Usage: "bid on an ask, or submit a bid order signed with the local key",
	Flags: []cli.Flag{
		&collectionFlag,
		&askFlag,
		&cli.StringFlag{
			Name:     "price",
			Usage:    "the bid price",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "amount",
			Usage: "the bid amount",
			Value: "1",
		},
		&cli.StringFlag{
			Name:  "recipient",
			Usage: "the receiver of the token, defaults to the bidder",
		},
		&cli.StringFlag{
			Name:  "referrer",
			Usage: "the referrer of the bid",
		},
		&cli.BoolFlag{
			Name:  "order",
			Usage: "sign a bid order with the local key so anyone can submit it",
		},
	},
	Action: bidAction,
}

var claim = cli.Command{
	Name:  "claim",
	Usage: "settle an ask with its best bid",
	Flags: []cli.Flag{
		&collectionFlag,
		&askFlag,
	},
	Action: claimAction,
}

var cancel = cli.Command{
	Name:  "cancel",
	Usage: "cancel an ask, only its signer can",
	Flags: []cli.Flag{
		&collectionFlag,
		&askFlag,
	},
	Action: cancelAction,
}

var order = cli.Command{
	Name:  "order",
	Usage: "get an order by its hash or list the orders of a collection",
	Flags: []cli.Flag{
		&collectionFlag,
		&cli.StringFlag{
			Name:  "hash",
			Usage: "the ask hash",
		},
		&cli.StringFlag{
			Name:  "status",
			Usage: "list only orders with status Open, Bidding, Claimed or Cancelled",
		},
		&cli.StringFlag{
			Name:  "signer",
			Usage: "list only orders of this signer",
		},
	},
	Action: orderAction,
}

func signAskAction(ctx *cli.Context) error {
	key, err := getKey()
	if err != nil {
		return err
	}
	signer := crypto.PubkeyToAddress(key.PublicKey)

	collection, err := getCollection(ctx)
	if err != nil {
		return err
	}
	tokenID, err := parseBigInt("token id", ctx.String("token"))
	if err != nil {
		return err
	}
	amount, err := parseBigInt("amount", ctx.String("amount"))
	if err != nil {
		return err
	}
	currency, err := parseAddress("currency", ctx.String("currency"))
	if err != nil {
		return err
	}
	recipient, err := parseOptionalAddress("recipient", ctx.String("recipient"))
	if err != nil {
		return err
	}
	if recipient == (common.Address{}) {
		recipient = signer
	}
	proxy, err := parseOptionalAddress("proxy", ctx.String("proxy"))
	if err != nil {
		return err
	}
	strategy, ok := domain.StrategyTypeFromString(ctx.String("strategy"))
	if !ok {
		return fmt.Errorf("unknown strategy %q", ctx.String("strategy"))
	}
	params, err := strategyParams(ctx, strategy)
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}
	res := httpinterface.CollectionResponse{}
	if err := client.get(collectionPath(collection, ""), nil, &res); err != nil {
		return err
	}

	ask := domain.Ask{
		Signer:    signer,
		Proxy:     proxy,
		Token:     collection,
		TokenID:   tokenID,
		Amount:    amount,
		Strategy:  strategy.Address(),
		Currency:  currency,
		Recipient: recipient,
		Deadline:  new(big.Int).SetUint64(ctx.Uint64("deadline")),
		Params:    params,
	}
	if ask.Signature, err = eip712.Sign(
		eip712.Digest(res.DomainSeparator, ask.Hash()), key,
	); err != nil {
		return err
	}

	if out := ctx.String("out"); len(out) > 0 {
		buf, err := json.MarshalIndent(ask, "", "\t")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, buf, 0644); err != nil {
			return err
		}
	}

	fmt.Println("ask hash:", ask.Hash().Hex())
	printRespJSON(ask)
	return nil
}

// strategyParams encodes the params of the given strategy from flags.
func strategyParams(ctx *cli.Context, strategy domain.StrategyType) ([]byte, error) {
	price, err := parseBigInt("price", ctx.String("price"))
	if err != nil {
		return nil, err
	}

	switch strategy {
	case domain.StrategyEnglishAuction:
		return domain.EncodeEnglishAuctionParams(price)
	case domain.StrategyDutchAuction:
		endPrice, err := parseBigInt("end price", ctx.String("end_price"))
		if err != nil {
			return nil, err
		}
		startBlock := new(big.Int).SetUint64(ctx.Uint64("start_block"))
		return domain.EncodeDutchAuctionParams(price, endPrice, startBlock)
	case domain.StrategyFixedPriceSale:
		return domain.EncodeFixedPriceSaleParams(price)
	case domain.StrategyDesignatedSale:
		taker, err := parseAddress("taker", ctx.String("taker"))
		if err != nil {
			return nil, err
		}
		return domain.EncodeDesignatedSaleParams(price, taker)
	default:
		return nil, fmt.Errorf("unknown strategy %s", strategy)
	}
}

func bidAction(ctx *cli.Context) error {
	ask := domain.Ask{}
	if err := readJSONFile(ctx.String("ask"), &ask); err != nil {
		return err
	}
	collection, err := askCollection(ctx, ask)
	if err != nil {
		return err
	}
	price, err := parseBigInt("price", ctx.String("price"))
	if err != nil {
		return err
	}
	amount, err := parseBigInt("amount", ctx.String("amount"))
	if err != nil {
		return err
	}
	recipient, err := parseOptionalAddress("recipient", ctx.String("recipient"))
	if err != nil {
		return err
	}
	referrer, err := parseOptionalAddress("referrer", ctx.String("referrer"))
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	var res json.RawMessage
	if !ctx.Bool("order") {
		req := httpinterface.BidRequest{
			Ask:       ask,
			Amount:    amount,
			Price:     price,
			Recipient: recipient,
			Referrer:  referrer,
		}
		if err := client.post(collectionPath(collection, "bid"), req, &res); err != nil {
			return err
		}
		printRespJSON(res)
		return nil
	}

	key, err := getKey()
	if err != nil {
		return err
	}
	info := httpinterface.CollectionResponse{}
	if err := client.get(collectionPath(collection, ""), nil, &info); err != nil {
		return err
	}
	bidOrder := domain.BidOrder{
		AskHash:   ask.Hash(),
		Signer:    crypto.PubkeyToAddress(key.PublicKey),
		Amount:    amount,
		Price:     price,
		Recipient: recipient,
		Referrer:  referrer,
	}
	if bidOrder.Signature, err = eip712.Sign(
		eip712.Digest(info.DomainSeparator, bidOrder.Hash()), key,
	); err != nil {
		return err
	}

	req := httpinterface.BidOrderRequest{Ask: ask, Bid: bidOrder}
	if err := client.post(collectionPath(collection, "bid-order"), req, &res); err != nil {
		return err
	}

	printRespJSON(res)
	return nil
}

func claimAction(ctx *cli.Context) error {
	return postAsk(ctx, "claim")
}

func cancelAction(ctx *cli.Context) error {
	return postAsk(ctx, "cancel")
}

func postAsk(ctx *cli.Context, action string) error {
	ask := domain.Ask{}
	if err := readJSONFile(ctx.String("ask"), &ask); err != nil {
		return err
	}
	collection, err := askCollection(ctx, ask)
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}
	var res json.RawMessage
	req := httpinterface.AskRequest{Ask: ask}
	if err := client.post(collectionPath(collection, action), req, &res); err != nil {
		return err
	}

	printRespJSON(res)
	return nil
}

func orderAction(ctx *cli.Context) error {
	collection, err := getCollection(ctx)
	if err != nil {
		return err
	}
	client, err := getClient()
	if err != nil {
		return err
	}

	var res json.RawMessage
	if hash := ctx.String("hash"); len(hash) > 0 {
		if err := client.get(
			collectionPath(collection, "orders/"+hash), nil, &res,
		); err != nil {
			return err
		}
		printRespJSON(res)
		return nil
	}

	query := map[string]string{}
	if status := ctx.String("status"); len(status) > 0 {
		if _, ok := domain.OrderStatusFromString(status); !ok {
			return fmt.Errorf("unknown order status %q", status)
		}
		query["status"] = status
	}
	if signer := ctx.String("signer"); len(signer) > 0 {
		if _, err := parseAddress("signer", signer); err != nil {
			return err
		}
		query["signer"] = signer
	}
	if err := client.get(collectionPath(collection, "orders"), query, &res); err != nil {
		return err
	}

	printRespJSON(res)
	return nil
}

// askCollection returns the collection given with flags, or the token of
// the ask otherwise.
func askCollection(ctx *cli.Context, ask domain.Ask) (common.Address, error) {
	if ctx.IsSet("collection") {
		return parseAddress("collection", ctx.String("collection"))
	}
	if ask.Token == (common.Address{}) {
		return getCollection(ctx)
	}
	return ask.Token, nil
}
