package main

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	httpinterface "github.com/shoyu-network/shoyu-daemon/internal/interfaces/http"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
	"github.com/urfave/cli/v2"
)

var permit = cli.Command{
	Name:  "permit",
	Usage: "sign with the local key and submit an approval for a spender",
	Flags: []cli.Flag{
		&collectionFlag,
		&cli.StringFlag{
			Name:     "spender",
			Usage:    "the approved spender",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "the approved token id",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "approve spender as operator of all tokens",
		},
		&cli.DurationFlag{
			Name:  "ttl",
			Usage: "validity of the permit",
			Value: time.Hour,
		},
	},
	Action: permitAction,
}

func permitAction(ctx *cli.Context) error {
	if ctx.Bool("all") == ctx.IsSet("token") {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	key, err := getKey()
	if err != nil {
		return err
	}
	owner := crypto.PubkeyToAddress(key.PublicKey)

	collection, err := getCollection(ctx)
	if err != nil {
		return err
	}
	spender, err := parseAddress("spender", ctx.String("spender"))
	if err != nil {
		return err
	}
	deadline := big.NewInt(time.Now().Add(ctx.Duration("ttl")).Unix())

	client, err := getClient()
	if err != nil {
		return err
	}
	info := httpinterface.CollectionResponse{}
	if err := client.get(collectionPath(collection, ""), nil, &info); err != nil {
		return err
	}
	nonces := application.Nonces{}
	if err := client.get(
		collectionPath(collection, "nonces/"+owner.Hex()), nil, &nonces,
	); err != nil {
		return err
	}

	if ctx.Bool("all") {
		digest := info.Collection.PermitAllDigest(
			owner, spender, nonces.NonceForAll, deadline,
		)
		sig, err := eip712.Sign(digest, key)
		if err != nil {
			return err
		}
		req := httpinterface.PermitAllRequest{
			Owner:     owner,
			Spender:   spender,
			Deadline:  deadline,
			Signature: sig,
		}
		if err := client.post(collectionPath(collection, "permit-all"), req, nil); err != nil {
			return err
		}

		fmt.Println()
		fmt.Printf("%s approved as operator of %s\n", spender.Hex(), owner.Hex())
		return nil
	}

	tokenID, err := parseBigInt("token id", ctx.String("token"))
	if err != nil {
		return err
	}
	digest := info.Collection.PermitDigest(spender, tokenID, nonces.Nonce, deadline)
	sig, err := eip712.Sign(digest, key)
	if err != nil {
		return err
	}
	req := httpinterface.PermitRequest{
		Spender:   spender,
		TokenID:   tokenID,
		Deadline:  deadline,
		Signature: sig,
	}
	if err := client.post(collectionPath(collection, "permit"), req, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("%s approved for token %s\n", spender.Hex(), tokenID)
	return nil
}
