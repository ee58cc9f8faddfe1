package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

var (
	rpcFlag = cli.StringFlag{
		Name:  "rpcserver",
		Usage: "shoyud daemon address host:port",
		Value: "localhost:9945",
	}

	callerFlag = cli.StringFlag{
		Name:  "caller",
		Usage: "address sent as caller when the daemon runs without auth",
		Value: "",
	}

	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "hex encoded private key used to sign orders and permits",
		Value: "",
	}

	collectionFlag = cli.StringFlag{
		Name:  "collection",
		Usage: "the collection address, defaults to the one in the local state",
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the shoyu CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&rpcFlag,
				&callerFlag,
				&keyFlag,
			},
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := state[key]
		if key == "key" || key == "token" {
			value = "********"
		}
		fmt.Println(key + ": " + value)
	}

	return nil
}

func configInitAction(c *cli.Context) error {
	return setState(map[string]string{
		"rpcserver": c.String("rpcserver"),
		"caller":    c.String("caller"),
		"key":       c.String("key"),
	})
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s has been set\n", key)

	return nil
}

// getCollection returns the collection given with --collection or the one
// selected with `config set collection`.
func getCollection(c *cli.Context) (common.Address, error) {
	addr := c.String("collection")
	if len(addr) <= 0 {
		state, err := getState()
		if err != nil {
			return common.Address{}, err
		}
		var ok bool
		if addr, ok = state["collection"]; !ok {
			return common.Address{}, errors.New(
				"set collection with `config set collection` or --collection",
			)
		}
	}
	return parseAddress("collection", addr)
}
