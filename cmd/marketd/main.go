package main

import (
	"fmt"
	"os"

	"github.com/iov-one/weave-market"
	"github.com/urfave/cli/v2"
)

const (
	flagConfig = "config"
	flagHome   = "home"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "marketd",
		Usage:   "NFT asset registry and marketplace",
		Version: weave.Version(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagConfig, Value: "marketd.toml", Usage: "configuration file"},
			&cli.StringFlag{Name: flagHome, Usage: "directory to store files under, overrides the configuration"},
		},
		Commands: []*cli.Command{
			initCommand(),
			serveCommand(),
			keysCommand(),
			{
				Name:   "mint",
				Usage:  "mint a new asset owned by the key",
				Action: cmdMint,
				Flags: []cli.Flag{
					keyFlag(),
					&cli.StringFlag{Name: "uri", Required: true, Usage: "metadata uri of the asset"},
				},
			},
			{
				Name:   "approve",
				Usage:  "approve an operator to move an asset, an empty operator clears the approval",
				Action: cmdApprove,
				Flags: []cli.Flag{
					keyFlag(),
					&cli.Uint64Flag{Name: "id", Required: true, Usage: "asset id"},
					&cli.StringFlag{Name: "operator", Usage: "operator address"},
				},
			},
			{
				Name:   "transfer",
				Usage:  "transfer an asset",
				Action: cmdTransfer,
				Flags: []cli.Flag{
					keyFlag(),
					&cli.Uint64Flag{Name: "id", Required: true, Usage: "asset id"},
					&cli.StringFlag{Name: "from", Usage: "current owner, defaults to the key address"},
					&cli.StringFlag{Name: "to", Required: true, Usage: "recipient address"},
				},
			},
			{
				Name:   "list",
				Usage:  "list an asset for sale paying the listing fee",
				Action: cmdList,
				Flags: []cli.Flag{
					keyFlag(),
					&cli.Uint64Flag{Name: "asset", Required: true, Usage: "asset id"},
					&cli.StringFlag{Name: "price", Required: true, Usage: `price, for example "2 MKT"`},
					&cli.StringFlag{Name: "paid", Usage: "listing fee paid, defaults to the current fee"},
					&cli.StringFlag{Name: "registry", Usage: "registry address, defaults to the served registry"},
				},
			},
			{
				Name:   "buy",
				Usage:  "buy a listed item",
				Action: cmdBuy,
				Flags: []cli.Flag{
					keyFlag(),
					&cli.Uint64Flag{Name: "item", Required: true, Usage: "market item id"},
					&cli.StringFlag{Name: "paid", Usage: "amount paid, defaults to the item price"},
					&cli.StringFlag{Name: "registry", Usage: "registry address, defaults to the served registry"},
				},
			},
			{
				Name:   "send",
				Usage:  "send funds to another account",
				Action: cmdSend,
				Flags: []cli.Flag{
					keyFlag(),
					&cli.StringFlag{Name: "to", Required: true, Usage: "recipient address"},
					&cli.StringFlag{Name: "amount", Required: true, Usage: `amount, for example "1.5 MKT"`},
					&cli.StringFlag{Name: "memo", Usage: "optional memo"},
				},
			},
			{
				Name:   "items",
				Usage:  "print all unsold items",
				Action: cmdItems,
			},
			{
				Name:   "mine",
				Usage:  "print all items owned by an account",
				Action: cmdMine,
				Flags:  accountFlags(),
			},
			{
				Name:   "listed",
				Usage:  "print all items listed by an account",
				Action: cmdListed,
				Flags:  accountFlags(),
			},
			{
				Name:   "metadata",
				Usage:  "print the metadata uri of an asset",
				Action: cmdMetadata,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "id", Required: true, Usage: "asset id"},
				},
			},
			{
				Name:   "fee",
				Usage:  "print the current listing fee",
				Action: cmdFee,
			},
			{
				Name:   "balance",
				Usage:  "print the balance of an account",
				Action: cmdBalance,
				Flags:  accountFlags(),
			},
		},
	}
}

func keyFlag() cli.Flag {
	return &cli.StringFlag{Name: "key", Required: true, Usage: "name of the key signing the operation"}
}

func accountFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "addr", Usage: "account address"},
		&cli.StringFlag{Name: "key", Usage: "name of a key, used when no address is given"},
	}
}
