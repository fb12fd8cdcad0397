package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/app"
	"github.com/iov-one/weave-market/cmd/marketd/server"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/crypto"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/store/iavl"
	"github.com/iov-one/weave-market/x/cash"
	"github.com/iov-one/weave-market/x/market"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// result is printed by every state changing command.
type result struct {
	ID     uint64        `json:"id,omitempty"`
	Events []weave.Event `json:"events"`
}

func loadConfig(c *cli.Context) (*Config, error) {
	cfg, err := LoadConfig(c.String(flagConfig))
	if err != nil {
		return nil, err
	}
	if home := c.String(flagHome); home != "" {
		cfg.Home = home
	}
	return cfg, nil
}

func newLogger(cfg *Config, w io.Writer) (log.Logger, error) {
	opt, err := log.AllowLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(w))
	return log.NewFilter(logger, opt).With("module", "marketd"), nil
}

// openMarketplace opens the state stored in the home directory. The
// returned function must be called to release the store.
func openMarketplace(cfg *Config, logger log.Logger) (*app.Marketplace, func(), error) {
	if err := os.MkdirAll(cfg.DataDir(), 0700); err != nil {
		return nil, nil, errors.Wrapf(errors.ErrDatabase, "create data directory: %s", err)
	}
	db, err := iavl.NewCommitStore(cfg.DataDir(), "state")
	if err != nil {
		return nil, nil, err
	}
	m, err := app.NewMarketplace(db, app.WithLogger(logger))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return m, db.Close, nil
}

// withMarketplace runs fn against the initialized state of the home
// directory. Logs are written to stderr to keep the output parseable.
func withMarketplace(c *cli.Context, fn func(cfg *Config, m *app.Marketplace) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	m, closeFn, err := openMarketplace(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()
	if m.ChainID() == "" {
		return errors.Wrapf(errors.ErrState, "%s is not initialized, run marketd init", cfg.Home)
	}
	return fn(cfg, m)
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func signer(cfg *Config, name string) (weave.Address, error) {
	key, err := crypto.LoadKey(cfg.KeyFile(name))
	if err != nil {
		return nil, errors.Wrapf(err, "key %q", name)
	}
	return key.PublicKey().Address(), nil
}

// account resolves the --addr flag or, when empty, the address of the
// --key flag.
func account(c *cli.Context, cfg *Config) (weave.Address, error) {
	if raw := c.String("addr"); raw != "" {
		return weave.ParseAddress(raw)
	}
	if name := c.String("key"); name != "" {
		return signer(cfg, name)
	}
	return nil, errors.Wrap(errors.ErrEmpty, "either addr or key is required")
}

func optionalAddress(raw string) (weave.Address, error) {
	if raw == "" {
		return nil, nil
	}
	return weave.ParseAddress(raw)
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "write the genesis file and initialize the state",
		Action: cmdInit,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "genesis", Usage: "use an existing genesis file instead of the flags below"},
			&cli.StringFlag{Name: "chain-id", Usage: "chain id of the marketplace"},
			&cli.StringFlag{Name: "ticker", Value: "MKT", Usage: "currency ticker"},
			&cli.StringFlag{Name: "fee-owner", Usage: "address receiving the listing fees"},
			&cli.StringFlag{Name: "listing-fee", Value: "0.025 MKT", Usage: "listing fee"},
			&cli.StringFlag{Name: "settlement", Value: market.SettleOnSale, Usage: `when listing fees are forwarded, "sale" or "listing"`},
			&cli.StringSliceFlag{Name: "fund", Usage: `initial balance as "<address>=<amount>", can be repeated`},
		},
	}
}

func cmdInit(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	var gen *app.Genesis
	if path := c.String("genesis"); path != "" {
		if gen, err = app.LoadGenesis(path); err != nil {
			return err
		}
	} else if gen, err = genesisFromFlags(c); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Home, 0700); err != nil {
		return errors.Wrapf(errors.ErrInput, "create home: %s", err)
	}
	if err := gen.Save(cfg.GenesisFile()); err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	m, closeFn, err := openMarketplace(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()
	if err := m.InitChain(gen); err != nil {
		return err
	}
	return printJSON(c, map[string]interface{}{
		"chain_id": m.ChainID(),
		"genesis":  cfg.GenesisFile(),
		"registry": m.RegistryAddress(),
		"ledger":   m.LedgerAddress(),
	})
}

func genesisFromFlags(c *cli.Context) (*app.Genesis, error) {
	chainID := c.String("chain-id")
	if !weave.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "invalid chain id %q", chainID)
	}
	owner, err := weave.ParseAddress(c.String("fee-owner"))
	if err != nil {
		return nil, errors.Wrap(err, "fee owner")
	}
	fee, err := coin.ParseHumanFormat(c.String("listing-fee"))
	if err != nil {
		return nil, errors.Wrap(err, "listing fee")
	}
	var accounts []cash.GenesisAccount
	for _, fund := range c.StringSlice("fund") {
		chunks := strings.SplitN(fund, "=", 2)
		if len(chunks) != 2 {
			return nil, errors.Wrapf(errors.ErrInput, "invalid fund %q", fund)
		}
		addr, err := weave.ParseAddress(chunks[0])
		if err != nil {
			return nil, errors.Wrapf(err, "fund %q", fund)
		}
		amount, err := coin.ParseHumanFormat(chunks[1])
		if err != nil {
			return nil, errors.Wrapf(err, "fund %q", fund)
		}
		accounts = append(accounts, cash.GenesisAccount{Address: addr, Balance: amount})
	}

	state := map[string]interface{}{
		"conf": map[string]interface{}{
			cash.ConfigPkg: cash.Configuration{Ticker: c.String("ticker")},
			market.ConfigPkg: market.Configuration{
				Owner:         owner,
				ListingFee:    fee,
				FeeSettlement: c.String("settlement"),
			},
		},
		"cash": accounts,
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis: %s", err)
	}
	var opts weave.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis: %s", err)
	}
	return &app.Genesis{ChainID: chainID, AppState: opts}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "serve the HTTP API",
		Action: cmdServe,
	}
}

func cmdServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	m, closeFn, err := openMarketplace(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()
	if m.ChainID() == "" {
		return errors.Wrapf(errors.ErrState, "%s is not initialized, run marketd init", cfg.Home)
	}

	api := server.New(m, logger.With("module", "api"), cfg.MetadataCacheTTL, cfg.Debug)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving", "addr", cfg.ListenAddr, "chain_id", m.ChainID())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrapf(errors.ErrInput, "listen: %s", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func keysCommand() *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "manage the signing keys",
		Subcommands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "generate a new key",
				ArgsUsage: "<name>",
				Action:    cmdKeysNew,
			},
			{
				Name:      "show",
				Usage:     "print the address of a key",
				ArgsUsage: "<name>",
				Action:    cmdKeysShow,
			},
		},
	}
}

func cmdKeysNew(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	name := c.Args().First()
	if name == "" {
		return errors.Wrap(errors.ErrEmpty, "key name")
	}
	path := cfg.KeyFile(name)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrapf(errors.ErrInput, "create keys directory: %s", err)
	}
	key := crypto.GenPrivKeyEd25519()
	if err := crypto.SaveKey(path, key); err != nil {
		return err
	}
	return printJSON(c, map[string]interface{}{"name": name, "address": key.PublicKey().Address()})
}

func cmdKeysShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	name := c.Args().First()
	addr, err := signer(cfg, name)
	if err != nil {
		return err
	}
	return printJSON(c, map[string]interface{}{"name": name, "address": addr})
}

func cmdMint(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		caller, err := signer(cfg, c.String("key"))
		if err != nil {
			return err
		}
		id, events, err := m.Mint(caller, c.String("uri"))
		if err != nil {
			return err
		}
		return printJSON(c, result{ID: id, Events: events})
	})
}

func cmdApprove(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		caller, err := signer(cfg, c.String("key"))
		if err != nil {
			return err
		}
		operator, err := optionalAddress(c.String("operator"))
		if err != nil {
			return err
		}
		events, err := m.Approve(caller, c.Uint64("id"), operator)
		if err != nil {
			return err
		}
		return printJSON(c, result{Events: events})
	})
}

func cmdTransfer(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		caller, err := signer(cfg, c.String("key"))
		if err != nil {
			return err
		}
		from, err := optionalAddress(c.String("from"))
		if err != nil {
			return err
		}
		if from == nil {
			from = caller
		}
		to, err := weave.ParseAddress(c.String("to"))
		if err != nil {
			return err
		}
		events, err := m.Transfer(caller, c.Uint64("id"), from, to)
		if err != nil {
			return err
		}
		return printJSON(c, result{Events: events})
	})
}

func cmdList(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		caller, err := signer(cfg, c.String("key"))
		if err != nil {
			return err
		}
		registry, err := optionalAddress(c.String("registry"))
		if err != nil {
			return err
		}
		if registry == nil {
			registry = m.RegistryAddress()
		}
		price, err := coin.ParseHumanFormat(c.String("price"))
		if err != nil {
			return errors.Wrap(err, "price")
		}
		var paid coin.Coin
		if raw := c.String("paid"); raw != "" {
			if paid, err = coin.ParseHumanFormat(raw); err != nil {
				return errors.Wrap(err, "paid")
			}
		} else if paid, err = m.ListingFee(); err != nil {
			return err
		}
		id, events, err := m.CreateMarketItem(caller, registry, c.Uint64("asset"), price, paid)
		if err != nil {
			return err
		}
		return printJSON(c, result{ID: id, Events: events})
	})
}

func cmdBuy(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		caller, err := signer(cfg, c.String("key"))
		if err != nil {
			return err
		}
		registry, err := optionalAddress(c.String("registry"))
		if err != nil {
			return err
		}
		if registry == nil {
			registry = m.RegistryAddress()
		}
		itemID := c.Uint64("item")
		var paid coin.Coin
		if raw := c.String("paid"); raw != "" {
			if paid, err = coin.ParseHumanFormat(raw); err != nil {
				return errors.Wrap(err, "paid")
			}
		} else {
			item, err := m.Item(itemID)
			if err != nil {
				if errors.ErrNotFound.Is(err) {
					return errors.Wrapf(market.ErrNotListed, "item %d", itemID)
				}
				return err
			}
			paid = item.Price
		}
		events, err := m.CreateMarketSale(caller, registry, itemID, paid)
		if err != nil {
			return err
		}
		return printJSON(c, result{ID: itemID, Events: events})
	})
}

func cmdSend(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		caller, err := signer(cfg, c.String("key"))
		if err != nil {
			return err
		}
		to, err := weave.ParseAddress(c.String("to"))
		if err != nil {
			return err
		}
		amount, err := coin.ParseHumanFormat(c.String("amount"))
		if err != nil {
			return errors.Wrap(err, "amount")
		}
		events, err := m.Send(caller, to, amount, c.String("memo"))
		if err != nil {
			return err
		}
		return printJSON(c, result{Events: events})
	})
}

func printItems(c *cli.Context, items []*market.Item, err error) error {
	if err != nil {
		return err
	}
	if items == nil {
		items = []*market.Item{}
	}
	return printJSON(c, items)
}

func cmdItems(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		items, err := m.FetchMarketItems()
		return printItems(c, items, err)
	})
}

func cmdMine(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		addr, err := account(c, cfg)
		if err != nil {
			return err
		}
		items, err := m.FetchMyNFTs(addr)
		return printItems(c, items, err)
	})
}

func cmdListed(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		addr, err := account(c, cfg)
		if err != nil {
			return err
		}
		items, err := m.FetchItemsListed(addr)
		return printItems(c, items, err)
	})
}

func cmdMetadata(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		uri, err := m.MetadataOf(c.Uint64("id"))
		if err != nil {
			return err
		}
		return printJSON(c, map[string]string{"uri": uri})
	})
}

func cmdFee(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		fee, err := m.ListingFee()
		if err != nil {
			return err
		}
		return printJSON(c, map[string]interface{}{"listing_fee": fee})
	})
}

func cmdBalance(c *cli.Context) error {
	return withMarketplace(c, func(cfg *Config, m *app.Marketplace) error {
		addr, err := account(c, cfg)
		if err != nil {
			return err
		}
		balance, err := m.Balance(addr)
		if err != nil {
			return err
		}
		return printJSON(c, map[string]interface{}{"address": addr, "balance": balance})
	})
}
