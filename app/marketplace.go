package app

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
	"github.com/iov-one/weave-market/x/cash"
	"github.com/iov-one/weave-market/x/market"
	"github.com/iov-one/weave-market/x/nft"
	"github.com/iov-one/weave-market/x/sigs"
	"github.com/iov-one/weave-market/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// RegistryName is the name of the asset registry served by the marketplace.
const RegistryName = "market"

// Marketplace executes all operations against a single durable store. State
// changing calls are serialized: each one runs in its own savepoint and is
// committed as a new store version once it succeeds. Reads always see the
// last committed state.
type Marketplace struct {
	mu      sync.Mutex
	store   *CommitStore
	logger  log.Logger
	guard   cash.Guard
	chainID string

	handler  weave.Handler
	bank     *cash.Controller
	ledger   *market.Ledger
	registry *nft.Registry
	auth     *sigs.Controller
}

// Option configures a Marketplace.
type Option func(*Marketplace)

// WithLogger sets the logger used for every operation.
func WithLogger(l log.Logger) Option {
	return func(m *Marketplace) {
		m.logger = l
	}
}

// WithGuard installs a guard deciding which addresses accept funds.
func WithGuard(g cash.Guard) Option {
	return func(m *Marketplace) {
		m.guard = g
	}
}

// NewMarketplace loads the latest state of given store. A store that was
// never initialized must be initialized with InitChain before use.
func NewMarketplace(db weave.CommitKVStore, opts ...Option) (*Marketplace, error) {
	cs, err := NewCommitStore(db)
	if err != nil {
		return nil, err
	}
	m := &Marketplace{
		store:  cs,
		logger: log.NewNopLogger(),
	}
	for _, fn := range opts {
		fn(m)
	}
	chainID, err := loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	if chainID != "" {
		m.setup(chainID)
	}
	return m, nil
}

// setup builds all components for given chain.
func (m *Marketplace) setup(chainID string) {
	m.chainID = chainID
	m.bank = cash.NewController(m.guard)
	m.ledger = market.NewLedger(chainID, m.bank)
	m.registry = nft.NewRegistry(RegistryName, m.ledger.Address())
	m.ledger.RegisterAssets(m.registry)
	m.auth = sigs.NewController()

	router := NewRouter()
	cash.RegisterRoutes(router, m.bank)
	nft.RegisterRoutes(router, m.registry)
	market.RegisterRoutes(router, m.ledger)

	m.handler = ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewSavepoint().OnDeliver(),
		sigs.NewDecorator(),
	).WithHandler(router)
}

// InitChain stores the chain id and loads the genesis state. It can be
// called only once for a store.
func (m *Marketplace) InitChain(gen *Genesis) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chainID != "" {
		return errors.Wrapf(errors.ErrState, "already initialized for chain %q", m.chainID)
	}
	db := m.store.DeliverStore()
	if err := saveChainID(db, gen.ChainID); err != nil {
		m.store.Rollback()
		return err
	}
	m.setup(gen.ChainID)

	init := ChainInitializers(
		cash.Initializer{},
		market.Initializer{},
		nft.Initializer{Registry: m.registry},
	)
	if err := init.FromGenesis(gen.AppState, db); err != nil {
		m.store.Rollback()
		m.chainID = ""
		return errors.Wrap(err, "genesis")
	}
	if _, err := m.store.Commit(); err != nil {
		m.store.Rollback()
		m.chainID = ""
		return errors.Wrap(err, "commit genesis")
	}
	m.logger.Info("chain initialized", "chain_id", gen.ChainID)
	return nil
}

// ChainID returns the chain id of the store or an empty string if it was
// never initialized.
func (m *Marketplace) ChainID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chainID
}

// Deliver executes the transaction and commits its changes. On failure
// nothing is changed and no events are returned.
func (m *Marketplace) Deliver(tx weave.Tx) (*weave.DeliverResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "not initialized")
	}
	info, err := m.store.CommitInfo()
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	ctx = weave.WithChainID(ctx, m.chainID)
	ctx = weave.WithHeight(ctx, info.Version+1)
	ctx = weave.WithBlockTime(ctx, time.Now().UTC())
	ctx = weave.WithLogger(ctx, m.logger)

	db := m.store.DeliverStore()

	check := db.CacheWrap()
	_, err = m.handler.Check(ctx, check, tx)
	check.Discard()
	if err != nil {
		return nil, err
	}

	res, err := m.handler.Deliver(ctx, db, tx)
	if err != nil {
		m.store.Rollback()
		return nil, err
	}
	if _, err := m.store.Commit(); err != nil {
		m.store.Rollback()
		return nil, errors.Wrap(err, "commit")
	}
	return res, nil
}

// read runs fn against a fresh view of the committed state.
func (m *Marketplace) read(fn func(db weave.ReadOnlyKVStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chainID == "" {
		return errors.Wrap(errors.ErrState, "not initialized")
	}
	return fn(m.store.ReadStore())
}

// RegistryAddress returns the reference of the asset registry.
func (m *Marketplace) RegistryAddress() weave.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registry == nil {
		return nil
	}
	return m.registry.Address()
}

// LedgerAddress returns the address holding listed assets.
func (m *Marketplace) LedgerAddress() weave.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ledger == nil {
		return nil
	}
	return m.ledger.Address()
}

// Mint creates an asset owned by the caller and returns its ID.
func (m *Marketplace) Mint(caller weave.Address, uri string) (uint64, []weave.Event, error) {
	res, err := m.Deliver(NewTx(caller, &nft.MintMsg{URI: uri}))
	if err != nil {
		return 0, nil, err
	}
	return orm.DecodeSequence(res.Data), res.Events, nil
}

// Approve sets the operator of an asset owned by the caller.
func (m *Marketplace) Approve(caller weave.Address, assetID uint64, operator weave.Address) ([]weave.Event, error) {
	res, err := m.Deliver(NewTx(caller, &nft.ApproveMsg{AssetID: assetID, Operator: operator}))
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

// Transfer moves an asset on behalf of the caller.
func (m *Marketplace) Transfer(caller weave.Address, assetID uint64, from, to weave.Address) ([]weave.Event, error) {
	res, err := m.Deliver(NewTx(caller, &nft.TransferMsg{AssetID: assetID, From: from, To: to}))
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

// CreateMarketItem lists an asset owned by the caller and returns the item
// ID.
func (m *Marketplace) CreateMarketItem(caller, registry weave.Address, assetID uint64, price, paid coin.Coin) (uint64, []weave.Event, error) {
	msg := &market.CreateMarketItemMsg{
		Registry: registry,
		AssetID:  assetID,
		Price:    price,
		Paid:     paid,
	}
	res, err := m.Deliver(NewTx(caller, msg))
	if err != nil {
		return 0, nil, err
	}
	return orm.DecodeSequence(res.Data), res.Events, nil
}

// CreateMarketSale buys a listed item for the caller.
func (m *Marketplace) CreateMarketSale(caller, registry weave.Address, itemID uint64, paid coin.Coin) ([]weave.Event, error) {
	msg := &market.CreateMarketSaleMsg{
		Registry: registry,
		ItemID:   itemID,
		Paid:     paid,
	}
	res, err := m.Deliver(NewTx(caller, msg))
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

// Send moves funds from the caller to another account.
func (m *Marketplace) Send(caller, to weave.Address, amount coin.Coin, memo string) ([]weave.Event, error) {
	res, err := m.Deliver(NewTx(caller, &cash.SendMsg{Destination: to, Amount: amount, Memo: memo}))
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

// UpdateConfiguration applies non zero fields of the patch to the market
// configuration. Only the fee owner can do it.
func (m *Marketplace) UpdateConfiguration(caller weave.Address, patch *market.Configuration) ([]weave.Event, error) {
	res, err := m.Deliver(NewTx(caller, &market.UpdateConfigurationMsg{Patch: patch}))
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

// ListingFee returns the current listing fee.
func (m *Marketplace) ListingFee() (coin.Coin, error) {
	var fee coin.Coin
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		fee, err = m.ledger.ListingFee(db)
		return err
	})
	return fee, err
}

// Configuration returns the current market configuration.
func (m *Marketplace) Configuration() (*market.Configuration, error) {
	var conf *market.Configuration
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		conf, err = market.LoadConfiguration(db)
		return err
	})
	return conf, err
}

// FetchMarketItems returns all unsold items.
func (m *Marketplace) FetchMarketItems() ([]*market.Item, error) {
	var items []*market.Item
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		items, err = m.ledger.FetchMarketItems(db)
		return err
	})
	return items, err
}

// FetchMyNFTs returns all items bought by the caller.
func (m *Marketplace) FetchMyNFTs(caller weave.Address) ([]*market.Item, error) {
	var items []*market.Item
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		items, err = m.ledger.FetchMyNFTs(db, caller)
		return err
	})
	return items, err
}

// FetchItemsListed returns all items listed by the caller.
func (m *Marketplace) FetchItemsListed(caller weave.Address) ([]*market.Item, error) {
	var items []*market.Item
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		items, err = m.ledger.FetchItemsListed(db, caller)
		return err
	})
	return items, err
}

// Item returns a single market item.
func (m *Marketplace) Item(id uint64) (*market.Item, error) {
	var item *market.Item
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		item, err = m.ledger.Item(db, id)
		return err
	})
	return item, err
}

// MetadataOf returns the URI of an asset.
func (m *Marketplace) MetadataOf(assetID uint64) (string, error) {
	var uri string
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		uri, err = m.registry.MetadataOf(db, assetID)
		return err
	})
	return uri, err
}

// Asset returns a single asset.
func (m *Marketplace) Asset(assetID uint64) (*nft.Asset, error) {
	var asset *nft.Asset
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		asset, err = m.registry.Asset(db, assetID)
		return err
	})
	return asset, err
}

// OwnedAssets returns all assets held by given owner.
func (m *Marketplace) OwnedAssets(owner weave.Address) ([]*nft.Asset, error) {
	var assets []*nft.Asset
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		assets, err = m.registry.OwnedBy(db, owner)
		return err
	})
	return assets, err
}

// Balance returns the funds held by given address.
func (m *Marketplace) Balance(addr weave.Address) (coin.Coin, error) {
	var c coin.Coin
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		c, err = m.bank.Balance(db, addr)
		return err
	})
	return c, err
}

// NextNonce returns the sequence the next signature of given address must
// use.
func (m *Marketplace) NextNonce(addr weave.Address) (int64, error) {
	var seq int64
	err := m.read(func(db weave.ReadOnlyKVStore) error {
		var err error
		seq, err = m.auth.NextNonce(db, addr)
		return err
	})
	return seq, err
}

// CommitInfo returns the version and hash of the last committed state.
func (m *Marketplace) CommitInfo() (weave.CommitID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.CommitInfo()
}
