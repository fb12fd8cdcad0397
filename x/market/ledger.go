package market

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
	"github.com/iov-one/weave-market/x/cash"
)

// Event types emitted by the ledger.
const (
	EventItemCreated = "market/item_created"
	EventItemSold    = "market/item_sold"
	EventFeeSettled  = "market/fee_settled"
)

// AssetRegistry is the part of an asset registry used by the ledger.
type AssetRegistry interface {
	// Address identifies the registry. It is the registry reference
	// stored with every item.
	Address() weave.Address
	// Transfer moves an asset, see nft.Registry.Transfer.
	Transfer(db weave.KVStore, id uint64, from, to, caller weave.Address) ([]weave.Event, error)
}

// LedgerCondition returns the condition identifying the ledger of given
// chain. Its address holds the listed assets and the unsettled fees.
func LedgerCondition(chainID string) weave.Condition {
	return weave.NewCondition("market", "ledger", []byte(chainID))
}

// Ledger manages the lifecycle of market items. Every state changing method
// takes the caller and the paid amount explicitly and must be executed
// within a single savepoint: when it returns an error, all writes it made
// must be discarded.
type Ledger struct {
	address    weave.Address
	bank       cash.Bank
	bucket     orm.ModelBucket
	registries map[string]AssetRegistry
}

// NewLedger returns the ledger of given chain. It depends on nothing but the
// payment capability; asset registries are added with RegisterAssets.
func NewLedger(chainID string, bank cash.Bank) *Ledger {
	return &Ledger{
		address:    LedgerCondition(chainID).Address(),
		bank:       bank,
		bucket:     NewItemBucket(),
		registries: make(map[string]AssetRegistry),
	}
}

// Address returns the address of the ledger.
func (l *Ledger) Address() weave.Address {
	return l.address
}

// RegisterAssets allows items of given registry to be listed.
func (l *Ledger) RegisterAssets(r AssetRegistry) {
	l.registries[string(r.Address())] = r
}

func (l *Ledger) registry(ref weave.Address) (AssetRegistry, error) {
	r, ok := l.registries[string(ref)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "unknown asset registry %s", ref)
	}
	return r, nil
}

// ListingFee returns the amount a seller must pay to list an item.
func (l *Ledger) ListingFee(db weave.ReadOnlyKVStore) (coin.Coin, error) {
	conf, err := LoadConfiguration(db)
	if err != nil {
		return coin.Coin{}, err
	}
	return conf.ListingFee, nil
}

// CreateMarketItem lists an asset owned by the caller for given price. The
// paid amount must be exactly the listing fee. The asset is moved into the
// custody of the ledger.
func (l *Ledger) CreateMarketItem(
	db weave.KVStore,
	registryRef weave.Address,
	assetID uint64,
	price coin.Coin,
	caller weave.Address,
	paid coin.Coin,
) (uint64, []weave.Event, error) {
	if err := caller.Validate(); err != nil {
		return 0, nil, errors.Wrap(errors.ErrUnauthorized, "caller required")
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return 0, nil, err
	}
	if !price.IsPositive() || !price.SameType(conf.ListingFee) {
		return 0, nil, errors.Wrapf(ErrInvalidPrice, "price %s", price)
	}
	if !samePayment(paid, conf.ListingFee) {
		return 0, nil, errors.Wrapf(ErrFeeMismatch, "paid %s, listing fee is %s", paid, conf.ListingFee)
	}
	registry, err := l.registry(registryRef)
	if err != nil {
		return 0, nil, err
	}

	events, err := registry.Transfer(db, assetID, caller, l.address, caller)
	if err != nil {
		return 0, nil, errors.Wrap(err, "cannot take custody of the asset")
	}

	id, err := l.bucket.Sequence().NextInt(db)
	if err != nil {
		return 0, nil, errors.Wrap(err, "item id")
	}
	item := Item{
		ID:         id,
		Registry:   registryRef,
		AssetID:    assetID,
		Seller:     caller,
		Owner:      l.address,
		Price:      price,
		Sold:       false,
		ListingFee: conf.ListingFee,
	}

	if err := cash.MoveCoins(db, l.bank, caller, l.address, paid); err != nil {
		return 0, nil, errors.Wrap(err, "cannot pay the listing fee")
	}
	if conf.SettlesOnListing() {
		ev, err := l.settleFee(db, conf, &item)
		if err != nil {
			return 0, nil, err
		}
		events = append(events, ev)
	}

	if _, err := l.bucket.Put(db, orm.EncodeSequence(id), &item); err != nil {
		return 0, nil, errors.Wrap(err, "cannot store item")
	}
	events = append(events, weave.NewEvent(EventItemCreated,
		"id", item.ID,
		"registry", item.Registry,
		"asset_id", item.AssetID,
		"seller", item.Seller,
		"owner", item.Owner,
		"price", item.Price,
		"sold", item.Sold,
	))
	return id, events, nil
}

// CreateMarketSale sells a listed item to the caller. The paid amount must
// be exactly the item price and is forwarded to the seller. The asset is
// moved to the caller.
func (l *Ledger) CreateMarketSale(
	db weave.KVStore,
	registryRef weave.Address,
	itemID uint64,
	caller weave.Address,
	paid coin.Coin,
) ([]weave.Event, error) {
	if err := caller.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "caller required")
	}
	item, err := l.Item(db, itemID)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(ErrNotListed, "item %d", itemID)
		}
		return nil, err
	}
	if item.Sold {
		return nil, errors.Wrapf(ErrAlreadySold, "item %d", itemID)
	}
	if !item.Registry.Equals(registryRef) {
		return nil, errors.Wrapf(errors.ErrInput, "item %d belongs to registry %s", itemID, item.Registry)
	}
	if !samePayment(paid, item.Price) {
		return nil, errors.Wrapf(ErrWrongPayment, "paid %s, price is %s", paid, item.Price)
	}
	registry, err := l.registry(item.Registry)
	if err != nil {
		return nil, err
	}

	if err := cash.MoveCoins(db, l.bank, caller, item.Seller, paid); err != nil {
		return nil, errors.Wrap(err, "cannot pay the seller")
	}
	events, err := registry.Transfer(db, item.AssetID, l.address, caller, l.address)
	if err != nil {
		return nil, errors.Wrap(err, "cannot release the asset")
	}
	item.Owner = caller
	item.Sold = true

	if !item.FeeSettled {
		conf, err := LoadConfiguration(db)
		if err != nil {
			return nil, err
		}
		ev, err := l.settleFee(db, conf, item)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if _, err := l.bucket.Put(db, orm.EncodeSequence(item.ID), item); err != nil {
		return nil, errors.Wrap(err, "cannot store item")
	}
	events = append(events, weave.NewEvent(EventItemSold,
		"id", item.ID,
		"registry", item.Registry,
		"asset_id", item.AssetID,
		"seller", item.Seller,
		"owner", item.Owner,
		"price", item.Price,
	))
	return events, nil
}

// settleFee forwards the listing fee held by the ledger to the fee owner.
func (l *Ledger) settleFee(db weave.KVStore, conf *Configuration, item *Item) (weave.Event, error) {
	if err := cash.MoveCoins(db, l.bank, l.address, conf.Owner, item.ListingFee); err != nil {
		return weave.Event{}, errors.Wrap(err, "cannot settle the listing fee")
	}
	item.FeeSettled = true
	return weave.NewEvent(EventFeeSettled,
		"id", item.ID,
		"owner", conf.Owner,
		"fee", item.ListingFee,
	), nil
}

// Item returns the item with given ID. ErrNotFound is returned if it does not
// exist.
func (l *Ledger) Item(db weave.ReadOnlyKVStore, id uint64) (*Item, error) {
	var item Item
	if err := l.bucket.One(db, orm.EncodeSequence(id), &item); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "item %d", id)
		}
		return nil, err
	}
	return &item, nil
}

// MarketItems returns the items currently for sale.
func (l *Ledger) MarketItems(db weave.ReadOnlyKVStore) ItemQuery {
	return ItemQuery{bucket: l.bucket, db: db, index: indexUnsold, value: []byte{1}}
}

// OwnedItems returns the items held by given owner through the ledger.
func (l *Ledger) OwnedItems(db weave.ReadOnlyKVStore, owner weave.Address) ItemQuery {
	return ItemQuery{bucket: l.bucket, db: db, index: indexOwner, value: owner}
}

// ListedItems returns all items ever listed by given seller, sold or not.
func (l *Ledger) ListedItems(db weave.ReadOnlyKVStore, seller weave.Address) ItemQuery {
	return ItemQuery{bucket: l.bucket, db: db, index: indexSeller, value: seller}
}

// AllItems returns every item.
func (l *Ledger) AllItems(db weave.ReadOnlyKVStore) ItemQuery {
	return ItemQuery{bucket: l.bucket, db: db}
}

// FetchMarketItems returns all unsold items in ascending ID order.
func (l *Ledger) FetchMarketItems(db weave.ReadOnlyKVStore) ([]*Item, error) {
	return l.MarketItems(db).All()
}

// FetchMyNFTs returns all items owned by the caller in ascending ID order.
func (l *Ledger) FetchMyNFTs(db weave.ReadOnlyKVStore, caller weave.Address) ([]*Item, error) {
	return l.OwnedItems(db, caller).All()
}

// FetchItemsListed returns all items listed by the caller in ascending ID
// order.
func (l *Ledger) FetchItemsListed(db weave.ReadOnlyKVStore, caller weave.Address) ([]*Item, error) {
	return l.ListedItems(db, caller).All()
}

// samePayment compares amounts. A zero amount matches regardless of the
// currency.
func samePayment(paid, want coin.Coin) bool {
	if paid.Amount != want.Amount {
		return false
	}
	return paid.Amount == 0 || paid.Ticker == want.Ticker
}
