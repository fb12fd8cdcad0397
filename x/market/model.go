package market

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
)

// Item is a single listing of an asset.
type Item struct {
	ID uint64 `json:"id"`
	// Registry is the address of the registry the asset belongs to.
	Registry weave.Address `json:"registry"`
	AssetID  uint64        `json:"asset_id"`
	Seller   weave.Address `json:"seller"`
	// Owner is the ledger while the item is listed and the buyer once
	// sold.
	Owner weave.Address `json:"owner"`
	// Price never changes once listed.
	Price coin.Coin `json:"price"`
	Sold  bool      `json:"sold"`
	// ListingFee is the fee paid by the seller when listing.
	ListingFee coin.Coin `json:"listing_fee"`
	// FeeSettled is set once the listing fee was forwarded to the fee
	// owner.
	FeeSettled bool `json:"fee_settled"`
}

var _ orm.Model = (*Item)(nil)

func (i *Item) Validate() error {
	var errs error
	if i.ID == 0 {
		errs = errors.AppendField(errs, "ID", errors.ErrEmpty)
	}
	if i.AssetID == 0 {
		errs = errors.AppendField(errs, "AssetID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Registry", i.Registry.Validate())
	errs = errors.AppendField(errs, "Seller", i.Seller.Validate())
	errs = errors.AppendField(errs, "Owner", i.Owner.Validate())
	if !i.Price.IsPositive() {
		errs = errors.AppendField(errs, "Price", ErrInvalidPrice)
	} else {
		errs = errors.AppendField(errs, "Price", i.Price.Validate())
	}
	return errs
}

func (i *Item) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Uint64(1, i.ID)
	b.Bytes(2, i.Registry)
	b.Uint64(3, i.AssetID)
	b.Bytes(4, i.Seller)
	b.Bytes(5, i.Owner)
	if err := b.Message(6, &i.Price); err != nil {
		return nil, err
	}
	b.Bool(7, i.Sold)
	if err := b.Message(8, &i.ListingFee); err != nil {
		return nil, err
	}
	b.Bool(9, i.FeeSettled)
	return b.Result(), nil
}

func (i *Item) Unmarshal(raw []byte) error {
	*i = Item{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			i.ID = d.Uint64()
		case 2:
			i.Registry = d.Bytes()
		case 3:
			i.AssetID = d.Uint64()
		case 4:
			i.Seller = d.Bytes()
		case 5:
			i.Owner = d.Bytes()
		case 6:
			d.Message(&i.Price)
		case 7:
			i.Sold = d.Bool()
		case 8:
			d.Message(&i.ListingFee)
		case 9:
			i.FeeSettled = d.Bool()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// Names of the item bucket indexes.
const (
	indexSeller = "seller"
	indexOwner  = "owner"
	indexUnsold = "unsold"
)

// NewItemBucket returns a bucket storing items by their sequential ID.
func NewItemBucket() orm.ModelBucket {
	return orm.NewModelBucket("market", &Item{},
		orm.WithIDSequence(orm.NewSequence("market", "id")),
		orm.WithIndex(indexSeller, itemIndexer(func(i *Item) []byte { return i.Seller })),
		orm.WithIndex(indexOwner, itemIndexer(func(i *Item) []byte { return i.Owner })),
		orm.WithIndex(indexUnsold, itemIndexer(func(i *Item) []byte {
			if i.Sold {
				return nil
			}
			return []byte{1}
		})),
	)
}

func itemIndexer(fn func(*Item) []byte) orm.Indexer {
	return func(m orm.Model) ([]byte, error) {
		i, ok := m.(*Item)
		if !ok {
			return nil, errors.Wrapf(errors.ErrType, "%T", m)
		}
		return fn(i), nil
	}
}
