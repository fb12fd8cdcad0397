package market

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/gconf"
)

// ConfigPkg is the name of the configuration singleton of this extension.
const ConfigPkg = "market"

// Fee settlement modes.
const (
	// SettleOnSale keeps the listing fee in the ledger until the item is
	// sold. This is the default.
	SettleOnSale = "sale"
	// SettleOnListing forwards the listing fee as soon as it is paid.
	SettleOnListing = "listing"
)

// DefaultListingFee is the listing fee in smallest units used when none is
// configured: 0.025 of a whole unit.
const DefaultListingFee uint64 = 25000000

// Configuration is the fee account of the marketplace.
type Configuration struct {
	// Owner receives the listing fees and may update the configuration.
	Owner weave.Address `json:"owner"`
	// ListingFee is paid by the seller for every listing.
	ListingFee coin.Coin `json:"listing_fee"`
	// FeeSettlement is either "sale" or "listing". Empty means "sale".
	FeeSettlement string `json:"fee_settlement,omitempty"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() weave.Address {
	return c.Owner
}

// SettlesOnListing returns true if fees are forwarded when paid.
func (c *Configuration) SettlesOnListing() bool {
	return c.FeeSettlement == SettleOnListing
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "ListingFee", c.ListingFee.Validate())
	switch c.FeeSettlement {
	case "", SettleOnSale, SettleOnListing:
	default:
		errs = errors.AppendField(errs, "FeeSettlement",
			errors.Wrapf(errors.ErrInput, "unknown mode %q", c.FeeSettlement))
	}
	return errs
}

func (c *Configuration) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Bytes(1, c.Owner)
	if err := b.Message(2, &c.ListingFee); err != nil {
		return nil, err
	}
	b.String(3, c.FeeSettlement)
	return b.Result(), nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			c.Owner = d.Bytes()
		case 2:
			d.Message(&c.ListingFee)
		case 3:
			c.FeeSettlement = d.String()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// LoadConfiguration returns the current marketplace configuration.
func LoadConfiguration(db weave.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, ConfigPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "market configuration")
	}
	return &conf, nil
}
