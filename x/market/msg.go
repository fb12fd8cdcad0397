package market

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
)

var (
	_ weave.Msg = (*CreateMarketItemMsg)(nil)
	_ weave.Msg = (*CreateMarketSaleMsg)(nil)
	_ weave.Msg = (*UpdateConfigurationMsg)(nil)
)

// CreateMarketItemMsg lists an asset owned by the caller. Paid is the
// amount the caller attaches and must equal the listing fee. The asset ID is
// resolved by the registry, which reports an unknown asset as ErrNotFound.
type CreateMarketItemMsg struct {
	Registry weave.Address `json:"registry"`
	AssetID  uint64        `json:"asset_id"`
	Price    coin.Coin     `json:"price"`
	Paid     coin.Coin     `json:"paid"`
}

func (CreateMarketItemMsg) Path() string {
	return "market/create_item"
}

func (m *CreateMarketItemMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Registry", m.Registry.Validate())
	if !m.Price.IsPositive() {
		errs = errors.AppendField(errs, "Price", ErrInvalidPrice)
	}
	return errs
}

func (m *CreateMarketItemMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Bytes(1, m.Registry)
	b.Uint64(2, m.AssetID)
	if err := b.Message(3, &m.Price); err != nil {
		return nil, err
	}
	if err := b.Message(4, &m.Paid); err != nil {
		return nil, err
	}
	return b.Result(), nil
}

func (m *CreateMarketItemMsg) Unmarshal(raw []byte) error {
	*m = CreateMarketItemMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Registry = d.Bytes()
		case 2:
			m.AssetID = d.Uint64()
		case 3:
			d.Message(&m.Price)
		case 4:
			d.Message(&m.Paid)
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// CreateMarketSaleMsg buys a listed item. Paid must equal the item price.
type CreateMarketSaleMsg struct {
	Registry weave.Address `json:"registry"`
	ItemID   uint64        `json:"item_id"`
	Paid     coin.Coin     `json:"paid"`
}

func (CreateMarketSaleMsg) Path() string {
	return "market/create_sale"
}

// Validate does not check the item ID, an unknown item is reported as
// ErrNotListed when the sale is attempted.
func (m *CreateMarketSaleMsg) Validate() error {
	return errors.Field("Registry", m.Registry.Validate(), "")
}

func (m *CreateMarketSaleMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Bytes(1, m.Registry)
	b.Uint64(2, m.ItemID)
	if err := b.Message(3, &m.Paid); err != nil {
		return nil, err
	}
	return b.Result(), nil
}

func (m *CreateMarketSaleMsg) Unmarshal(raw []byte) error {
	*m = CreateMarketSaleMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Registry = d.Bytes()
		case 2:
			m.ItemID = d.Uint64()
		case 3:
			d.Message(&m.Paid)
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// UpdateConfigurationMsg changes the fee account. Only non zero fields of the
// patch are applied.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string {
	return "market/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "required")
	}
	var errs error
	if len(m.Patch.Owner) != 0 {
		errs = errors.AppendField(errs, "Patch.Owner", m.Patch.Owner.Validate())
	}
	if !m.Patch.ListingFee.IsZero() {
		errs = errors.AppendField(errs, "Patch.ListingFee", m.Patch.ListingFee.Validate())
	}
	switch m.Patch.FeeSettlement {
	case "", SettleOnSale, SettleOnListing:
	default:
		errs = errors.AppendField(errs, "Patch.FeeSettlement",
			errors.Wrapf(errors.ErrInput, "unknown mode %q", m.Patch.FeeSettlement))
	}
	return errs
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	if m.Patch != nil {
		if err := b.Message(1, m.Patch); err != nil {
			return nil, err
		}
	}
	return b.Result(), nil
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	*m = UpdateConfigurationMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		if d.Field() == 1 {
			m.Patch = &Configuration{}
			d.Message(m.Patch)
		} else {
			d.Skip()
		}
	}
	return d.Err()
}
