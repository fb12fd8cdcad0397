package cash

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
)

// Wallet is the balance of a single account. Wallets are stored under the
// owner address.
type Wallet struct {
	Balance coin.Coin
}

var _ orm.Model = (*Wallet)(nil)

// Validate requires a valid currency for every non empty balance.
func (w *Wallet) Validate() error {
	if w.Balance.IsZero() && w.Balance.Ticker == "" {
		return nil
	}
	return errors.Field("Balance", w.Balance.Validate(), "invalid balance")
}

func (w *Wallet) Marshal() ([]byte, error) {
	var b codec.Buffer
	if err := b.Message(1, &w.Balance); err != nil {
		return nil, err
	}
	return b.Result(), nil
}

func (w *Wallet) Unmarshal(raw []byte) error {
	*w = Wallet{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		if d.Field() == 1 {
			d.Message(&w.Balance)
		} else {
			d.Skip()
		}
	}
	return d.Err()
}

// NewWalletBucket returns a bucket storing wallets by owner address.
func NewWalletBucket() orm.ModelBucket {
	return orm.NewModelBucket("cash", &Wallet{})
}

// walletKey returns the bucket key of the wallet of given address.
func walletKey(addr weave.Address) []byte {
	return addr
}
