package cash

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/gconf"
)

// ConfigPkg is the name of the configuration singleton of this extension.
const ConfigPkg = "cash"

// Configuration declares the single currency every balance, price and fee is
// denominated in.
type Configuration struct {
	Ticker string `json:"ticker"`
}

func (c *Configuration) Validate() error {
	if !coin.IsCC(c.Ticker) {
		return errors.Field("Ticker", errors.ErrCurrency, "invalid currency %q", c.Ticker)
	}
	return nil
}

func (c *Configuration) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.String(1, c.Ticker)
	return b.Result(), nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		if d.Field() == 1 {
			c.Ticker = d.String()
		} else {
			d.Skip()
		}
	}
	return d.Err()
}

// LoadConfiguration returns the current cash configuration.
func LoadConfiguration(db weave.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, ConfigPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "cash configuration")
	}
	return &conf, nil
}
