package market

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/gconf"
	"github.com/iov-one/weave-market/x/cash"
)

// Initializer loads the marketplace configuration from the genesis file.
// It must run after the cash initializer.
type Initializer struct{}

var _ weave.Initializer = Initializer{}

func (Initializer) FromGenesis(opts weave.Options, db weave.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, ConfigPkg, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}
	cashConf, err := cash.LoadConfiguration(db)
	if err != nil {
		return errors.Wrap(err, "listing fee currency")
	}
	if conf.ListingFee.Ticker != cashConf.Ticker {
		return errors.Wrapf(errors.ErrCurrency, "listing fee in %q, ledger currency is %q",
			conf.ListingFee.Ticker, cashConf.Ticker)
	}
	return nil
}
