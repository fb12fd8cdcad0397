package cash

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/gconf"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use weave.Address, so address in bech32 or hex, not base64
type GenesisAccount struct {
	Address weave.Address `json:"address"`
	Balance coin.Coin     `json:"balance"`
}

// Initializer fulfils the InitStater interface to load data from
// the genesis file
type Initializer struct{}

var _ weave.Initializer = Initializer{}

// FromGenesis will parse the currency configuration and initial account info
// from genesis and save it to the database
func (Initializer) FromGenesis(opts weave.Options, db weave.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, ConfigPkg, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}

	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	ctrl := NewController(nil)
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := ctrl.Issue(db, acct.Address, acct.Balance); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
