package nft

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

const optKey = "nft"

// GenesisAsset is an asset minted when the chain is initialized.
type GenesisAsset struct {
	Owner weave.Address `json:"owner"`
	URI   string        `json:"uri"`
}

// Initializer mints the genesis assets in the declared order, so the first
// one gets ID 1.
type Initializer struct {
	Registry *Registry
}

var _ weave.Initializer = Initializer{}

func (i Initializer) FromGenesis(opts weave.Options, db weave.KVStore) error {
	var assets []GenesisAsset
	if err := opts.ReadOptions(optKey, &assets); err != nil {
		return err
	}
	for n, a := range assets {
		if _, _, err := i.Registry.Mint(db, a.URI, a.Owner); err != nil {
			return errors.Wrapf(err, "asset %d", n)
		}
	}
	return nil
}
