package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

// Genesis file format
type Genesis struct {
	ChainID  string        `json:"chain_id"`
	AppState weave.Options `json:"app_state"`
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "loading genesis file: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "unmarshaling genesis file: %s", err)
	}
	return &gen, nil
}

// Save writes the genesis as an indented JSON file.
func (g *Genesis) Save(filePath string) error {
	raw, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot serialize genesis: %s", err)
	}
	if err := ioutil.WriteFile(filePath, raw, 0644); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot write genesis: %s", err)
	}
	return nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...weave.Initializer) weave.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []weave.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts weave.Options, kv weave.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
