package main

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/x/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliRunner struct {
	t    *testing.T
	home string
}

// run executes the command line and decodes its JSON output into dest.
func (r *cliRunner) run(dest interface{}, args ...string) error {
	r.t.Helper()
	var out bytes.Buffer
	cliApp := newApp()
	cliApp.Writer = &out
	cliApp.ErrWriter = ioutil.Discard
	argv := append([]string{"marketd", "--config", "", "--home", r.home}, args...)
	if err := cliApp.Run(argv); err != nil {
		return err
	}
	if dest != nil {
		require.NoError(r.t, json.Unmarshal(out.Bytes(), dest), out.String())
	}
	return nil
}

func (r *cliRunner) mustRun(dest interface{}, args ...string) {
	r.t.Helper()
	require.NoError(r.t, r.run(dest, args...))
}

func (r *cliRunner) newKey(name string) string {
	r.t.Helper()
	var key struct {
		Address string `json:"address"`
	}
	r.mustRun(&key, "keys", "new", name)
	require.NotEmpty(r.t, key.Address)
	return key.Address
}

func TestMarketplaceCommands(t *testing.T) {
	home, err := ioutil.TempDir("", "marketd")
	require.NoError(t, err)
	defer os.RemoveAll(home)
	r := &cliRunner{t: t, home: home}

	owner := r.newKey("owner")
	seller := r.newKey("seller")
	buyer := r.newKey("buyer")

	assert.Error(t, r.run(nil, "fee"), "state is not initialized")

	r.mustRun(nil, "init",
		"--chain-id", "market-test",
		"--fee-owner", owner,
		"--fund", seller+"=10 MKT",
		"--fund", buyer+"=10 MKT",
	)
	assert.Error(t, r.run(nil, "init", "--chain-id", "market-test", "--fee-owner", owner),
		"cannot initialize twice")

	var fee map[string]coin.Coin
	r.mustRun(&fee, "fee")
	assert.Equal(t, coin.NewCoin(market.DefaultListingFee, "MKT"), fee["listing_fee"])

	var minted result
	r.mustRun(&minted, "mint", "--key", "seller", "--uri", "ipfs://token")
	assert.Equal(t, uint64(1), minted.ID)

	var listed result
	r.mustRun(&listed, "list", "--key", "seller", "--asset", "1", "--price", "2 MKT")
	assert.Equal(t, uint64(1), listed.ID)

	var items []*market.Item
	r.mustRun(&items, "items")
	require.Len(t, items, 1)
	assert.False(t, items[0].Sold)

	r.mustRun(nil, "buy", "--key", "buyer", "--item", "1")

	items = nil
	r.mustRun(&items, "items")
	assert.Empty(t, items)

	var mine []*market.Item
	r.mustRun(&mine, "mine", "--key", "buyer")
	require.Len(t, mine, 1)
	assert.True(t, mine[0].Sold)

	var bal struct {
		Balance coin.Coin `json:"balance"`
	}
	r.mustRun(&bal, "balance", "--addr", owner)
	assert.Equal(t, market.DefaultListingFee, bal.Balance.Amount)
	r.mustRun(&bal, "balance", "--key", "seller")
	assert.Equal(t, 12*coin.FracUnit-market.DefaultListingFee, bal.Balance.Amount)

	err = r.run(nil, "buy", "--key", "buyer", "--item", "1")
	assert.True(t, market.ErrAlreadySold.Is(err), "got %v", err)

	var meta map[string]string
	r.mustRun(&meta, "metadata", "--id", "1")
	assert.Equal(t, "ipfs://token", meta["uri"])
}
