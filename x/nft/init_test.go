package nft

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/store"
	"github.com/iov-one/weave-market/weavetest"
	"github.com/iov-one/weave-market/weavetest/assert"
)

func TestGenesisAssets(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	cases := map[string]struct {
		assets  []GenesisAsset
		wantErr *errors.Error
		want    []GenesisAsset
	}{
		"no assets": {},
		"minted in declared order": {
			assets: []GenesisAsset{
				{Owner: bob, URI: "ipfs://first"},
				{Owner: alice, URI: "ipfs://second"},
			},
			want: []GenesisAsset{
				{Owner: bob, URI: "ipfs://first"},
				{Owner: alice, URI: "ipfs://second"},
			},
		},
		"asset without owner": {
			assets:  []GenesisAsset{{URI: "ipfs://orphan"}},
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := json.Marshal(tc.assets)
			assert.Nil(t, err)
			opts := weave.Options{optKey: raw}

			db := store.MemStore()
			r := NewRegistry("test", weavetest.NewCondition().Address())
			err = Initializer{Registry: r}.FromGenesis(opts, db)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)

			for i, want := range tc.want {
				asset, err := r.Asset(db, uint64(i+1))
				assert.Nil(t, err)
				assert.Equal(t, want.Owner, asset.Owner)
				assert.Equal(t, want.URI, asset.URI)
			}
			_, err = r.Asset(db, uint64(len(tc.want)+1))
			assert.IsErr(t, errors.ErrNotFound, err)
		})
	}
}
