package weave

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/weavetest/assert"
)

func TestReadOptions(t *testing.T) {
	type entry struct {
		Key int `json:"key"`
	}
	cases := map[string]struct {
		json    string
		want    []entry
		wantErr *errors.Error
	}{
		"happy path": {
			json: `{"list": [{"key": 1}, {"key": 2}]}`,
			want: []entry{{Key: 1}, {Key: 2}},
		},
		"missing key is a noop": {
			json: `{}`,
		},
		"wrong type": {
			json:    `{"list": {"key": 1}}`,
			wantErr: errors.ErrInput,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var opts Options
			if err := json.Unmarshal([]byte(tc.json), &opts); err != nil {
				t.Fatalf("cannot decode options: %s", err)
			}
			var got []entry
			err := opts.ReadOptions("list", &got)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestEvent(t *testing.T) {
	ev := NewEvent("market/item_sold", "id", 7, "sold", true)
	assert.Equal(t, "market/item_sold", ev.Type)
	assert.Equal(t, 2, len(ev.Attributes))

	v, ok := ev.Attr("id")
	assert.Equal(t, true, ok)
	assert.Equal(t, "7", v)
	v, ok = ev.Attr("sold")
	assert.Equal(t, true, ok)
	assert.Equal(t, "true", v)
	_, ok = ev.Attr("price")
	assert.Equal(t, false, ok)

	assert.Panics(t, func() { NewEvent("market/item_sold", "id") })
}

func TestIsValidPath(t *testing.T) {
	cases := map[string]bool{
		"market/create_item": true,
		"nft/mint":           true,
		"nft":                false,
		"nft/mint/extra":     false,
		"NFT/mint":           false,
		"":                   false,
	}
	for path, want := range cases {
		if got := IsValidPath(path); got != want {
			t.Errorf("%q: want %v, got %v", path, want, got)
		}
	}
}
