package weave_test

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressPrinting(t *testing.T) {
	Convey("Addresses print as bech32", t, func() {
		addr := weave.NewCondition("nft", "registry", []byte("market")).Address()

		So(addr.String(), ShouldStartWith, weave.AddressPrefix+"1")
		So(addr.String(), ShouldNotEqual, fmt.Sprintf("%X", addr))
	})

	Convey("Empty addresses are marked", t, func() {
		So(weave.Address(nil).String(), ShouldEqual, "(nil)")
	})

	Convey("Condition data is printed in hex", t, func() {
		cond := weave.NewCondition("market", "ledger", []byte{0xca, 0xfe})

		So(cond.String(), ShouldEqual, "market/ledger/CAFE")
	})
}

func TestConditionParse(t *testing.T) {
	cases := map[string]struct {
		cond    weave.Condition
		ext     string
		typ     string
		data    []byte
		wantErr *errors.Error
	}{
		"ledger": {
			cond: weave.NewCondition("market", "ledger", []byte("test-chain")),
			ext:  "market",
			typ:  "ledger",
			data: []byte("test-chain"),
		},
		"newline in data": {
			cond: weave.NewCondition("sigs", "ed25519", []byte("a\nb")),
			ext:  "sigs",
			typ:  "ed25519",
			data: []byte("a\nb"),
		},
		"too short extension": {
			cond:    weave.NewCondition("a", "b", []byte("data")),
			wantErr: errors.ErrInput,
		},
		"no data": {
			cond:    weave.Condition("market/ledger/"),
			wantErr: errors.ErrInput,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ext, typ, data, err := tc.cond.Parse()
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "got %+v", err)
				require.True(t, tc.wantErr.Is(tc.cond.Validate()))
				return
			}
			require.NoError(t, err)
			require.NoError(t, tc.cond.Validate())
			assert.Equal(t, tc.ext, ext)
			assert.Equal(t, tc.typ, typ)
			assert.Equal(t, tc.data, data)
		})
	}
}

func TestAddressValidation(t *testing.T) {
	addr := weave.NewCondition("test", "seq", []byte{1}).Address()
	assert.Len(t, addr, weave.AddressLength)
	assert.NoError(t, addr.Validate())
	assert.True(t, errors.ErrEmpty.Is(weave.Address(nil).Validate()))
	assert.True(t, errors.ErrInput.Is(weave.Address([]byte{1, 2, 3}).Validate()))

	assert.True(t, addr.Equals(addr.Clone()))
	cpy := addr.Clone()
	cpy[0]++
	assert.False(t, addr.Equals(cpy))
	assert.Nil(t, weave.Address(nil).Clone())
}

func TestParseAddress(t *testing.T) {
	cond := weave.NewCondition("market", "ledger", []byte("test-chain"))
	addr := cond.Address()

	cases := map[string]struct {
		enc     string
		want    weave.Address
		wantErr *errors.Error
	}{
		"bech32": {
			enc:  addr.String(),
			want: addr,
		},
		"hex prefixed": {
			enc:  "hex:" + hex.EncodeToString(addr),
			want: addr,
		},
		"bare hex": {
			enc:  strings.ToUpper(hex.EncodeToString(addr)),
			want: addr,
		},
		"condition": {
			enc:  "cond:market/ledger/" + hex.EncodeToString([]byte("test-chain")),
			want: addr,
		},
		"unknown format": {
			enc:     "b58:abc",
			wantErr: errors.ErrInput,
		},
		"bad hex": {
			enc:     "hex:zz",
			wantErr: errors.ErrInput,
		},
		"short address": {
			enc:     "hex:0102",
			wantErr: errors.ErrInput,
		},
		"malformed condition": {
			enc:     "cond:market/ledger",
			wantErr: errors.ErrInput,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := weave.ParseAddress(tc.enc)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAddressJSON(t *testing.T) {
	type holder struct {
		Owner weave.Address `json:"owner"`
	}
	addr := weave.NewCondition("nft", "registry", []byte("x")).Address()

	raw, err := json.Marshal(holder{Owner: addr})
	require.NoError(t, err)
	assert.Equal(t, `{"owner":"`+addr.String()+`"}`, string(raw))

	var got holder
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, addr, got.Owner)

	require.NoError(t, json.Unmarshal([]byte(`{"owner":""}`), &got))
	assert.Nil(t, got.Owner)

	err = json.Unmarshal([]byte(`{"owner":"hex:00"}`), &got)
	assert.True(t, errors.ErrInput.Is(err))
}
