package cash

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/coin"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/gconf"
	"github.com/iov-one/weave-market/store"
	"github.com/iov-one/weave-market/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkt(amount uint64) coin.Coin {
	return coin.NewCoin(amount, "MKT")
}

func newTestStore(t *testing.T) weave.CacheableKVStore {
	db := store.MemStore()
	require.NoError(t, gconf.Save(db, ConfigPkg, &Configuration{Ticker: "MKT"}))
	return db
}

func TestBalanceDebitCredit(t *testing.T) {
	db := newTestStore(t)
	ctrl := NewController(nil)
	alice := weavetest.NewCondition().Address()

	b, err := ctrl.Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, mkt(0), b)

	require.NoError(t, ctrl.Credit(db, alice, mkt(100)))
	require.NoError(t, ctrl.Debit(db, alice, mkt(30)))

	b, err = ctrl.Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, mkt(70), b)

	err = ctrl.Debit(db, alice, mkt(71))
	assert.True(t, errors.ErrAmount.Is(err), "got %v", err)

	err = ctrl.Debit(db, alice, coin.NewCoin(1, "ETH"))
	assert.True(t, errors.ErrCurrency.Is(err), "got %v", err)

	err = ctrl.Credit(db, alice, coin.NewCoin(1, "ETH"))
	assert.True(t, errors.ErrCurrency.Is(err), "got %v", err)

	_, err = ctrl.Balance(db, weave.Address{1, 2})
	assert.True(t, errors.ErrInput.Is(err), "got %v", err)
}

func TestMoveCoins(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	cases := map[string]struct {
		guard     Guard
		amount    coin.Coin
		wantErr   *errors.Error
		wantAlice coin.Coin
		wantBob   coin.Coin
	}{
		"success": {
			amount:    mkt(40),
			wantAlice: mkt(60),
			wantBob:   mkt(40),
		},
		"insufficient funds": {
			amount:    mkt(101),
			wantErr:   errors.ErrAmount,
			wantAlice: mkt(100),
			wantBob:   mkt(0),
		},
		"recipient rejects funds": {
			guard:     RejectFunds(bob),
			amount:    mkt(40),
			wantErr:   errors.ErrUnauthorized,
			wantAlice: mkt(100),
			wantBob:   mkt(0),
		},
		"zero amount is a no-op": {
			guard:     RejectFunds(bob),
			amount:    mkt(0),
			wantAlice: mkt(100),
			wantBob:   mkt(0),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := newTestStore(t)
			ctrl := NewController(tc.guard)
			require.NoError(t, ctrl.Issue(db, alice, mkt(100)))

			// Operations run inside a cache wrap, as the application does.
			cache := db.CacheWrap()
			err := MoveCoins(cache, ctrl, alice, bob, tc.amount)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %v", err)
				cache.Discard()
			} else {
				require.NoError(t, err)
				require.NoError(t, cache.Write())
			}

			got, err := ctrl.Balance(db, alice)
			require.NoError(t, err)
			assert.Equal(t, tc.wantAlice, got)
			got, err = ctrl.Balance(db, bob)
			require.NoError(t, err)
			assert.Equal(t, tc.wantBob, got)
		})
	}
}

func TestGenesis(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	genesis := map[string]interface{}{
		"conf": map[string]interface{}{
			"cash": map[string]interface{}{"ticker": "MKT"},
		},
		"cash": []interface{}{
			map[string]interface{}{"address": alice, "balance": "10.5 MKT"},
		},
	}
	raw, err := json.Marshal(genesis)
	require.NoError(t, err)
	var opts weave.Options
	require.NoError(t, json.Unmarshal(raw, &opts))

	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(opts, db))

	b, err := NewController(nil).Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, mkt(10500000000), b)
}

func TestSendHandler(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	db := newTestStore(t)
	ctrl := NewController(nil)
	require.NoError(t, ctrl.Issue(db, alice, mkt(10)))

	h := NewSendHandler(ctrl)
	ctx := weavetest.NewContext()

	tx := &weavetest.Tx{Caller: alice, Msg: &SendMsg{Destination: bob, Amount: mkt(4)}}
	_, err := h.Check(ctx, db, tx)
	require.NoError(t, err)
	res, err := h.Deliver(ctx, db, tx)
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "cash/sent", res.Events[0].Type)
	amount, _ := res.Events[0].Attr("amount")
	assert.Equal(t, "0.000000004 MKT", amount)

	b, err := ctrl.Balance(db, bob)
	require.NoError(t, err)
	assert.Equal(t, mkt(4), b)

	invalid := &weavetest.Tx{Caller: alice, Msg: &SendMsg{Destination: bob}}
	_, err = h.Deliver(ctx, db, invalid)
	assert.True(t, errors.ErrAmount.Is(err), "got %v", err)

	anonymous := &weavetest.Tx{Msg: &SendMsg{Destination: bob, Amount: mkt(1)}}
	_, err = h.Deliver(ctx, db, anonymous)
	assert.True(t, errors.ErrUnauthorized.Is(err), "got %v", err)
}

func TestSendMsgSerialization(t *testing.T) {
	msg := SendMsg{
		Destination: weavetest.NewCondition().Address(),
		Amount:      mkt(12),
		Memo:        "rent",
	}
	raw, err := msg.Marshal()
	require.NoError(t, err)

	var got SendMsg
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, msg, got)
}
