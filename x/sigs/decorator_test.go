package sigs

import (
	"testing"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/store"
	"github.com/iov-one/weave-market/weavetest"
	"github.com/iov-one/weave-market/weavetest/assert"
)

func TestDecorator(t *testing.T) {
	key := weavetest.NewKey()
	signer := key.PublicKey().Address()
	stranger := weavetest.NewCondition().Address()
	payload := []byte("POST /nft/mint")

	cases := map[string]struct {
		tx          weave.Tx
		wantErr     *errors.Error
		wantCalls   int
		wantNextSeq int64
	}{
		"unsigned transaction is passed through": {
			tx:        &weavetest.Tx{Caller: stranger},
			wantCalls: 1,
		},
		"signed by the caller": {
			tx:          newSignedTx(t, key, signer, payload, 0),
			wantCalls:   1,
			wantNextSeq: 1,
		},
		"signed by someone else": {
			tx:      newSignedTx(t, key, stranger, payload, 0),
			wantErr: errors.ErrUnauthorized,
		},
		"wrong sequence": {
			tx:      newSignedTx(t, key, signer, payload, 4),
			wantErr: ErrInvalidSequence,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			handler := &weavetest.Handler{}
			h := weavetest.Decorate(handler, NewDecorator())

			_, err := h.Deliver(weavetest.NewContext(), db, tc.tx)
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, tc.wantCalls, handler.DeliverCallCount())

			seq, err := NewController().NextNonce(db, signer)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantNextSeq, seq)
		})
	}
}

func TestDecoratorReplay(t *testing.T) {
	key := weavetest.NewKey()
	signer := key.PublicKey().Address()
	tx := newSignedTx(t, key, signer, []byte("POST /cash/send"), 0)

	db := store.MemStore()
	handler := &weavetest.Handler{}
	h := weavetest.Decorate(handler, NewDecorator())

	// Check runs on its own cache and does not consume the sequence.
	cache := db.CacheWrap()
	_, err := h.Check(weavetest.NewContext(), cache, tx)
	assert.Nil(t, err)
	cache.Discard()

	_, err = h.Deliver(weavetest.NewContext(), db, tx)
	assert.Nil(t, err)
	for i := 0; i < 3; i++ {
		_, err = h.Deliver(weavetest.NewContext(), db, tx)
		assert.IsErr(t, ErrInvalidSequence, err)
	}
	assert.Equal(t, 1, handler.DeliverCallCount())
	assert.Equal(t, 1, handler.CheckCallCount())
}
