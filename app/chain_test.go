package app

import (
	"testing"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/store"
	"github.com/iov-one/weave-market/weavetest"
	"github.com/iov-one/weave-market/weavetest/assert"
	"github.com/iov-one/weave-market/x/utils"
)

func TestChain(t *testing.T) {
	c1 := &weavetest.Decorator{}
	c2 := &weavetest.Decorator{}
	var missing *weavetest.Decorator
	h := &weavetest.Handler{}

	stack := ChainDecorators(
		c1,
		utils.NewLogging(),
		missing,
		utils.NewRecovery(),
		c2,
	).WithHandler(h)

	ctx := weavetest.NewContext()
	tx := &weavetest.Tx{}

	_, err := stack.Check(ctx, nil, tx)
	assert.Nil(t, err)
	_, err = stack.Deliver(ctx, nil, tx)
	assert.Nil(t, err)

	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, h.CallCount())
	assert.Equal(t, 1, h.CheckCallCount())
	assert.Equal(t, 1, h.DeliverCallCount())

	h.Panic = "boom"
	_, err = stack.Check(ctx, nil, tx)
	assert.IsErr(t, errors.ErrPanic, err)
	_, err = stack.Deliver(ctx, nil, tx)
	assert.IsErr(t, errors.ErrPanic, err)
	assert.Equal(t, 4, c1.CallCount())
	assert.Equal(t, 4, c2.CallCount())
}

func TestChainSavepoint(t *testing.T) {
	db := store.MemStore()
	key, value := []byte("key"), []byte("value")

	h := &weavetest.Handler{
		Write:      &[2][]byte{key, value},
		DeliverErr: errors.ErrState,
	}
	stack := ChainDecorators(utils.NewSavepoint().OnDeliver()).WithHandler(h)

	_, err := stack.Deliver(weavetest.NewContext(), db, &weavetest.Tx{})
	assert.IsErr(t, errors.ErrState, err)
	got, err := db.Get(key)
	assert.Nil(t, err)
	if got != nil {
		t.Fatalf("failed delivery must not write, got %q", got)
	}

	h.DeliverErr = nil
	_, err = stack.Deliver(weavetest.NewContext(), db, &weavetest.Tx{})
	assert.Nil(t, err)
	got, err = db.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, value, got)
}

func TestChainOrder(t *testing.T) {
	outer := &weavetest.Decorator{Event: &weave.Event{Type: "test/outer"}}
	inner := &weavetest.Decorator{Event: &weave.Event{Type: "test/inner"}}
	h := &weavetest.Handler{
		DeliverResult: weave.DeliverResult{Events: []weave.Event{{Type: "test/handler"}}},
	}

	res, err := ChainDecorators(outer, inner).WithHandler(h).
		Deliver(weavetest.NewContext(), store.MemStore(), &weavetest.Tx{})
	assert.Nil(t, err)

	var got []string
	for _, e := range res.Events {
		got = append(got, e.Type)
	}
	assert.Equal(t, []string{"test/handler", "test/inner", "test/outer"}, got)

	inner.DeliverErr = errors.ErrState
	res, err = ChainDecorators(outer, inner).WithHandler(h).
		Deliver(weavetest.NewContext(), store.MemStore(), &weavetest.Tx{})
	assert.IsErr(t, errors.ErrState, err)
	if res != nil {
		t.Fatalf("failed delivery must not return events, got %v", res.Events)
	}
}
