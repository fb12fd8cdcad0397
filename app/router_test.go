package app

import (
	"testing"

	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/weavetest"
	"github.com/iov-one/weave-market/weavetest/assert"
)

func TestRouter(t *testing.T) {
	r := NewRouter()

	good := &weavetest.Handler{}
	bad := &weavetest.Handler{DeliverErr: errors.ErrAmount}
	r.Handle(&weavetest.Msg{RoutePath: "test/good"}, good)
	r.Handle(&weavetest.Msg{RoutePath: "test/bad"}, bad)

	assert.Panics(t, func() { r.Handle(&weavetest.Msg{RoutePath: "test/good"}, good) })
	assert.Panics(t, func() { r.Handle(&weavetest.Msg{RoutePath: "l:7"}, good) })

	ctx := weavetest.NewContext()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/good"}}
	_, err := r.Check(ctx, nil, tx)
	assert.Nil(t, err)
	_, err = r.Deliver(ctx, nil, tx)
	assert.Nil(t, err)
	assert.Equal(t, 2, good.CallCount())

	tx = &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/bad"}}
	_, err = r.Deliver(ctx, nil, tx)
	assert.IsErr(t, errors.ErrAmount, err)

	tx = &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/missing"}}
	_, err = r.Deliver(ctx, nil, tx)
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = r.Check(ctx, nil, tx)
	assert.IsErr(t, errors.ErrNotFound, err)

	_, err = r.Deliver(ctx, nil, &weavetest.Tx{})
	assert.IsErr(t, errors.ErrMsg, err)
	assert.Equal(t, 2, good.CallCount())
}
