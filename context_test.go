package weave

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/iov-one/weave-market/weavetest/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContext(t *testing.T) {
	bg := context.Background()

	var buf bytes.Buffer
	logger := log.NewTMLogger(log.NewSyncWriter(&buf))
	ctx := WithLogger(bg, logger)
	assert.Equal(t, DefaultLogger, GetLogger(bg))
	assert.Equal(t, logger, GetLogger(ctx))

	ctx = WithLogInfo(ctx, "call", "deliver")
	GetLogger(ctx).Info("hello")
	if !bytes.Contains(buf.Bytes(), []byte("call=deliver")) {
		t.Fatalf("log info not attached: %q", buf.String())
	}

	val, ok := GetHeight(ctx)
	assert.Equal(t, int64(0), val)
	assert.Equal(t, false, ok)
	ctx = WithHeight(ctx, 7)
	val, ok = GetHeight(ctx)
	assert.Equal(t, int64(7), val)
	assert.Equal(t, true, ok)
	assert.Panics(t, func() { WithHeight(ctx, 9) })

	assert.Panics(t, func() { GetChainID(ctx) })
	assert.Panics(t, func() { WithChainID(ctx, "no") })
	ctx = WithChainID(ctx, "market-chain")
	assert.Equal(t, "market-chain", GetChainID(ctx))
	assert.Panics(t, func() { WithChainID(ctx, "other-chain") })

	now := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, now, BlockTime(WithBlockTime(ctx, now)))
	if BlockTime(ctx).IsZero() {
		t.Fatal("block time must default to the current time")
	}
}
