/*
Package weavetest provides mocks and helpers shared by the tests of all
extensions.
*/
package weavetest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/crypto"
	"github.com/iov-one/weave-market/orm"
)

// TestChainID is the chain id used by NewContext.
const TestChainID = "test-chain"

var seq uint64

// SequenceID returns an 8 byte sequence encoded value, the same way the orm
// allocates primary keys.
func SequenceID(n uint64) []byte {
	return orm.EncodeSequence(n)
}

// NewCondition returns a unique condition. Each call returns a different
// value.
func NewCondition() weave.Condition {
	n := atomic.AddUint64(&seq, 1)
	return weave.NewCondition("test", "seq", SequenceID(n))
}

// NewKey returns a random signing key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewContext returns a context with the chain id, a block time and height
// set, as the application does for every operation.
func NewContext() weave.Context {
	ctx := context.Background()
	ctx = weave.WithChainID(ctx, TestChainID)
	ctx = weave.WithHeight(ctx, 1)
	ctx = weave.WithBlockTime(ctx, time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC))
	return ctx
}
