package utils

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

// Recovery converts a panic raised while processing a message into an
// errors.ErrPanic error that names the message path. A panicking handler
// must never take the marketplace process down with it.
type Recovery struct{}

var _ weave.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (res *weave.CheckResult, err error) {
	// Deferred calls run in reverse order: errors.Recover must be the
	// deferred function itself for recover() to see the panic.
	defer withPanicPath(tx, &err)
	defer errors.Recover(&err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (res *weave.DeliverResult, err error) {
	defer withPanicPath(tx, &err)
	defer errors.Recover(&err)
	return next.Deliver(ctx, db, tx)
}

// withPanicPath annotates a recovered panic with the path of the message
// that caused it.
func withPanicPath(tx weave.Tx, err *error) {
	if *err == nil || !errors.ErrPanic.Is(*err) {
		return
	}
	path := "unknown"
	if msg, merr := tx.GetMsg(); merr == nil && msg != nil {
		path = msg.Path()
	}
	*err = errors.Wrapf(*err, "processing %s", path)
}
