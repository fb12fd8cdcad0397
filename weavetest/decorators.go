package weavetest

import "github.com/iov-one/weave-market"

// Decorator records how many times it was passed through. It fails with
// CheckErr or DeliverErr when those are set, otherwise it hands over to the
// next handler. When Event is set, it is appended to the events of every
// successful delivery, which lets tests observe the decoration order.
type Decorator struct {
	CheckErr   error
	DeliverErr error
	Event      *weave.Event

	calls int
}

var _ weave.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	d.calls++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	d.calls++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil || d.Event == nil {
		return res, err
	}
	if res == nil {
		res = &weave.DeliverResult{}
	}
	res.Events = append(res.Events, *d.Event)
	return res, nil
}

// CallCount returns the number of Check and Deliver calls together.
func (d *Decorator) CallCount() int {
	return d.calls
}

// Decorate wraps h so that every call passes through d first.
func Decorate(h weave.Handler, d weave.Decorator) weave.Handler {
	return decorated{handler: h, decorator: d}
}

type decorated struct {
	handler   weave.Handler
	decorator weave.Decorator
}

func (w decorated) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	return w.decorator.Check(ctx, db, tx, w.handler)
}

func (w decorated) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	return w.decorator.Deliver(ctx, db, tx, w.handler)
}
