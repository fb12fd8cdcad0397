package weavetest

import "github.com/iov-one/weave-market"

// Handler is a mock implementation of the weave.Handler interface. Each
// method call is counted. If Write is set, the key/value pair is stored before
// returning, so rollback behaviour can be observed.
type Handler struct {
	checkCall   int
	CheckResult weave.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult weave.DeliverResult
	DeliverErr    error

	// Write, if set, is stored in the database on every call.
	Write *[2][]byte
	// Panic, if set, is used as the panic value of every call.
	Panic interface{}
}

var _ weave.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	h.checkCall++
	if err := h.act(db); err != nil {
		return nil, err
	}
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	h.deliverCall++
	if err := h.act(db); err != nil {
		return nil, err
	}
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) act(db weave.KVStore) error {
	if h.Panic != nil {
		panic(h.Panic)
	}
	if h.Write != nil {
		return db.Set(h.Write[0], h.Write[1])
	}
	return nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
