package app

import (
	"fmt"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

// Router allows us to register many handlers with different paths and
// dispatch every transaction to the handler of its message.
type Router struct {
	routes map[string]weave.Handler
}

var (
	_ weave.Registry = (*Router)(nil)
	_ weave.Handler  = (*Router)(nil)
)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]weave.Handler),
	}
}

// Handle registers a handler for the path of given message. It panics if the
// path is not valid or if a handler is already registered for it.
func (r *Router) Handle(msg weave.Msg, h weave.Handler) {
	path := msg.Path()
	if !weave.IsValidPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %q", path))
	}
	r.routes[path] = h
}

// Handler returns the handler registered for given path. When no handler
// was registered, a handler failing with ErrNotFound is returned.
func (r *Router) Handler(path string) weave.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the handler registered for the transaction message.
func (r *Router) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	path, err := msgPath(tx)
	if err != nil {
		return nil, err
	}
	return r.Handler(path).Check(ctx, store, tx)
}

// Deliver dispatches to the handler registered for the transaction message.
func (r *Router) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	path, err := msgPath(tx)
	if err != nil {
		return nil, err
	}
	return r.Handler(path).Deliver(ctx, store, tx)
}

func msgPath(tx weave.Tx) (string, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", errors.Wrap(err, "cannot load message")
	}
	if msg == nil {
		return "", errors.Wrap(errors.ErrMsg, "no message")
	}
	return msg.Path(), nil
}

// notFoundHandler always returns ErrNotFound error regardless of the
// arguments.
type notFoundHandler string

func (path notFoundHandler) Check(weave.Context, weave.KVStore, weave.Tx) (*weave.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", string(path))
}

func (path notFoundHandler) Deliver(weave.Context, weave.KVStore, weave.Tx) (*weave.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", string(path))
}
