package utils

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

// Savepoint runs the wrapped handler against a cache of the store. The
// cache is written only when the handler succeeds, so a failed purchase
// never leaves a half moved asset or payment behind. Stores that cannot be
// cache wrapped are passed through unchanged.
//
// A zero Savepoint is disabled, enable it with OnCheck and OnDeliver.
type Savepoint struct {
	check   bool
	deliver bool
}

var _ weave.Decorator = Savepoint{}

func NewSavepoint() Savepoint {
	return Savepoint{}
}

func (s Savepoint) OnCheck() Savepoint {
	s.check = true
	return s
}

func (s Savepoint) OnDeliver() Savepoint {
	s.deliver = true
	return s
}

func (s Savepoint) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	var res *weave.CheckResult
	err := atomically(db, s.check, func(db weave.KVStore) (err error) {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Deliver drops the events of a failed call together with its writes.
func (s Savepoint) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	var res *weave.DeliverResult
	err := atomically(db, s.deliver, func(db weave.KVStore) (err error) {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// atomically calls fn with a cache of db and writes the cache back only
// if fn succeeds. When disabled, fn operates on db directly.
func atomically(db weave.KVStore, enabled bool, fn func(weave.KVStore) error) error {
	cacheable, ok := db.(weave.CacheableKVStore)
	if !enabled || !ok {
		return fn(db)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "cannot write savepoint")
	}
	return nil
}
