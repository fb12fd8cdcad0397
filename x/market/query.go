package market

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
)

// ItemQuery is a finite sequence of items in ascending ID order. It is lazy
// and restartable: every iteration reads the store again.
type ItemQuery struct {
	bucket orm.ModelBucket
	db     weave.ReadOnlyKVStore
	index  string
	value  []byte
}

// Each calls fn for every item. Iteration stops at the first error, which
// is returned.
func (q ItemQuery) Each(fn func(*Item) error) error {
	var (
		it  orm.ModelIterator
		err error
	)
	if q.index == "" {
		it, err = q.bucket.IterAll(q.db)
	} else {
		it, err = q.bucket.IndexScan(q.db, q.index, q.value)
	}
	if err != nil {
		return err
	}
	defer it.Release()

	for {
		var item Item
		switch _, err := it.LoadNext(&item); {
		case errors.ErrIteratorDone.Is(err):
			return nil
		case err != nil:
			return err
		}
		if err := fn(&item); err != nil {
			return err
		}
	}
}

// All collects the whole sequence.
func (q ItemQuery) All() ([]*Item, error) {
	var items []*Item
	err := q.Each(func(i *Item) error {
		items = append(items, i)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
