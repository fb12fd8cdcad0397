package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/weave-market/errors"
)

// ascendBtree collects all cached items within the range in ascending order.
// Collecting upfront keeps the btree free for writes while the iterator is
// consumed.
func ascendBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	collect := func(item btree.Item) bool {
		items = append(items, item)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(cacheKey(end), collect)
	case end == nil:
		bt.AscendGreaterOrEqual(cacheKey(start), collect)
	default:
		bt.AscendRange(cacheKey(start), cacheKey(end), collect)
	}
	return items
}

// descendBtree collects all cached items within the range in descending
// order. Start is inclusive and end is exclusive, like for ascendBtree.
func descendBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	items := ascendBtree(bt, start, end)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// mergeIterator combines cached (and not yet written) items with those of
// the parent store, taking into consideration overwrites and deletes.
type mergeIterator struct {
	cache     []btree.Item
	ascending bool

	parent     Iterator
	parentKey  []byte
	parentVal  []byte
	parentDone bool
	err        error
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(cache []btree.Item, parent Iterator, ascending bool) *mergeIterator {
	it := &mergeIterator{
		cache:     cache,
		parent:    parent,
		ascending: ascending,
	}
	it.advanceParent()
	return it
}

func (it *mergeIterator) advanceParent() {
	if it.parentDone {
		return
	}
	key, val, err := it.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		it.parentDone = true
		it.parentKey, it.parentVal = nil, nil
	case err != nil:
		it.parentDone = true
		it.err = err
	default:
		it.parentKey, it.parentVal = key, val
	}
}

// cacheFirst returns the comparison of the cached head against the parent
// head in iteration order. Negative means the cache entry comes first.
func (it *mergeIterator) cacheFirst(cacheKey []byte) int {
	if it.parentDone {
		return -1
	}
	cmp := bytes.Compare(cacheKey, it.parentKey)
	if !it.ascending {
		cmp = -cmp
	}
	return cmp
}

// Next returns the next key/value pair of the combined view.
func (it *mergeIterator) Next() ([]byte, []byte, error) {
	for {
		if it.err != nil {
			return nil, nil, it.err
		}
		if len(it.cache) > 0 {
			head := it.cache[0].(keyed)
			cmp := it.cacheFirst(head.rawKey())
			if cmp <= 0 {
				it.cache = it.cache[1:]
				if cmp == 0 {
					// Cached value overwrites the parent one.
					it.advanceParent()
				}
				switch item := head.(type) {
				case written:
					return item.rawKey(), item.value, nil
				case removed:
					continue
				default:
					return nil, nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", head)
				}
			}
		}
		if it.parentDone {
			return nil, nil, errors.ErrIteratorDone
		}
		key, val := it.parentKey, it.parentVal
		it.advanceParent()
		return key, val, nil
	}
}

// Release releases the parent iterator.
func (it *mergeIterator) Release() {
	it.parent.Release()
	it.cache = nil
}
