package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/weave-market/errors"
)

// DefaultFreeListSize is the number of btree nodes kept for reuse between
// savepoints.
const DefaultFreeListSize = btree.DefaultFreeListSize

// btreeDegree is small on purpose, a savepoint rarely holds more than a
// handful of writes.
const btreeDegree = 2

// BTreeCacheable gives any KVStore savepoint support by placing a btree
// cache in front of it.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns a non persistent store. Everything lives in the btree,
// backed by an always empty store.
func MemStore() CacheableKVStore {
	var empty EmptyKVStore
	return NewBTreeCacheWrap(empty, empty.NewBatch(), nil)
}

// BTreeCacheWrap records writes in a btree so they are visible to reads
// and iterators, while the same writes are collected in a batch. Write
// flushes the batch into the wrapped store, Discard drops everything.
type BTreeCacheWrap struct {
	tree  *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns a cache over kv. The store is only read from,
// all writes go through batch. A nil free list allocates a new one; pass an
// existing list to share node allocations between nested savepoints.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		tree:  btree.NewWithFreeList(btreeDegree, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap opens a nested savepoint on top of this one.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

func (b BTreeCacheWrap) Discard() {
	// Nodes are returned to the free list.
	b.tree.Clear(true)
	if nb, ok := b.batch.(*NonAtomicBatch); ok {
		nb.Reset()
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.tree.ReplaceOrInsert(written{cacheKey: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.tree.ReplaceOrInsert(removed{cacheKey: key})
	return b.batch.Delete(key)
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	value, _, cached, err := b.cached(key)
	if err != nil || cached {
		return value, err
	}
	return b.back.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	_, exists, cached, err := b.cached(key)
	if err != nil || cached {
		return exists, err
	}
	return b.back.Has(key)
}

// cached looks the key up among the writes of this savepoint. When cached
// is false the key was never touched here and the backing store must be
// consulted.
func (b BTreeCacheWrap) cached(key []byte) (value []byte, exists, cached bool, err error) {
	switch e := b.tree.Get(cacheKey(key)).(type) {
	case nil:
		return nil, false, false, nil
	case written:
		return e.value, true, true, nil
	case removed:
		return nil, false, true, nil
	default:
		return nil, false, false, errors.Wrapf(errors.ErrDatabase, "unexpected btree entry %T", e)
	}
}

func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(ascendBtree(b.tree, start, end), parent, true), nil
}

func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(descendBtree(b.tree, start, end), parent, false), nil
}

// keyed is implemented by every btree entry. Entries of different kinds
// are ordered by their keys only.
type keyed interface {
	btree.Item
	rawKey() []byte
}

// cacheKey is used both to query the btree and as the key of every entry.
type cacheKey []byte

func (k cacheKey) rawKey() []byte { return k }

func (k cacheKey) Less(than btree.Item) bool {
	return bytes.Compare(k, than.(keyed).rawKey()) < 0
}

type written struct {
	cacheKey
	value []byte
}

type removed struct {
	cacheKey
}
