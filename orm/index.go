package orm

import (
	"encoding/binary"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

const nativeIdxPrefix = "_i."

// nativeIndex stores one database entry per indexed model:
//
//	_i.<bucket>_<name>:<uvarint len(value)><value><primary key> -> <primary key>
//
// Because primary keys are sequence encoded, a range scan over all entries of
// a single value returns models in creation order.
type nativeIndex struct {
	name    string
	prefix  []byte
	indexer Indexer
}

func newNativeIndex(bucket, name string, indexer Indexer) *nativeIndex {
	return &nativeIndex{
		name:    name,
		prefix:  []byte(nativeIdxPrefix + bucket + "_" + name + ":"),
		indexer: indexer,
	}
}

func (ix *nativeIndex) valuePrefix(value []byte) []byte {
	var n [binary.MaxVarintLen64]byte
	size := binary.PutUvarint(n[:], uint64(len(value)))
	key := make([]byte, 0, len(ix.prefix)+size+len(value))
	key = append(key, ix.prefix...)
	key = append(key, n[:size]...)
	return append(key, value...)
}

func (ix *nativeIndex) entryKey(value, pk []byte) []byte {
	return append(ix.valuePrefix(value), pk...)
}

// Update replaces the index entry of the model stored under pk. prev is nil
// on insert and next is nil on delete.
func (ix *nativeIndex) Update(db weave.KVStore, pk []byte, prev, next Model) error {
	var prevVal, nextVal []byte
	var err error
	if prev != nil {
		if prevVal, err = ix.indexer(prev); err != nil {
			return errors.Wrapf(err, "index %s", ix.name)
		}
	}
	if next != nil {
		if nextVal, err = ix.indexer(next); err != nil {
			return errors.Wrapf(err, "index %s", ix.name)
		}
	}

	if prevVal != nil {
		if err := db.Delete(ix.entryKey(prevVal, pk)); err != nil {
			return errors.Wrapf(err, "index %s", ix.name)
		}
	}
	if nextVal != nil {
		if err := db.Set(ix.entryKey(nextVal, pk), pk); err != nil {
			return errors.Wrapf(err, "index %s", ix.name)
		}
	}
	return nil
}

// Keys returns an iterator over all primary keys indexed under value. Keys
// are returned as iterator values.
func (ix *nativeIndex) Keys(db weave.ReadOnlyKVStore, value []byte) (weave.Iterator, error) {
	start, end := prefixRange(ix.valuePrefix(value))
	return db.Iterator(start, end)
}

// prefixRange returns the iteration boundaries matching all keys starting
// with given prefix.
func prefixRange(prefix []byte) ([]byte, []byte) {
	start := append([]byte(nil), prefix...)
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return start, end[:i+1]
		}
	}
	// Prefix is all 0xff, iterate till the end.
	return start, nil
}
