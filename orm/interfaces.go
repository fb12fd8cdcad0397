package orm

import (
	"github.com/iov-one/weave-market"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	weave.Persistent
	Validate() error
}

// Indexer calculates the secondary index value for a given model. A nil
// value means the model is not present in the index.
type Indexer func(Model) ([]byte, error)

// ModelIterator loads models one by one.
//
//	it, err := bucket.IndexScan(db, "owner", owner)
//	...
//	defer it.Release()
//	for {
//	  var m Item
//	  key, err := it.LoadNext(&m)
//	  if errors.ErrIteratorDone.Is(err) {
//	    break
//	  }
//	  ...
//	}
type ModelIterator interface {
	// LoadNext loads the next model into dest and returns its primary
	// key. errors.ErrIteratorDone is returned when there are no more
	// models.
	LoadNext(dest Model) (key []byte, err error)
	// Release frees the underlying iterator.
	Release()
}
