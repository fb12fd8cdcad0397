package orm

import (
	"reflect"
	"regexp"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucket is implemented by buckets that operate on Models.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db weave.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists and
	// ErrNotFound otherwise.
	Has(db weave.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. If key is nil, the bucket
	// must have an ID sequence configured, a new key is allocated and
	// returned.
	Put(db weave.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db weave.KVStore, key []byte) error

	// IterAll returns an iterator over all models in primary key order.
	IterAll(db weave.ReadOnlyKVStore) (ModelIterator, error)

	// IndexScan returns an iterator over all models indexed under given
	// value in primary key order.
	IndexScan(db weave.ReadOnlyKVStore, indexName string, value []byte) (ModelIterator, error)

	// Sequence returns the ID sequence of this bucket, nil if none was
	// configured.
	Sequence() *Sequence
}

// ModelBucketOption is a functional option used to configure a ModelBucket.
type ModelBucketOption func(*modelBucket)

// WithIndex configures the bucket to build a secondary index with given name
// using given indexer. Every Put and Delete keeps the index in sync.
func WithIndex(name string, indexer Indexer) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic("duplicated index name: " + name)
		}
		mb.indexes[name] = newNativeIndex(mb.name, name, indexer)
	}
}

// WithIDSequence configures the bucket to use given sequence to allocate
// primary keys for models saved with a nil key.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.seq = &s
	}
}

// NewModelBucket returns a ModelBucket instance storing models of the same
// type as example under the given name prefix.
func NewModelBucket(name string, example Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	mb := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   reflect.TypeOf(example),
		indexes: make(map[string]*nativeIndex),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	seq     *Sequence
	indexes map[string]*nativeIndex
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte(nil), mb.prefix...), key...)
}

func (mb *modelBucket) checkType(m Model) error {
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be stored in %s bucket of %s", m, mb.name, mb.model)
	}
	return nil
}

// newModel returns a fresh zero value instance of the stored model.
func (mb *modelBucket) newModel() Model {
	return reflect.New(mb.model.Elem()).Interface().(Model)
}

func (mb *modelBucket) One(db weave.ReadOnlyKVStore, key []byte, dest Model) error {
	if err := mb.checkType(dest); err != nil {
		return err
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot load")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Has(db weave.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot check existence")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Put(db weave.KVStore, key []byte, m Model) ([]byte, error) {
	if err := mb.checkType(m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	var prev Model
	if key == nil {
		if mb.seq == nil {
			return nil, errors.Wrap(errors.ErrHuman, "missing key and no ID sequence configured")
		}
		next, err := mb.seq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "ID sequence")
		}
		key = next
	} else if len(mb.indexes) > 0 {
		prev = mb.newModel()
		switch err := mb.One(db, key, prev); {
		case errors.ErrNotFound.Is(err):
			prev = nil
		case err != nil:
			return nil, err
		}
	}

	raw, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal")
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	for _, ix := range mb.indexes {
		if err := ix.Update(db, key, prev, m); err != nil {
			return nil, err
		}
	}
	return key, nil
}

func (mb *modelBucket) Delete(db weave.KVStore, key []byte) error {
	prev := mb.newModel()
	if err := mb.One(db, key, prev); err != nil {
		return err
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete")
	}
	for _, ix := range mb.indexes {
		if err := ix.Update(db, key, prev, nil); err != nil {
			return err
		}
	}
	return nil
}

func (mb *modelBucket) IterAll(db weave.ReadOnlyKVStore) (ModelIterator, error) {
	start, end := prefixRange(mb.prefix)
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "cannot iterate")
	}
	return &bucketIterator{it: it, prefix: mb.prefix}, nil
}

func (mb *modelBucket) IndexScan(db weave.ReadOnlyKVStore, indexName string, value []byte) (ModelIterator, error) {
	ix, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "no %q index in %s bucket", indexName, mb.name)
	}
	keys, err := ix.Keys(db, value)
	if err != nil {
		return nil, errors.Wrap(err, "cannot iterate index")
	}
	return &indexIterator{keys: keys, db: db, bucket: mb}, nil
}

func (mb *modelBucket) Sequence() *Sequence {
	return mb.seq
}

// bucketIterator decodes models directly from a bucket range scan.
type bucketIterator struct {
	it     weave.Iterator
	prefix []byte
}

func (b *bucketIterator) LoadNext(dest Model) ([]byte, error) {
	key, value, err := b.it.Next()
	if err != nil {
		return nil, err
	}
	if err := dest.Unmarshal(value); err != nil {
		return nil, errors.Wrapf(err, "cannot unmarshal %X", key)
	}
	return key[len(b.prefix):], nil
}

func (b *bucketIterator) Release() {
	b.it.Release()
}

// indexIterator resolves primary keys read from an index.
type indexIterator struct {
	keys   weave.Iterator
	db     weave.ReadOnlyKVStore
	bucket *modelBucket
}

func (ix *indexIterator) LoadNext(dest Model) ([]byte, error) {
	_, pk, err := ix.keys.Next()
	if err != nil {
		return nil, err
	}
	if err := ix.bucket.One(ix.db, pk, dest); err != nil {
		return nil, errors.Wrap(err, "broken index reference")
	}
	return pk, nil
}

func (ix *indexIterator) Release() {
	ix.keys.Release()
}
