/*
Package iavl provides a durable, versioned implementation of the
weave.CommitKVStore backed by an iavl merkle tree stored in a goleveldb
database.

All writes go through a cache wrap. Once the cache wrap is written, the
changes are present in the working tree and become durable only after
Commit is called.
*/
package iavl

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore manages a iavl committed state
type CommitStore struct {
	tree *iavl.MutableTree
	db   dbm.DB
}

var _ weave.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a new store with disk backing. Data is stored in
// the name database inside of the dir directory.
func NewCommitStore(dir, name string) (*CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %s/%s: %s", dir, name, err)
	}
	return newCommitStore(db), nil
}

// NewMemCommitStore returns a store that keeps all versions in memory.
func NewMemCommitStore() *CommitStore {
	return newCommitStore(dbm.NewMemDB())
}

func newCommitStore(db dbm.DB) *CommitStore {
	return &CommitStore{
		tree: iavl.NewMutableTree(db, DefaultCacheSize),
		db:   db,
	}
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit the next version to disk, and returns info
func (s *CommitStore) Commit() (weave.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return weave.CommitID{}, errors.Wrapf(errors.ErrDatabase, "save version: %s", err)
	}
	return weave.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// Rollback drops every change written to the working tree since the last
// Commit.
func (s *CommitStore) Rollback() {
	s.tree.Rollback()
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s *CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "load tree: %s", err)
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() (weave.CommitID, error) {
	return weave.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap gives us a savepoint to perform actions. Written changes land in
// the working tree and are persisted with the next Commit.
func (s *CommitStore) CacheWrap() weave.KVCacheWrap {
	adapter := treeAdapter{tree: s.tree}
	return store.NewBTreeCacheWrap(adapter, adapter.NewBatch(), nil)
}

// Close releases the underlying database.
func (s *CommitStore) Close() {
	s.db.Close()
}

// treeAdapter exposes the working tree as a KVStore.
type treeAdapter struct {
	tree *iavl.MutableTree
}

var _ weave.KVStore = treeAdapter{}

func (a treeAdapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

func (a treeAdapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

func (a treeAdapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

func (a treeAdapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

func (a treeAdapter) NewBatch() weave.Batch {
	return store.NewNonAtomicBatch(a)
}

func (a treeAdapter) Iterator(start, end []byte) (weave.Iterator, error) {
	return a.collect(start, end, true), nil
}

func (a treeAdapter) ReverseIterator(start, end []byte) (weave.Iterator, error) {
	return a.collect(start, end, false), nil
}

// TODO: stream tree ranges instead of buffering them once listings grow
// beyond what comfortably fits in memory.
func (a treeAdapter) collect(start, end []byte, ascending bool) weave.Iterator {
	var models []store.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		models = append(models, store.Model{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(models)
}
