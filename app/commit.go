package app

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining the cache
// wrap all changes are written to before being committed.
type CommitStore struct {
	committed weave.CommitKVStore
	deliver   weave.KVCacheWrap
}

// NewCommitStore loads the latest version of the store and sets up the
// deliver cache.
func NewCommitStore(store weave.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
	}, nil
}

// CommitInfo returns the current version and hash.
func (cs *CommitStore) CommitInfo() (weave.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit flushes the deliver cache to the store and persists it as a new
// version. A new deliver cache is set up.
func (cs *CommitStore) Commit() (weave.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return weave.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}
	cs.deliver = cs.committed.CacheWrap()
	return res, nil
}

// rollbacker is implemented by commit stores that can drop changes flushed
// to their working state but not committed yet.
type rollbacker interface {
	Rollback()
}

// Rollback drops all changes written since the last commit. This includes
// changes already flushed by a Commit that failed.
func (cs *CommitStore) Rollback() {
	cs.deliver.Discard()
	if r, ok := cs.committed.(rollbacker); ok {
		r.Rollback()
	}
	cs.deliver = cs.committed.CacheWrap()
}

// DeliverStore returns the store state changing operations must use.
func (cs *CommitStore) DeliverStore() weave.CacheableKVStore {
	return cs.deliver
}

// ReadStore returns a fresh view of the committed state. Changes written to
// it are never persisted.
func (cs *CommitStore) ReadStore() weave.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

// _wv: is a prefix for weave internal data
const chainIDKey = "_wv:chainID"

// loadChainID returns the chain id stored if any.
func loadChainID(kv weave.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv weave.KVStore, chainID string) error {
	if !weave.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chainId")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chainId")
	}
	return nil
}
