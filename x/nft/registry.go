package nft

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
)

// Event types emitted by the registry.
const (
	EventMinted      = "nft/minted"
	EventApproved    = "nft/approved"
	EventTransferred = "nft/transferred"
)

// RegistryCondition returns the condition identifying the registry with given
// name. Its address is how the marketplace refers to the registry.
func RegistryCondition(name string) weave.Condition {
	return weave.NewCondition("nft", "registry", []byte(name))
}

// Registry issues assets and moves them between accounts. Every state
// changing method takes the caller explicitly and must run inside a single
// savepoint together with the rest of the enclosing operation.
type Registry struct {
	address     weave.Address
	marketplace weave.Address
	bucket      orm.ModelBucket
}

// NewRegistry returns the registry with given name. The marketplace address
// is kept so the registry knows the ledger it was deployed for.
func NewRegistry(name string, marketplace weave.Address) *Registry {
	return &Registry{
		address:     RegistryCondition(name).Address(),
		marketplace: marketplace,
		bucket:      NewAssetBucket(),
	}
}

// Address returns the address identifying this registry.
func (r *Registry) Address() weave.Address {
	return r.address
}

// Marketplace returns the address of the marketplace ledger this registry
// was created with.
func (r *Registry) Marketplace() weave.Address {
	return r.marketplace
}

// Mint creates a new asset owned by the caller. The URI is opaque and stored
// as given.
func (r *Registry) Mint(db weave.KVStore, uri string, caller weave.Address) (uint64, []weave.Event, error) {
	if err := caller.Validate(); err != nil {
		return 0, nil, errors.Wrap(errors.ErrUnauthorized, "caller required")
	}
	seq := r.bucket.Sequence()
	id, err := seq.NextInt(db)
	if err != nil {
		return 0, nil, errors.Wrap(err, "asset id")
	}
	asset := Asset{
		ID:      id,
		Owner:   caller,
		URI:     uri,
		Creator: caller,
	}
	if _, err := r.bucket.Put(db, orm.EncodeSequence(id), &asset); err != nil {
		return 0, nil, errors.Wrap(err, "cannot store asset")
	}
	ev := weave.NewEvent(EventMinted,
		"id", id,
		"owner", caller,
		"uri", uri,
	)
	return id, []weave.Event{ev}, nil
}

// SetApproval records the only account allowed to move the asset on behalf
// of its owner, replacing any previous approval. A nil operator clears the
// approval.
func (r *Registry) SetApproval(db weave.KVStore, id uint64, operator, caller weave.Address) ([]weave.Event, error) {
	asset, err := r.Asset(db, id)
	if err != nil {
		return nil, err
	}
	if !asset.Owner.Equals(caller) {
		return nil, errors.Wrapf(ErrNotOwner, "asset %d", id)
	}
	if operator != nil {
		if err := operator.Validate(); err != nil {
			return nil, errors.Wrap(err, "operator")
		}
	}
	asset.Operator = operator
	if _, err := r.bucket.Put(db, orm.EncodeSequence(id), asset); err != nil {
		return nil, errors.Wrap(err, "cannot store asset")
	}
	ev := weave.NewEvent(EventApproved,
		"id", id,
		"owner", asset.Owner,
		"operator", operator,
	)
	return []weave.Event{ev}, nil
}

// Transfer moves the asset from one owner to another. The caller must be the
// current owner or the approved operator. The approval is cleared on every
// transfer.
func (r *Registry) Transfer(db weave.KVStore, id uint64, from, to, caller weave.Address) ([]weave.Event, error) {
	asset, err := r.Asset(db, id)
	if err != nil {
		return nil, err
	}
	if !asset.Owner.Equals(from) {
		return nil, errors.Wrapf(ErrNotOwner, "asset %d is not owned by %s", id, from)
	}
	if caller == nil || !(caller.Equals(from) || caller.Equals(asset.Operator)) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s cannot move asset %d", caller, id)
	}
	if err := to.Validate(); err != nil {
		return nil, errors.Wrap(err, "recipient")
	}

	asset.Owner = to
	asset.Operator = nil
	if _, err := r.bucket.Put(db, orm.EncodeSequence(id), asset); err != nil {
		return nil, errors.Wrap(err, "cannot store asset")
	}
	ev := weave.NewEvent(EventTransferred,
		"id", id,
		"from", from,
		"to", to,
	)
	return []weave.Event{ev}, nil
}

// MetadataOf returns the metadata URI of the asset.
func (r *Registry) MetadataOf(db weave.ReadOnlyKVStore, id uint64) (string, error) {
	asset, err := r.Asset(db, id)
	if err != nil {
		return "", err
	}
	return asset.URI, nil
}

// Asset returns the asset with given ID. ErrNotFound is returned if it was
// never minted.
func (r *Registry) Asset(db weave.ReadOnlyKVStore, id uint64) (*Asset, error) {
	var asset Asset
	if err := r.bucket.One(db, orm.EncodeSequence(id), &asset); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "asset %d", id)
		}
		return nil, err
	}
	return &asset, nil
}

// OwnedBy returns all assets of given owner in ascending ID order.
func (r *Registry) OwnedBy(db weave.ReadOnlyKVStore, owner weave.Address) ([]*Asset, error) {
	it, err := r.bucket.IndexScan(db, "owner", owner)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var assets []*Asset
	for {
		var a Asset
		switch _, err := it.LoadNext(&a); {
		case err == nil:
			assets = append(assets, &a)
		case errors.ErrIteratorDone.Is(err):
			return assets, nil
		default:
			return nil, err
		}
	}
}
