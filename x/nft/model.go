package nft

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
)

// Asset is a single non-fungible token.
type Asset struct {
	ID uint64 `json:"id"`
	// Owner is changed only by a transfer.
	Owner weave.Address `json:"owner"`
	// URI points to the metadata of the asset.
	URI string `json:"uri"`
	// Operator is allowed to transfer the asset on behalf of the owner.
	// Nil when no approval is given.
	Operator weave.Address `json:"operator,omitempty"`
	// Creator is the account that minted the asset.
	Creator weave.Address `json:"creator"`
}

var _ orm.Model = (*Asset)(nil)

func (a *Asset) Validate() error {
	var errs error
	if a.ID == 0 {
		errs = errors.AppendField(errs, "ID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Owner", a.Owner.Validate())
	errs = errors.AppendField(errs, "Creator", a.Creator.Validate())
	if a.Operator != nil {
		errs = errors.AppendField(errs, "Operator", a.Operator.Validate())
	}
	return errs
}

func (a *Asset) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Uint64(1, a.ID)
	b.Bytes(2, a.Owner)
	b.String(3, a.URI)
	b.Bytes(4, a.Operator)
	b.Bytes(5, a.Creator)
	return b.Result(), nil
}

func (a *Asset) Unmarshal(raw []byte) error {
	*a = Asset{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			a.ID = d.Uint64()
		case 2:
			a.Owner = d.Bytes()
		case 3:
			a.URI = d.String()
		case 4:
			a.Operator = d.Bytes()
		case 5:
			a.Creator = d.Bytes()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// NewAssetBucket returns a bucket storing assets by their sequential ID,
// indexed by owner.
func NewAssetBucket() orm.ModelBucket {
	return orm.NewModelBucket("nft", &Asset{},
		orm.WithIDSequence(orm.NewSequence("nft", "id")),
		orm.WithIndex("owner", ownerIndexer),
	)
}

func ownerIndexer(m orm.Model) ([]byte, error) {
	a, ok := m.(*Asset)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return a.Owner, nil
}
