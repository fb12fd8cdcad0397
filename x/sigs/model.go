package sigs

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/crypto"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// maxSequenceValue is limited by the clients. The greatest supported nonce
// value in javascript is Number.MAX_SAFE_INTEGER = 2^53 - 1.
const maxSequenceValue = (1 << 53) - 1

// UserData is the signing state of a single account, stored under the
// address of its public key.
type UserData struct {
	Pubkey   *crypto.PublicKey
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Validate() error {
	var errs error
	if seq := u.Sequence; seq < 0 {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	} else if seq > 0 && u.Pubkey == nil {
		errs = errors.Append(errs, errors.Field("Sequence", ErrInvalidSequence, "needs Pubkey"))
	}
	if u.Pubkey != nil {
		errs = errors.AppendField(errs, "Pubkey", u.Pubkey.Validate())
	}
	return errs
}

func (u *UserData) Marshal() ([]byte, error) {
	var b codec.Buffer
	if u.Pubkey != nil {
		if err := b.Message(1, u.Pubkey); err != nil {
			return nil, err
		}
	}
	b.Uint64(2, uint64(u.Sequence))
	return b.Result(), nil
}

func (u *UserData) Unmarshal(raw []byte) error {
	*u = UserData{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			u.Pubkey = &crypto.PublicKey{}
			d.Message(u.Pubkey)
		case 2:
			u.Sequence = int64(d.Uint64())
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// SetPubkey binds the account to its key. It is illegal to change the key
// once set.
func (u *UserData) SetPubkey(pubkey *crypto.PublicKey) {
	if u.Pubkey != nil {
		panic("Cannot change pubkey for a user")
	}
	u.Pubkey = pubkey
}

// NewUserBucket returns a bucket storing the signing state by address.
func NewUserBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &UserData{})
}

// loadUser returns the state of the account controlled by pubkey. An account
// that never signed anything starts with sequence zero.
func loadUser(db weave.ReadOnlyKVStore, bucket orm.ModelBucket, pubkey *crypto.PublicKey) (*UserData, error) {
	var u UserData
	switch err := bucket.One(db, pubkey.Address(), &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pubkey}, nil
	default:
		return nil, err
	}
}
