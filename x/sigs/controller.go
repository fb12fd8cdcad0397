package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/crypto"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
)

// SignCodeV1 is the current way to prefix the bytes we use to build
// a signature
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// Controller verifies signatures and keeps the sequence of every signer.
type Controller struct {
	bucket orm.ModelBucket
}

// NewController returns a controller using the default bucket.
func NewController() *Controller {
	return &Controller{bucket: NewUserBucket()}
}

// VerifyTxSignature checks the signature of the tx and increments the
// sequence of the signer. It returns the address of the signer.
func (c *Controller) VerifyTxSignature(db weave.KVStore, tx SignedTx, chainID string) (weave.Address, error) {
	bz, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	return c.VerifySignature(db, tx.GetSignature(), bz, chainID)
}

// VerifySignature checks one signature against signBytes, checks the chain
// and the sequence and updates the signer state in the store.
func (c *Controller) VerifySignature(db weave.KVStore, sig *StdSignature, signBytes []byte, chainID string) (weave.Address, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	user, err := loadUser(db, c.bucket, sig.Pubkey)
	if err != nil {
		return nil, err
	}

	toSign, err := BuildSignBytes(signBytes, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !sig.Pubkey.Verify(toSign, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}

	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	addr := sig.Pubkey.Address()
	if _, err := c.bucket.Put(db, addr, user); err != nil {
		return nil, errors.Wrap(err, "save signer")
	}
	return addr, nil
}

// NextNonce returns the sequence the next signature of given address must
// use. Nonce counting starts with zero.
func (c *Controller) NextNonce(db weave.ReadOnlyKVStore, signer weave.Address) (int64, error) {
	if err := signer.Validate(); err != nil {
		return 0, errors.Wrap(err, "signer")
	}
	var u UserData
	switch err := c.bucket.One(db, signer, &u); {
	case err == nil:
		return u.Sequence, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

/*
BuildSignBytes combines all info on the actual tx before signing

We use the following format:

version | len(chainID) | chainID      | nonce             | signBytes
4bytes  | uint8        | ascii string | int64 (bigendian) | serialized transaction

This is then prehashed with sha512 before fed into
the public key signing/verification step
*/
func BuildSignBytes(signBytes []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !weave.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}

	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, uint64(seq))

	output := make([]byte, 0, 4+1+len(chainID)+8+len(signBytes))
	output = append(output, SignCodeV1...)
	output = append(output, uint8(len(chainID)))
	output = append(output, []byte(chainID)...)
	output = append(output, nonce...)
	output = append(output, signBytes...)

	// Constant length output, so hardware signers can handle it.
	hashed := sha512.Sum512(output)
	return hashed[:], nil
}

// SignBytes creates a signature of signBytes bound to the chain and the
// sequence.
func SignBytes(signer crypto.Signer, signBytes []byte, chainID string, seq int64) (*StdSignature, error) {
	toSign, err := BuildSignBytes(signBytes, chainID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(toSign)
	if err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	return &StdSignature{
		Pubkey:    signer.PublicKey(),
		Signature: sig,
		Sequence:  seq,
	}, nil
}

// SignTx creates a signature for the given tx
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	bz, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	return SignBytes(signer, bz, chainID, seq)
}
