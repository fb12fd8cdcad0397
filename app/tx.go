package app

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/x/sigs"
)

// Tx is a single message submitted on behalf of an explicit caller.
type Tx struct {
	Msg    weave.Msg
	Caller weave.Address
}

var _ weave.Tx = (*Tx)(nil)

// NewTx returns a transaction executing msg on behalf of caller.
func NewTx(caller weave.Address, msg weave.Msg) *Tx {
	return &Tx{Msg: msg, Caller: caller}
}

func (tx *Tx) GetMsg() (weave.Msg, error) {
	return tx.Msg, nil
}

func (tx *Tx) GetCaller() weave.Address {
	return tx.Caller
}

// SignedTx is a Tx authorized by the signature of its caller. The sign bytes
// are the canonical form of the request the transaction was built from.
type SignedTx struct {
	Tx
	SignBytes []byte
	Signature *sigs.StdSignature
}

var _ sigs.SignedTx = (*SignedTx)(nil)

// NewSignedTx returns a transaction executing msg on behalf of caller, if
// sig is a valid signature of signBytes made by the caller.
func NewSignedTx(caller weave.Address, msg weave.Msg, signBytes []byte, sig *sigs.StdSignature) *SignedTx {
	return &SignedTx{
		Tx:        Tx{Msg: msg, Caller: caller},
		SignBytes: signBytes,
		Signature: sig,
	}
}

func (tx *SignedTx) GetSignBytes() ([]byte, error) {
	if len(tx.SignBytes) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "sign bytes")
	}
	return tx.SignBytes, nil
}

func (tx *SignedTx) GetSignature() *sigs.StdSignature {
	return tx.Signature
}
