package sigs

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/crypto"
	"github.com/iov-one/weave-market/errors"
)

// SignedTx represents a transaction authorized by a signature of its caller.
type SignedTx interface {
	weave.Tx

	// GetSignBytes returns the canonical byte representation of the
	// transaction, without the chain id and the sequence.
	GetSignBytes() ([]byte, error)

	GetSignature() *StdSignature
}

// StdSignature is a signature of the sign bytes built for given sequence.
type StdSignature struct {
	Pubkey    *crypto.PublicKey
	Signature []byte
	Sequence  int64
}

// Validate ensures the signature is complete and uses a valid sequence.
func (s *StdSignature) Validate() error {
	if s == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	var errs error
	if s.Pubkey == nil {
		errs = errors.AppendField(errs, "Pubkey", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Pubkey", s.Pubkey.Validate())
	}
	if len(s.Signature) == 0 {
		errs = errors.AppendField(errs, "Signature", errors.ErrEmpty)
	}
	if s.Sequence < 0 {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	}
	return errs
}
