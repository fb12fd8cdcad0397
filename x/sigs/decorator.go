/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.
*/
package sigs

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

// Decorator verifies the signature of a SignedTx and that the signer is the
// caller of the transaction. Transactions that are not signed are passed
// through, their caller is trusted.
type Decorator struct {
	ctrl *Controller
}

var _ weave.Decorator = Decorator{}

// NewDecorator returns a default authentication decorator,
// which appends the chainID before checking the signature.
func NewDecorator() Decorator {
	return Decorator{ctrl: NewController()}
}

// Check verifies the signature before calling down the stack.
func (d Decorator) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	if err := d.authenticate(ctx, store, tx); err != nil {
		return nil, err
	}
	return next.Check(ctx, store, tx)
}

// Deliver verifies the signature before calling down the stack.
func (d Decorator) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	if err := d.authenticate(ctx, store, tx); err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

func (d Decorator) authenticate(ctx weave.Context, store weave.KVStore, tx weave.Tx) error {
	stx, ok := tx.(SignedTx)
	if !ok {
		return nil
	}
	// The caller must own the key before the signer sequence is touched.
	if sig := stx.GetSignature(); sig != nil && sig.Pubkey != nil {
		if signer := sig.Pubkey.Address(); !signer.Equals(tx.GetCaller()) {
			return errors.Wrapf(errors.ErrUnauthorized, "caller %s is not the signer %s", tx.GetCaller(), signer)
		}
	}
	if _, err := d.ctrl.VerifyTxSignature(store, stx, weave.GetChainID(ctx)); err != nil {
		return errors.Wrap(err, "cannot verify signature")
	}
	return nil
}
