package sigs

import (
	"github.com/iov-one/weave-market/errors"
)

// sigs reserves 20~29
var (
	// ErrInvalidSequence is returned when a signature does not use the
	// next sequence of the signer, which is the case for every replayed
	// request.
	ErrInvalidSequence = errors.Register(20, "invalid sequence number")
)
