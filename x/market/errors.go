package market

import (
	"github.com/iov-one/weave-market/errors"
)

// market reserves 600~699
var (
	// ErrInvalidPrice is returned when an item is listed without a
	// positive price in the ledger currency.
	ErrInvalidPrice = errors.Register(600, "invalid price")
	// ErrFeeMismatch is returned when the paid amount is not exactly the
	// listing fee.
	ErrFeeMismatch = errors.Register(601, "listing fee mismatch")
	// ErrNotListed is returned for a sale of an item that does not exist.
	ErrNotListed = errors.Register(602, "item not listed")
	// ErrAlreadySold is returned for a sale of an item that was settled.
	ErrAlreadySold = errors.Register(603, "item already sold")
	// ErrWrongPayment is returned when the paid amount is not exactly the
	// item price.
	ErrWrongPayment = errors.Register(604, "payment does not match price")
)
