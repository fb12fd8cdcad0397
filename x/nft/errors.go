package nft

import (
	"github.com/iov-one/weave-market/errors"
)

// nft reserves 500~599
var (
	// ErrNotOwner is returned when the account acting as the owner does not
	// own the asset.
	ErrNotOwner = errors.Register(500, "not the asset owner")
)
