package nft

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/orm"
)

// RegisterRoutes registers handlers for all registry messages.
func RegisterRoutes(r weave.Registry, registry *Registry) {
	r.Handle(&MintMsg{}, MintHandler{registry: registry})
	r.Handle(&ApproveMsg{}, ApproveHandler{registry: registry})
	r.Handle(&TransferMsg{}, TransferHandler{registry: registry})
}

// MintHandler creates assets. The ID of the new asset is returned as the
// result data, sequence encoded.
type MintHandler struct {
	registry *Registry
}

var _ weave.Handler = MintHandler{}

func (h MintHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg MintMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &weave.CheckResult{}, nil
}

func (h MintHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg MintMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	id, events, err := h.registry.Mint(db, msg.URI, tx.GetCaller())
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Data: orm.EncodeSequence(id), Events: events}, nil
}

// ApproveHandler sets or clears the operator of an asset.
type ApproveHandler struct {
	registry *Registry
}

var _ weave.Handler = ApproveHandler{}

func (h ApproveHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg ApproveMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &weave.CheckResult{}, nil
}

func (h ApproveHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg ApproveMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	var operator weave.Address
	if len(msg.Operator) != 0 {
		operator = msg.Operator
	}
	events, err := h.registry.SetApproval(db, msg.AssetID, operator, tx.GetCaller())
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Events: events}, nil
}

// TransferHandler moves assets between accounts.
type TransferHandler struct {
	registry *Registry
}

var _ weave.Handler = TransferHandler{}

func (h TransferHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg TransferMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &weave.CheckResult{}, nil
}

func (h TransferHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg TransferMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	events, err := h.registry.Transfer(db, msg.AssetID, msg.From, msg.To, tx.GetCaller())
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Events: events}, nil
}
